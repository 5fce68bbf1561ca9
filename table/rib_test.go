/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"

	"github.com/named-data/yarib/ndn"
	"github.com/named-data/yarib/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(t *testing.T, s string) ndn.Name {
	t.Helper()
	n, err := ndn.NameFromString(s)
	require.NoError(t, err)
	return n
}

// S1 - Basic register/unregister.
func TestBasicRegisterUnregister(t *testing.T) {
	updater := &table.FakeFibUpdater{}
	rib := table.NewRib(updater)

	a := name(t, "/a")
	route := table.Route{FaceID: 1, Origin: table.RouteOriginApp, Cost: 100}

	var registered bool
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a, Route: route},
		func() { registered = true }, nil)

	require.True(t, registered)
	assert.Equal(t, uint64(1), rib.Size())
	stored := rib.FindRoute(a, route.Key())
	require.NotNil(t, stored)
	assert.Equal(t, uint64(100), stored.Cost)

	var unregistered bool
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionUnregister, Name: a, Route: route},
		func() { unregistered = true }, nil)

	require.True(t, unregistered)
	assert.Equal(t, uint64(0), rib.Size())
	assert.Nil(t, rib.Find(a))
}

// S2 - Descendant re-parenting.
func TestDescendantReparenting(t *testing.T) {
	updater := &table.FakeFibUpdater{}
	rib := table.NewRib(updater)

	ab := name(t, "/a/b")
	abcd := name(t, "/a/b/c/d")
	abc := name(t, "/a/b/c")

	rA := table.Route{FaceID: 1, Origin: table.RouteOriginApp}
	rB := table.Route{FaceID: 2, Origin: table.RouteOriginApp}
	rC := table.Route{FaceID: 3, Origin: table.RouteOriginApp}

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: ab, Route: rA}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: abcd, Route: rB}, nil, nil)

	entryABCD := rib.Find(abcd)
	require.NotNil(t, entryABCD)
	require.NotNil(t, entryABCD.Parent())
	assert.True(t, entryABCD.Parent().Name().Equals(ab))

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: abc, Route: rC}, nil, nil)

	entryABC := rib.Find(abc)
	require.NotNil(t, entryABC)
	require.NotNil(t, entryABC.Parent())
	assert.True(t, entryABC.Parent().Name().Equals(ab))

	entryABCD = rib.Find(abcd)
	require.NotNil(t, entryABCD.Parent())
	assert.True(t, entryABCD.Parent().Name().Equals(abc))

	entryAB := rib.Find(ab)
	require.Len(t, entryAB.Children(), 1)
	for child := range entryAB.Children() {
		assert.True(t, child.Name().Equals(abc))
	}
}

// S3 - Child-inherit with capture. Driven through the real
// InheritingFibUpdater, since this is the inheritance engine the fake
// updater never exercises.
func TestChildInheritWithCapture(t *testing.T) {
	rib := table.NewRib(nil)
	rib.SetFibUpdater(table.NewInheritingFibUpdater(rib))

	a := name(t, "/a")
	ab := name(t, "/a/b")
	abc := name(t, "/a/b/c")

	inheritRoute := table.Route{FaceID: 1, Origin: table.RouteOriginApp, Flags: table.RouteFlagChildInherit}
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a, Route: inheritRoute}, nil, nil)

	// Force /a/b/c to exist so the ancestor walk has an entry to compute
	// inheritance for; its own route carries no flags of its own.
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: abc,
		Route: table.Route{FaceID: 2, Origin: table.RouteOriginApp}}, nil, nil)

	entryABC := rib.Find(abc)
	require.NotNil(t, entryABC)
	ancestors := entryABC.InheritedRoutes()
	require.Len(t, ancestors, 1)
	assert.Equal(t, uint64(1), ancestors[0].FaceID)

	captureRoute := table.Route{FaceID: 3, Origin: table.RouteOriginApp, Flags: table.RouteFlagCapture}
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: ab, Route: captureRoute}, nil, nil)

	entryABC = rib.Find(abc)
	assert.Empty(t, entryABC.InheritedRoutes())

	// The capturing entry itself still inherits from its own ancestor;
	// capture only blocks propagation past it, not into it.
	entryAB := rib.Find(ab)
	require.NotNil(t, entryAB)
	ancestorsAtCapture := entryAB.InheritedRoutes()
	require.Len(t, ancestorsAtCapture, 1)
	assert.Equal(t, uint64(1), ancestorsAtCapture[0].FaceID)
}

// S4 - Face failure fan-out.
func TestFaceFailureFanOut(t *testing.T) {
	updater := &table.FakeFibUpdater{}
	rib := table.NewRib(updater)

	x := name(t, "/x")
	xy := name(t, "/x/y")

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: x,
		Route: table.Route{FaceID: 1, Origin: table.RouteOriginApp}}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: x,
		Route: table.Route{FaceID: 2, Origin: table.RouteOriginApp}}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: xy,
		Route: table.Route{FaceID: 1, Origin: table.RouteOriginApp}}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: xy,
		Route: table.Route{FaceID: 2, Origin: table.RouteOriginApp}}, nil, nil)

	rib.BeginRemoveFailedFaces(map[uint64]struct{}{2: {}})

	assert.Nil(t, rib.FindRoute(x, table.RouteKey{FaceID: 1, Origin: table.RouteOriginApp}))
	assert.Nil(t, rib.FindRoute(xy, table.RouteKey{FaceID: 1, Origin: table.RouteOriginApp}))
	assert.NotNil(t, rib.FindRoute(x, table.RouteKey{FaceID: 2, Origin: table.RouteOriginApp}))
	assert.NotNil(t, rib.FindRoute(xy, table.RouteKey{FaceID: 2, Origin: table.RouteOriginApp}))
}

func TestUpdateQueueSerializesWhileInFlight(t *testing.T) {
	updater := &table.FakeFibUpdater{Deferred: true}
	rib := table.NewRib(updater)

	a := name(t, "/a")
	b := name(t, "/b")

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a,
		Route: table.Route{FaceID: 1, Origin: table.RouteOriginApp}}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: b,
		Route: table.Route{FaceID: 1, Origin: table.RouteOriginApp}}, nil, nil)

	// Only the first batch should have been dispatched so far.
	assert.Len(t, updater.Calls, 1)
	assert.Nil(t, rib.Find(a))

	require.True(t, updater.ResolvePending())
	assert.NotNil(t, rib.Find(a))
	assert.Len(t, updater.Calls, 2)

	require.True(t, updater.ResolvePending())
	assert.NotNil(t, rib.Find(b))
}

func TestFibRejectionDrainsQueue(t *testing.T) {
	updater := &table.FakeFibUpdater{FailNext: true, FailCode: 500, FailMessage: "no route"}
	rib := table.NewRib(updater)

	a := name(t, "/a")
	var failed bool
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a,
		Route: table.Route{FaceID: 1, Origin: table.RouteOriginApp}},
		nil, func(code uint32, message string) {
			failed = true
			assert.Equal(t, uint32(500), code)
		})

	assert.True(t, failed)
	assert.Nil(t, rib.Find(a))
}
