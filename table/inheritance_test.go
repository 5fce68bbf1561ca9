/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"

	"github.com/named-data/yarib/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInheritingRib() *table.Rib {
	rib := table.NewRib(nil)
	rib.SetFibUpdater(table.NewInheritingFibUpdater(rib))
	return rib
}

func TestInheritingFibUpdaterPropagatesChildInherit(t *testing.T) {
	rib := newInheritingRib()

	a := name(t, "/a")
	ab := name(t, "/a/b")

	inheritRoute := table.Route{FaceID: 1, Origin: table.RouteOriginApp, Flags: table.RouteFlagChildInherit}
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a, Route: inheritRoute}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: ab,
		Route: table.Route{FaceID: 2, Origin: table.RouteOriginApp}}, nil, nil)

	entryAB := rib.Find(ab)
	require.NotNil(t, entryAB)
	inherited := entryAB.InheritedRoutes()
	require.Len(t, inherited, 1)
	assert.Equal(t, uint64(1), inherited[0].FaceID)
}

// Capture at the immediate parent blocks inheritance from propagating
// further down the tree, but the capturing entry itself still inherits
// from its own ancestor: capture only blocks propagation past an entry,
// not into it.
func TestInheritingFibUpdaterCaptureBoundary(t *testing.T) {
	rib := newInheritingRib()

	a := name(t, "/a")
	ab := name(t, "/a/b")
	abc := name(t, "/a/b/c")

	inheritRoute := table.Route{FaceID: 1, Origin: table.RouteOriginApp, Flags: table.RouteFlagChildInherit}
	captureRoute := table.Route{FaceID: 2, Origin: table.RouteOriginApp, Flags: table.RouteFlagCapture}

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a, Route: inheritRoute}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: ab, Route: captureRoute}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: abc,
		Route: table.Route{FaceID: 3, Origin: table.RouteOriginApp}}, nil, nil)

	entryAB := rib.Find(ab)
	require.NotNil(t, entryAB)
	require.Len(t, entryAB.InheritedRoutes(), 1)
	assert.Equal(t, uint64(1), entryAB.InheritedRoutes()[0].FaceID)

	entryABC := rib.Find(abc)
	require.NotNil(t, entryABC)
	assert.Empty(t, entryABC.InheritedRoutes())
}

func TestInheritingFibUpdaterUnregisterRetractsInheritance(t *testing.T) {
	rib := newInheritingRib()

	a := name(t, "/a")
	ax := name(t, "/a/x")

	inheritRoute := table.Route{FaceID: 1, Origin: table.RouteOriginApp, Flags: table.RouteFlagChildInherit}
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: a, Route: inheritRoute}, nil, nil)
	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionRegister, Name: ax,
		Route: table.Route{FaceID: 2, Origin: table.RouteOriginApp}}, nil, nil)

	require.Len(t, rib.Find(ax).InheritedRoutes(), 1)

	rib.BeginApplyUpdate(table.RibUpdate{Action: table.ActionUnregister, Name: a, Route: inheritRoute}, nil, nil)

	entryAX := rib.Find(ax)
	require.NotNil(t, entryAX)
	assert.Empty(t, entryAX.InheritedRoutes())
}
