/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/named-data/yarib/ndn"
)

// RibUpdateAction identifies how a RibUpdate affects the RIB.
type RibUpdateAction int

// Update actions, per spec.md §6.
const (
	ActionRegister RibUpdateAction = iota
	ActionUnregister
	ActionRemoveFace
)

func (a RibUpdateAction) String() string {
	switch a {
	case ActionRegister:
		return "REGISTER"
	case ActionUnregister:
		return "UNREGISTER"
	case ActionRemoveFace:
		return "REMOVE_FACE"
	default:
		return "UNKNOWN"
	}
}

// RibUpdate is one pending change to a single name/route.
type RibUpdate struct {
	Action RibUpdateAction
	Name   ndn.Name
	Route  Route
}

// RibUpdateList is a delta of inherited-route updates, as returned by the
// FIB updater's onOk callback.
type RibUpdateList []RibUpdate

// RibUpdateBatch bundles the updates dispatched to the FIB updater in one
// round trip. The field stays plural so future coalescing does not require
// API churn, per spec.md §9 ("Update batching evolution") — the current
// dispatch path in sendBatchFromQueue only ever builds single-update
// batches.
type RibUpdateBatch struct {
	FaceID  uint64
	Updates []RibUpdate
}

// FibUpdater is the opaque external collaborator described in spec.md §6:
// given a batch, it computes the effective FIB change (out of scope here)
// and the induced inherited-route delta, then reports success or failure.
// Implementations must be idempotent under retries of identical batches.
type FibUpdater interface {
	ComputeAndSendFibUpdates(
		batch RibUpdateBatch,
		onOk func(inheritedRoutes RibUpdateList),
		onErr func(code uint32, message string),
	)
}
