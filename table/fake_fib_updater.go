/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

// FakeFibUpdater is a FibUpdater test double used to exercise the Rib's
// failure and ordering paths (spec.md §7/§8) without involving the
// inheritance computation. By default it always succeeds with an empty
// inherited-route delta; set FailNext/FailCode/FailMessage to force the
// next call to fail instead, or hold Deferred calls to drive the
// InFlight/Idle transitions manually from a test.
type FakeFibUpdater struct {
	Calls []RibUpdateBatch

	FailNext    bool
	FailCode    uint32
	FailMessage string

	// Deferred, when true, makes ComputeAndSendFibUpdates record the
	// pending callbacks instead of invoking them, so a test can assert
	// isUpdateInProgress stays true until it calls ResolvePending.
	Deferred bool
	pending  []func()
}

func (f *FakeFibUpdater) ComputeAndSendFibUpdates(
	batch RibUpdateBatch,
	onOk func(inheritedRoutes RibUpdateList),
	onErr func(code uint32, message string),
) {
	f.Calls = append(f.Calls, batch)

	if f.Deferred {
		f.pending = append(f.pending, func() {
			f.resolveOne(onOk, onErr)
		})
		return
	}

	f.resolveOne(onOk, onErr)
}

func (f *FakeFibUpdater) resolveOne(onOk func(RibUpdateList), onErr func(uint32, string)) {
	if f.FailNext {
		f.FailNext = false
		onErr(f.FailCode, f.FailMessage)
		return
	}
	onOk(nil)
}

// ResolvePending runs the oldest deferred call, if any, returning whether
// one was run.
func (f *FakeFibUpdater) ResolvePending() bool {
	if len(f.pending) == 0 {
		return false
	}
	next := f.pending[0]
	f.pending = f.pending[1:]
	next()
	return true
}
