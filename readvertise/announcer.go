/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise

import (
	"sync"

	"github.com/named-data/yarib/core"
	"github.com/named-data/yarib/ndn"
)

// Announcer is the upstream collaborator that actually sends
// announcements/withdrawals, kept separate from the decision policy so it
// can be swapped for a real management-protocol client.
type Announcer interface {
	Announce(action ReadvertiseAction)
	Withdraw(prefix ndn.Name)
}

// RefCountingAnnouncer wraps an Announcer and suppresses duplicate
// announce/withdraw calls for the same prefix, only forwarding on the
// 0->1 and 1->0 transitions of a per-prefix reference count.
type RefCountingAnnouncer struct {
	downstream Announcer
	mutex      sync.Mutex
	refs       map[uint64]int
}

// NewRefCountingAnnouncer wraps downstream with reference counting.
func NewRefCountingAnnouncer(downstream Announcer) *RefCountingAnnouncer {
	return &RefCountingAnnouncer{
		downstream: downstream,
		refs:       make(map[uint64]int),
	}
}

// Announce forwards to the downstream announcer only the first time
// action.Prefix transitions from unadvertised to advertised.
func (a *RefCountingAnnouncer) Announce(action ReadvertiseAction) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	h := action.Prefix.Hash()
	a.refs[h]++
	if a.refs[h] > 1 {
		core.LogDebug("Readvertise", "skip duplicate advertise of "+action.Prefix.String())
		return
	}
	core.LogInfo("Readvertise", "advertise "+action.Prefix.String())
	a.downstream.Announce(action)
}

// Withdraw forwards to the downstream announcer only once every
// Announce for prefix has been matched by a Withdraw.
func (a *RefCountingAnnouncer) Withdraw(prefix ndn.Name) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	h := prefix.Hash()
	a.refs[h]--
	if a.refs[h] > 0 {
		core.LogDebug("Readvertise", "skip withdraw of "+prefix.String()+", still advertised")
		return
	}
	delete(a.refs, h)
	core.LogInfo("Readvertise", "withdraw "+prefix.String())
	a.downstream.Withdraw(prefix)
}
