/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import "github.com/named-data/yarib/ndn"

// InheritingFibUpdater is the reference FibUpdater described in spec.md
// §4.2/§4.6: it computes, for the batch's single update and every
// existing descendant of its name, the effective set of child-inherit
// ancestor routes after the update is hypothetically applied, and diffs
// that against each entry's current inherited set to produce the
// REGISTER/UNREGISTER delta handed back through onOk.
//
// It never mutates rib itself; the Rib applies the update to its own
// tree only after onOk returns, preserving the ordering guarantee of
// spec.md §5 ("the tree never changes between dequeue and acknowledgment").
type InheritingFibUpdater struct {
	rib *Rib
}

// NewInheritingFibUpdater constructs a FibUpdater bound to rib.
func NewInheritingFibUpdater(rib *Rib) *InheritingFibUpdater {
	return &InheritingFibUpdater{rib: rib}
}

func (u *InheritingFibUpdater) ComputeAndSendFibUpdates(
	batch RibUpdateBatch,
	onOk func(inheritedRoutes RibUpdateList),
	onErr func(code uint32, message string),
) {
	if len(batch.Updates) != 1 {
		onErr(1, "InheritingFibUpdater only accepts single-update batches")
		return
	}
	update := batch.Updates[0]

	affected := []ndn.Name{update.Name}
	affected = append(affected, namesOf(u.rib.FindDescendantsForNonInsertedName(update.Name))...)

	override := hypotheticalRoutesAfter(u.rib, update)

	var delta RibUpdateList
	for _, name := range affected {
		var current map[RouteKey]*Route
		if entry := u.rib.Find(name); entry != nil {
			current = entry.inherited
		}

		next := ancestorRoutesWithOverride(u.rib, name, update.Name, override)
		nextByKey := make(map[RouteKey]*Route, len(next))
		for _, route := range next {
			nextByKey[route.Key()] = route
		}

		for key, route := range nextByKey {
			if _, ok := current[key]; !ok {
				delta = append(delta, RibUpdate{Action: ActionRegister, Name: name, Route: *route})
			}
		}
		for key, route := range current {
			if _, ok := nextByKey[key]; !ok {
				delta = append(delta, RibUpdate{Action: ActionUnregister, Name: name, Route: *route})
			}
		}
	}

	onOk(delta)
}

func namesOf(entries []*RibEntry) []ndn.Name {
	out := make([]ndn.Name, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// hypotheticalRoutesAfter simulates applying update to the route list
// held at update.Name, without mutating the real tree, and returns the
// resulting route list.
func hypotheticalRoutesAfter(rib *Rib, update RibUpdate) []*Route {
	var routes []*Route
	if entry := rib.Find(update.Name); entry != nil {
		routes = append(routes, entry.routes...)
	}

	switch update.Action {
	case ActionRegister:
		key := update.Route.Key()
		replaced := false
		for i, r := range routes {
			if r.Key() == key {
				stored := update.Route
				routes[i] = &stored
				replaced = true
				break
			}
		}
		if !replaced {
			stored := update.Route
			routes = append(routes, &stored)
		}
	case ActionUnregister, ActionRemoveFace:
		key := update.Route.Key()
		for i, r := range routes {
			if r.Key() == key {
				routes = append(routes[:i], routes[i+1:]...)
				break
			}
		}
	}
	return routes
}

// ancestorRoutesWithOverride walks target's ancestor chain (target itself
// excluded) collecting child-inherit routes, stopping after the first
// capturing ancestor, exactly like Rib.getAncestorRoutes — except that
// whenever the walk reaches overrideName, it substitutes overrideRoutes
// for that entry's real route list instead of reading the (not yet
// mutated) tree.
func ancestorRoutesWithOverride(rib *Rib, target, overrideName ndn.Name, overrideRoutes []*Route) []*Route {
	var out []*Route
	for i := target.Len() - 1; i >= 0; i-- {
		prefix := target.Prefix(i)

		var routes []*Route
		var hasCapture bool
		if prefix.Equals(overrideName) {
			routes = overrideRoutes
			hasCapture = routesHaveCapture(overrideRoutes)
		} else if entry := rib.Find(prefix); entry != nil {
			routes = entry.routes
			hasCapture = entry.HasCapture()
		} else {
			continue
		}

		for _, route := range routes {
			if route.HasChildInherit() {
				out = append(out, route)
			}
		}
		if hasCapture {
			break
		}
	}
	return out
}
