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

// RibEntry is the per-name bundle of routes, parent/child links, and the
// inherited-route set computed by the inheritance engine.
type RibEntry struct {
	rib       *Rib
	name      ndn.Name
	routes    []*Route
	inherited map[RouteKey]*Route

	parent   *RibEntry
	children map[*RibEntry]struct{}
}

// newRibEntry constructs an empty RibEntry for the given name, owned by rib
// (the owner is used only to cancel expiration timers on overwrite).
func newRibEntry(rib *Rib, name ndn.Name) *RibEntry {
	return &RibEntry{
		rib:       rib,
		name:      name,
		inherited: make(map[RouteKey]*Route),
		children:  make(map[*RibEntry]struct{}),
	}
}

// Name returns the entry's name.
func (e *RibEntry) Name() ndn.Name {
	return e.name
}

// Parent returns the entry's parent, or nil if it is a root-level entry.
func (e *RibEntry) Parent() *RibEntry {
	return e.parent
}

// Children returns the entry's immediate children. The returned map must
// not be mutated by the caller.
func (e *RibEntry) Children() map[*RibEntry]struct{} {
	return e.children
}

// Routes returns the entry's own (non-inherited) routes. The returned slice
// must not be mutated by the caller.
func (e *RibEntry) Routes() []*Route {
	return e.routes
}

// InheritedRoutes returns the routes the entry currently inherits from
// ancestors carrying the child-inherit flag, truncated at capture.
func (e *RibEntry) InheritedRoutes() []*Route {
	out := make([]*Route, 0, len(e.inherited))
	for _, r := range e.inherited {
		out = append(out, r)
	}
	return out
}

// HasCapture reports whether any of the entry's own routes carries the
// capture flag.
func (e *RibEntry) HasCapture() bool {
	return routesHaveCapture(e.routes)
}

// HasFaceID reports whether any of the entry's own routes originates from
// the given face.
func (e *RibEntry) HasFaceID(faceID uint64) bool {
	for _, r := range e.routes {
		if r.FaceID == faceID {
			return true
		}
	}
	return false
}

// findRoute returns the route with the given key, or nil.
func (e *RibEntry) findRoute(key RouteKey) *Route {
	for _, r := range e.routes {
		if r.Key() == key {
			return r
		}
	}
	return nil
}

// insertRoute adds route, or updates the existing route with the same key
// in place. Returns the stored route and whether it was newly inserted.
func (e *RibEntry) insertRoute(route Route) (*Route, bool) {
	if existing := e.findRoute(route.Key()); existing != nil {
		if existing.expirationToken != nil {
			e.rib.cancelExpiration(existing.expirationToken)
		}
		existing.Cost = route.Cost
		existing.Flags = route.Flags
		existing.Expires = route.Expires
		existing.expirationToken = route.expirationToken
		return existing, false
	}

	stored := route
	e.routes = append(e.routes, &stored)
	return &stored, true
}

// eraseRoute removes the route with the given key, if present, and returns
// it along with whether it was found.
func (e *RibEntry) eraseRoute(key RouteKey) (*Route, bool) {
	for i, r := range e.routes {
		if r.Key() == key {
			e.routes = append(e.routes[:i], e.routes[i+1:]...)
			return r, true
		}
	}
	return nil, false
}

// empty reports whether the entry carries no routes of its own.
func (e *RibEntry) empty() bool {
	return len(e.routes) == 0
}

// addInheritedRoute records route as inherited from an ancestor.
func (e *RibEntry) addInheritedRoute(route *Route) {
	e.inherited[route.Key()] = route.clone()
}

// removeInheritedRoute removes the inherited route with the given key.
func (e *RibEntry) removeInheritedRoute(key RouteKey) {
	delete(e.inherited, key)
}

func routesHaveCapture(routes []*Route) bool {
	for _, r := range routes {
		if r.HasCapture() {
			return true
		}
	}
	return false
}
