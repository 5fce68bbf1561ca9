/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/yarib/utils/priority_queue"
)

// RouteFlags is a bitset of route flags.
type RouteFlags uint8

// Route flags.
const (
	RouteFlagChildInherit RouteFlags = 0x01
	RouteFlagCapture      RouteFlags = 0x02
)

// Route origins, mirroring the NFD registration protocol's origin codes.
const (
	RouteOriginApp       uint16 = 0
	RouteOriginAutoreg   uint16 = 64
	RouteOriginClient    uint16 = 65
	RouteOriginAutoconf  uint16 = 66
	RouteOriginNLSR      uint16 = 128
	RouteOriginPrefixAnn uint16 = 129
	RouteOriginStatic    uint16 = 255
)

// RouteKey identifies a route within a RibEntry. Two routes with the same
// (FaceID, Origin) are the same contribution, per spec.md §3.
type RouteKey struct {
	FaceID uint64
	Origin uint16
}

// Route represents a single contribution toward a RibEntry.
type Route struct {
	FaceID  uint64
	Origin  uint16
	Cost    uint64
	Flags   RouteFlags
	Expires *time.Time

	// expirationToken cancels the pending expiration event, if any. It is
	// transient: never copied across route snapshots used for diffing.
	expirationToken *priority_queue.Token
}

// Key returns the (FaceID, Origin) identity of the route.
func (r *Route) Key() RouteKey {
	return RouteKey{FaceID: r.FaceID, Origin: r.Origin}
}

// HasChildInherit reports whether the route carries the child-inherit flag.
func (r *Route) HasChildInherit() bool {
	return r.Flags&RouteFlagChildInherit != 0
}

// HasCapture reports whether the route carries the capture flag.
func (r *Route) HasCapture() bool {
	return r.Flags&RouteFlagCapture != 0
}

// clone returns a value copy of the route without its expiration token;
// used when handing routes across the RIB/FIB-updater boundary, where the
// token is meaningless (it belongs to the RIB's own expiration queue).
func (r *Route) clone() *Route {
	cp := *r
	cp.expirationToken = nil
	return &cp
}
