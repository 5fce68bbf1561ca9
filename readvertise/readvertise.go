/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package readvertise implements the Host-to-Gateway readvertise policy:
// it observes locally-registered routes and decides which ones to
// re-announce to an upstream collaborator, signed by the shortest locally
// held identity covering the route's name.
package readvertise

import (
	"github.com/named-data/yarib/ndn"
	"github.com/named-data/yarib/table"
)

// SigningInfo names the identity that must sign an announcement.
type SigningInfo struct {
	Identity ndn.Name
}

// ReadvertiseAction instructs an upstream collaborator to advertise
// Prefix at Cost, signed per Signer. Downstream delivery is out of scope.
type ReadvertiseAction struct {
	Prefix ndn.Name
	Cost   uint64
	Signer SigningInfo
}

// KeyChain is the minimal identity store the policy needs: whether a
// signing identity exists for a given name.
type KeyChain interface {
	HasIdentity(name ndn.Name) bool
}

var reservedScopes = []string{"localhost", "localhop"}

func isReservedScope(name ndn.Name) bool {
	if name.Len() == 0 {
		return false
	}
	first := string(name.At(0))
	for _, scope := range reservedScopes {
		if first == scope {
			return true
		}
	}
	return false
}

// HostToGatewayPolicy is the readvertise policy described in spec.md §4.5:
// it picks the shortest identity prefix of a newly-registered route's name
// as the signer, and announces that identity (minus its last component when
// it equals the route's full name).
type HostToGatewayPolicy struct {
	keyChain KeyChain
}

// NewHostToGatewayPolicy constructs a policy backed by keyChain.
func NewHostToGatewayPolicy(keyChain KeyChain) *HostToGatewayPolicy {
	return &HostToGatewayPolicy{keyChain: keyChain}
}

// HandleNewRoute implements the decision function from spec.md §4.5. It
// returns nil if the route's name falls in a reserved local scope or no
// locally held identity covers it.
//
// The announced prefix is the topmost (shortest) identity covering the
// route's name: a host's own network-routable prefix sits at the root of
// its identity chain, with any deeper identity (e.g. a per-service
// certificate) existing only to sign finer-grained registrations. If the
// matching identity equals the route's full name exactly — the route was
// registered under the signing identity itself, with no finer suffix
// below it — the last component is dropped before advertising, since that
// component names the identity, not a routable network prefix.
func (p *HostToGatewayPolicy) HandleNewRoute(ref table.RibRouteRef) *ReadvertiseAction {
	name := ref.Entry.Name()
	if isReservedScope(name) {
		return nil
	}

	for i := 0; i <= name.Len(); i++ {
		candidate := name.Prefix(i)
		if !p.keyChain.HasIdentity(candidate) {
			continue
		}

		prefix := candidate
		if i == name.Len() {
			prefix = candidate.Prefix(i - 1)
		}
		return &ReadvertiseAction{
			Prefix: prefix,
			Cost:   ref.Route.Cost,
			Signer: SigningInfo{Identity: candidate},
		}
	}
	return nil
}
