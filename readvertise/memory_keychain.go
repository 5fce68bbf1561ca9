/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise

import "github.com/named-data/yarib/ndn"

// MemoryKeyChain is an in-memory KeyChain backed by a set of identity
// names, standing in for a real signing key store. It also serves as the
// test double used in scenario S5.
type MemoryKeyChain struct {
	identities map[uint64]ndn.Name
}

// NewMemoryKeyChain constructs an empty MemoryKeyChain.
func NewMemoryKeyChain() *MemoryKeyChain {
	return &MemoryKeyChain{identities: make(map[uint64]ndn.Name)}
}

// CreateIdentity registers name as a locally held signing identity.
func (k *MemoryKeyChain) CreateIdentity(name ndn.Name) {
	k.identities[name.Hash()] = name
}

// HasIdentity implements KeyChain.
func (k *MemoryKeyChain) HasIdentity(name ndn.Name) bool {
	stored, ok := k.identities[name.Hash()]
	return ok && stored.Equals(name)
}
