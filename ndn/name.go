/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package ndn provides the hierarchical name type used throughout the RIB:
// an ordered sequence of opaque byte-string components with component-wise
// lexicographic comparison and prefix tests.
package ndn

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/named-data/yarib/utils/comparison"
)

// Name represents a hierarchical NDN name: an ordered sequence of opaque
// byte-string components. The zero value is the empty name "/".
type Name struct {
	components [][]byte
}

// NewName constructs the empty name.
func NewName() Name {
	return Name{}
}

// NameFromString decodes a name from its "/"-separated, percent-escaped
// string form. The empty string and "/" both decode to the empty name.
func NameFromString(str string) (Name, error) {
	if len(str) == 0 || str == "/" {
		return Name{}, nil
	}
	if str[0] != '/' {
		return Name{}, errors.New("name must start with '/'")
	}

	parts := strings.Split(str, "/")[1:]
	n := Name{components: make([][]byte, 0, len(parts))}
	for _, part := range parts {
		value, err := unescapeComponent(part)
		if err != nil {
			return Name{}, err
		}
		n.components = append(n.components, []byte(value))
	}
	return n, nil
}

// NameFromComponents constructs a name from an explicit component slice.
// The slice is copied; callers may reuse it afterwards.
func NameFromComponents(components ...[]byte) Name {
	n := Name{components: make([][]byte, len(components))}
	for i, c := range components {
		cp := make([]byte, len(c))
		copy(cp, c)
		n.components[i] = cp
	}
	return n
}

// Len returns the number of components in the name.
func (n Name) Len() int {
	return len(n.components)
}

// At returns the component at the specified index, or nil if out of range.
// Negative indices count from the end, matching the teacher's ndn.Name.At.
func (n Name) At(index int) []byte {
	if index < 0 {
		index += len(n.components)
	}
	if index < 0 || index >= len(n.components) {
		return nil
	}
	return n.components[index]
}

// Append returns a new name with the given component appended.
func (n Name) Append(component []byte) Name {
	cp := make([]byte, len(component))
	copy(cp, component)
	out := make([][]byte, len(n.components)+1)
	copy(out, n.components)
	out[len(n.components)] = cp
	return Name{components: out}
}

// Prefix returns the first size components of the name, i.e. getPrefix(size)
// from spec.md §3. If size >= Len(), a copy of the whole name is returned.
// A negative size is treated as zero.
func (n Name) Prefix(size int) Name {
	if size < 0 {
		size = 0
	}
	if size > len(n.components) {
		size = len(n.components)
	}
	out := make([][]byte, size)
	copy(out, n.components[:size])
	return Name{components: out}
}

// IsPrefixOf returns whether n is a prefix of other: len(n) <= len(other)
// and every component of n equals the corresponding component of other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n.components) > len(other.components) {
		return false
	}
	for i := range n.components {
		if !bytes.Equal(n.components[i], other.components[i]) {
			return false
		}
	}
	return true
}

// Equals reports whether two names have identical components.
func (n Name) Equals(other Name) bool {
	if len(n.components) != len(other.components) {
		return false
	}
	for i := range n.components {
		if !bytes.Equal(n.components[i], other.components[i]) {
			return false
		}
	}
	return true
}

// Compare returns the canonical order of n against other: -1 if n sorts
// before other, 1 if after, 0 if equal. Shorter prefixes sort before their
// extensions; otherwise components are compared byte-by-byte in order,
// shorter components sorting before longer ones that share a common prefix.
func (n Name) Compare(other Name) int {
	count := comparison.Min(len(n.components), len(other.components))
	for i := 0; i < count; i++ {
		a, b := n.components[i], other.components[i]
		if c := bytes.Compare(a, b); c != 0 {
			return c
		}
	}
	switch {
	case len(n.components) < len(other.components):
		return -1
	case len(n.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// Hash returns a stable hash of the name, suitable for use as a map key
// surrogate (e.g. readvertise de-duplication). It is not cryptographic.
func (n Name) Hash() uint64 {
	var h uint64
	for _, c := range n.components {
		h = h*31 + xxhash.Sum64(c)
	}
	return h
}

// String renders the name in its "/"-separated, percent-escaped form.
func (n Name) String() string {
	if len(n.components) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range n.components {
		b.WriteByte('/')
		b.WriteString(escapeComponent(c))
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func escapeComponent(in []byte) string {
	out := make([]byte, 0, 3*len(in))
	nPeriods := 0
	for _, b := range in {
		switch {
		case b == '.':
			nPeriods++
			fallthrough
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '~':
			out = append(out, b)
		default:
			out = append(out, '%', upperHex[b>>4], upperHex[b&0x0F])
		}
	}
	if nPeriods > 0 && nPeriods == len(in) {
		out = append(out, '.', '.', '.')
	}
	return string(out)
}

func unescapeComponent(in string) (string, error) {
	// An all-period component carries three extra periods (see escapeComponent).
	if len(in) >= 3 && strings.Trim(in, ".") == "" {
		return in[3:], nil
	}
	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] == '%' {
			if len(in) <= i+2 {
				return "", errors.New("incomplete escape sequence")
			}
			unescaped, err := hex.DecodeString(in[i+1 : i+3])
			if err != nil {
				return "", errors.New("could not decode escape sequence")
			}
			out = append(out, unescaped...)
			i += 2
		} else {
			out = append(out, in[i])
		}
	}
	return string(out), nil
}
