/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"

	"github.com/named-data/yarib/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromString(t *testing.T) {
	n, err := ndn.NameFromString("/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, 3, n.Len())
	assert.Equal(t, []byte("a"), n.At(0))
	assert.Equal(t, []byte("c"), n.At(-1))
	assert.Equal(t, "/a/b/c", n.String())

	empty, err := ndn.NameFromString("/")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "/", empty.String())

	_, err = ndn.NameFromString("a/b")
	assert.Error(t, err)
}

func TestNameEscaping(t *testing.T) {
	n, err := ndn.NameFromString("/a%2Fb/c.d")
	require.NoError(t, err)
	assert.Equal(t, []byte("a/b"), n.At(0))
	assert.Equal(t, []byte("c.d"), n.At(1))
	assert.Equal(t, "/a%2Fb/c.d", n.String())

	dots, err := ndn.NameFromString("/....")
	require.NoError(t, err)
	assert.Equal(t, []byte("."), dots.At(0))
	assert.Equal(t, "/....", dots.String())
}

func TestNamePrefixAndIsPrefixOf(t *testing.T) {
	n, _ := ndn.NameFromString("/a/b/c")
	assert.True(t, n.Prefix(0).Equals(ndn.NewName()))
	assert.Equal(t, 2, n.Prefix(2).Len())
	assert.True(t, n.Prefix(10).Equals(n))

	ab, _ := ndn.NameFromString("/a/b")
	assert.True(t, ab.IsPrefixOf(n))
	assert.False(t, n.IsPrefixOf(ab))
	assert.True(t, n.IsPrefixOf(n))
}

func TestNameCompare(t *testing.T) {
	a, _ := ndn.NameFromString("/a")
	ab, _ := ndn.NameFromString("/a/b")
	b, _ := ndn.NameFromString("/b")

	assert.Equal(t, -1, a.Compare(ab))
	assert.Equal(t, 1, ab.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Compare(b) < 0)
}

func TestNameAppend(t *testing.T) {
	n := ndn.NewName()
	n = n.Append([]byte("a")).Append([]byte("b"))
	assert.Equal(t, "/a/b", n.String())
}
