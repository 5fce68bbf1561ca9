/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise_test

import (
	"testing"
	"time"

	"github.com/named-data/yarib/readvertise"
	"github.com/stretchr/testify/assert"
)

type mapConfigSection map[string]int64

func (m mapConfigSection) GetInt(key string) (int64, bool) {
	value, ok := m[key]
	return value, ok
}

// S6 - Refresh interval parsing.
func TestLoadRefreshIntervalDefaults(t *testing.T) {
	assert.Equal(t, readvertise.DefaultRefreshInterval, readvertise.LoadRefreshInterval(nil))
	assert.Equal(t, readvertise.DefaultRefreshInterval,
		readvertise.LoadRefreshInterval(mapConfigSection{"refresh_interval_wrong": 10}))
}

func TestLoadRefreshIntervalHonorsConfiguredValue(t *testing.T) {
	interval := readvertise.LoadRefreshInterval(mapConfigSection{"refresh_interval": 10})
	assert.Equal(t, 10*time.Second, interval)
}
