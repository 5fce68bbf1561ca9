/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise

import "github.com/pelletier/go-toml"

// TomlConfigSection adapts a go-toml subtree to ConfigSection, matching
// the way core.LoadConfig parses the rest of the daemon's configuration.
type TomlConfigSection struct {
	Tree *toml.Tree
}

// GetInt implements ConfigSection.
func (s TomlConfigSection) GetInt(key string) (int64, bool) {
	if s.Tree == nil {
		return 0, false
	}
	raw := s.Tree.Get(key)
	if raw == nil {
		return 0, false
	}
	value, ok := raw.(int64)
	return value, ok
}
