// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import "fmt"

// CORSSetting decodes the `publicCorsOrigin` field, which is either the
// boolean `false` (disabled) or a string allowed-origin value.
type CORSSetting struct {
	Enabled bool
	Origin  string
}

func (c *CORSSetting) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var asBool bool
	if err := unmarshal(&asBool); err == nil {
		*c = CORSSetting{Enabled: asBool}
		return nil
	}
	var asString string
	if err := unmarshal(&asString); err != nil {
		return fmt.Errorf("publicCorsOrigin: expected bool or string: %w", err)
	}
	*c = CORSSetting{Enabled: asString != "", Origin: asString}
	return nil
}

func (c CORSSetting) MarshalYAML() (interface{}, error) {
	if !c.Enabled {
		return false, nil
	}
	return c.Origin, nil
}
