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

// Package objectpayload holds the `{mimeType, data}` shape a client
// encrypts into an Encrypted Container's plaintext. It is its own package,
// rather than living in anchorclient or anchorserver, so that both can
// depend on it without depending on each other.
package objectpayload

import "encoding/json"

// Payload is the decrypted content of an object: a MIME type alongside
// the raw bytes. encoding/json marshals []byte as base64 automatically.
type Payload struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Marshal renders p as the bytes an Encrypted Container should encrypt.
func Marshal(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal parses container plaintext back into a Payload.
func Unmarshal(data []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(data, &p)
	return p, err
}
