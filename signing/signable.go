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

// Package signing implements the HTTPSignedField envelope: a canonical
// serialization of an ordered Signable sequence, extended with a nonce and
// timestamp, signed and verified with the caller's Account. Verification
// folds the fields into one buffer and applies a clock-skew check, the same
// shape as RFC 9421's signature-base construction.
package signing

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Field is one element of a Signable sequence.
type Field struct {
	kind  fieldKind
	str   string
	num   int64
	bytes []byte
	boo   bool
}

type fieldKind byte

const (
	kindString fieldKind = iota
	kindInt
	kindBytes
	kindBool
)

func String(v string) Field { return Field{kind: kindString, str: v} }
func Int(v int64) Field     { return Field{kind: kindInt, num: v} }
func Bytes(v []byte) Field  { return Field{kind: kindBytes, bytes: v} }
func Bool(v bool) Field     { return Field{kind: kindBool, boo: v} }

// Signable is a finite ordered sequence of primitive values.
type Signable []Field

func (f Field) appendTo(buf []byte) []byte {
	buf = append(buf, byte(f.kind))
	switch f.kind {
	case kindString:
		buf = appendLenPrefixed(buf, []byte(f.str))
	case kindInt:
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(f.num))
		buf = append(buf, n[:]...)
	case kindBytes:
		buf = appendLenPrefixed(buf, f.bytes)
	case kindBool:
		if f.boo {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func appendLenPrefixed(buf, data []byte) []byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(data)))
	buf = append(buf, n[:]...)
	buf = append(buf, data...)
	return buf
}

// canonicalize serializes fields as a length-prefixed concatenation so no
// separator-collision can make two distinct sequences hash identically —
// the same determinism discipline the Encrypted Container's DER encoding
// is held to.
func canonicalize(fields Signable) []byte {
	var buf []byte
	for _, f := range fields {
		buf = f.appendTo(buf)
	}
	return buf
}

// String renders a human-readable form, used only for debugging/logging —
// never for signing.
func (s Signable) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		switch f.kind {
		case kindString:
			parts[i] = f.str
		case kindInt:
			parts[i] = strconv.FormatInt(f.num, 10)
		case kindBytes:
			parts[i] = fmt.Sprintf("%x", f.bytes)
		case kindBool:
			parts[i] = strconv.FormatBool(f.boo)
		}
	}
	return fmt.Sprintf("%v", parts)
}
