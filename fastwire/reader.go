// Copyright (C) 2026 The fastlib-go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fastwire defines the Reader boundary the decoder core reads
// through (spec.md §6) plus one concrete stop-bit implementation. The
// exact wire primitives (stop-bit integers, string/byte-vector framing,
// decimal encoding) are a collaborator, not part of the hard core; see
// DESIGN.md for the simplifications this implementation makes.
package fastwire

import (
	"github.com/cockroachdb/apd/v2"
	"github.com/pkg/errors"
)

// ErrPresenceMapOverread is returned by PresenceMap.NextBit once every bit
// has been consumed; spec.md requires over-reads to be a decode error.
var ErrPresenceMapOverread = errors.New("fast: presence map over-read")

// PresenceMap is a bitmap with an explicit length and a read cursor.
type PresenceMap struct {
	bits   []bool
	cursor int
}

// NewPresenceMap wraps an already-decoded bit slice, MSB-first as
// transmitted. Exported mainly for tests that want to drive the
// dispatcher without a byte-accurate wire reader.
func NewPresenceMap(bits []bool) PresenceMap {
	return PresenceMap{bits: bits}
}

// NextBit advances the cursor and returns the next bit. Reading past the
// end of the map is always a decode error, per spec.md §3.
func (p *PresenceMap) NextBit() (bool, error) {
	if p.cursor >= len(p.bits) {
		return false, ErrPresenceMapOverread
	}
	b := p.bits[p.cursor]
	p.cursor++
	return b, nil
}

// Len returns the number of bits in the map.
func (p *PresenceMap) Len() int { return len(p.bits) }

// Reader is the boundary the decoder core reads raw field values through.
// Every Read* method takes a nullable flag: when true, the format's
// standard nullable-plus-one encoding determines whether the returned
// value is absent.
type Reader interface {
	ReadPresenceMap() (PresenceMap, error)

	ReadUint32(nullable bool) (v uint32, isNull bool, err error)
	ReadInt32(nullable bool) (v int32, isNull bool, err error)
	ReadUint64(nullable bool) (v uint64, isNull bool, err error)
	ReadInt64(nullable bool) (v int64, isNull bool, err error)

	ReadAscii(nullable bool) (v string, isNull bool, err error)
	ReadUnicode(nullable bool) (v string, isNull bool, err error)
	ReadBytes(nullable bool) (v []byte, isNull bool, err error)

	ReadDecimal(nullable bool) (v *apd.Decimal, isNull bool, err error)
}
