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

package fastwire

import (
	"bytes"
	"testing"
)

func TestReadUint32StopBit(t *testing.T) {
	// 300 = 0b100101100 -> split into 7-bit groups: 0000010 0101100
	// first byte (no stop bit): 0000010, second byte (stop bit set): 0101100 | 0x80
	r := NewStreamReader(bytes.NewReader([]byte{0x02, 0b0101100 | 0x80}))
	v, isNull, err := r.ReadUint32(false)
	if err != nil {
		t.Fatal(err)
	}
	if isNull || v != 300 {
		t.Fatalf("got (%d, %v), want (300, false)", v, isNull)
	}
}

func TestReadUint32NullablePlusOne(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte{0x00 | 0x80})) // raw 0 -> null
	_, isNull, err := r.ReadUint32(true)
	if err != nil {
		t.Fatal(err)
	}
	if !isNull {
		t.Fatal("raw 0 on a nullable field should decode as null")
	}

	r2 := NewStreamReader(bytes.NewReader([]byte{0x01 | 0x80})) // raw 1 -> value 0
	v, isNull2, err := r2.ReadUint32(true)
	if err != nil {
		t.Fatal(err)
	}
	if isNull2 || v != 0 {
		t.Fatalf("got (%d, %v), want (0, false)", v, isNull2)
	}
}

func TestReadPresenceMapBits(t *testing.T) {
	// payload bits 6..0 = 1,1,0,0,0,0,0 (0x60), stop bit set (0x80) -> 0xE0
	r := NewStreamReader(bytes.NewReader([]byte{0xE0}))
	pm, err := r.ReadPresenceMap()
	if err != nil {
		t.Fatal(err)
	}
	if pm.Len() != 7 {
		t.Fatalf("got %d bits, want 7", pm.Len())
	}
	first, _ := pm.NextBit()
	second, _ := pm.NextBit()
	if !first || !second {
		t.Fatalf("first two bits = (%v, %v), want (true, true)", first, second)
	}
	third, _ := pm.NextBit()
	if third {
		t.Fatal("third bit should be false")
	}
}

func TestPresenceMapOverreadIsError(t *testing.T) {
	pm := NewPresenceMap([]bool{true})
	if _, err := pm.NextBit(); err != nil {
		t.Fatal(err)
	}
	if _, err := pm.NextBit(); err != ErrPresenceMapOverread {
		t.Fatalf("got %v, want ErrPresenceMapOverread", err)
	}
}

func TestReadInt32Negative(t *testing.T) {
	// -1 encodes as a single byte with 7-bit payload 0x7f (all ones), stop bit set.
	r := NewStreamReader(bytes.NewReader([]byte{0x7f | 0x80}))
	v, isNull, err := r.ReadInt32(false)
	if err != nil {
		t.Fatal(err)
	}
	if isNull || v != -1 {
		t.Fatalf("got (%d, %v), want (-1, false)", v, isNull)
	}
}
