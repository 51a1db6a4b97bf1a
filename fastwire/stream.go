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
	"bufio"
	"io"

	"github.com/cockroachdb/apd/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// StreamReader implements Reader over a stop-bit encoded byte stream,
// grounded in the teacher's variable-length-encoding reader: each byte
// contributes 7 payload bits, the top bit (0x80) is a stop marker set on
// the last byte of the field.
//
// Strings and byte vectors are length-prefixed with a stop-bit UInt32
// (nullable per the field's own nullability) rather than byte-terminated;
// this is a deliberate simplification of the real format's ASCII framing,
// acceptable because the exact wire primitives are an out-of-scope
// collaborator (spec.md §1) and the spec's testable scenarios exercise
// only UInt32 fields.
type StreamReader struct {
	r *bufio.Reader
}

// NewStreamReader wraps r for stop-bit decoding.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r)}
}

var _ Reader = (*StreamReader)(nil)

func (r *StreamReader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(err, "fast: read stream byte")
	}
	return b, nil
}

func (r *StreamReader) readUintRaw() (uint64, error) {
	var v uint64
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 != 0 {
			return v, nil
		}
	}
}

func (r *StreamReader) readIntRaw() (int64, error) {
	var v int64
	first := true
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		if first {
			if b&0x40 != 0 {
				v = int64(b&0x7f) - 0x80
			} else {
				v = int64(b & 0x7f)
			}
			first = false
		} else {
			v = (v << 7) | int64(b&0x7f)
		}
		if b&0x80 != 0 {
			return v, nil
		}
	}
}

// ReadPresenceMap reads bytes until one sets the stop bit, emitting the 7
// payload bits of each byte MSB-first.
func (r *StreamReader) ReadPresenceMap() (PresenceMap, error) {
	var bits []bool
	for {
		b, err := r.readByte()
		if err != nil {
			return PresenceMap{}, errors.Wrap(err, "fast: read presence map")
		}
		for i := 6; i >= 0; i-- {
			bits = append(bits, b&(1<<uint(i)) != 0)
		}
		if b&0x80 != 0 {
			break
		}
	}
	return PresenceMap{bits: bits}, nil
}

func (r *StreamReader) ReadUint32(nullable bool) (uint32, bool, error) {
	raw, err := r.readUintRaw()
	if err != nil {
		return 0, false, err
	}
	if nullable {
		if raw == 0 {
			return 0, true, nil
		}
		raw--
	}
	return uint32(raw), false, nil
}

func (r *StreamReader) ReadUint64(nullable bool) (uint64, bool, error) {
	raw, err := r.readUintRaw()
	if err != nil {
		return 0, false, err
	}
	if nullable {
		if raw == 0 {
			return 0, true, nil
		}
		raw--
	}
	return raw, false, nil
}

func (r *StreamReader) ReadInt32(nullable bool) (int32, bool, error) {
	raw, err := r.readIntRaw()
	if err != nil {
		return 0, false, err
	}
	if nullable {
		if raw == 0 {
			return 0, true, nil
		}
		if raw > 0 {
			raw--
		}
	}
	return int32(raw), false, nil
}

func (r *StreamReader) ReadInt64(nullable bool) (int64, bool, error) {
	raw, err := r.readIntRaw()
	if err != nil {
		return 0, false, err
	}
	if nullable {
		if raw == 0 {
			return 0, true, nil
		}
		if raw > 0 {
			raw--
		}
	}
	return raw, false, nil
}

func (r *StreamReader) readFramed(nullable bool) ([]byte, bool, error) {
	n, isNull, err := r.ReadUint32(nullable)
	if err != nil {
		return nil, false, err
	}
	if isNull {
		return nil, true, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, false, errors.Wrap(err, "fast: read framed payload")
	}
	return buf, false, nil
}

func (r *StreamReader) ReadAscii(nullable bool) (string, bool, error) {
	buf, isNull, err := r.readFramed(nullable)
	if err != nil || isNull {
		return "", isNull, err
	}
	return string(buf), false, nil
}

// ReadUnicode reads a length-framed UTF-8 payload and normalizes it to
// Unicode Normalization Form C, so two byte-distinct but
// canonically-equivalent strings decode identically.
func (r *StreamReader) ReadUnicode(nullable bool) (string, bool, error) {
	buf, isNull, err := r.readFramed(nullable)
	if err != nil || isNull {
		return "", isNull, err
	}
	return norm.NFC.String(string(buf)), false, nil
}

func (r *StreamReader) ReadBytes(nullable bool) ([]byte, bool, error) {
	return r.readFramed(nullable)
}

// ReadDecimal reads a stop-bit Int32 exponent (the nullable one, per
// spec.md's "standard nullable-plus-one" rule) followed by a mandatory
// stop-bit Int64 mantissa.
func (r *StreamReader) ReadDecimal(nullable bool) (*apd.Decimal, bool, error) {
	exp, isNull, err := r.ReadInt32(nullable)
	if err != nil {
		return nil, false, err
	}
	if isNull {
		return nil, true, nil
	}
	mant, _, err := r.ReadInt64(false)
	if err != nil {
		return nil, false, err
	}
	return apd.New(mant, exp), false, nil
}
