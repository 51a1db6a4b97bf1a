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

package fastdecode

import (
	"github.com/cockroachdb/apd/v2"

	"github.com/narad-muni/fastlib-go/fastdef"
)

// extractField runs instr's operator, switching the dictionary scope to
// instr.Dictionary for the duration (spec.md §4.4's "inside a local
// dictionary switch"), and returns the extracted optional<Value>.
func (s *decodeState) extractField(instr *fastdef.Instruction) (*fastdef.Value, error) {
	pushed := s.switchDictionary(instr.Dictionary)
	v, err := s.extract(instr)
	if pushed {
		s.restoreDictionary()
	}
	return v, err
}

func (s *decodeState) extract(instr *fastdef.Instruction) (*fastdef.Value, error) {
	switch instr.Operator {
	case fastdef.OpNone:
		return s.extractNone(instr)
	case fastdef.OpConstant:
		return s.extractConstant(instr)
	case fastdef.OpDefault:
		return s.extractDefault(instr)
	case fastdef.OpCopy:
		return s.extractCopy(instr)
	case fastdef.OpIncrement:
		return s.extractIncrement(instr)
	case fastdef.OpDelta:
		return s.extractDelta(instr)
	case fastdef.OpTail:
		return s.extractTail(instr)
	default:
		return nil, newDecodeError("", instr.Name, "unknown operator %s", instr.Operator)
	}
}

func (s *decodeState) extractNone(instr *fastdef.Instruction) (*fastdef.Value, error) {
	nullable := instr.Presence == fastdef.Optional
	v, err := s.readRaw(instr, nullable)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read field %q", instr.Name)
	}
	return v, nil
}

func (s *decodeState) extractConstant(instr *fastdef.Instruction) (*fastdef.Value, error) {
	if instr.Presence == fastdef.Mandatory {
		return valueClone(instr.Initial), nil
	}
	bit, err := s.pmapNextBit()
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read presence bit for %q", instr.Name)
	}
	if !bit {
		return nil, nil
	}
	return valueClone(instr.Initial), nil
}

func (s *decodeState) extractDefault(instr *fastdef.Instruction) (*fastdef.Value, error) {
	bit, err := s.pmapNextBit()
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read presence bit for %q", instr.Name)
	}
	if bit {
		v, err := s.readRaw(instr, false)
		if err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "read field %q", instr.Name)
		}
		return v, nil
	}
	return valueClone(instr.Initial), nil
}

func (s *decodeState) extractCopy(instr *fastdef.Instruction) (*fastdef.Value, error) {
	bit, err := s.pmapNextBit()
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read presence bit for %q", instr.Name)
	}
	if bit {
		v, err := s.readRaw(instr, false)
		if err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "read field %q", instr.Name)
		}
		if err := s.dictSet(instr.Key, v); err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
		}
		return v, nil
	}
	return s.previousOrInitial(instr)
}

func (s *decodeState) extractIncrement(instr *fastdef.Instruction) (*fastdef.Value, error) {
	bit, err := s.pmapNextBit()
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read presence bit for %q", instr.Name)
	}
	if bit {
		v, err := s.readRaw(instr, false)
		if err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "read field %q", instr.Name)
		}
		if err := s.dictSet(instr.Key, v); err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
		}
		return v, nil
	}

	prev, found, err := s.dictGet(instr.Key)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read dictionary value for %q", instr.Name)
	}
	if !found {
		v, err := s.previousOrInitial(instr)
		if err != nil || v == nil {
			return v, err
		}
		if err := s.dictSet(instr.Key, v); err != nil {
			return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
		}
		return v, nil
	}

	next := increment(prev)
	if err := s.dictSet(instr.Key, next); err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
	}
	return next, nil
}

func (s *decodeState) extractDelta(instr *fastdef.Instruction) (*fastdef.Value, error) {
	// Unsigned fields carry a signed delta, which applyDelta reads from the
	// Int32/Int64 payload.
	var delta *fastdef.Value
	var err error
	switch instr.ValueType {
	case fastdef.UInt32:
		var d int32
		d, _, err = s.r.ReadInt32(false)
		delta = &fastdef.Value{Kind: fastdef.Int32, Int32: d}
	case fastdef.UInt64:
		var d int64
		d, _, err = s.r.ReadInt64(false)
		delta = &fastdef.Value{Kind: fastdef.Int64, Int64: d}
	default:
		delta, err = s.readRaw(instr, false)
	}
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read delta for %q", instr.Name)
	}

	base, found, err := s.dictGet(instr.Key)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read dictionary base for %q", instr.Name)
	}
	if !found {
		if instr.Initial != nil {
			base = instr.Initial
		} else {
			base = zeroValue(instr.ValueType)
		}
	}

	result, err := applyDelta(base, delta)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "apply delta for %q", instr.Name)
	}
	if err := s.dictSet(instr.Key, result); err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
	}
	return result, nil
}

func (s *decodeState) extractTail(instr *fastdef.Instruction) (*fastdef.Value, error) {
	bit, err := s.pmapNextBit()
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read presence bit for %q", instr.Name)
	}
	if !bit {
		return s.previousOrInitial(instr)
	}

	tail, err := s.readRaw(instr, false)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read tail for %q", instr.Name)
	}

	base, found, err := s.dictGet(instr.Key)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read dictionary base for %q", instr.Name)
	}
	if !found {
		if instr.Initial != nil {
			base = instr.Initial
		} else {
			base = zeroValue(instr.ValueType)
		}
	}

	result := spliceTail(base, tail)
	if err := s.dictSet(instr.Key, result); err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "store dictionary value for %q", instr.Name)
	}
	return result, nil
}

// previousOrInitial implements the rule shared by Copy's bit=0 case,
// Increment's empty-slot fallback, and Tail's bit=0 case: return the
// stored value, else the instruction's initial value, else None if
// optional, else a dictionary-slot-empty decode error.
func (s *decodeState) previousOrInitial(instr *fastdef.Instruction) (*fastdef.Value, error) {
	prev, found, err := s.dictGet(instr.Key)
	if err != nil {
		return nil, wrapDecodeError(err, "", instr.Name, "read dictionary value for %q", instr.Name)
	}
	if found {
		return prev, nil
	}
	if instr.Initial != nil {
		return valueClone(instr.Initial), nil
	}
	if instr.Presence == fastdef.Optional {
		return nil, nil
	}
	return nil, &DecodeError{Field: instr.Name, cause: &ErrDictionarySlotEmpty{Field: instr.Name}}
}

func (s *decodeState) readRaw(instr *fastdef.Instruction, nullable bool) (*fastdef.Value, error) {
	switch instr.ValueType {
	case fastdef.Int32:
		v, isNull, err := s.r.ReadInt32(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.Int32, Int32: v}, nil
	case fastdef.UInt32:
		v, isNull, err := s.r.ReadUint32(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.UInt32, UInt32: v}, nil
	case fastdef.Int64:
		v, isNull, err := s.r.ReadInt64(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.Int64, Int64: v}, nil
	case fastdef.UInt64:
		v, isNull, err := s.r.ReadUint64(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.UInt64, UInt64: v}, nil
	case fastdef.AsciiString:
		v, isNull, err := s.r.ReadAscii(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.AsciiString, Str: v}, nil
	case fastdef.UnicodeString:
		v, isNull, err := s.r.ReadUnicode(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.UnicodeString, Str: v}, nil
	case fastdef.ByteVector:
		v, isNull, err := s.r.ReadBytes(nullable)
		if err != nil || isNull {
			return nil, err
		}
		return &fastdef.Value{Kind: fastdef.ByteVector, Bytes: v}, nil
	case fastdef.DecimalKind:
		if len(instr.Instructions) == 0 {
			v, isNull, err := s.r.ReadDecimal(nullable)
			if err != nil || isNull {
				return nil, err
			}
			return &fastdef.Value{Kind: fastdef.DecimalKind, Decimal: v}, nil
		}
		return s.readDecimalComposite(instr)
	default:
		return nil, newDecodeError("", instr.Name, "value kind %s has no scalar extractor", instr.ValueType)
	}
}

// readDecimalComposite handles a Decimal instruction whose exponent and
// mantissa sub-fields each carry their own operator: children[0] is the
// exponent (Int32), children[1] the mantissa (Int64), each extracted
// through the normal operator pathway (so e.g. the exponent can be
// Constant while the mantissa is Delta).
func (s *decodeState) readDecimalComposite(instr *fastdef.Instruction) (*fastdef.Value, error) {
	if len(instr.Instructions) < 2 {
		return nil, newDecodeError("", instr.Name, "decimal %q needs exponent and mantissa sub-instructions", instr.Name)
	}
	expField, err := s.extractField(instr.Instructions[0])
	if err != nil {
		return nil, err
	}
	if expField == nil {
		return nil, nil
	}
	mantField, err := s.extractField(instr.Instructions[1])
	if err != nil {
		return nil, err
	}
	if mantField == nil {
		return nil, nil
	}
	return &fastdef.Value{Kind: fastdef.DecimalKind, Decimal: apd.New(mantField.Int64, expField.Int32)}, nil
}

func valueClone(v *fastdef.Value) *fastdef.Value {
	if v == nil {
		return nil
	}
	clone := *v
	if v.Decimal != nil {
		clone.Decimal = new(apd.Decimal).Set(v.Decimal)
	}
	if v.Bytes != nil {
		clone.Bytes = append([]byte(nil), v.Bytes...)
	}
	return &clone
}

func zeroValue(kind fastdef.ValueKind) *fastdef.Value {
	switch kind {
	case fastdef.DecimalKind:
		return &fastdef.Value{Kind: kind, Decimal: apd.New(0, 0)}
	default:
		return &fastdef.Value{Kind: kind}
	}
}

func increment(v *fastdef.Value) *fastdef.Value {
	switch v.Kind {
	case fastdef.Int32:
		return &fastdef.Value{Kind: v.Kind, Int32: v.Int32 + 1}
	case fastdef.UInt32:
		return &fastdef.Value{Kind: v.Kind, UInt32: v.UInt32 + 1}
	case fastdef.Int64:
		return &fastdef.Value{Kind: v.Kind, Int64: v.Int64 + 1}
	case fastdef.UInt64:
		return &fastdef.Value{Kind: v.Kind, UInt64: v.UInt64 + 1}
	case fastdef.DecimalKind:
		one := apd.New(1, 0)
		sum := new(apd.Decimal)
		ctx := apd.BaseContext.WithPrecision(64)
		_, _ = ctx.Add(sum, v.Decimal, one)
		return &fastdef.Value{Kind: v.Kind, Decimal: sum}
	default:
		return valueClone(v)
	}
}

func applyDelta(base, delta *fastdef.Value) (*fastdef.Value, error) {
	switch base.Kind {
	case fastdef.Int32:
		return &fastdef.Value{Kind: base.Kind, Int32: base.Int32 + delta.Int32}, nil
	case fastdef.UInt32:
		return &fastdef.Value{Kind: base.Kind, UInt32: base.UInt32 + uint32(int32(delta.Int32))}, nil
	case fastdef.Int64:
		return &fastdef.Value{Kind: base.Kind, Int64: base.Int64 + delta.Int64}, nil
	case fastdef.UInt64:
		return &fastdef.Value{Kind: base.Kind, UInt64: base.UInt64 + uint64(delta.Int64)}, nil
	case fastdef.DecimalKind:
		sum := new(apd.Decimal)
		ctx := apd.BaseContext.WithPrecision(64)
		if _, err := ctx.Add(sum, base.Decimal, delta.Decimal); err != nil {
			return nil, err
		}
		return &fastdef.Value{Kind: base.Kind, Decimal: sum}, nil
	case fastdef.AsciiString, fastdef.UnicodeString:
		return &fastdef.Value{Kind: base.Kind, Str: spliceTailString(base.Str, delta.Str)}, nil
	case fastdef.ByteVector:
		return &fastdef.Value{Kind: base.Kind, Bytes: []byte(spliceTailString(string(base.Bytes), string(delta.Bytes)))}, nil
	default:
		return nil, newDecodeError("", "", "delta operator not defined for value kind %s", base.Kind)
	}
}

// spliceTail implements the Tail operator's "splice onto base" rule for
// the string/byte kinds it applies to.
func spliceTail(base, tail *fastdef.Value) *fastdef.Value {
	switch base.Kind {
	case fastdef.AsciiString, fastdef.UnicodeString:
		return &fastdef.Value{Kind: base.Kind, Str: spliceTailString(base.Str, tail.Str)}
	case fastdef.ByteVector:
		return &fastdef.Value{Kind: base.Kind, Bytes: []byte(spliceTailString(string(base.Bytes), string(tail.Bytes)))}
	default:
		return valueClone(tail)
	}
}

// spliceTailString keeps the leading len(base)-len(tail) bytes of base
// (or none, if tail is at least as long as base) and appends tail: the
// transmitted tail always replaces a suffix of the base value, with its
// own length determining how much of the prefix survives.
func spliceTailString(base, tail string) string {
	prefixLen := len(base) - len(tail)
	if prefixLen < 0 {
		prefixLen = 0
	}
	return base[:prefixLen] + tail
}
