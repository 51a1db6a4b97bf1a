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

// Package fastdef holds the static, finalized description of a set of
// FAST templates: the instruction tree and the value/operator/scope enums
// that drive decoding. Everything here is read-only once the finalizer has run.
package fastdef

import (
	"fmt"

	"github.com/cockroachdb/apd/v2"
)

// ValueKind is the closed set of field value types a template can declare.
type ValueKind int

const (
	Int32 ValueKind = iota
	UInt32
	Int64
	UInt64
	DecimalKind
	AsciiString
	UnicodeString
	ByteVector
	Group
	Sequence
	TemplateReference
)

func (k ValueKind) String() string {
	switch k {
	case Int32:
		return "int32"
	case UInt32:
		return "uInt32"
	case Int64:
		return "int64"
	case UInt64:
		return "uInt64"
	case DecimalKind:
		return "decimal"
	case AsciiString:
		return "asciiString"
	case UnicodeString:
		return "unicodeString"
	case ByteVector:
		return "byteVector"
	case Group:
		return "group"
	case Sequence:
		return "sequence"
	case TemplateReference:
		return "templateRef"
	default:
		return fmt.Sprintf("valueKind(%d)", int(k))
	}
}

// IsComposite reports whether a value kind nests child instructions.
func (k ValueKind) IsComposite() bool {
	switch k {
	case Group, Sequence, TemplateReference, DecimalKind:
		return true
	default:
		return false
	}
}

// OperatorKind is the closed set of field operators.
type OperatorKind int

const (
	OpNone OperatorKind = iota
	OpConstant
	OpDefault
	OpCopy
	OpIncrement
	OpDelta
	OpTail
)

func (o OperatorKind) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpConstant:
		return "constant"
	case OpDefault:
		return "default"
	case OpCopy:
		return "copy"
	case OpIncrement:
		return "increment"
	case OpDelta:
		return "delta"
	case OpTail:
		return "tail"
	default:
		return fmt.Sprintf("operator(%d)", int(o))
	}
}

// Presence distinguishes mandatory from optional fields and groups.
type Presence int

const (
	Mandatory Presence = iota
	Optional
)

func (p Presence) String() string {
	if p == Optional {
		return "optional"
	}
	return "mandatory"
}

// DictScopeKind is the tagged union discriminant for DictScope.
type DictScopeKind int

const (
	DictInherit DictScopeKind = iota
	DictGlobal
	DictTemplate
	DictType
	DictUserDefined
)

// DictScope selects the dictionary keyspace used by Copy/Increment/Delta/Tail.
// Inherit means "do not change the current scope" and is never pushed onto
// the dictionary context stack.
type DictScope struct {
	Kind DictScopeKind
	Name string // only meaningful when Kind == DictUserDefined
}

var (
	ScopeInherit  = DictScope{Kind: DictInherit}
	ScopeGlobal   = DictScope{Kind: DictGlobal}
	ScopeTemplate = DictScope{Kind: DictTemplate}
	ScopeType     = DictScope{Kind: DictType}
)

// ScopeUserDefined returns the DictScope for a named user dictionary.
func ScopeUserDefined(name string) DictScope {
	return DictScope{Kind: DictUserDefined, Name: name}
}

func (s DictScope) String() string {
	switch s.Kind {
	case DictInherit:
		return "inherit"
	case DictGlobal:
		return "global"
	case DictTemplate:
		return "template"
	case DictType:
		return "type"
	case DictUserDefined:
		return "user:" + s.Name
	default:
		return "unknown"
	}
}

// TypeRefKind is the tagged union discriminant for TypeRef.
type TypeRefKind int

const (
	TypeRefAny TypeRefKind = iota
	TypeRefApplication
)

// TypeRef names the current application type, used to scope Type dictionaries.
type TypeRef struct {
	Kind TypeRefKind
	Name string // only meaningful when Kind == TypeRefApplication
}

// AnyType is the type reference all decoding starts with.
var AnyType = TypeRef{Kind: TypeRefAny}

// ApplicationType returns the TypeRef naming a specific application type.
func ApplicationType(name string) TypeRef {
	return TypeRef{Kind: TypeRefApplication, Name: name}
}

func (t TypeRef) String() string {
	if t.Kind == TypeRefApplication {
		return t.Name
	}
	return "any"
}

// Value is a tagged union over the ground types a field can carry. A nil
// *Value in a field-return position represents the format's "absent"
// marker (spec's optional<Value>).
type Value struct {
	Kind    ValueKind
	Int32   int32
	UInt32  uint32
	Int64   int64
	UInt64  uint64
	Decimal *apd.Decimal
	Str     string
	Bytes   []byte
}

// Equal reports whether two values carry the same kind and payload. The
// extract operators do not call it; tests use it to compare values.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Int32:
		return v.Int32 == o.Int32
	case UInt32:
		return v.UInt32 == o.UInt32
	case Int64:
		return v.Int64 == o.Int64
	case UInt64:
		return v.UInt64 == o.UInt64
	case DecimalKind:
		if v.Decimal == nil || o.Decimal == nil {
			return v.Decimal == o.Decimal
		}
		return v.Decimal.Cmp(o.Decimal) == 0
	case AsciiString, UnicodeString:
		return v.Str == o.Str
	case ByteVector:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v *Value) String() string {
	if v == nil {
		return "<absent>"
	}
	switch v.Kind {
	case Int32:
		return fmt.Sprintf("%d", v.Int32)
	case UInt32:
		return fmt.Sprintf("%d", v.UInt32)
	case Int64:
		return fmt.Sprintf("%d", v.Int64)
	case UInt64:
		return fmt.Sprintf("%d", v.UInt64)
	case DecimalKind:
		if v.Decimal == nil {
			return "<nil decimal>"
		}
		return v.Decimal.String()
	case AsciiString, UnicodeString:
		return v.Str
	case ByteVector:
		return fmt.Sprintf("% x", v.Bytes)
	default:
		return "<unknown>"
	}
}
