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

package fastdef

// Instruction is one node of a finalized template tree: a scalar field or
// a composite (Group, Sequence, TemplateReference, or a Decimal with
// mantissa/exponent sub-instructions).
type Instruction struct {
	ID           uint32
	Name         string
	ValueType    ValueKind
	Presence     Presence
	Operator     OperatorKind
	Initial      *Value
	Instructions []*Instruction // children; empty for plain scalars
	Dictionary   DictScope
	Key          string // interned dictionary lookup key
	TypeRef      TypeRef

	// hasPmap is written exactly once, by the finalizer, and is read-only
	// thereafter. It answers "does decoding this composite's body read a
	// fresh presence map segment, or does it ride on the enclosing one?"
	hasPmap    bool
	finalized  bool
}

// HasPmap reports whether this composite instruction's body is its own
// presence-map segment. Meaningless (and unset) for plain scalars and for
// TemplateReference nodes, per spec.
func (i *Instruction) HasPmap() bool { return i.hasPmap }

// Finalized reports whether the finalizer has visited this instruction yet.
func (i *Instruction) Finalized() bool { return i.finalized }

// TemplateIDField is the reserved name of the synthetic template-id
// instruction used to read outer and dynamic template ids.
const TemplateIDField = "__template_id__"

func newTemplateIDInstruction() *Instruction {
	return &Instruction{
		Name:      TemplateIDField,
		ValueType: UInt32,
		Presence:  Mandatory,
		Operator:  OpCopy,
		Dictionary: ScopeGlobal,
		Key:       TemplateIDField,
		TypeRef:   AnyType,
		finalized: true,
	}
}

// Template is a named, optionally numbered root of an instruction tree.
type Template struct {
	ID           uint32
	Name         string
	Dictionary   DictScope
	TypeRef      TypeRef
	Instructions []*Instruction

	requirePmap   bool
	requirePmapOK bool
}

// RequirePmap returns the finalized "does one message of this template
// consume an outer presence-map bit" flag, and whether the finalizer has run.
func (t *Template) RequirePmap() (require bool, ok bool) {
	return t.requirePmap, t.requirePmapOK
}
