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

// finalize walks every template's instruction forest exactly once,
// computing require_pmap for each template and has_pmap for every
// composite instruction. It must visit every node even when a parent's
// answer is already known, because the same walk sets has_pmap on inner
// composites for the dispatcher to use later.
func finalize(d *Definitions) error {
	for _, t := range d.Templates {
		need, err := requirePmapFor(d, t.Instructions)
		if err != nil {
			return err
		}
		t.requirePmap = need
		t.requirePmapOK = true
	}
	return nil
}

// requirePmapFor ORs contributesBit over a sibling instruction list. No
// early exit: every instruction must be visited so its own has_pmap gets
// set, even once the OR result is already known to be true.
func requirePmapFor(d *Definitions, instructions []*Instruction) (bool, error) {
	has := false
	for _, ins := range instructions {
		bit, err := contributesBit(d, ins)
		if err != nil {
			return false, err
		}
		if bit {
			has = true
		}
	}
	return has, nil
}

// setHasPmap recurses into the children relevant to instr's kind (if any)
// and records whether that nested body needs its own presence-map
// segment. A no-op for plain scalars, which have no children.
func setHasPmap(d *Definitions, instr *Instruction) error {
	var children []*Instruction
	switch instr.ValueType {
	case Group, TemplateReference, DecimalKind:
		children = instr.Instructions
	case Sequence:
		if len(instr.Instructions) == 0 {
			return NewSchemaError("sequence %q has no length field", instr.Name)
		}
		children = instr.Instructions[1:]
	default:
		instr.finalized = true
		return nil
	}
	need, err := requirePmapFor(d, children)
	if err != nil {
		return err
	}
	instr.hasPmap = need
	instr.finalized = true
	return nil
}

// contributesBit is the per-instruction predicate from spec.md §4.1: does
// decoding instr consume one bit of its *enclosing* presence map.
func contributesBit(d *Definitions, instr *Instruction) (bool, error) {
	if err := setHasPmap(d, instr); err != nil {
		return false, err
	}

	switch instr.ValueType {
	case Group:
		// Mandatory groups always emit a segment when has_pmap, but never
		// consume an outer bit; only an optional group does.
		return instr.Presence == Optional, nil

	case Sequence:
		// The length field governs the outer bit.
		return contributesBit(d, instr.Instructions[0])

	case TemplateReference:
		if instr.Name == "" {
			// Dynamic: carries its own fresh presence map at decode time.
			return false, nil
		}
		ref, ok := d.ByName[instr.Name]
		if !ok {
			return false, NewSchemaError("template reference %q: no such template", instr.Name)
		}
		need, ok := ref.RequirePmap()
		if !ok {
			return false, NewSchemaError(
				"template reference %q: target not finalized yet; reorder templates", instr.Name)
		}
		return need, nil

	case DecimalKind:
		if instr.hasPmap {
			// Subcomponents alone force an outer bit.
			return true, nil
		}
		// Otherwise fall through to the scalar-by-operator rule below.
	}

	return scalarContributesBit(instr), nil
}

// scalarContributesBit is the operator truth table from spec.md §4.1,
// also used as the Decimal fall-through when its subcomponents don't
// already force a bit.
func scalarContributesBit(instr *Instruction) bool {
	switch instr.Operator {
	case OpNone, OpDelta:
		return false
	case OpConstant:
		return instr.Presence == Optional
	default: // Default, Copy, Increment, Tail
		return true
	}
}
