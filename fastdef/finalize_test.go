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

import "testing"

func scalarField(name string, op OperatorKind, presence Presence) *Instruction {
	return &Instruction{
		Name:      name,
		ValueType: UInt32,
		Presence:  presence,
		Operator:  op,
		Key:       name,
	}
}

func TestScalarContributesBitTruthTable(t *testing.T) {
	cases := []struct {
		op       OperatorKind
		presence Presence
		want     bool
	}{
		{OpNone, Mandatory, false},
		{OpNone, Optional, false},
		{OpDelta, Mandatory, false},
		{OpDelta, Optional, false},
		{OpDefault, Mandatory, true},
		{OpCopy, Mandatory, true},
		{OpIncrement, Mandatory, true},
		{OpTail, Mandatory, true},
		{OpConstant, Mandatory, false},
		{OpConstant, Optional, true},
	}
	for _, c := range cases {
		got := scalarContributesBit(scalarField("f", c.op, c.presence))
		if got != c.want {
			t.Errorf("op=%v presence=%v: got %v, want %v", c.op, c.presence, got, c.want)
		}
	}
}

func TestFinalizeSequenceLengthGovernsOuterBit(t *testing.T) {
	length := scalarField("len", OpCopy, Mandatory)
	elem := scalarField("v", OpCopy, Mandatory)
	seq := &Instruction{
		Name:         "s",
		ValueType:    Sequence,
		Presence:     Mandatory,
		Instructions: []*Instruction{length, elem},
	}
	tmpl := &Template{ID: 3, Instructions: []*Instruction{seq}}

	defs, err := NewFromTemplates([]*Template{tmpl})
	if err != nil {
		t.Fatal(err)
	}
	if !seq.HasPmap() {
		t.Error("sequence body should require its own presence map because elem is Copy")
	}
	need, ok := tmpl.RequirePmap()
	if !ok || !need {
		t.Errorf("template require_pmap = (%v, %v), want (true, true)", need, ok)
	}
	_ = defs
}

func TestFinalizeSequenceMissingLengthFieldIsSchemaError(t *testing.T) {
	seq := &Instruction{Name: "s", ValueType: Sequence}
	tmpl := &Template{ID: 1, Instructions: []*Instruction{seq}}
	if _, err := NewFromTemplates([]*Template{tmpl}); err == nil {
		t.Fatal("expected schema error for sequence with no length field")
	}
}

func TestFinalizeStaticReferenceInheritsPmap(t *testing.T) {
	// Scenario D: template "A" statically references template "B", whose
	// only field is a Copy UInt32. A.require_pmap must be true.
	b := &Template{
		Name:         "B",
		Instructions: []*Instruction{scalarField("y", OpCopy, Mandatory)},
	}
	ref := &Instruction{Name: "B", ValueType: TemplateReference}
	a := &Template{
		Name:         "A",
		Instructions: []*Instruction{ref},
	}

	if _, err := NewFromTemplates([]*Template{b, a}); err != nil {
		t.Fatal(err)
	}
	need, ok := a.RequirePmap()
	if !ok || !need {
		t.Errorf("A.require_pmap = (%v, %v), want (true, true)", need, ok)
	}
}

func TestFinalizeForwardReferenceIsSchemaError(t *testing.T) {
	// B is declared after A; A's reference to B must fail, not succeed.
	ref := &Instruction{Name: "B", ValueType: TemplateReference}
	a := &Template{Name: "A", Instructions: []*Instruction{ref}}
	b := &Template{Name: "B", Instructions: []*Instruction{scalarField("y", OpCopy, Mandatory)}}

	if _, err := NewFromTemplates([]*Template{a, b}); err == nil {
		t.Fatal("expected schema error for forward named reference")
	}
}

func TestFinalizeUnknownReferenceIsSchemaError(t *testing.T) {
	ref := &Instruction{Name: "Missing", ValueType: TemplateReference}
	a := &Template{Name: "A", Instructions: []*Instruction{ref}}
	if _, err := NewFromTemplates([]*Template{a}); err == nil {
		t.Fatal("expected schema error for unknown named reference")
	}
}

func TestFinalizeDynamicReferenceContributesNoBit(t *testing.T) {
	ref := &Instruction{Name: "", ValueType: TemplateReference}
	tmpl := &Template{ID: 1, Instructions: []*Instruction{ref}}
	defs, err := NewFromTemplates([]*Template{tmpl})
	if err != nil {
		t.Fatal(err)
	}
	need, ok := tmpl.RequirePmap()
	if !ok || need {
		t.Errorf("dynamic-ref-only template require_pmap = (%v, %v), want (false, true)", need, ok)
	}
	_ = defs
}

func TestFinalizeDecimalSubcomponentsForceOuterBit(t *testing.T) {
	exp := scalarField("exponent", OpCopy, Mandatory)
	mant := scalarField("mantissa", OpNone, Mandatory)
	dec := &Instruction{
		Name:         "price",
		ValueType:    DecimalKind,
		Presence:     Mandatory,
		Operator:     OpNone,
		Instructions: []*Instruction{exp, mant},
	}
	tmpl := &Template{ID: 1, Instructions: []*Instruction{dec}}
	if _, err := NewFromTemplates([]*Template{tmpl}); err != nil {
		t.Fatal(err)
	}
	if !dec.HasPmap() {
		t.Fatal("decimal with a Copy subcomponent should have has_pmap = true")
	}
	need, _ := tmpl.RequirePmap()
	if !need {
		t.Error("decimal subcomponents should force the outer template bit")
	}
}

func TestFinalizeOptionalGroupContributesBitMandatoryDoesNot(t *testing.T) {
	inner := scalarField("y", OpNone, Mandatory)
	optGroup := &Instruction{Name: "g", ValueType: Group, Presence: Optional, Instructions: []*Instruction{inner}}
	manGroup := &Instruction{Name: "g2", ValueType: Group, Presence: Mandatory, Instructions: []*Instruction{inner}}

	tOpt := &Template{ID: 1, Instructions: []*Instruction{optGroup}}
	tMan := &Template{ID: 2, Instructions: []*Instruction{manGroup}}

	if _, err := NewFromTemplates([]*Template{tOpt, tMan}); err != nil {
		t.Fatal(err)
	}
	need, _ := tOpt.RequirePmap()
	if !need {
		t.Error("optional group should contribute an outer bit")
	}
	need2, _ := tMan.RequirePmap()
	if need2 {
		t.Error("mandatory group should not contribute an outer bit")
	}
}
