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

// Package fastxml implements spec.md §6's "Template source" boundary:
// parsing a `<templates>` XML document into []*fastdef.Template and
// finalizing the result. It is a thin structural parser — no decoding
// semantics live here, only the tree-building the finalizer then checks.
package fastxml

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/cockroachdb/apd/v2"

	"github.com/narad-muni/fastlib-go/fastdef"
)

// Load parses a <templates> document and returns finalized Definitions.
// Structural mistakes (bad attributes, unknown elements) and finalizer
// failures (forward references, unknown names, ...) both come back as
// *fastdef's schema errors, per spec.md §7.
func Load(r io.Reader) (*fastdef.Definitions, error) {
	templates, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return fastdef.NewFromTemplates(templates)
}

// Parse builds the raw (unfinalized) template list without running the
// finalizer, for callers that want to inspect or mutate the tree first.
func Parse(r io.Reader) ([]*fastdef.Template, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, fastdef.WrapSchemaError(err, "reading root element")
	}
	if root == nil {
		return nil, fastdef.NewSchemaError("empty document: missing root element")
	}
	if root.Name.Local != "templates" {
		return nil, fastdef.NewSchemaError("wrong root element %q, want <templates>", root.Name.Local)
	}

	var templates []*fastdef.Template
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fastdef.WrapSchemaError(err, "reading templates body")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "template" {
				return nil, fastdef.NewSchemaError("unexpected element <%s> inside <templates>", t.Name.Local)
			}
			tmpl, err := parseTemplate(dec, t)
			if err != nil {
				return nil, err
			}
			templates = append(templates, tmpl)
		case xml.EndElement:
			if t.Name.Local == "templates" {
				return templates, nil
			}
		}
	}
	return templates, nil
}

func nextStart(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return &se, nil
		}
	}
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func parseUint32Attr(se xml.StartElement, name string, dflt uint32) (uint32, error) {
	s, ok := attr(se, name)
	if !ok || s == "" {
		return dflt, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fastdef.NewSchemaError("attribute %s=%q is not a valid uint32", name, s)
	}
	return uint32(n), nil
}

func parsePresence(se xml.StartElement) fastdef.Presence {
	if s, ok := attr(se, "presence"); ok && s == "optional" {
		return fastdef.Optional
	}
	return fastdef.Mandatory
}

func parseDictScope(se xml.StartElement) fastdef.DictScope {
	s, ok := attr(se, "dictionary")
	if !ok || s == "" {
		return fastdef.ScopeInherit
	}
	switch s {
	case "global":
		return fastdef.ScopeGlobal
	case "template":
		return fastdef.ScopeTemplate
	case "type":
		return fastdef.ScopeType
	default:
		return fastdef.ScopeUserDefined(s)
	}
}

func parseTypeRef(se xml.StartElement) fastdef.TypeRef {
	s, ok := attr(se, "typeRef")
	if !ok || s == "" {
		return fastdef.AnyType
	}
	return fastdef.ApplicationType(s)
}

func parseTemplate(dec *xml.Decoder, se xml.StartElement) (*fastdef.Template, error) {
	id, err := parseUint32Attr(se, "id", 0)
	if err != nil {
		return nil, err
	}
	name, _ := attr(se, "name")

	instructions, err := parseInstructionList(dec, se.Name)
	if err != nil {
		return nil, err
	}

	return &fastdef.Template{
		ID:           id,
		Name:         name,
		Dictionary:   parseDictScope(se),
		TypeRef:      parseTypeRef(se),
		Instructions: instructions,
	}, nil
}

// parseInstructionList consumes child elements of the currently-open
// element (whose name is `end`) until its matching EndElement, turning
// each child into one *fastdef.Instruction.
func parseInstructionList(dec *xml.Decoder, end xml.Name) ([]*fastdef.Instruction, error) {
	var out []*fastdef.Instruction
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fastdef.WrapSchemaError(err, "reading instruction list for <%s>", end.Local)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			instr, err := parseInstruction(dec, t)
			if err != nil {
				return nil, err
			}
			out = append(out, instr)
		case xml.EndElement:
			if t.Name == end {
				return out, nil
			}
		}
	}
}

var scalarKinds = map[string]fastdef.ValueKind{
	"int32":      fastdef.Int32,
	"uInt32":     fastdef.UInt32,
	"int64":      fastdef.Int64,
	"uInt64":     fastdef.UInt64,
	"decimal":    fastdef.DecimalKind,
	"string":     fastdef.AsciiString, // charset attribute may upgrade to UnicodeString
	"byteVector": fastdef.ByteVector,
}

func parseInstruction(dec *xml.Decoder, se xml.StartElement) (*fastdef.Instruction, error) {
	switch se.Name.Local {
	case "group":
		return parseGroup(dec, se)
	case "sequence":
		return parseSequence(dec, se)
	case "templateRef":
		return parseTemplateRef(dec, se)
	default:
		kind, ok := scalarKinds[se.Name.Local]
		if !ok {
			return nil, fastdef.NewSchemaError("unknown element <%s> in template body", se.Name.Local)
		}
		if se.Name.Local == "string" {
			if cs, ok := attr(se, "charset"); ok && cs == "unicode" {
				kind = fastdef.UnicodeString
			}
		}
		return parseScalar(dec, se, kind)
	}
}

func parseName(se xml.StartElement) string {
	name, _ := attr(se, "name")
	return name
}

func parseKey(se xml.StartElement, name string) string {
	if k, ok := attr(se, "key"); ok && k != "" {
		return k
	}
	return name
}

// parseScalar consumes a leaf field element. Its body, if any, is a single
// operator element (<none/>, <constant value=".."/>, <default value=".."/>,
// <copy/>, <increment/>, <delta/>, <tail/>); absent body means OpNone.
func parseScalar(dec *xml.Decoder, se xml.StartElement, kind fastdef.ValueKind) (*fastdef.Instruction, error) {
	id, err := parseUint32Attr(se, "id", 0)
	if err != nil {
		return nil, err
	}
	name := parseName(se)

	instr := &fastdef.Instruction{
		ID:        id,
		Name:      name,
		ValueType: kind,
		Presence:  parsePresence(se),
		Operator:  fastdef.OpNone,
		Dictionary: parseDictScope(se),
		Key:       parseKey(se, name),
		TypeRef:   parseTypeRef(se),
	}

	if kind == fastdef.DecimalKind {
		children, err := parseInstructionList(dec, se.Name)
		if err != nil {
			return nil, err
		}
		instr.Instructions = children
		return instr, nil
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fastdef.WrapSchemaError(err, "reading operator for field %q", name)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			op, initial, err := parseOperator(dec, t, kind)
			if err != nil {
				return nil, err
			}
			instr.Operator = op
			instr.Initial = initial
		case xml.EndElement:
			if t.Name == se.Name {
				return instr, nil
			}
		}
	}
}

func parseOperator(dec *xml.Decoder, se xml.StartElement, kind fastdef.ValueKind) (fastdef.OperatorKind, *fastdef.Value, error) {
	// operator elements are always empty; drain to their EndElement.
	defer drain(dec, se.Name)

	switch se.Name.Local {
	case "none":
		return fastdef.OpNone, nil, nil
	case "copy":
		return fastdef.OpCopy, nil, nil
	case "increment":
		return fastdef.OpIncrement, nil, nil
	case "delta":
		return fastdef.OpDelta, nil, nil
	case "tail":
		return fastdef.OpTail, nil, nil
	case "constant":
		v, err := parseInitialValue(se, kind)
		return fastdef.OpConstant, v, err
	case "default":
		v, err := parseInitialValue(se, kind)
		return fastdef.OpDefault, v, err
	default:
		return 0, nil, fastdef.NewSchemaError("unknown operator element <%s>", se.Name.Local)
	}
}

func drain(dec *xml.Decoder, end xml.Name) {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 && t.Name == end {
				return
			}
			depth--
		}
	}
}

func parseInitialValue(se xml.StartElement, kind fastdef.ValueKind) (*fastdef.Value, error) {
	s, ok := attr(se, "value")
	if !ok {
		return nil, nil
	}
	switch kind {
	case fastdef.Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fastdef.NewSchemaError("initial value %q is not a valid int32", s)
		}
		return &fastdef.Value{Kind: kind, Int32: int32(n)}, nil
	case fastdef.UInt32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fastdef.NewSchemaError("initial value %q is not a valid uint32", s)
		}
		return &fastdef.Value{Kind: kind, UInt32: uint32(n)}, nil
	case fastdef.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fastdef.NewSchemaError("initial value %q is not a valid int64", s)
		}
		return &fastdef.Value{Kind: kind, Int64: n}, nil
	case fastdef.UInt64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fastdef.NewSchemaError("initial value %q is not a valid uint64", s)
		}
		return &fastdef.Value{Kind: kind, UInt64: n}, nil
	case fastdef.DecimalKind:
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return nil, fastdef.NewSchemaError("initial value %q is not a valid decimal", s)
		}
		return &fastdef.Value{Kind: kind, Decimal: d}, nil
	case fastdef.AsciiString, fastdef.UnicodeString:
		return &fastdef.Value{Kind: kind, Str: s}, nil
	case fastdef.ByteVector:
		return &fastdef.Value{Kind: kind, Bytes: []byte(s)}, nil
	default:
		return nil, fastdef.NewSchemaError("value kind %s cannot carry an initial value", kind)
	}
}

func parseGroup(dec *xml.Decoder, se xml.StartElement) (*fastdef.Instruction, error) {
	name := parseName(se)
	children, err := parseInstructionList(dec, se.Name)
	if err != nil {
		return nil, err
	}
	id, err := parseUint32Attr(se, "id", 0)
	if err != nil {
		return nil, err
	}
	return &fastdef.Instruction{
		ID:           id,
		Name:         name,
		ValueType:    fastdef.Group,
		Presence:     parsePresence(se),
		Operator:     fastdef.OpNone,
		Instructions: children,
		Dictionary:   parseDictScope(se),
		Key:          parseKey(se, name),
		TypeRef:      parseTypeRef(se),
	}, nil
}

// parseSequence expects its first child to be the length field (any
// integer element), followed by the per-item field instructions, per
// spec.md §3's "children[0] is its UInt32 length field" invariant.
func parseSequence(dec *xml.Decoder, se xml.StartElement) (*fastdef.Instruction, error) {
	name := parseName(se)
	children, err := parseInstructionList(dec, se.Name)
	if err != nil {
		return nil, err
	}
	id, err := parseUint32Attr(se, "id", 0)
	if err != nil {
		return nil, err
	}
	return &fastdef.Instruction{
		ID:           id,
		Name:         name,
		ValueType:    fastdef.Sequence,
		Presence:     parsePresence(se),
		Operator:     fastdef.OpNone,
		Instructions: children,
		Dictionary:   parseDictScope(se),
		Key:          parseKey(se, name),
		TypeRef:      parseTypeRef(se),
	}, nil
}

func parseTemplateRef(dec *xml.Decoder, se xml.StartElement) (*fastdef.Instruction, error) {
	name := parseName(se)
	drain(dec, se.Name)
	return &fastdef.Instruction{
		Name:      name,
		ValueType: fastdef.TemplateReference,
		Presence:  parsePresence(se),
		Operator:  fastdef.OpNone,
		TypeRef:   fastdef.AnyType,
	}, nil
}
