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
	"github.com/narad-muni/fastlib-go/fastdef"
	"github.com/narad-muni/fastlib-go/fastwire"
)

func (s *decodeState) decodeTemplate() error {
	if err := s.pushPresenceMap(); err != nil {
		return wrapDecodeError(err, "", "", "read message presence map")
	}

	id, err := s.readTemplateID()
	if err != nil {
		s.resetStacks()
		return err
	}
	s.templateID.push(id)

	tmpl, ok := s.defs.ByID[id]
	if !ok {
		s.resetStacks()
		return &ErrUnknownTemplateID{ID: id}
	}

	s.sink.StartTemplate(tmpl.ID, tmpl.Name)

	hasDict := s.switchDictionary(tmpl.Dictionary)
	hasType := s.switchTypeRef(tmpl.TypeRef)

	if err := s.decodeInstructions(tmpl.Instructions); err != nil {
		s.resetStacks()
		return wrapDecodeError(err, tmpl.Name, "", "decode template %q", tmpl.Name)
	}

	if hasDict {
		s.restoreDictionary()
	}
	if hasType {
		s.restoreTypeRef()
	}

	s.sink.StopTemplate()
	s.templateID.pop()
	s.popPresenceMap()
	return nil
}

// readTemplateID reads a template id through the synthetic Copy
// instruction shared by the outer message header and dynamic template
// references (spec.md §4.4's "Synthetic template-id instruction").
func (s *decodeState) readTemplateID() (uint32, error) {
	v, err := s.extractField(s.defs.TemplateIDInstruction)
	if err != nil {
		return 0, wrapDecodeError(err, "", fastdef.TemplateIDField, "read template id")
	}
	if v == nil || v.Kind != fastdef.UInt32 {
		return 0, newDecodeError("", fastdef.TemplateIDField, "template id extractor did not return a UInt32")
	}
	return v.UInt32, nil
}

func (s *decodeState) decodeInstructions(instructions []*fastdef.Instruction) error {
	for _, instr := range instructions {
		var err error
		switch instr.ValueType {
		case fastdef.Sequence:
			err = s.decodeSequence(instr)
		case fastdef.Group:
			err = s.decodeGroup(instr)
		case fastdef.TemplateReference:
			err = s.decodeTemplateRef(instr)
		default:
			err = s.decodeField(instr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeSegment reads a fresh presence map, decodes instructions under
// it, then restores the enclosing map — used whenever a composite's
// has_pmap is true.
func (s *decodeState) decodeSegment(instructions []*fastdef.Instruction) error {
	if err := s.pushPresenceMap(); err != nil {
		return err
	}
	if err := s.decodeInstructions(instructions); err != nil {
		s.popPresenceMap()
		return err
	}
	s.popPresenceMap()
	return nil
}

func (s *decodeState) decodeField(instr *fastdef.Instruction) error {
	v, err := s.extractField(instr)
	if err != nil {
		return err
	}
	s.sink.SetValue(instr.ID, instr.Name, v)
	return nil
}

func (s *decodeState) decodeSequence(instr *fastdef.Instruction) error {
	hasDict := s.switchDictionary(instr.Dictionary)
	hasType := s.switchTypeRef(instr.TypeRef)

	lengthInstr := instr.Instructions[0]
	lenVal, err := s.extractField(lengthInstr)
	if err != nil {
		if hasDict {
			s.restoreDictionary()
		}
		if hasType {
			s.restoreTypeRef()
		}
		return err
	}

	if lenVal != nil {
		if lenVal.Kind != fastdef.UInt32 {
			if hasDict {
				s.restoreDictionary()
			}
			if hasType {
				s.restoreTypeRef()
			}
			return newDecodeError("", instr.Name, "length field must be UInt32")
		}
		n := lenVal.UInt32
		s.sink.StartSequence(instr.ID, instr.Name, n)
		for i := uint32(0); i < n; i++ {
			s.sink.StartSequenceItem(i)
			if instr.HasPmap() {
				err = s.decodeSegment(instr.Instructions[1:])
			} else {
				err = s.decodeInstructions(instr.Instructions[1:])
			}
			s.sink.StopSequenceItem()
			if err != nil {
				break
			}
		}
		if err == nil {
			s.sink.StopSequence()
		}
	}

	if hasDict {
		s.restoreDictionary()
	}
	if hasType {
		s.restoreTypeRef()
	}
	return err
}

func (s *decodeState) decodeGroup(instr *fastdef.Instruction) error {
	if instr.Presence == fastdef.Optional {
		bit, err := s.pmapNextBit()
		if err != nil {
			return wrapDecodeError(err, "", instr.Name, "read presence bit for group %q", instr.Name)
		}
		if !bit {
			return nil
		}
	}

	hasDict := s.switchDictionary(instr.Dictionary)
	hasType := s.switchTypeRef(instr.TypeRef)

	s.sink.StartGroup(instr.Name)

	var err error
	if instr.HasPmap() {
		err = s.decodeSegment(instr.Instructions)
	} else {
		err = s.decodeInstructions(instr.Instructions)
	}

	s.sink.StopGroup()

	if hasDict {
		s.restoreDictionary()
	}
	if hasType {
		s.restoreTypeRef()
	}
	return err
}

func (s *decodeState) decodeTemplateRef(instr *fastdef.Instruction) error {
	isDynamic := instr.Name == ""

	var tmpl *fastdef.Template
	if isDynamic {
		if err := s.pushPresenceMap(); err != nil {
			return err
		}
		id, err := s.readTemplateID()
		if err != nil {
			s.popPresenceMap()
			return err
		}
		s.templateID.push(id)
		t, ok := s.defs.ByID[id]
		if !ok {
			s.templateID.pop()
			s.popPresenceMap()
			return &ErrUnknownTemplateID{ID: id}
		}
		tmpl = t
	} else {
		t, ok := s.defs.ByName[instr.Name]
		if !ok {
			return &ErrUnknownTemplateName{Name: instr.Name}
		}
		tmpl = t
	}

	s.sink.StartTemplateRef(tmpl.Name, isDynamic)

	hasDict := s.switchDictionary(tmpl.Dictionary)
	hasType := s.switchTypeRef(tmpl.TypeRef)

	err := s.decodeInstructions(tmpl.Instructions)

	if hasDict {
		s.restoreDictionary()
	}
	if hasType {
		s.restoreTypeRef()
	}

	s.sink.StopTemplateRef()

	if isDynamic {
		s.templateID.pop()
		s.popPresenceMap()
	}
	return err
}

// resetStacks clears every context stack back to its initial sentinel, so
// the next decode_message call starts fresh regardless of how far this
// one got (spec.md §7's "after any decode error, the context stacks equal
// their initial sentinels").
func (s *decodeState) resetStacks() {
	s.templateID = newEmptyStack[uint32]()
	s.dictionary = newStack(fastdef.ScopeGlobal)
	s.typeRef = newStack(fastdef.AnyType)
	s.presenceMap = newStack(fastwire.PresenceMap{})
}
