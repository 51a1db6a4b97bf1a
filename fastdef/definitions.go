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

// Definitions is the finalized set of templates a decoder runs against:
// the full list plus the by-id and by-name indices spec.md requires, and
// the singleton synthetic instruction used to read template ids.
//
// A Definitions is built once (from a template list or from XML, see
// fastxml) and is safe for concurrent read-only use by many decoders.
type Definitions struct {
	Templates             []*Template
	ByID                  map[uint32]*Template
	ByName                map[string]*Template
	TemplateIDInstruction *Instruction
}

// NewFromTemplates builds a Definitions from a pre-built template list and
// finalizes it. Templates are indexed in declaration order; a template may
// end up in neither, one, or both of ByID/ByName depending on whether it
// carries a nonzero id and/or a non-empty name.
func NewFromTemplates(templates []*Template) (*Definitions, error) {
	d := &Definitions{
		Templates:             templates,
		ByID:                  make(map[uint32]*Template, len(templates)),
		ByName:                make(map[string]*Template, len(templates)),
		TemplateIDInstruction: newTemplateIDInstruction(),
	}
	for _, t := range templates {
		if t.ID != 0 {
			if _, dup := d.ByID[t.ID]; dup {
				return nil, NewSchemaError("duplicate template id %d", t.ID)
			}
			d.ByID[t.ID] = t
		}
		if t.Name != "" {
			if _, dup := d.ByName[t.Name]; dup {
				return nil, NewSchemaError("duplicate template name %q", t.Name)
			}
			d.ByName[t.Name] = t
		}
	}
	if err := finalize(d); err != nil {
		return nil, err
	}
	return d, nil
}
