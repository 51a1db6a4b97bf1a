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
	"github.com/narad-muni/fastlib-go/fastdict"
	"github.com/narad-muni/fastlib-go/fastwire"
)

// anyTypeName is the type-scope key used while the current application
// type is still fastdef.AnyType, mirroring the teacher's "__any__" stand-in.
const anyTypeName = "__any__"

// decodeState is the per-message processing context: created at the start
// of decode_message, discarded once it returns. It owns the four context
// stacks plus the borrowed reader, sink, and dictionary store for the
// duration of exactly one message decode.
type decodeState struct {
	defs  *fastdef.Definitions
	r     fastwire.Reader
	sink  MessageSink
	store fastdict.Store

	templateID  *stack[uint32]
	dictionary  *stack[fastdef.DictScope]
	typeRef     *stack[fastdef.TypeRef]
	presenceMap *stack[fastwire.PresenceMap]
}

func newDecodeState(defs *fastdef.Definitions, r fastwire.Reader, sink MessageSink, store fastdict.Store) *decodeState {
	return &decodeState{
		defs:        defs,
		r:           r,
		sink:        sink,
		store:       store,
		templateID:  newEmptyStack[uint32](),
		dictionary:  newStack(fastdef.ScopeGlobal),
		typeRef:     newStack(fastdef.AnyType),
		presenceMap: newStack(fastwire.PresenceMap{}),
	}
}

func (s *decodeState) switchDictionary(d fastdef.DictScope) bool {
	if d.Kind == fastdef.DictInherit {
		return false
	}
	s.dictionary.push(d)
	return true
}

func (s *decodeState) restoreDictionary() {
	s.dictionary.pop()
}

func (s *decodeState) switchTypeRef(t fastdef.TypeRef) bool {
	if t.Kind == fastdef.TypeRefAny {
		return false
	}
	s.typeRef.push(t)
	return true
}

func (s *decodeState) restoreTypeRef() {
	s.typeRef.pop()
}

func (s *decodeState) pushPresenceMap() error {
	pm, err := s.r.ReadPresenceMap()
	if err != nil {
		return err
	}
	s.presenceMap.push(pm)
	return nil
}

func (s *decodeState) popPresenceMap() {
	s.presenceMap.pop()
}

func (s *decodeState) pmapNextBit() (bool, error) {
	pm, ok := s.presenceMap.peek()
	if !ok {
		return false, fastwire.ErrPresenceMapOverread
	}
	bit, err := pm.NextBit()
	if err != nil {
		return false, err
	}
	// peek returns the top PresenceMap by value, so NextBit advances the
	// cursor of this local copy; the copy must be written back onto the
	// stack's top.
	s.presenceMap.items[len(s.presenceMap.items)-1] = pm
	return bit, nil
}

func (s *decodeState) currentTemplateID() uint32 {
	id, _ := s.templateID.peek()
	return id
}

// scopeKey derives the fastdict.ScopeKey the current dictionary/type_ref/
// template_id stack tops resolve to, mirroring the teacher's make_dict_type.
func (s *decodeState) scopeKey() fastdict.ScopeKey {
	d, _ := s.dictionary.peek()
	switch d.Kind {
	case fastdef.DictGlobal:
		return fastdict.ScopeKey{Kind: fastdict.ScopeGlobal}
	case fastdef.DictTemplate:
		return fastdict.ScopeKey{Kind: fastdict.ScopeTemplate, TemplateID: s.currentTemplateID()}
	case fastdef.DictType:
		t, _ := s.typeRef.peek()
		name := anyTypeName
		if t.Kind == fastdef.TypeRefApplication {
			name = t.Name
		}
		return fastdict.ScopeKey{Kind: fastdict.ScopeType, TypeName: name}
	case fastdef.DictUserDefined:
		return fastdict.ScopeKey{Kind: fastdict.ScopeUser, UserName: d.Name}
	default:
		// Inherit never reaches here: it's pushed on decodeState
		// construction as Global and is never re-pushed as Inherit.
		return fastdict.ScopeKey{Kind: fastdict.ScopeGlobal}
	}
}

func (s *decodeState) dictGet(key string) (*fastdef.Value, bool, error) {
	return s.store.Get(fastdict.Key{Scope: s.scopeKey(), Field: key})
}

func (s *decodeState) dictSet(key string, v *fastdef.Value) error {
	return s.store.Set(fastdict.Key{Scope: s.scopeKey(), Field: key}, v)
}
