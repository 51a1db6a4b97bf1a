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

// Package fastdict implements the previous-value dictionary collaborator:
// the keyed store the Copy/Increment/Delta/Tail operators read from and
// write to, scoped Global/Template/Type/UserDefined per spec.md §4.4.
package fastdict

import (
	"fmt"

	"github.com/narad-muni/fastlib-go/fastdef"
)

// ScopeKind discriminates the four dictionary keyspaces.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeTemplate
	ScopeType
	ScopeUser
)

// ScopeKey is the resolved dictionary keyspace for one field lookup,
// derived from the dictionary context stack's top per spec.md §4.4.
type ScopeKey struct {
	Kind       ScopeKind
	TemplateID uint32
	TypeName   string
	UserName   string
}

func (s ScopeKey) String() string {
	switch s.Kind {
	case ScopeGlobal:
		return "global"
	case ScopeTemplate:
		return fmt.Sprintf("template:%d", s.TemplateID)
	case ScopeType:
		return "type:" + s.TypeName
	case ScopeUser:
		return "user:" + s.UserName
	default:
		return "unknown"
	}
}

// Key identifies one dictionary slot: a scope plus the instruction's
// interned key.
type Key struct {
	Scope ScopeKey
	Field string
}

// Store is the dictionary storage backend. A decoder owns one Store
// exclusively (spec.md §5); Get's second return value is false only when
// the slot has genuinely never been written (the "empty slot" spec.md's
// Copy/Increment/Tail rules distinguish from "written, but absent").
type Store interface {
	Get(k Key) (*fastdef.Value, bool, error)
	Set(k Key, v *fastdef.Value) error
}
