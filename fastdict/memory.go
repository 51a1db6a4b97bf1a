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

package fastdict

import (
	"sync"

	"github.com/narad-muni/fastlib-go/fastdef"
)

// Memory is the default Store: a plain map, created fresh per decoder
// instance, never shared across decoders unless the caller explicitly
// wants shared dictionary state.
type Memory struct {
	mu   sync.Mutex
	data map[Key]*fastdef.Value
}

// NewMemory returns an empty in-memory dictionary store.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key]*fastdef.Value)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get(k Key) (*fastdef.Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *Memory) Set(k Key, v *fastdef.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}
