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

// Package fastdecode implements spec.md §4.2-§4.4: the context stacks,
// the segment/field dispatcher, and the field extract operators that
// together decode one message at a time against a finalized
// fastdef.Definitions.
package fastdecode

import (
	"github.com/narad-muni/fastlib-go/fastdef"
	"github.com/narad-muni/fastlib-go/fastdict"
	"github.com/narad-muni/fastlib-go/fastwire"
)

// Decoder decodes messages against one finalized Definitions, using one
// dictionary Store for the lifetime of the decoder (spec.md §5: "the
// dictionary store: exclusively owned by the decoder instance"). The
// template forest is read-only shared state and may be safely used by
// many Decoders concurrently, each with its own Store.
type Decoder struct {
	defs  *fastdef.Definitions
	store fastdict.Store
}

// New returns a Decoder over defs, using store for previous-value
// lookups. Pass fastdict.NewMemory() for the common per-process case.
func New(defs *fastdef.Definitions, store fastdict.Store) *Decoder {
	return &Decoder{defs: defs, store: store}
}

// DecodeMessage decodes exactly one message from r, delivering it to
// sink via the MessageSink calls. A decodeState is created fresh for
// this call and discarded when it returns (spec.md §3's "Context stacks
// are created per-message and destroyed when the message completes").
func (d *Decoder) DecodeMessage(r fastwire.Reader, sink MessageSink) error {
	s := newDecodeState(d.defs, r, sink, d.store)
	return s.decodeTemplate()
}
