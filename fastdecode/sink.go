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

import "github.com/narad-muni/fastlib-go/fastdef"

// MessageSink is spec.md §6's external interface consumed by the
// dispatcher: every operation returns nothing, and the dispatcher is
// responsible for calling them in strict depth-first declaration order.
// fastsink.Builder is the reference implementation.
type MessageSink interface {
	StartTemplate(id uint32, name string)
	StopTemplate()

	StartTemplateRef(name string, isDynamic bool)
	StopTemplateRef()

	StartGroup(name string)
	StopGroup()

	StartSequence(id uint32, name string, length uint32)
	StartSequenceItem(index uint32)
	StopSequenceItem()
	StopSequence()

	SetValue(id uint32, name string, v *fastdef.Value)
}
