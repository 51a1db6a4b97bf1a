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

package fastsink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/narad-muni/fastlib-go/fastdef"
)

func TestBuilderFlatMessage(t *testing.T) {
	b := NewBuilder()
	b.StartTemplate(1, "Quote")
	b.SetValue(2, "x", &fastdef.Value{Kind: fastdef.UInt32, UInt32: 42})
	b.StopTemplate()

	msg := b.Result()
	require.Equal(t, uint32(1), msg.TemplateID)
	require.Equal(t, "Quote", msg.TemplateName)
	require.Len(t, msg.Fields, 1)
	require.Equal(t, "x", msg.Fields[0].Name)
	require.Equal(t, uint32(42), msg.Fields[0].Value.UInt32)
}

func TestBuilderGroupOmittedWhenAbsent(t *testing.T) {
	b := NewBuilder()
	b.StartTemplate(2, "WithGroup")
	b.StopTemplate()

	msg := b.Result()
	require.Empty(t, msg.Children)
}

func TestBuilderGroupPresent(t *testing.T) {
	b := NewBuilder()
	b.StartTemplate(2, "WithGroup")
	b.StartGroup("g")
	b.SetValue(3, "y", &fastdef.Value{Kind: fastdef.UInt32, UInt32: 7})
	b.StopGroup()
	b.StopTemplate()

	msg := b.Result()
	require.Len(t, msg.Children, 1)
	require.Equal(t, ChildGroup, msg.Children[0].Kind)
	require.Len(t, msg.Children[0].Items, 1)
	require.Equal(t, uint32(7), msg.Children[0].Items[0].Fields[0].Value.UInt32)
}

func TestBuilderSequenceWithItems(t *testing.T) {
	b := NewBuilder()
	b.StartTemplate(3, "WithSeq")
	b.StartSequence(10, "s", 3)
	for i, want := range []uint32{7, 7, 9} {
		b.StartSequenceItem(uint32(i))
		b.SetValue(11, "v", &fastdef.Value{Kind: fastdef.UInt32, UInt32: want})
		b.StopSequenceItem()
	}
	b.StopSequence()
	b.StopTemplate()

	msg := b.Result()
	require.Len(t, msg.Children, 1)
	seq := msg.Children[0]
	require.Equal(t, ChildSequence, seq.Kind)
	require.Len(t, seq.Items, 3)
	require.Equal(t, uint32(7), seq.Items[0].Fields[0].Value.UInt32)
	require.Equal(t, uint32(7), seq.Items[1].Fields[0].Value.UInt32)
	require.Equal(t, uint32(9), seq.Items[2].Fields[0].Value.UInt32)
}

func TestBuilderStaticTemplateRef(t *testing.T) {
	// Mirrors the dispatcher's actual call sequence: a template reference
	// never gets its own StartTemplate/StopTemplate pair, just a
	// StartTemplateRef/StopTemplateRef bracketing the referenced
	// template's field/child calls directly (fastdecode's decodeTemplateRef).
	b := NewBuilder()
	b.StartTemplate(1, "A")
	b.StartTemplateRef("B", false)
	b.SetValue(5, "z", &fastdef.Value{Kind: fastdef.UInt32, UInt32: 3})
	b.StopTemplateRef()
	b.StopTemplate()

	msg := b.Result()
	require.Len(t, msg.Children, 1)
	ref := msg.Children[0]
	require.Equal(t, ChildTemplateRef, ref.Kind)
	require.False(t, ref.IsDynamicRef)
	require.Len(t, ref.Items, 1)
	require.Equal(t, "B", ref.Items[0].TemplateName)
	require.Equal(t, uint32(3), ref.Items[0].Fields[0].Value.UInt32)
}
