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

// Package fastsink implements spec.md §6's MessageSink boundary: a
// reference sink that builds a tree of decoded values rather than
// streaming callbacks elsewhere, for tests and simple consumers.
package fastsink

import (
	"github.com/narad-muni/fastlib-go/fastdef"
)

// Field is one set_value emission: the instruction's id/name plus the
// value, or an absent value for a field present in the pmap/instruction
// set but whose wire value decoded to "not transmitted".
type Field struct {
	ID    uint32
	Name  string
	Value *fastdef.Value // nil means absent
}

// Message is one decoded application message (or nested group/sequence
// item), built from the start_*/stop_*/set_value calls the dispatcher
// makes against a Builder.
type Message struct {
	TemplateID   uint32
	TemplateName string

	Fields   []Field
	Children []*Child
}

// ChildKind discriminates what a Message's nested Child holds.
type ChildKind int

const (
	ChildGroup ChildKind = iota
	ChildSequence
	ChildTemplateRef
)

// Child is a nested group, sequence, or static/dynamic template
// reference within a Message.
type Child struct {
	Kind ChildKind
	Name string

	// Group: Items has exactly one element.
	// Sequence: Items has len == the decoded sequence length.
	// TemplateRef: Items has exactly one element (the referenced message).
	Items []*Message

	IsDynamicRef bool // only meaningful when Kind == ChildTemplateRef
}

// Builder implements the decoder's MessageSink by constructing a Message
// tree. It is not safe for concurrent use by multiple decodes; create one
// Builder per decode_message call (Reset reuses the same Builder across
// calls without reallocating).
type Builder struct {
	stack []*frame
	root  *Message
}

// frame tracks the in-progress Message plus, while a sequence is being
// filled, that sequence's Child so each item can be appended to it.
type frame struct {
	msg *Message

	// openChild is the sequence Child the frame is currently appending
	// items into (set by start_sequence, cleared by stop_sequence, nil
	// otherwise). Groups and template refs push a frame of their own.
	openChild *Child
}

// NewBuilder returns a ready-to-use Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Reset clears the Builder for a new decode_message call.
func (b *Builder) Reset() {
	b.stack = nil
	b.root = nil
}

// Result returns the Message built by the most recently completed
// StartTemplate/StopTemplate pair. Valid only after StopTemplate.
func (b *Builder) Result() *Message {
	return b.root
}

func (b *Builder) top() *frame {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) StartTemplate(id uint32, name string) {
	msg := &Message{TemplateID: id, TemplateName: name}
	b.stack = append(b.stack, &frame{msg: msg})
}

func (b *Builder) StopTemplate() {
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		b.root = f.msg
		return
	}
	parent := b.top()
	parent.openChild.Items = append(parent.openChild.Items, f.msg)
}

func (b *Builder) StartTemplateRef(name string, isDynamic bool) {
	f := b.top()
	child := &Child{Kind: ChildTemplateRef, Name: name, IsDynamicRef: isDynamic}
	f.msg.Children = append(f.msg.Children, child)
	refMsg := &Message{TemplateName: name}
	child.Items = append(child.Items, refMsg)
	b.stack = append(b.stack, &frame{msg: refMsg})
}

func (b *Builder) StopTemplateRef() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Builder) StartGroup(name string) {
	f := b.top()
	child := &Child{Kind: ChildGroup, Name: name}
	f.msg.Children = append(f.msg.Children, child)
	groupMsg := &Message{TemplateName: name}
	child.Items = append(child.Items, groupMsg)
	b.stack = append(b.stack, &frame{msg: groupMsg})
}

func (b *Builder) StopGroup() {
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	_ = f // group's Message already linked via Items at StartGroup time
}

func (b *Builder) StartSequence(id uint32, name string, length uint32) {
	f := b.top()
	child := &Child{Kind: ChildSequence, Name: name}
	child.Items = make([]*Message, 0, length)
	f.msg.Children = append(f.msg.Children, child)
	f.openChild = child
}

func (b *Builder) StopSequence() {
	b.top().openChild = nil
}

func (b *Builder) StartSequenceItem(index uint32) {
	f := b.top()
	item := &Message{}
	f.openChild.Items = append(f.openChild.Items, item)
	b.stack = append(b.stack, &frame{msg: item})
}

func (b *Builder) StopSequenceItem() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Builder) SetValue(id uint32, name string, v *fastdef.Value) {
	f := b.top()
	f.msg.Fields = append(f.msg.Fields, Field{ID: id, Name: name, Value: v})
}
