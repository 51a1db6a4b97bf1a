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

import "github.com/pkg/errors"

// DecodeError is raised while decoding one message: a malformed stream, an
// unresolvable reference, or a dictionary slot that cannot satisfy a
// mandatory operator. Every DecodeError aborts the in-progress message;
// the decoder's context stacks are reset to their initial sentinels
// before the error reaches the caller (spec.md §7).
type DecodeError struct {
	// Template/Field name the error occurred within, when known.
	Template string
	Field    string
	cause    error
}

func (e *DecodeError) Error() string {
	msg := "fast: decode error"
	if e.Template != "" {
		msg += ": template " + e.Template
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	return msg + ": " + e.cause.Error()
}

func (e *DecodeError) Unwrap() error { return e.cause }

func newDecodeError(template, field string, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Template: template, Field: field, cause: errors.Errorf(format, args...)}
}

func wrapDecodeError(cause error, template, field string, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Template: template, Field: field, cause: errors.Wrapf(cause, format, args...)}
}

// ErrUnknownTemplateID signals a template id absent from templates_by_id.
type ErrUnknownTemplateID struct{ ID uint32 }

func (e *ErrUnknownTemplateID) Error() string {
	return errors.Errorf("fast: unknown template id %d", e.ID).Error()
}

// ErrUnknownTemplateName signals a static template reference to a name
// absent from templates_by_name (should not occur post-finalize, but the
// dispatcher still checks since a Definitions could in principle be
// hand-built and never finalized).
type ErrUnknownTemplateName struct{ Name string }

func (e *ErrUnknownTemplateName) Error() string {
	return errors.Errorf("fast: unknown template %q", e.Name).Error()
}

// ErrDictionarySlotEmpty signals a mandatory Copy/Increment/Tail extractor
// with no stored previous value and no initial value to fall back to.
type ErrDictionarySlotEmpty struct{ Field string }

func (e *ErrDictionarySlotEmpty) Error() string {
	return errors.Errorf("fast: dictionary slot empty for mandatory field %q", e.Field).Error()
}
