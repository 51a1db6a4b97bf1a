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

import "github.com/pkg/errors"

// NewSchemaError builds a schema error: raised by template construction or
// the finalizer, before any message is decoded.
func NewSchemaError(format string, args ...interface{}) error {
	return errors.Errorf("fast: schema error: "+format, args...)
}

// WrapSchemaError wraps cause as a schema error, preserving its stack trace.
func WrapSchemaError(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(cause, "fast: schema error: "+format, args...)
}
