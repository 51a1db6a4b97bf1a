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
	"github.com/cockroachdb/apd/v2"

	"github.com/narad-muni/fastlib-go/fastwire"
)

// fakeReader serves a scripted sequence of presence maps and scalar
// values, so dispatcher tests can exercise exact scenarios from spec.md
// §8 without hand-encoding stop-bit byte streams.
type fakeReader struct {
	pmaps   []fastwire.PresenceMap
	uint32s []uint32
}

func newFakeReader() *fakeReader { return &fakeReader{} }

func (f *fakeReader) withPmap(bits ...bool) *fakeReader {
	f.pmaps = append(f.pmaps, fastwire.NewPresenceMap(bits))
	return f
}

func (f *fakeReader) withUint32(vs ...uint32) *fakeReader {
	f.uint32s = append(f.uint32s, vs...)
	return f
}

func (f *fakeReader) ReadPresenceMap() (fastwire.PresenceMap, error) {
	pm := f.pmaps[0]
	f.pmaps = f.pmaps[1:]
	return pm, nil
}

func (f *fakeReader) ReadUint32(nullable bool) (uint32, bool, error) {
	v := f.uint32s[0]
	f.uint32s = f.uint32s[1:]
	return v, false, nil
}

func (f *fakeReader) ReadInt32(nullable bool) (int32, bool, error)   { return 0, true, nil }
func (f *fakeReader) ReadUint64(nullable bool) (uint64, bool, error) { return 0, true, nil }
func (f *fakeReader) ReadInt64(nullable bool) (int64, bool, error)   { return 0, true, nil }
func (f *fakeReader) ReadAscii(nullable bool) (string, bool, error)  { return "", true, nil }
func (f *fakeReader) ReadUnicode(nullable bool) (string, bool, error) {
	return "", true, nil
}
func (f *fakeReader) ReadBytes(nullable bool) ([]byte, bool, error) { return nil, true, nil }
func (f *fakeReader) ReadDecimal(nullable bool) (*apd.Decimal, bool, error) {
	return nil, true, nil
}

var _ fastwire.Reader = (*fakeReader)(nil)
