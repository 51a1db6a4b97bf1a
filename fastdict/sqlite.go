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
	"database/sql"
	"embed"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/apd/v2"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/narad-muni/fastlib-go/fastdef"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLite is a durable dictionary Store, for callers that need previous
// values to survive a process restart (spec.md §5's dictionary lifetime
// is "per decoder instance" by default; this backend is the opt-in
// collaborator for longer-lived state). Rows are keyed by ScopeKey.String()
// plus the field key, so slots of different scopes never collide in one
// table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if absent) a SQLite-backed store at path and
// runs pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "fastdict: open sqlite")
	}
	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, errors.Wrap(err, "fastdict: set goose dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, errors.Wrap(err, "fastdict: run migrations")
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)

func (s *SQLite) Get(k Key) (*fastdef.Value, bool, error) {
	var blob []byte
	row := s.db.QueryRow(`SELECT value FROM dict_entries WHERE scope = ? AND field = ?`, k.Scope.String(), k.Field)
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "fastdict: query dict_entries")
	}
	v, err := unmarshalValue(blob)
	if err != nil {
		return nil, false, errors.Wrap(err, "fastdict: unmarshal stored value")
	}
	return v, true, nil
}

func (s *SQLite) Set(k Key, v *fastdef.Value) error {
	blob := marshalValue(v)
	_, err := s.db.Exec(
		`INSERT INTO dict_entries (scope, field, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, field) DO UPDATE SET value = excluded.value`,
		k.Scope.String(), k.Field, blob,
	)
	if err != nil {
		return errors.Wrap(err, "fastdict: upsert dict_entries")
	}
	return nil
}

// A stored value starts with its fastdef.ValueKind as one byte;
// absentSentinel takes that byte's place for a stored-but-absent slot (spec.md distinguishes "never written" from
// "written as absent" for Copy/Tail's previous-value semantics).
const absentSentinel = 0xFF

func marshalValue(v *fastdef.Value) []byte {
	if v == nil {
		return []byte{absentSentinel}
	}
	buf := []byte{byte(v.Kind)}
	switch v.Kind {
	case fastdef.Int32:
		buf = binary.BigEndian.AppendUint32(buf, uint32(v.Int32))
	case fastdef.UInt32:
		buf = binary.BigEndian.AppendUint32(buf, v.UInt32)
	case fastdef.Int64:
		buf = binary.BigEndian.AppendUint64(buf, uint64(v.Int64))
	case fastdef.UInt64:
		buf = binary.BigEndian.AppendUint64(buf, v.UInt64)
	case fastdef.DecimalKind:
		s := v.Decimal.String()
		buf = appendLengthPrefixed(buf, []byte(s))
	case fastdef.AsciiString, fastdef.UnicodeString:
		buf = appendLengthPrefixed(buf, []byte(v.Str))
	case fastdef.ByteVector:
		buf = appendLengthPrefixed(buf, v.Bytes)
	}
	return buf
}

func appendLengthPrefixed(buf, payload []byte) []byte {
	if len(payload) > math.MaxUint32 {
		payload = payload[:math.MaxUint32]
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	return append(buf, payload...)
}

func unmarshalValue(blob []byte) (*fastdef.Value, error) {
	if len(blob) == 0 || blob[0] == absentSentinel {
		return nil, nil
	}
	kind := fastdef.ValueKind(blob[0])
	rest := blob[1:]
	switch kind {
	case fastdef.Int32:
		if len(rest) < 4 {
			return nil, errors.New("fastdict: truncated int32")
		}
		return &fastdef.Value{Kind: kind, Int32: int32(binary.BigEndian.Uint32(rest))}, nil
	case fastdef.UInt32:
		if len(rest) < 4 {
			return nil, errors.New("fastdict: truncated uint32")
		}
		return &fastdef.Value{Kind: kind, UInt32: binary.BigEndian.Uint32(rest)}, nil
	case fastdef.Int64:
		if len(rest) < 8 {
			return nil, errors.New("fastdict: truncated int64")
		}
		return &fastdef.Value{Kind: kind, Int64: int64(binary.BigEndian.Uint64(rest))}, nil
	case fastdef.UInt64:
		if len(rest) < 8 {
			return nil, errors.New("fastdict: truncated uint64")
		}
		return &fastdef.Value{Kind: kind, UInt64: binary.BigEndian.Uint64(rest)}, nil
	case fastdef.DecimalKind:
		s, _, err := readLengthPrefixed(rest)
		if err != nil {
			return nil, err
		}
		d, _, err := apd.NewFromString(string(s))
		if err != nil {
			return nil, errors.Wrap(err, "fastdict: parse stored decimal")
		}
		return &fastdef.Value{Kind: kind, Decimal: d}, nil
	case fastdef.AsciiString, fastdef.UnicodeString:
		s, _, err := readLengthPrefixed(rest)
		if err != nil {
			return nil, err
		}
		return &fastdef.Value{Kind: kind, Str: string(s)}, nil
	case fastdef.ByteVector:
		b, _, err := readLengthPrefixed(rest)
		if err != nil {
			return nil, err
		}
		return &fastdef.Value{Kind: kind, Bytes: b}, nil
	default:
		return nil, errors.Errorf("fastdict: unknown stored value kind %d", kind)
	}
}

func readLengthPrefixed(buf []byte) (payload, remainder []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, errors.New("fastdict: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(buf)
	buf = buf[4:]
	if uint64(len(buf)) < uint64(n) {
		return nil, nil, errors.New("fastdict: truncated payload")
	}
	return buf[:n], buf[n:], nil
}
