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

// Command fastdecode loads a <templates> XML schema and decodes every
// message found in a stop-bit encoded binary stream, printing each
// decoded message as a single line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/narad-muni/fastlib-go/fastdecode"
	"github.com/narad-muni/fastlib-go/fastdict"
	"github.com/narad-muni/fastlib-go/fastsink"
	"github.com/narad-muni/fastlib-go/fastwire"
	"github.com/narad-muni/fastlib-go/fastxml"
)

func main() {
	templatesPath := flag.String("templates", "", "path to a <templates> XML file")
	dictPath := flag.String("dict", "", "optional path to a SQLite file for a durable dictionary store")
	flag.Parse()

	if *templatesPath == "" {
		log.Fatal("fastdecode: -templates is required")
	}

	tf, err := os.Open(*templatesPath)
	if err != nil {
		log.Fatalf("fastdecode: open templates: %v", err)
	}
	defer tf.Close()

	defs, err := fastxml.Load(tf)
	if err != nil {
		log.Fatalf("fastdecode: load templates: %v", err)
	}

	var store fastdict.Store
	if *dictPath != "" {
		sqliteStore, err := fastdict.OpenSQLite(*dictPath)
		if err != nil {
			log.Fatalf("fastdecode: open dictionary store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	} else {
		store = fastdict.NewMemory()
	}

	dec := fastdecode.New(defs, store)
	r := fastwire.NewStreamReader(os.Stdin)
	b := fastsink.NewBuilder()

	for {
		b.Reset()
		if err := dec.DecodeMessage(r, b); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Fatalf("fastdecode: decode message: %v", err)
		}
		fmt.Println(formatMessage(b.Result()))
	}
}

func formatMessage(m *fastsink.Message) string {
	s := fmt.Sprintf("template=%s(%d)", m.TemplateName, m.TemplateID)
	for _, f := range m.Fields {
		s += fmt.Sprintf(" %s=%v", f.Name, f.Value)
	}
	return s
}
