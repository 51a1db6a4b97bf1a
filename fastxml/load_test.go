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

package fastxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/narad-muni/fastlib-go/fastdef"
)

func TestParseWrongRootElement(t *testing.T) {
	_, err := Parse(strings.NewReader(`<notTemplates></notTemplates>`))
	require.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := Parse(strings.NewReader(``))
	require.Error(t, err)
}

func TestLoadScenarioACopyTemplate(t *testing.T) {
	doc := `<templates>
		<template id="1" name="Quote" dictionary="global">
			<uInt32 id="2" name="x"><copy/></uInt32>
		</template>
	</templates>`

	defs, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, defs.Templates, 1)

	tmpl := defs.ByID[1]
	require.NotNil(t, tmpl)
	require.Equal(t, "Quote", tmpl.Name)
	require.Len(t, tmpl.Instructions, 1)

	field := tmpl.Instructions[0]
	require.Equal(t, fastdef.UInt32, field.ValueType)
	require.Equal(t, fastdef.OpCopy, field.Operator)
	require.Equal(t, "x", field.Key)

	req, ok := tmpl.RequirePmap()
	require.True(t, ok)
	require.True(t, req)
}

func TestLoadScenarioBOptionalGroup(t *testing.T) {
	doc := `<templates>
		<template id="2" name="WithGroup">
			<group name="g" presence="optional">
				<uInt32 id="3" name="y"><none/></uInt32>
			</group>
		</template>
	</templates>`

	defs, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	tmpl := defs.ByID[2]
	grp := tmpl.Instructions[0]
	require.Equal(t, fastdef.Group, grp.ValueType)
	require.Equal(t, fastdef.Optional, grp.Presence)
	require.False(t, grp.HasPmap(), "a None-only body consumes no bits, so the group reads no presence map of its own")

	req, ok := tmpl.RequirePmap()
	require.True(t, ok)
	require.True(t, req, "optional group must contribute a bit to the outer template")
}

func TestLoadScenarioCSequenceWithCopyChild(t *testing.T) {
	doc := `<templates>
		<template id="3" name="WithSeq">
			<sequence name="s">
				<uInt32 name="len"><none/></uInt32>
				<uInt32 id="11" name="v"><copy/></uInt32>
			</sequence>
		</template>
	</templates>`

	defs, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	tmpl := defs.ByID[3]
	seq := tmpl.Instructions[0]
	require.Equal(t, fastdef.Sequence, seq.ValueType)
	require.True(t, seq.HasPmap(), "Copy child forces the sequence's per-item pmap")

	req, ok := tmpl.RequirePmap()
	require.True(t, ok)
	require.False(t, req, "length field operator None contributes no outer bit")
}

func TestLoadScenarioDStaticTemplateRefInheritsPmap(t *testing.T) {
	doc := `<templates>
		<template id="2" name="B">
			<uInt32 id="3" name="y"><copy/></uInt32>
		</template>
		<template id="1" name="A">
			<templateRef name="B"/>
		</template>
	</templates>`

	defs, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	a := defs.ByName["A"]
	req, ok := a.RequirePmap()
	require.True(t, ok)
	require.True(t, req, "A must inherit B's require_pmap")
}

func TestLoadForwardReferenceIsSchemaError(t *testing.T) {
	doc := `<templates>
		<template id="1" name="A">
			<templateRef name="B"/>
		</template>
		<template id="2" name="B">
			<uInt32 id="3" name="y"><copy/></uInt32>
		</template>
	</templates>`

	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoadDecimalUnknownSubElementIsSchemaError(t *testing.T) {
	doc := `<templates>
		<template id="1" name="Px">
			<decimal id="2" name="price">
				<exponent><constant value="-2"/></exponent>
			</decimal>
		</template>
	</templates>`

	_, err := Load(strings.NewReader(doc))
	require.Error(t, err, "decimal sub-fields are ordinary <int32>/<int64> elements in this loader's grammar; <exponent> is unknown")
}
