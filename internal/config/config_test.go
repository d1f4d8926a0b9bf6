// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombiezen.com/go/mdparse"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, FormatHTML, cfg.Format)
	assert.Equal(t, "preserve", cfg.SoftBreak)
	assert.False(t, cfg.IgnoreRawHTML)
	assert.False(t, cfg.FilterTags)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want *Config
	}{
		{
			name: "Empty",
			yaml: "",
			want: Default(),
		},
		{
			name: "Tree",
			yaml: "format: tree\nlines: true\n",
			want: &Config{Format: FormatTree, SoftBreak: "preserve", Lines: true},
		},
		{
			name: "HTMLOptions",
			yaml: "soft_break: harden\nignore_raw_html: true\nfilter_tags: true\n",
			want: &Config{
				Format:        FormatHTML,
				SoftBreak:     "harden",
				IgnoreRawHTML: true,
				FilterTags:    true,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse([]byte(test.yaml))
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{name: "Format", yaml: "format: pdf\n", wantErr: ErrInvalidFormat},
		{name: "SoftBreak", yaml: "soft_break: wrap\n", wantErr: ErrInvalidSoftBreak},
		{name: "Both", yaml: "format: pdf\nsoft_break: wrap\n", wantErr: ErrInvalidSoftBreak},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.yaml))
			assert.ErrorIs(t, err, test.wantErr)
		})
	}

	t.Run("UnknownField", func(t *testing.T) {
		_, err := Parse([]byte("colour: red\n"))
		assert.ErrorContains(t, err, "colour")
	})
	t.Run("Syntax", func(t *testing.T) {
		_, err := Parse([]byte("format: [\n"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: tree\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatTree, cfg.Format)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTMLRenderer(t *testing.T) {
	cfg := &Config{Format: FormatHTML, SoftBreak: "space", IgnoreRawHTML: true, FilterTags: true}
	r, err := cfg.HTMLRenderer()
	require.NoError(t, err)
	assert.Equal(t, mdparse.SoftBreakSpace, r.SoftBreakBehavior)
	assert.True(t, r.IgnoreRaw)
	require.NotNil(t, r.FilterTag)
	assert.True(t, r.FilterTag([]byte("script")))

	cfg.FilterTags = false
	r, err = cfg.HTMLRenderer()
	require.NoError(t, err)
	assert.Nil(t, r.FilterTag)

	cfg.SoftBreak = "bogus"
	_, err = cfg.HTMLRenderer()
	assert.ErrorIs(t, err, ErrInvalidSoftBreak)
}

func TestDumpOptions(t *testing.T) {
	assert.False(t, Default().DumpOptions().Lines)
	assert.True(t, (&Config{Lines: true}).DumpOptions().Lines)
}
