// Sheetjoin
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Sheetjoin.
//
// Sheetjoin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Sheetjoin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Sheetjoin.  If not, see <http://www.gnu.org/licenses/>.

package join

import (
	"testing"

	"github.com/ZaparooProject/sheetjoin/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() map[string]string {
	return map[string]string{
		"base_path":            "/data/base.xlsx",
		"reference_path":       "/data/ref.xlsx",
		"base_sheet":           AllSheets,
		"reference_sheet":      "Ref",
		"base_key_column":      "key",
		"reference_key_column": "key",
		"data_column_pairs":    "a=titleA; b = titleB",
		"fuzzy":                "true",
		"advanced":             "on",
		"max_matches":          "5",
		"tag_enabled":          "0",
	}
}

func TestParseForm(t *testing.T) {
	t.Parallel()

	opts, err := ParseForm(validForm())
	require.NoError(t, err)

	assert.Equal(t, "/data/base.xlsx", opts.BasePath)
	assert.Equal(t, AllSheets, opts.BaseSheet)
	assert.Equal(t, []Pair{{Base: "a", Reference: "titleA"}, {Base: "b", Reference: "titleB"}}, opts.Pairs)
	assert.True(t, opts.Fuzzy)
	assert.True(t, opts.Advanced)
	assert.False(t, opts.TagEnabled)
	assert.Equal(t, 5, opts.MaxMatches)
	assert.Equal(t, DefaultTagValue, opts.TagValue)
	assert.Equal(t, DefaultTagHeader, opts.TagHeader)
	assert.Equal(t, DefaultProvenanceHeader, opts.ProvenanceHeader)
	require.NoError(t, opts.Validate())
}

func TestParseForm_MaxMatchesFallback(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"0", "-2", "abc", "", "3.5"} {
		form := validForm()
		form["max_matches"] = v
		opts, err := ParseForm(form)
		require.NoError(t, err, "max_matches=%q", v)
		assert.Equal(t, DefaultMaxMatches, opts.MaxMatches, "max_matches=%q", v)
	}

	form := validForm()
	delete(form, "max_matches")
	opts, err := ParseForm(form)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxMatches, opts.MaxMatches)
}

func TestParseForm_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown field", key: "fuzy", value: "true"},
		{name: "bad boolean", key: "fuzzy", value: "maybe"},
		{name: "pair without separator", key: "data_column_pairs", value: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			form := validForm()
			form[tt.key] = tt.value
			_, err := ParseForm(form)
			require.ErrorIs(t, err, ErrBadInput)
		})
	}
}

func TestParseForm_EmptyTagValue(t *testing.T) {
	t.Parallel()

	form := validForm()
	form["tag_enabled"] = "是"
	form["tag_value"] = ""
	form["data_column_pairs"] = ""

	opts, err := ParseForm(form)
	require.NoError(t, err)
	assert.True(t, opts.TagEnabled)
	assert.Equal(t, "T", opts.TagValue)
	assert.Empty(t, opts.Pairs)
	require.NoError(t, opts.Validate())
}

func TestParsePairs(t *testing.T) {
	t.Parallel()

	pairs, err := ParsePairs("a=titleA\nb=titleB；;")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Base: "a", Reference: "titleA"}, {Base: "b", Reference: "titleB"}}, pairs)

	pairs, err = ParsePairs("")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	base, err := ParseForm(validForm())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(o *Options)
		tag    string
	}{
		{
			name:   "no pairs without tagging",
			mutate: func(o *Options) { o.Pairs = nil },
			tag:    validation.TagPairsOrTag,
		},
		{
			name:   "advanced without fuzzy",
			mutate: func(o *Options) { o.Fuzzy = false },
			tag:    validation.TagRequiresFuzzy,
		},
		{
			name:   "blank key column",
			mutate: func(o *Options) { o.BaseKeyColumn = "  " },
			tag:    "notblank",
		},
		{
			name:   "blank pair column",
			mutate: func(o *Options) { o.Pairs = []Pair{{Base: "a", Reference: ""}} },
			tag:    "notblank",
		},
		{
			name:   "not a workbook",
			mutate: func(o *Options) { o.BasePath = "/data/base.csv" },
			tag:    "workbook",
		},
		{
			name:   "missing reference path",
			mutate: func(o *Options) { o.ReferencePath = "" },
			tag:    "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := base
			o.Pairs = append([]Pair(nil), base.Pairs...)
			tt.mutate(&o)

			err := o.Validate()
			require.ErrorIs(t, err, ErrBadInput)

			var ve *validation.Error
			require.ErrorAs(t, err, &ve)
			assert.True(t, ve.Has(tt.tag), "expected %s in %v", tt.tag, ve)
		})
	}
}
