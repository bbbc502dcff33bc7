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

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		opts     Options
	}{
		{
			name:     "empty",
			input:    "",
			opts:     Aggressive,
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    " \t　 ",
			opts:     Aggressive,
			expected: "",
		},
		{
			name:     "trim only",
			input:    "  Album  ",
			opts:     Options{},
			expected: "Album",
		},
		{
			name:     "lower keeps spaces",
			input:    "Hello World",
			opts:     Options{Lower: true},
			expected: "hello world",
		},
		{
			name:     "fullwidth punctuation folded",
			input:    "标题：副标题（上）！",
			opts:     Options{},
			expected: "标题:副标题(上)!",
		},
		{
			name:     "fullwidth brackets and quotes",
			input:    "【“新”】？",
			opts:     Options{},
			expected: `["新"]?`,
		},
		{
			name:     "ideographic space becomes space",
			input:    "a　b",
			opts:     Options{},
			expected: "a b",
		},
		{
			name:     "collapse spaces",
			input:    "a b\tc",
			opts:     Options{CollapseSpaces: true},
			expected: "abc",
		},
		{
			name:     "aggressive",
			input:    " The Legend：Of Zelda (2) ",
			opts:     Aggressive,
			expected: "thelegendofzelda2",
		},
		{
			name:     "aggressive keeps ideographs",
			input:    "龙王传说·第二季！",
			opts:     Aggressive,
			expected: "龙王传说第二季",
		},
		{
			name:     "underscore is a word rune",
			input:    "a_b-c",
			opts:     Options{StripSymbols: true},
			expected: "a_bc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Normalize(tt.input, tt.opts))
		})
	}
}

func TestLightSymbols(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a:b(c)！", LightSymbols("a：b（c）！"))
}

func TestStripSymbols(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "我和人和狗", StripSymbols("我和 人，和狗。"))
	assert.Equal(t, "abc123", StripSymbols("a-b.c 1/2/3"))
	assert.Empty(t, StripSymbols("!@#$%"))
}

func TestIsIdeograph(t *testing.T) {
	t.Parallel()

	assert.True(t, IsIdeograph('一'))
	assert.True(t, IsIdeograph('龙'))
	assert.False(t, IsIdeograph('a'))
	assert.False(t, IsIdeograph('。'))
	assert.False(t, IsIdeograph('ア'))
}
