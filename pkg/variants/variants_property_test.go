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

package variants

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func keyGen() *rapid.Generator[string] {
	pieces := []string{
		"龙", "王", "传", "说", "第", "二", "季", "部", "之", "的", "和",
		"A", "b", "I", "V", "X", "Ⅱ", "3", " ", "：", "（", "）", "Season ", "S",
	}
	return rapid.Custom(func(t *rapid.T) string {
		n := rapid.IntRange(1, 15).Draw(t, "pieces")
		var sb strings.Builder
		for range n {
			sb.WriteString(rapid.SampledFrom(pieces).Draw(t, "piece"))
		}
		return sb.String()
	})
}

func TestPropertyGenerateCap(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.OneOf(keyGen(), rapid.StringN(1, 40, -1)).Draw(t, "s")
		if strings.TrimSpace(s) == "" {
			t.Skip("blank keys are rejected")
		}

		got, err := Generate(s)
		if err != nil {
			t.Fatalf("Generate(%q): %v", s, err)
		}
		if len(got) > MaxVariants {
			t.Fatalf("Generate(%q) returned %d variants", s, len(got))
		}
		if got[0] != s {
			t.Fatalf("Generate(%q)[0] = %q", s, got[0])
		}

		seen := make(map[string]bool, len(got))
		for _, v := range got {
			if v == "" {
				t.Fatalf("Generate(%q) produced an empty variant", s)
			}
			if seen[v] {
				t.Fatalf("Generate(%q) produced duplicate %q", s, v)
			}
			seen[v] = true
		}
	})
}
