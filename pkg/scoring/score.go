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

// Package scoring ranks candidate keys inside a single match tier. Scores
// only order candidates; they never decide whether a match exists.
package scoring

import (
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/textnorm"
	"github.com/hbollon/go-edlib"
)

// Component weights. They sum to MaxScore.
const (
	LengthWeight          = 40.0
	ContainsWeight        = 30.0
	ContainedWeight       = 25.0
	JaccardWeight         = 20.0
	CommonSubstringWeight = 10.0

	MaxScore = LengthWeight + ContainsWeight + JaccardWeight + CommonSubstringWeight
)

// Score rates how well b stands in for a, in [0, MaxScore]. It is
// deterministic and Score(a, a) == MaxScore for every non-empty a.
func Score(a, b string) float64 {
	lowerA := strings.ToLower(a)
	lowerB := strings.ToLower(b)

	return LengthScore(a, b) +
		InclusionScore(lowerA, lowerB) +
		JaccardScore(lowerA, lowerB) +
		CommonSubstringScore(lowerA, lowerB)
}

// LengthScore penalizes the relative difference in rune length.
func LengthScore(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return LengthWeight
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return LengthWeight * (1 - float64(diff)/float64(max(la, lb)))
}

// InclusionScore favours a contained in b over b contained in a. Inputs are
// expected to be lower-cased already.
func InclusionScore(a, b string) float64 {
	switch {
	case strings.Contains(b, a):
		return ContainsWeight
	case strings.Contains(a, b):
		return ContainedWeight
	default:
		return 0
	}
}

// JaccardScore compares the rune sets of a and b.
func JaccardScore(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)

	union := len(setA)
	inter := 0
	for r := range setB {
		if _, ok := setA[r]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return JaccardWeight * float64(inter) / float64(union)
}

// CommonSubstringScore measures the longest common substring against the
// shorter of the two symbol-stripped forms. When stripping empties either
// side the unstripped forms are used instead, which keeps a key made only of
// punctuation scoring full marks against itself.
func CommonSubstringScore(a, b string) float64 {
	ra := []rune(textnorm.StripSymbols(a))
	rb := []rune(textnorm.StripSymbols(b))
	if len(ra) == 0 || len(rb) == 0 {
		ra = []rune(a)
		rb = []rune(b)
	}

	shorter := min(len(ra), len(rb))
	if shorter == 0 {
		return 0
	}

	lcs := LongestCommonSubstring(ra, rb)
	return min(CommonSubstringWeight, CommonSubstringWeight*float64(lcs)/float64(shorter))
}

// LongestCommonSubstring returns the length of the longest contiguous run
// shared by a and b, using two rolling rows of the dynamic programming table.
func LongestCommonSubstring(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	best := 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return best
}

// Similarity returns the Jaro-Winkler similarity of the lower-cased inputs in
// [0, 1]. It is recorded in audit reports and plays no part in matching.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(strings.ToLower(a), strings.ToLower(b)))
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
