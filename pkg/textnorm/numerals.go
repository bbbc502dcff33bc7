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
	"regexp"
	"strings"
)

var chineseDigits = map[rune]string{
	'零': "0",
	'一': "1",
	'二': "2",
	'三': "3",
	'四': "4",
	'五': "5",
	'六': "6",
	'七': "7",
	'八': "8",
	'九': "9",
	'十': "10",
}

// U+2160..U+2169
var romanNumeralRunes = map[rune]string{
	'Ⅰ': "1",
	'Ⅱ': "2",
	'Ⅲ': "3",
	'Ⅳ': "4",
	'Ⅴ': "5",
	'Ⅵ': "6",
	'Ⅶ': "7",
	'Ⅷ': "8",
	'Ⅸ': "9",
	'Ⅹ': "10",
}

var romanNumeralTokens = map[string]string{
	"I":    "1",
	"II":   "2",
	"III":  "3",
	"IV":   "4",
	"V":    "5",
	"VI":   "6",
	"VII":  "7",
	"VIII": "8",
	"IX":   "9",
	"X":    "10",
}

const numeralClass = `[0-9零一二三四五六七八九十IVXⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩ]+`

// Applied in order. "season" goes before the bare "s" form so the longer
// marker is consumed whole.
var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)第\s*(` + numeralClass + `)\s*[季部集代]`),
	regexp.MustCompile(`(?i)\bseason\s*([0-9]+)`),
	regexp.MustCompile(`(?i)\bs\s*([0-9]+)`),
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// UnifyDigits rewrites single Chinese numerals, the Unicode Roman numeral
// runes and standalone upper-case ASCII Roman numerals (I to X) as Arabic
// digits. An ASCII run is only converted when the whole run of letters is a
// numeral, so "VII" becomes "7" but "VIP" is left alone.
func UnifyDigits(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(rs); {
		r := rs[i]
		if d, ok := chineseDigits[r]; ok {
			b.WriteString(d)
			i++
			continue
		}
		if d, ok := romanNumeralRunes[r]; ok {
			b.WriteString(d)
			i++
			continue
		}
		if isASCIILetter(r) {
			j := i
			for j < len(rs) && isASCIILetter(rs[j]) {
				j++
			}
			token := string(rs[i:j])
			if d, ok := romanNumeralTokens[token]; ok {
				b.WriteString(d)
			} else {
				b.WriteString(token)
			}
			i = j
			continue
		}
		b.WriteRune(r)
		i++
	}

	return b.String()
}

// CanonicalizeSeason replaces season, part, episode and generation markers
// (第N季, 第N部, 第N集, 第N代, SN, Season N) with their bare numeral group.
// Run UnifyDigits first when Arabic digits are wanted in the output.
func CanonicalizeSeason(text string) string {
	return rewriteSeason(text, "${1}")
}

// StripSeason removes season markers together with their numeral, leaving
// the title stem: "龙王传说第二季" becomes "龙王传说".
func StripSeason(text string) string {
	return strings.TrimSpace(rewriteSeason(text, ""))
}

// rewriteSeason repeats the substitution until nothing matches. Every
// replacement shortens the string, so the loop terminates, and stopping at
// a fixed point is what makes the transform idempotent ("第第2季季").
func rewriteSeason(text, repl string) string {
	for {
		next := text
		for _, re := range seasonPatterns {
			next = re.ReplaceAllString(next, repl)
		}
		if next == text {
			return next
		}
		text = next
	}
}
