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

// Package textnorm provides the deterministic string cleaning used by key
// matching: width folding for a closed punctuation table, case and space
// handling, symbol stripping, and numeral and season marker canonicalization.
//
// Every exported transform is idempotent: applying it to its own output
// returns the output unchanged.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Options selects the optional stages of Normalize.
type Options struct {
	CollapseSpaces bool
	Lower          bool
	StripSymbols   bool
}

// Aggressive enables every optional stage.
var Aggressive = Options{CollapseSpaces: true, Lower: true, StripSymbols: true}

// fullwidthReplacer folds fullwidth punctuation to its ASCII form. The table
// is closed; callers cannot extend it.
var fullwidthReplacer = strings.NewReplacer(
	"：", ":",
	"（", "(",
	"）", ")",
	"！", "!",
	"－", "-",
	"—", "-",
	"【", "[",
	"】", "]",
	"？", "?",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"　", " ",
)

// lightReplacer covers the three substitutions used for the light symbol variant.
var lightReplacer = strings.NewReplacer(
	"：", ":",
	"（", "(",
	"）", ")",
)

// IsIdeograph reports whether r is in the CJK Unified Ideographs block.
func IsIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// IsWordRune reports whether r is a letter, a number or an underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Normalize trims text and applies, in order: optional lower-casing, the
// fullwidth punctuation table, optional whitespace removal and optional
// symbol stripping. The result is trimmed again so that a fullwidth space at
// either end cannot survive a second pass.
func Normalize(text string, opts Options) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if opts.Lower {
		text = strings.ToLower(text)
	}

	text = fullwidthReplacer.Replace(text)

	if opts.CollapseSpaces {
		text = removeSpaces(text)
	}

	if opts.StripSymbols {
		text = StripSymbols(text)
	}

	return strings.TrimSpace(text)
}

// LightSymbols applies only the colon and parenthesis substitutions.
func LightSymbols(text string) string {
	return lightReplacer.Replace(text)
}

// StripSymbols removes every rune that is neither a word rune nor an ideograph.
func StripSymbols(s string) string {
	symbols := runes.Predicate(func(r rune) bool {
		return !IsWordRune(r) && !IsIdeograph(r)
	})
	if result, _, err := transform.String(runes.Remove(symbols), s); err == nil {
		return result
	}
	return s
}

func removeSpaces(s string) string {
	if result, _, err := transform.String(runes.Remove(runes.Predicate(unicode.IsSpace)), s); err == nil {
		return result
	}
	return s
}
