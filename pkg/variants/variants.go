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

// Package variants expands a key into a small, ordered set of plausible
// spellings. The matcher compares variant sets, so both the order and the
// cap are part of the contract.
package variants

import (
	"errors"
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/textnorm"
)

const (
	// MaxVariants bounds the output of Generate. Variant intersection in the
	// matcher is quadratic in this number.
	MaxVariants = 15
	// MaxConjunctionVariants bounds the conjunction rewrite family.
	MaxConjunctionVariants = 3
)

// ErrBadInput is returned for empty or whitespace-only keys.
var ErrBadInput = errors.New("variants: empty key")

type conjunctionRewrite struct {
	from []string
	to   string
}

var conjunctionRewrites = []conjunctionRewrite{
	{from: []string{"之", "的", "和"}, to: ""},
	{from: []string{"之"}, to: "的"},
	{from: []string{"的"}, to: "之"},
	{from: []string{"和"}, to: "的"},
}

// Generate returns the variants of s. The first element is always s itself
// and the result never holds more than MaxVariants entries.
func Generate(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrBadInput
	}

	b := newBuilder(s)

	unified := textnorm.UnifyDigits(s)
	b.add(unified)
	b.add(textnorm.CanonicalizeSeason(s))
	b.add(textnorm.CanonicalizeSeason(unified))

	for _, v := range conjunctionVariants(s) {
		b.add(v)
	}

	b.add(strings.ToLower(s))
	b.add(textnorm.Normalize(s, textnorm.Aggressive))
	b.add(textnorm.LightSymbols(s))

	return b.out, nil
}

// Stem returns s with its season or episode marker removed, or "" when s
// carries no marker. A stem is not a variant: it may only be compared with
// the variants of a key that has no marker of its own, so two different
// seasons of one title never meet through their stems.
func Stem(s string) string {
	unified := strings.TrimSpace(textnorm.UnifyDigits(s))
	stem := textnorm.StripSeason(unified)
	if stem == "" || stem == unified {
		return ""
	}
	return stem
}

// conjunctionVariants rewrites the connective particles 之, 的 and 和.
// Rewrites that leave s unchanged are not counted against the family cap.
func conjunctionVariants(s string) []string {
	out := make([]string, 0, MaxConjunctionVariants)
	for _, rw := range conjunctionRewrites {
		if len(out) == MaxConjunctionVariants {
			break
		}
		v := s
		for _, from := range rw.from {
			v = strings.ReplaceAll(v, from, rw.to)
		}
		if v == s || v == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

type builder struct {
	seen map[string]struct{}
	out  []string
}

func newBuilder(s string) *builder {
	return &builder{
		seen: map[string]struct{}{s: {}},
		out:  []string{s},
	}
}

func (b *builder) add(v string) {
	if v == "" || len(b.out) >= MaxVariants {
		return
	}
	if _, ok := b.seen[v]; ok {
		return
	}
	b.seen[v] = struct{}{}
	b.out = append(b.out, v)
}
