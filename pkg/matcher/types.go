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

// Package matcher classifies a base key against a set of reference keys
// into one of three priority tiers. Tiers are disjoint: once a tier
// produces a hit, lower tiers are never consulted.
package matcher

import (
	"sort"
	"strings"
)

// Tier is the priority of a match. Lower values win.
type Tier int

const (
	// TierNone is the zero value and means no candidate matched.
	TierNone Tier = iota
	// TierExact is raw string equality.
	TierExact
	// TierVariant means the variant sets of both keys intersect.
	TierVariant
	// TierContainment means one lower-cased key contains the other.
	TierContainment
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierExact:
		return "exact"
	case TierVariant:
		return "variant"
	case TierContainment:
		return "containment"
	default:
		return "unknown"
	}
}

// Kind refines a tier. Containment hits are either normal or short.
type Kind int

const (
	KindNone Kind = iota
	KindExact
	KindVariant
	KindContainmentNormal
	KindContainmentShort
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExact:
		return "exact"
	case KindVariant:
		return "variant"
	case KindContainmentNormal:
		return "containment-normal"
	case KindContainmentShort:
		return "containment-short"
	default:
		return "unknown"
	}
}

// Result is the outcome of one match query. The zero value is a miss.
// For TierExact, Keys is always the base key alone.
type Result struct {
	Keys []string
	Tier Tier
	Kind Kind
}

// Matched reports whether the query produced a hit.
func (r Result) Matched() bool {
	return r.Tier != TierNone && len(r.Keys) > 0
}

// CandidateSet is an ordered, duplicate-free list of reference keys. Its
// order decides tie-breaks; its sorted form identifies it in the match cache.
type CandidateSet struct {
	cacheKey string
	keys     []string
}

// NewCandidateSet drops empty and repeated keys, keeping the first
// occurrence of each.
func NewCandidateSet(keys []string) *CandidateSet {
	seen := make(map[string]struct{}, len(keys))
	kept := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, k)
	}

	sorted := make([]string, len(kept))
	copy(sorted, kept)
	sort.Strings(sorted)

	return &CandidateSet{
		keys:     kept,
		cacheKey: strings.Join(sorted, "\x00"),
	}
}

// Keys returns the candidates in their original order.
func (c *CandidateSet) Keys() []string {
	return c.keys
}

// Len returns the number of candidates.
func (c *CandidateSet) Len() int {
	return len(c.keys)
}
