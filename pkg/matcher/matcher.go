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

package matcher

import (
	"slices"
	"sort"
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/scoring"
	"github.com/ZaparooProject/sheetjoin/pkg/textnorm"
	"github.com/ZaparooProject/sheetjoin/pkg/variants"
	"github.com/rs/zerolog/log"
)

// ShortTextMaxRunes is the longest stripped key still treated as short text.
const ShortTextMaxRunes = 2

type cacheKey struct {
	base  string
	set   string
	limit int
}

// Session carries the caches of a single join invocation. Create one per
// invocation and drop it afterwards; a Session is not safe for concurrent use.
type Session struct {
	variants *variants.Cache
	matches  map[cacheKey]Result
}

// Result key slices are shared with the cache and must not be modified.

// NewSession returns a session with empty caches.
func NewSession() *Session {
	return &Session{
		variants: variants.NewCache(),
		matches:  make(map[cacheKey]Result),
	}
}

// Reset clears both caches.
func (s *Session) Reset() {
	s.variants.Reset()
	clear(s.matches)
}

// CachedMatches returns the number of memoized match decisions.
func (s *Session) CachedMatches() int {
	return len(s.matches)
}

// Variants returns the cached variants of key.
func (s *Session) Variants(key string) ([]string, error) {
	return s.variants.Get(key)
}

// Match runs a single-best query: exact and variant tiers return every
// matching candidate, the containment tier returns the top scorer only.
func (s *Session) Match(base string, set *CandidateSet) Result {
	return s.lookup(base, set, 0)
}

// MatchTopN runs a top-N query: variant and containment hits are ordered by
// score and truncated to n. A non-positive n behaves like Match.
func (s *Session) MatchTopN(base string, set *CandidateSet, n int) Result {
	if n < 1 {
		n = 0
	}
	return s.lookup(base, set, n)
}

func (s *Session) lookup(base string, set *CandidateSet, limit int) Result {
	if strings.TrimSpace(base) == "" || set == nil || set.Len() == 0 {
		return Result{}
	}

	key := cacheKey{base: base, set: set.cacheKey, limit: limit}
	if r, ok := s.matches[key]; ok {
		return r
	}

	r := s.classify(base, set, limit)
	s.matches[key] = r

	if r.Matched() {
		log.Debug().
			Str("base_key", base).
			Str("tier", r.Tier.String()).
			Str("kind", r.Kind.String()).
			Strs("matches", r.Keys).
			Msg("match decision")
	}

	return r
}

func (s *Session) classify(base string, set *CandidateSet, limit int) Result {
	for _, c := range set.keys {
		if c == base {
			return Result{Tier: TierExact, Kind: KindExact, Keys: []string{base}}
		}
	}

	if hits := s.variantHits(base, set); len(hits) > 0 {
		if limit > 0 {
			hits = rankTop(base, hits, limit)
		}
		return Result{Tier: TierVariant, Kind: KindVariant, Keys: hits}
	}

	hits, kind := containmentHits(base, set)
	if len(hits) == 0 {
		return Result{}
	}
	if limit > 0 {
		hits = rankTop(base, hits, limit)
	} else {
		hits = []string{bestScorer(base, hits)}
	}
	return Result{Tier: TierContainment, Kind: kind, Keys: hits}
}

// variantHits returns every candidate sharing a variant with base. A key
// with a season or episode marker also matches, through its stem, a key
// that has no marker at all.
func (s *Session) variantHits(base string, set *CandidateSet) []string {
	baseVariants, err := s.variants.Get(base)
	if err != nil {
		return nil
	}
	lookup := toSet(baseVariants)
	baseStem := s.variants.Stem(base)

	var hits []string
	for _, c := range set.keys {
		candidateVariants, err := s.variants.Get(c)
		if err != nil {
			continue
		}
		if intersects(lookup, candidateVariants) {
			hits = append(hits, c)
			continue
		}

		candidateStem := s.variants.Stem(c)
		switch {
		case baseStem != "" && candidateStem == "":
			if slices.Contains(candidateVariants, baseStem) {
				hits = append(hits, c)
			}
		case baseStem == "" && candidateStem != "":
			if _, ok := lookup[candidateStem]; ok {
				hits = append(hits, c)
			}
		}
	}
	return hits
}

func toSet(vs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return set
}

func intersects(set map[string]struct{}, vs []string) bool {
	for _, v := range vs {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// containmentHits returns the normal hits when any exist, otherwise the
// short hits.
func containmentHits(base string, set *CandidateSet) ([]string, Kind) {
	lowerBase := strings.ToLower(base)

	var normal, short []string
	for _, c := range set.keys {
		lowerC := strings.ToLower(c)
		if !strings.Contains(lowerC, lowerBase) && !strings.Contains(lowerBase, lowerC) {
			continue
		}
		if IsShortText(base, c) {
			short = append(short, c)
		} else {
			normal = append(normal, c)
		}
	}

	if len(normal) > 0 {
		return normal, KindContainmentNormal
	}
	if len(short) > 0 {
		return short, KindContainmentShort
	}
	return nil, KindNone
}

// IsShortText reports whether, once lower-cased and stripped of symbols,
// one side is at most ShortTextMaxRunes long and contained in the other.
func IsShortText(a, b string) bool {
	sa := textnorm.StripSymbols(strings.ToLower(a))
	sb := textnorm.StripSymbols(strings.ToLower(b))

	if len([]rune(sa)) <= ShortTextMaxRunes && strings.Contains(sb, sa) {
		return true
	}
	return len([]rune(sb)) <= ShortTextMaxRunes && strings.Contains(sa, sb)
}

// bestScorer returns the highest scoring candidate. Ties go to the earlier one.
func bestScorer(base string, hits []string) string {
	best := hits[0]
	bestScore := scoring.Score(base, best)
	for _, c := range hits[1:] {
		if sc := scoring.Score(base, c); sc > bestScore {
			best, bestScore = c, sc
		}
	}
	return best
}

// rankTop orders hits by descending score, keeping candidate order on ties,
// and keeps at most n.
func rankTop(base string, hits []string, n int) []string {
	type scored struct {
		key   string
		score float64
	}

	ranked := make([]scored, len(hits))
	for i, c := range hits {
		ranked[i] = scored{key: c, score: scoring.Score(base, c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.key
	}
	return out
}
