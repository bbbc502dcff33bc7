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

	"github.com/ZaparooProject/sheetjoin/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testBaseIndex(keys ...string) BaseIndex {
	idx := BaseIndex{Rows: make(map[string][]int)}
	for i, k := range keys {
		idx.Scanned++
		if k == "" {
			continue
		}
		if _, ok := idx.Rows[k]; !ok {
			idx.Keys = append(idx.Keys, k)
		}
		idx.Rows[k] = append(idx.Rows[k], i+2)
	}
	return idx
}

func testRefIndex(keys ...string) RefIndex {
	idx := RefIndex{Rows: make(map[string]int)}
	for i, k := range keys {
		if _, ok := idx.Rows[k]; ok {
			continue
		}
		idx.Rows[k] = i + 2
		idx.Keys = append(idx.Keys, k)
	}
	return idx
}

func testPlanInput(base BaseIndex, ref RefIndex, opts Options) PlanInput {
	return PlanInput{
		Session:    matcher.NewSession(),
		Candidates: matcher.NewCandidateSet(ref.Keys),
		Base:       base,
		Ref:        ref,
		Layout: Layout{
			Sheet:  "S1",
			KeyCol: 1,
			MaxCol: 3,
			Columns: []ColumnPair{
				{Pair: Pair{Base: "a", Reference: "titleA"}, BaseCol: 2, RefCol: 2},
				{Pair: Pair{Base: "b", Reference: "titleB"}, BaseCol: 3, RefCol: 3},
			},
			LastHeader: "b",
		},
		Options: opts,
	}
}

func opsOf(plan Plan) []Op {
	ops := make([]Op, len(plan.Ops))
	for i, o := range plan.Ops {
		ops[i] = o.Op
	}
	return ops
}

func TestBuildPlan_Exact(t *testing.T) {
	t.Parallel()

	plan := BuildPlan(testPlanInput(
		testBaseIndex("Album", "Other", "Album"),
		testRefIndex("Album"),
		Options{},
	))

	assert.Equal(t, []Op{OpUpdateRow, OpUpdateRow}, opsOf(plan))
	assert.Equal(t, 2, plan.Ops[0].Row)
	assert.Equal(t, 4, plan.Ops[1].Row)
	assert.Equal(t, Black, plan.Ops[0].Color)
	assert.Zero(t, plan.ProvenanceCol)
	assert.Zero(t, plan.TagCol)
	assert.Equal(t, 3, plan.RowsScanned)
	assert.Equal(t, 2, plan.Columns[0].BaseCol, "no shift without a provenance column")
}

func TestBuildPlan_ExactIgnoresVariants(t *testing.T) {
	t.Parallel()

	plan := BuildPlan(testPlanInput(
		testBaseIndex("album"),
		testRefIndex("Album"),
		Options{},
	))
	assert.Empty(t, plan.Ops)
}

func TestBuildPlan_FuzzyShiftsColumns(t *testing.T) {
	t.Parallel()

	plan := BuildPlan(testPlanInput(
		testBaseIndex("龙王传说第二季"),
		testRefIndex("龙王传说"),
		Options{Fuzzy: true},
	))

	require.Equal(t, []Op{OpInsertProvenanceColumn, OpUpdateRow}, opsOf(plan))
	assert.Equal(t, 1, plan.Ops[0].Col)
	assert.Equal(t, 2, plan.ProvenanceCol)
	assert.Equal(t, 3, plan.Columns[0].BaseCol)
	assert.Equal(t, 4, plan.Columns[1].BaseCol)
	assert.Equal(t, "龙王传说", plan.Ops[1].MatchedKey)
	assert.Equal(t, DarkGreen, plan.Ops[1].Color)
	assert.Equal(t, DefaultProvenanceHeader, plan.ProvenanceHeader)
}

func TestBuildPlan_TopNAppends(t *testing.T) {
	t.Parallel()

	plan := BuildPlan(testPlanInput(
		testBaseIndex("关于A的故事", "Other", "关于A的故事", "A"),
		testRefIndex("A", "A的故事", "关于A"),
		Options{Fuzzy: true, Advanced: true, MaxMatches: 3},
	))

	require.Equal(t, []Op{
		OpInsertProvenanceColumn,
		OpUpdateRow, OpUpdateRow, OpUpdateRow,
		OpAppendRow,
	}, opsOf(plan))

	assert.Equal(t, 2, plan.Ops[1].Row)
	assert.Equal(t, "A的故事", plan.Ops[1].MatchedKey)
	assert.Equal(t, 4, plan.Ops[2].Row)
	assert.Equal(t, 5, plan.Ops[3].Row)
	assert.Equal(t, "A", plan.Ops[3].MatchedKey)
	assert.Equal(t, matcher.TierExact, plan.Ops[3].Tier)

	app := plan.Ops[4]
	assert.Equal(t, 2, app.Row, "appends use the first row of the key as template")
	assert.Equal(t, "关于A", app.MatchedKey)
	assert.Equal(t, DeepBlue, app.Color)
	assert.Equal(t, 1, plan.Appends())
	assert.Equal(t, 3, plan.Updates())
}

func TestBuildPlan_Tag(t *testing.T) {
	t.Parallel()

	in := testPlanInput(testBaseIndex("Album", "Nope"), testRefIndex("Album"), Options{TagEnabled: true, TagValue: "X"})
	in.Layout.Columns = nil

	plan := BuildPlan(in)
	require.Equal(t, []Op{OpUpdateRow, OpInsertTagColumn}, opsOf(plan))
	assert.Equal(t, 4, plan.TagCol)
	assert.True(t, plan.Ops[0].Tag)
	assert.Equal(t, "X", plan.TagValue)
}

func TestBuildPlan_TagReusesLastColumn(t *testing.T) {
	t.Parallel()

	in := testPlanInput(testBaseIndex("Album"), testRefIndex("Album"), Options{Fuzzy: true, TagEnabled: true})
	in.Layout.LastHeader = DefaultTagHeader

	plan := BuildPlan(in)
	assert.Equal(t, 4, plan.TagCol, "column 3 moves to 4 once the provenance column is in")
	require.Equal(t, []Op{OpInsertProvenanceColumn, OpClearTagColumn, OpUpdateRow, OpInsertTagColumn}, opsOf(plan))
	assert.Equal(t, 4, plan.Ops[1].Col)

	in.Options.Fuzzy = false
	plan = BuildPlan(in)
	assert.Equal(t, 3, plan.TagCol)
	require.Equal(t, []Op{OpClearTagColumn, OpUpdateRow, OpInsertTagColumn}, opsOf(plan))
	assert.Equal(t, 3, plan.Ops[0].Col)
}

func TestBuildPlan_FreshTagColumnIsNotCleared(t *testing.T) {
	t.Parallel()

	in := testPlanInput(testBaseIndex("Album"), testRefIndex("Album"), Options{TagEnabled: true})
	plan := BuildPlan(in)
	assert.NotContains(t, opsOf(plan), OpClearTagColumn)
}

// ============================================================================
// Properties
// ============================================================================

func TestPropertyPlanOrdering(t *testing.T) {
	t.Parallel()
	keys := []string{"A", "A的故事", "关于A", "关于A的故事", "人", "我和人和狗", "龙王传说", "龙王传说第二季", "", "x"}
	rapid.Check(t, func(t *rapid.T) {
		baseKeys := rapid.SliceOfN(rapid.SampledFrom(keys), 0, 12).Draw(t, "base")
		refKeys := rapid.SliceOfN(rapid.SampledFrom(keys[:8]), 0, 6).Draw(t, "ref")
		opts := Options{
			Fuzzy:      rapid.Bool().Draw(t, "fuzzy"),
			TagEnabled: rapid.Bool().Draw(t, "tag"),
			MaxMatches: rapid.IntRange(1, 4).Draw(t, "n"),
		}
		opts.Advanced = opts.Fuzzy && rapid.Bool().Draw(t, "advanced")

		ref := testRefIndex(refKeys...)
		plan := BuildPlan(testPlanInput(testBaseIndex(baseKeys...), ref, opts))

		// Phases never go backwards: provenance, updates, appends, tag.
		lastPhase := 0
		lastRow := map[Op]int{}
		provenance, tags := 0, 0
		for _, op := range plan.Ops {
			phase := int(op.Op)
			if phase < lastPhase {
				t.Fatalf("op %v after phase %d", op.Op, lastPhase)
			}
			lastPhase = phase
			if op.Row < lastRow[op.Op] {
				t.Fatalf("%v rows not ascending: %d after %d", op.Op, op.Row, lastRow[op.Op])
			}
			lastRow[op.Op] = op.Row

			switch op.Op {
			case OpInsertProvenanceColumn:
				provenance++
			case OpInsertTagColumn:
				tags++
			case OpUpdateRow, OpAppendRow:
				if _, ok := ref.Row(op.MatchedKey); !ok {
					t.Fatalf("matched key %q not in reference", op.MatchedKey)
				}
			}
		}
		if provenance > 1 || tags > 1 {
			t.Fatalf("%d provenance and %d tag column ops", provenance, tags)
		}
		if (provenance == 1) != opts.Fuzzy {
			t.Fatalf("provenance column op present=%v with fuzzy=%v", provenance == 1, opts.Fuzzy)
		}
	})
}
