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
	"sort"

	"github.com/ZaparooProject/sheetjoin/pkg/matcher"
	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/rs/zerolog/log"
)

// Op is the kind of a plan operation.
type Op int

const (
	OpInsertProvenanceColumn Op = iota + 1
	OpClearTagColumn
	OpUpdateRow
	OpAppendRow
	OpInsertTagColumn
)

func (o Op) String() string {
	switch o {
	case OpInsertProvenanceColumn:
		return "insert-provenance-column"
	case OpClearTagColumn:
		return "clear-tag-column"
	case OpUpdateRow:
		return "update"
	case OpAppendRow:
		return "append"
	case OpInsertTagColumn:
		return "insert-tag-column"
	default:
		return "unknown"
	}
}

// PlanOp is one step of a Plan. Row is the target row of an update and the
// template row of an append, both in the numbering before any append runs.
// Col is the column an insert op works on.
type PlanOp struct {
	BaseKey    string
	MatchedKey string
	Op         Op
	Row        int
	Col        int
	Tier       matcher.Tier
	Kind       matcher.Kind
	Color      Color
	Tag        bool
}

// ColumnPair is a Pair resolved to column numbers. BaseCol is in the
// numbering after the provenance column is inserted.
type ColumnPair struct {
	Pair
	BaseCol int
	RefCol  int
}

// Plan is the full set of changes for one base sheet. Ops are ordered:
// provenance column, clearing a reused tag column, updates by ascending
// row, appends by ascending template row, tag column.
type Plan struct {
	Sheet            string
	TagValue         string
	TagHeader        string
	ProvenanceHeader string
	Columns          []ColumnPair
	Ops              []PlanOp
	KeyCol           int
	// ProvenanceCol and TagCol are 0 when the plan has no such column.
	ProvenanceCol int
	TagCol        int
	RowsScanned   int
}

// Updates returns the number of update operations.
func (p Plan) Updates() int {
	return p.count(OpUpdateRow)
}

// Appends returns the number of append operations, which is also the number
// of rows the plan adds to the sheet.
func (p Plan) Appends() int {
	return p.count(OpAppendRow)
}

func (p Plan) count(op Op) int {
	n := 0
	for _, o := range p.Ops {
		if o.Op == op {
			n++
		}
	}
	return n
}

// Layout describes the base sheet as found before any change.
type Layout struct {
	Sheet string
	// LastHeader is the header of column MaxCol.
	LastHeader string
	Columns    []ColumnPair
	KeyCol     int
	MaxCol     int
}

// PlanInput carries everything BuildPlan needs.
type PlanInput struct {
	Session    *matcher.Session
	Candidates *matcher.CandidateSet
	Base       BaseIndex
	Ref        RefIndex
	Layout     Layout
	Options    Options
}

// ResolveLayout finds the key column and resolves data column pairs on one
// base sheet. A missing key column is returned as a *ColumnError; pairs
// whose base or reference column is missing are dropped with a warning.
func ResolveLayout(base, ref workbook.Sheet, opts Options) (Layout, error) {
	keyCol, ok := base.FindHeader(opts.BaseKeyColumn)
	if !ok {
		return Layout{}, &ColumnError{Sheet: base.Name(), Column: opts.BaseKeyColumn, Key: true}
	}

	layout := Layout{
		Sheet:   base.Name(),
		KeyCol:  keyCol,
		MaxCol:  base.MaxCol(),
		Columns: ResolvePairs(base, ref, opts.Pairs),
	}
	if layout.MaxCol > 0 {
		layout.LastHeader = readCell(base, workbook.HeaderRow, layout.MaxCol)
	}
	return layout, nil
}

// ResolvePairs keeps the pairs whose columns exist on both sheets.
func ResolvePairs(base, ref workbook.Sheet, pairs []Pair) []ColumnPair {
	resolved := make([]ColumnPair, 0, len(pairs))
	for _, p := range pairs {
		baseCol, ok := base.FindHeader(p.Base)
		if !ok {
			log.Warn().
				Err(&ColumnError{Sheet: base.Name(), Column: p.Base}).
				Str("sheet", base.Name()).
				Str("column", p.Base).
				Msg("dropping data column pair")
			continue
		}
		refCol, ok := ref.FindHeader(p.Reference)
		if !ok {
			log.Warn().
				Err(&ColumnError{Sheet: ref.Name(), Column: p.Reference}).
				Str("sheet", base.Name()).
				Str("column", p.Reference).
				Msg("dropping data column pair")
			continue
		}
		resolved = append(resolved, ColumnPair{Pair: p, BaseCol: baseCol, RefCol: refCol})
	}
	return resolved
}

// BuildPlan decides every change to one base sheet. It does not touch the
// workbook.
func BuildPlan(in PlanInput) Plan {
	opts := in.Options.WithDefaults()
	layout := in.Layout

	// Column numbers right of the key column move one place when the
	// provenance column goes in.
	shift := func(col int) int {
		if opts.Fuzzy && col > layout.KeyCol {
			return col + 1
		}
		return col
	}

	plan := Plan{
		Sheet:            layout.Sheet,
		KeyCol:           layout.KeyCol,
		TagValue:         opts.TagValue,
		TagHeader:        opts.TagHeader,
		ProvenanceHeader: opts.ProvenanceHeader,
		RowsScanned:      in.Base.Scanned,
	}
	for _, c := range layout.Columns {
		c.BaseCol = shift(c.BaseCol)
		plan.Columns = append(plan.Columns, c)
	}

	maxCol := layout.MaxCol
	if opts.Fuzzy {
		plan.ProvenanceCol = layout.KeyCol + 1
		maxCol = max(layout.MaxCol, layout.KeyCol) + 1
		plan.Ops = append(plan.Ops, PlanOp{Op: OpInsertProvenanceColumn, Col: layout.KeyCol})
	}

	if opts.TagEnabled {
		plan.TagCol = maxCol + 1
		if layout.LastHeader != "" && layout.LastHeader == opts.TagHeader && layout.MaxCol != layout.KeyCol {
			// A tag column left by an earlier run is emptied first so only
			// rows matched now carry a tag.
			plan.TagCol = shift(layout.MaxCol)
			plan.Ops = append(plan.Ops, PlanOp{Op: OpClearTagColumn, Col: plan.TagCol})
		}
	}

	var updates, appends []PlanOp
	for _, key := range in.Base.Keys {
		res := matchKey(in, opts, key)
		if !res.Matched() {
			continue
		}

		color := ColorFor(res.Tier, res.Kind)
		rows := in.Base.Rows[key]
		op := PlanOp{
			BaseKey: key,
			Tier:    res.Tier,
			Kind:    res.Kind,
			Color:   color,
			Tag:     opts.TagEnabled,
		}

		for _, row := range rows {
			update := op
			update.Op = OpUpdateRow
			update.Row = row
			update.MatchedKey = res.Keys[0]
			updates = append(updates, update)
		}
		for _, m := range res.Keys[1:] {
			app := op
			app.Op = OpAppendRow
			app.Row = rows[0]
			app.MatchedKey = m
			appends = append(appends, app)
		}
	}

	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].Row < updates[j].Row
	})
	sort.SliceStable(appends, func(i, j int) bool {
		return appends[i].Row < appends[j].Row
	})
	plan.Ops = append(plan.Ops, updates...)
	plan.Ops = append(plan.Ops, appends...)
	if opts.TagEnabled {
		plan.Ops = append(plan.Ops, PlanOp{Op: OpInsertTagColumn, Col: plan.TagCol})
	}

	log.Debug().
		Str("sheet", plan.Sheet).
		Int("keys", len(in.Base.Keys)).
		Int("updates", len(updates)).
		Int("appends", len(appends)).
		Msg("built join plan")

	return plan
}

// matchKey runs the exact lookup or the matcher depending on the options.
func matchKey(in PlanInput, opts Options, key string) matcher.Result {
	if !opts.Fuzzy {
		if _, ok := in.Ref.Row(key); ok {
			return matcher.Result{Tier: matcher.TierExact, Kind: matcher.KindExact, Keys: []string{key}}
		}
		return matcher.Result{}
	}

	if opts.Advanced {
		return in.Session.MatchTopN(key, in.Candidates, opts.MaxMatches)
	}
	return in.Session.Match(key, in.Candidates)
}
