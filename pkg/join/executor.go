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
	"context"
	"fmt"

	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/rs/zerolog/log"
)

// Sheet status values. Failures append a reason after the prefix.
const (
	StatusOK            = "ok"
	StatusSkippedPrefix = "skipped: "
	StatusErrorPrefix   = "error: "
)

// SheetStats summarizes the work done on one base sheet.
type SheetStats struct {
	Name   string
	Status string
	// RowsScanned counts data rows read, matched or not.
	RowsScanned int
	// RowsMatched counts updated rows plus appended rows.
	RowsMatched  int
	RowsAppended int
	CellErrors   int
}

// Executor applies a Plan to one base sheet, copying values from the
// reference sheet.
type Executor struct {
	Base     workbook.Sheet
	RefSheet workbook.Sheet
	progress *tracker
	RefIndex RefIndex
	tagReady bool
}

// Apply runs every op of plan in order. Cell failures are logged, counted
// and skipped. A failure to insert the provenance column aborts the sheet.
// Cancellation is checked between ops; the op in flight always completes.
func (e *Executor) Apply(ctx context.Context, plan Plan) (SheetStats, error) {
	stats := SheetStats{
		Name:        plan.Sheet,
		Status:      StatusOK,
		RowsScanned: plan.RowsScanned,
	}
	e.tagReady = false
	msg := "writing " + plan.Sheet

	var inserted, templateShift, lastTemplate int
	for _, op := range plan.Ops {
		switch op.Op {
		case OpInsertProvenanceColumn:
			if err := e.Base.InsertColumnAfter(op.Col); err != nil {
				return stats, fmt.Errorf("%w: failed to insert provenance column: %w", ErrCellIO, err)
			}
			e.write(&stats, workbook.HeaderRow, plan.ProvenanceCol, plan.ProvenanceHeader, nil)

		case OpClearTagColumn:
			e.clearColumn(&stats, op.Col)

		case OpUpdateRow:
			e.fill(&stats, plan, op, op.Row)
			stats.RowsMatched++

		case OpAppendRow:
			// Appends for one template arrive together. New rows go directly
			// below the template and any rows already appended for it.
			if op.Row != lastTemplate {
				lastTemplate = op.Row
				templateShift = inserted
			}
			template := op.Row + templateShift
			target := op.Row + inserted + 1

			if err := e.Base.InsertRowAfter(target - 1); err != nil {
				stats.CellErrors++
				log.Warn().
					Err(fmt.Errorf("%w: %w", ErrCellIO, err)).
					Str("sheet", plan.Sheet).
					Int("row", target).
					Str("matched_key", op.MatchedKey).
					Msg("row insert failed, skipping append")
				break
			}
			inserted++

			e.copyRow(&stats, template, target)
			e.clear(&stats, plan, target)
			e.fill(&stats, plan, op, target)
			stats.RowsMatched++
			stats.RowsAppended++

		case OpInsertTagColumn:
			e.ensureTagHeader(&stats, plan)
		}

		if err := e.progress.tick(ctx, msg); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (e *Executor) write(stats *SheetStats, row, col int, value any, style *workbook.Style) {
	if err := e.Base.WriteCell(row, col, value, style); err != nil {
		stats.CellErrors++
		log.Warn().
			Err(fmt.Errorf("%w: %w", ErrCellIO, err)).
			Str("sheet", e.Base.Name()).
			Int("row", row).
			Int("col", col).
			Msg("cell write failed, skipping")
	}
}

// fill writes the matched reference values, the provenance key and the tag
// into row.
func (e *Executor) fill(stats *SheetStats, plan Plan, op PlanOp, row int) {
	style := op.Color.Style()

	if refRow, ok := e.RefIndex.Row(op.MatchedKey); ok {
		for _, c := range plan.Columns {
			e.write(stats, row, c.BaseCol, readCell(e.RefSheet, refRow, c.RefCol), style)
		}
	} else {
		log.Warn().
			Str("sheet", plan.Sheet).
			Str("matched_key", op.MatchedKey).
			Msg("matched key missing from reference index")
	}

	if plan.ProvenanceCol > 0 {
		e.write(stats, row, plan.ProvenanceCol, op.MatchedKey, style)
	}

	if op.Tag && plan.TagCol > 0 {
		e.ensureTagHeader(stats, plan)
		e.write(stats, row, plan.TagCol, plan.TagValue, nil)
	}
}

// copyRow copies every cell of the template row verbatim, style included.
func (e *Executor) copyRow(stats *SheetStats, from, to int) {
	for col := 1; col <= e.Base.MaxCol(); col++ {
		if err := e.Base.CopyStyle(from, col, to, col); err != nil {
			stats.CellErrors++
			log.Warn().
				Err(fmt.Errorf("%w: %w", ErrCellIO, err)).
				Str("sheet", e.Base.Name()).
				Int("row", to).
				Int("col", col).
				Msg("template style copy failed")
		}

		v, err := e.Base.ReadCell(from, col)
		if err != nil {
			stats.CellErrors++
			log.Warn().
				Err(fmt.Errorf("%w: %w", ErrCellIO, err)).
				Str("sheet", e.Base.Name()).
				Int("row", from).
				Int("col", col).
				Msg("template cell read failed, leaving empty")
			continue
		}
		if v == nil {
			continue
		}
		e.write(stats, to, col, v, nil)
	}
}

// clear empties the columns fill is about to write.
func (e *Executor) clear(stats *SheetStats, plan Plan, row int) {
	for _, c := range plan.Columns {
		e.write(stats, row, c.BaseCol, nil, nil)
	}
	if plan.ProvenanceCol > 0 {
		e.write(stats, row, plan.ProvenanceCol, nil, nil)
	}
	if plan.TagCol > 0 {
		e.write(stats, row, plan.TagCol, nil, nil)
	}
}

// clearColumn empties every non-empty data cell of col.
func (e *Executor) clearColumn(stats *SheetStats, col int) {
	for row := workbook.FirstDataRow; row <= e.Base.MaxRow(); row++ {
		if readCell(e.Base, row, col) == "" {
			continue
		}
		e.write(stats, row, col, nil, nil)
	}
}

// ensureTagHeader writes the tag header once, unless the column already
// carries it.
func (e *Executor) ensureTagHeader(stats *SheetStats, plan Plan) {
	if e.tagReady || plan.TagCol == 0 {
		return
	}
	e.tagReady = true
	if readCell(e.Base, workbook.HeaderRow, plan.TagCol) == plan.TagHeader {
		return
	}
	e.write(stats, workbook.HeaderRow, plan.TagCol, plan.TagHeader, nil)
}
