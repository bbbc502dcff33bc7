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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/sheetjoin/pkg/matcher"
	"github.com/ZaparooProject/sheetjoin/pkg/report"
	"github.com/ZaparooProject/sheetjoin/pkg/scoring"
	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Deps are the collaborators of Run. Zero values fall back to the OS
// filesystem, the real clock and no audit report.
type Deps struct {
	Fs       afero.Fs
	Clock    clockwork.Clock
	Reporter *report.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return d
}

// Result is the outcome of one invocation.
type Result struct {
	RunID      string
	ReportPath string
	Sheets     []SheetStats
	// Totals are sums over the sheets in Sheets.
	TotalScanned int
	TotalMatched int
	Elapsed      time.Duration
}

// Stats returns the stats for the named sheet.
func (r Result) Stats(sheet string) (SheetStats, bool) {
	for _, s := range r.Sheets {
		if s.Name == sheet {
			return s, true
		}
	}
	return SheetStats{}, false
}

// run holds the state of one invocation.
type run struct {
	deps       Deps
	opts       Options
	logger     zerolog.Logger
	base       *workbook.File
	refSheet   workbook.Sheet
	session    *matcher.Session
	candidates *matcher.CandidateSet
	progress   *tracker
	ref        RefIndex
	runID      string
}

// Run joins the reference sheet into the selected base sheets and saves
// the base workbook once at the end. Invocation level failures return
// before anything is saved. Sheet level failures are recorded in the
// sheet's status and the remaining sheets still run. On cancellation the
// workbook is saved and an error wrapping ErrCancelled is returned along
// with the partial result.
func Run(ctx context.Context, deps Deps, opts Options, progress ProgressFunc) (Result, error) {
	deps = deps.withDefaults()
	opts = opts.WithDefaults()

	r := &run{
		deps:  deps,
		opts:  opts,
		runID: uuid.NewString(),
	}
	r.logger = log.With().Str("run_id", r.runID).Logger()
	start := deps.Clock.Now()
	result := Result{RunID: r.runID}

	if err := opts.Validate(); err != nil {
		return result, err
	}

	refBook, err := openWorkbook(deps.Fs, opts.ReferencePath)
	if err != nil {
		return result, err
	}
	defer closeWorkbook(refBook)

	r.refSheet, err = refBook.Sheet(opts.ReferenceSheet)
	if err != nil {
		return result, fmt.Errorf("%w: reference sheet %q: %w", ErrSheetMissing, opts.ReferenceSheet, err)
	}
	refKeyCol, ok := r.refSheet.FindHeader(opts.ReferenceKeyColumn)
	if !ok {
		return result, &ColumnError{Sheet: opts.ReferenceSheet, Column: opts.ReferenceKeyColumn, Key: true}
	}

	r.base, err = openWorkbook(deps.Fs, opts.BasePath)
	if err != nil {
		return result, err
	}
	defer closeWorkbook(r.base)

	sheets, err := selectSheets(r.base, opts.BaseSheet)
	if err != nil {
		return result, err
	}

	r.ref = BuildRefIndex(r.refSheet, refKeyCol)
	r.session = matcher.NewSession()
	r.candidates = matcher.NewCandidateSet(r.ref.Keys)
	r.progress = newTracker(progress, totalRows(sheets))
	if deps.Reporter != nil {
		deps.Reporter.Begin(r.runID)
	}

	r.logger.Info().
		Str("base", opts.BasePath).
		Str("reference", opts.ReferencePath).
		Int("sheets", len(sheets)).
		Int("reference_keys", len(r.ref.Keys)).
		Bool("fuzzy", opts.Fuzzy).
		Bool("advanced", opts.Advanced).
		Msg("starting join")

	var cancelErr error
	for _, sheet := range sheets {
		stats, err := r.sheet(ctx, sheet)
		result.Sheets = append(result.Sheets, stats)
		if errors.Is(err, ErrCancelled) {
			cancelErr = err
			break
		}
	}

	for _, s := range result.Sheets {
		result.TotalScanned += s.RowsScanned
		result.TotalMatched += s.RowsMatched
	}

	if err := r.base.Save(opts.BasePath); err != nil {
		result.Elapsed = deps.Clock.Since(start)
		return result, fmt.Errorf("%w: %w", ErrSave, err)
	}

	if deps.Reporter != nil {
		path, err := deps.Reporter.Flush()
		if err != nil {
			r.logger.Warn().Err(err).Msg("failed to write match report")
		} else {
			result.ReportPath = path
		}
	}

	result.Elapsed = deps.Clock.Since(start)
	_ = r.progress.report(context.Background(), "done")

	r.logger.Info().
		Int("scanned", result.TotalScanned).
		Int("matched", result.TotalMatched).
		Dur("elapsed", result.Elapsed).
		Msg("join finished")

	return result, cancelErr
}

// sheet processes one base sheet. Only cancellation is returned as an
// error; every other failure ends up in the returned status.
func (r *run) sheet(ctx context.Context, sheet workbook.Sheet) (SheetStats, error) {
	name := sheet.Name()
	stats := SheetStats{Name: name}
	rows := max(sheet.MaxRow()-1, 0)

	if err := r.progress.report(ctx, "processing sheet "+name); err != nil {
		stats.Status = StatusSkippedPrefix + "cancelled"
		return stats, err
	}

	layout, err := ResolveLayout(sheet, r.refSheet, r.opts)
	if err != nil {
		r.logger.Warn().Err(err).Str("sheet", name).Msg("skipping sheet")
		stats.Status = StatusErrorPrefix + err.Error()
		r.progress.skip(rows)
		return stats, nil
	}
	if len(layout.Columns) == 0 && !r.opts.TagEnabled {
		r.logger.Warn().Str("sheet", name).Msg("no valid data columns, skipping sheet")
		stats.Status = StatusSkippedPrefix + "no valid data columns"
		r.progress.skip(rows)
		return stats, nil
	}

	index, err := BuildBaseIndex(ctx, sheet, layout.KeyCol, r.progress)
	if err != nil {
		stats.RowsScanned = index.Scanned
		stats.Status = StatusSkippedPrefix + "cancelled"
		return stats, err
	}

	plan := BuildPlan(PlanInput{
		Session:    r.session,
		Candidates: r.candidates,
		Base:       index,
		Ref:        r.ref,
		Layout:     layout,
		Options:    r.opts,
	})

	exec := &Executor{
		Base:     sheet,
		RefSheet: r.refSheet,
		RefIndex: r.ref,
		progress: r.progress,
	}
	stats, err = exec.Apply(ctx, plan)
	r.record(plan)

	switch {
	case errors.Is(err, ErrCancelled):
		stats.Status = StatusSkippedPrefix + "cancelled"
		return stats, err
	case err != nil:
		r.logger.Error().Err(err).Str("sheet", name).Msg("sheet failed")
		stats.Status = StatusErrorPrefix + err.Error()
		return stats, nil
	}

	r.logger.Info().
		Str("sheet", name).
		Int("scanned", stats.RowsScanned).
		Int("matched", stats.RowsMatched).
		Int("appended", stats.RowsAppended).
		Int("cell_errors", stats.CellErrors).
		Msg("sheet joined")
	return stats, nil
}

// record adds the row operations of plan to the audit report.
func (r *run) record(plan Plan) {
	w := r.deps.Reporter
	if w == nil {
		return
	}
	for _, op := range plan.Ops {
		if op.Op != OpUpdateRow && op.Op != OpAppendRow {
			continue
		}
		w.Add(report.Entry{
			Sheet:      plan.Sheet,
			Op:         op.Op.String(),
			Row:        op.Row,
			BaseKey:    op.BaseKey,
			MatchedKey: op.MatchedKey,
			Tier:       op.Tier.String(),
			Kind:       op.Kind.String(),
			Color:      op.Color.String(),
			Score:      scoring.Score(op.BaseKey, op.MatchedKey),
			Similarity: scoring.Similarity(op.BaseKey, op.MatchedKey),
		})
	}
}

func openWorkbook(fs afero.Fs, path string) (*workbook.File, error) {
	f, err := workbook.Open(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileMissing, err)
	}
	return f, nil
}

func closeWorkbook(f *workbook.File) {
	if err := f.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close workbook")
	}
}

// selectSheets resolves the base sheet option. AllSheets selects every
// sheet in workbook order.
func selectSheets(f *workbook.File, name string) ([]workbook.Sheet, error) {
	names := []string{name}
	if name == AllSheets {
		names = f.SheetNames()
	}

	sheets := make([]workbook.Sheet, 0, len(names))
	for _, n := range names {
		s, err := f.Sheet(n)
		if err != nil {
			return nil, fmt.Errorf("%w: base sheet %q: %w", ErrSheetMissing, n, err)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func totalRows(sheets []workbook.Sheet) int {
	total := 0
	for _, s := range sheets {
		total += max(s.MaxRow()-1, 0)
	}
	return total
}
