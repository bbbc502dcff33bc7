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
	"testing"

	"github.com/ZaparooProject/sheetjoin/pkg/testing/helpers"
	"github.com/ZaparooProject/sheetjoin/pkg/testing/mocks"
	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errWrite = errors.New("disk on fire")

func refMock() *mocks.MockSheet {
	ref := &mocks.MockSheet{}
	ref.On("Name").Return("Ref").Maybe()
	ref.On("ReadCell", 2, 2).Return("α", nil).Maybe()
	return ref
}

func baseMock() *mocks.MockSheet {
	base := &mocks.MockSheet{}
	base.On("Name").Return("S1").Maybe()
	return base
}

func updatePlan(rows ...int) Plan {
	plan := Plan{
		Sheet:   "S1",
		Columns: []ColumnPair{{Pair: Pair{Base: "a", Reference: "title"}, BaseCol: 2, RefCol: 2}},
	}
	for _, r := range rows {
		plan.Ops = append(plan.Ops, PlanOp{Op: OpUpdateRow, Row: r, BaseKey: "A", MatchedKey: "A", Color: Black})
	}
	return plan
}

func TestExecutor_WriteFailureContinues(t *testing.T) {
	t.Parallel()

	base := baseMock()
	base.On("WriteCell", 2, 2, "α", (*workbook.Style)(nil)).Return(errWrite)
	base.On("WriteCell", 3, 2, "α", (*workbook.Style)(nil)).Return(nil)

	exec := &Executor{Base: base, RefSheet: refMock(), RefIndex: testRefIndex("A")}
	stats, err := exec.Apply(context.Background(), updatePlan(2, 3))
	require.NoError(t, err)

	assert.Equal(t, StatusOK, stats.Status)
	assert.Equal(t, 2, stats.RowsMatched)
	assert.Equal(t, 1, stats.CellErrors)
	base.AssertExpectations(t)
}

func TestExecutor_ReadFailureWritesEmpty(t *testing.T) {
	t.Parallel()

	ref := &mocks.MockSheet{}
	ref.On("Name").Return("Ref").Maybe()
	ref.On("ReadCell", 2, 2).Return(nil, errWrite)

	base := baseMock()
	base.On("WriteCell", 2, 2, "", (*workbook.Style)(nil)).Return(nil)

	exec := &Executor{Base: base, RefSheet: ref, RefIndex: testRefIndex("A")}
	stats, err := exec.Apply(context.Background(), updatePlan(2))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RowsMatched)
	base.AssertExpectations(t)
}

func TestExecutor_ProvenanceInsertFailureAborts(t *testing.T) {
	t.Parallel()

	base := baseMock()
	base.On("InsertColumnAfter", 1).Return(errWrite)

	plan := updatePlan(2)
	plan.ProvenanceCol = 2
	plan.ProvenanceHeader = DefaultProvenanceHeader
	plan.Ops = append([]PlanOp{{Op: OpInsertProvenanceColumn, Col: 1}}, plan.Ops...)

	exec := &Executor{Base: base, RefSheet: refMock(), RefIndex: testRefIndex("A")}
	stats, err := exec.Apply(context.Background(), plan)
	require.ErrorIs(t, err, ErrCellIO)
	assert.Zero(t, stats.RowsMatched)
	base.AssertNotCalled(t, "WriteCell", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_RowInsertFailureSkipsAppend(t *testing.T) {
	t.Parallel()

	base := baseMock()
	base.On("InsertRowAfter", 2).Return(errWrite)

	plan := Plan{
		Sheet: "S1",
		Ops:   []PlanOp{{Op: OpAppendRow, Row: 2, BaseKey: "AB", MatchedKey: "A"}},
	}
	exec := &Executor{Base: base, RefSheet: refMock(), RefIndex: testRefIndex("A")}
	stats, err := exec.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.CellErrors)
	assert.Zero(t, stats.RowsAppended)
	assert.Zero(t, stats.RowsMatched)
	base.AssertNotCalled(t, "WriteCell", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_CancelledBetweenOps(t *testing.T) {
	t.Parallel()

	base := baseMock()
	base.On("WriteCell", mock.Anything, 2, "α", (*workbook.Style)(nil)).Return(nil)

	rows := make([]int, 0, 15)
	for r := range 15 {
		rows = append(rows, r+2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &Executor{
		Base:     base,
		RefSheet: refMock(),
		RefIndex: testRefIndex("A"),
		progress: newTracker(nil, 15),
	}
	stats, err := exec.Apply(ctx, updatePlan(rows...))
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, ProgressInterval, stats.RowsMatched, "the op in flight completes, then the run stops")
}

func TestExecutor_AppendPlacement(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateWorkbook("/b.xlsx", helpers.SheetData{Name: "S1", Rows: [][]any{
		{"key", "a", "note"},
		{"K1", "", "n1"},
		{"K2", "", "n2"},
	}}))
	require.NoError(t, h.CreateWorkbook("/r.xlsx", helpers.SheetData{Name: "Ref", Rows: [][]any{
		{"key", "title"},
		{"M1", "t1"},
		{"M2", "t2"},
		{"M3", "t3"},
	}}))

	bf, err := workbook.Open(h.Fs, "/b.xlsx")
	require.NoError(t, err)
	defer func() { _ = bf.Close() }()
	rf, err := workbook.Open(h.Fs, "/r.xlsx")
	require.NoError(t, err)
	defer func() { _ = rf.Close() }()

	base, err := bf.Sheet("S1")
	require.NoError(t, err)
	ref, err := rf.Sheet("Ref")
	require.NoError(t, err)

	plan := Plan{
		Sheet:   "S1",
		Columns: []ColumnPair{{Pair: Pair{Base: "a", Reference: "title"}, BaseCol: 2, RefCol: 2}},
		Ops: []PlanOp{
			{Op: OpUpdateRow, Row: 2, BaseKey: "K1", MatchedKey: "M1", Color: DeepBlue},
			{Op: OpUpdateRow, Row: 3, BaseKey: "K2", MatchedKey: "M3", Color: DeepBlue},
			{Op: OpAppendRow, Row: 2, BaseKey: "K1", MatchedKey: "M2", Color: DeepBlue},
			{Op: OpAppendRow, Row: 2, BaseKey: "K1", MatchedKey: "M3", Color: DeepBlue},
			{Op: OpAppendRow, Row: 3, BaseKey: "K2", MatchedKey: "M1", Color: DeepBlue},
		},
	}
	exec := &Executor{Base: base, RefSheet: ref, RefIndex: BuildRefIndex(ref, 1)}
	stats, err := exec.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RowsAppended)
	assert.Equal(t, 5, stats.RowsMatched)
	assert.Zero(t, stats.CellErrors)

	require.NoError(t, bf.Save("/b.xlsx"))
	rows, err := h.ReadSheet("/b.xlsx", "S1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"key", "a", "note"},
		{"K1", "t1", "n1"},
		{"K1", "t2", "n1"},
		{"K1", "t3", "n1"},
		{"K2", "t3", "n2"},
		{"K2", "t1", "n2"},
	}, rows)
}

func TestExecutor_AppendKeepsTemplateStyle(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateWorkbook("/b.xlsx", helpers.SheetData{Name: "S1", Rows: [][]any{
		{"key", "a", "note"},
		{"K1", "", "n1"},
	}}))
	require.NoError(t, h.SetCellFill("/b.xlsx", "S1", 2, 2, "FFFF00"))
	require.NoError(t, h.SetCellFill("/b.xlsx", "S1", 2, 3, "C0C0C0"))
	require.NoError(t, h.CreateWorkbook("/r.xlsx", helpers.SheetData{Name: "Ref", Rows: [][]any{
		{"key", "title"},
		{"M1", "t1"},
		{"M2", "t2"},
	}}))

	bf, err := workbook.Open(h.Fs, "/b.xlsx")
	require.NoError(t, err)
	defer func() { _ = bf.Close() }()
	rf, err := workbook.Open(h.Fs, "/r.xlsx")
	require.NoError(t, err)
	defer func() { _ = rf.Close() }()

	base, err := bf.Sheet("S1")
	require.NoError(t, err)
	ref, err := rf.Sheet("Ref")
	require.NoError(t, err)

	plan := Plan{
		Sheet:   "S1",
		Columns: []ColumnPair{{Pair: Pair{Base: "a", Reference: "title"}, BaseCol: 2, RefCol: 2}},
		Ops: []PlanOp{
			{Op: OpUpdateRow, Row: 2, BaseKey: "K1", MatchedKey: "M1", Color: DeepBlue},
			{Op: OpAppendRow, Row: 2, BaseKey: "K1", MatchedKey: "M2", Color: DeepBlue},
		},
	}
	exec := &Executor{Base: base, RefSheet: ref, RefIndex: BuildRefIndex(ref, 1)}
	stats, err := exec.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.Zero(t, stats.CellErrors)
	require.NoError(t, bf.Save("/b.xlsx"))

	for _, row := range []int{2, 3} {
		fill, err := h.CellFill("/b.xlsx", "S1", row, 2)
		require.NoError(t, err)
		assert.Equal(t, "FFFF00", fill, "written cell keeps its fill on row %d", row)

		font, err := h.CellFont("/b.xlsx", "S1", row, 2)
		require.NoError(t, err)
		assert.Equal(t, "1E90FF", font.Color, "row %d", row)
		assert.True(t, font.Bold, "row %d", row)

		fill, err = h.CellFill("/b.xlsx", "S1", row, 3)
		require.NoError(t, err)
		assert.Equal(t, "C0C0C0", fill, "untouched cell keeps its fill on row %d", row)
	}
}
