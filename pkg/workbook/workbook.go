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

// Package workbook is the spreadsheet I/O layer used by the join engine.
// Rows and columns are 1-based; row 1 holds the headers.
package workbook

import "errors"

// HeaderRow is the row holding column names.
const HeaderRow = 1

// FirstDataRow is the first row below the headers.
const FirstDataRow = 2

var (
	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrOutOfRange is returned for row or column numbers below 1.
	ErrOutOfRange = errors.New("cell position out of range")
)

// Style is a font style applied to a written cell.
type Style struct {
	// Color is an RGB hex string such as "#228B22". Empty keeps the default.
	Color string
	Bold  bool
}

// Workbook is an open spreadsheet file.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (Sheet, error)
	Save(path string) error
	Close() error
}

// Sheet is a single worksheet of a Workbook.
type Sheet interface {
	Name() string
	// ReadCell returns nil, a string, a float64 or a bool. Use CellString
	// to turn the result into text.
	ReadCell(row, col int) (any, error)
	// WriteCell stores value. A non-nil style changes the font only; the
	// rest of the cell's formatting is kept.
	WriteCell(row, col int, value any, style *Style) error
	// CopyStyle gives the target cell the complete style of the source cell.
	CopyStyle(fromRow, fromCol, toRow, toCol int) error
	// InsertColumnAfter shifts every column right of col one place right.
	InsertColumnAfter(col int) error
	// InsertRowAfter shifts every row below row one place down.
	InsertRowAfter(row int) error
	// AppendRow writes values into a new row below the last used one and
	// returns its number.
	AppendRow(values []any) (int, error)
	MaxRow() int
	MaxCol() int
	// FindHeader returns the column whose header equals name exactly.
	FindHeader(name string) (int, bool)
	Headers() []string
}
