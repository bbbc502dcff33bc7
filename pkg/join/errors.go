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
	"errors"
	"fmt"
)

// Error kinds. Whole-invocation failures are returned from Run wrapped in
// one of these; sheet, row and cell level failures are absorbed and show
// up in SheetStats and the log.
var (
	ErrFileMissing   = errors.New("file missing")
	ErrSheetMissing  = errors.New("sheet missing")
	ErrColumnMissing = errors.New("column missing")
	ErrBadInput      = errors.New("bad input")
	ErrCellIO        = errors.New("cell io failure")
	ErrSave          = errors.New("save failed")
	ErrCancelled     = errors.New("cancelled")
)

// ColumnError names a header that could not be found.
type ColumnError struct {
	Sheet  string
	Column string
	// Key is true for the key column, false for a data column.
	Key bool
}

func (e *ColumnError) Error() string {
	kind := "data"
	if e.Key {
		kind = "key"
	}
	return fmt.Sprintf("%s column %q not found in sheet %q", kind, e.Column, e.Sheet)
}

func (e *ColumnError) Unwrap() error {
	return ErrColumnMissing
}
