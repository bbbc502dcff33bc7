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

package mocks

import (
	"fmt"

	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/stretchr/testify/mock"
)

// MockSheet is a mock implementation of workbook.Sheet using testify/mock
type MockSheet struct {
	mock.Mock
}

var _ workbook.Sheet = (*MockSheet)(nil)

// Name returns the sheet name
func (m *MockSheet) Name() string {
	args := m.Called()
	return args.String(0)
}

// ReadCell returns the raw value of a cell
func (m *MockSheet) ReadCell(row, col int) (any, error) {
	args := m.Called(row, col)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock operation failed: %w", err)
	}
	return args.Get(0), nil
}

// WriteCell stores a value in a cell
func (m *MockSheet) WriteCell(row, col int, value any, style *workbook.Style) error {
	args := m.Called(row, col, value, style)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// CopyStyle copies the style of one cell to another
func (m *MockSheet) CopyStyle(fromRow, fromCol, toRow, toCol int) error {
	args := m.Called(fromRow, fromCol, toRow, toCol)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// InsertColumnAfter inserts a column
func (m *MockSheet) InsertColumnAfter(col int) error {
	args := m.Called(col)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// InsertRowAfter inserts a row
func (m *MockSheet) InsertRowAfter(row int) error {
	args := m.Called(row)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// AppendRow writes a new last row
func (m *MockSheet) AppendRow(values []any) (int, error) {
	args := m.Called(values)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock operation failed: %w", err)
	}
	return args.Int(0), nil
}

// MaxRow returns the last used row
func (m *MockSheet) MaxRow() int {
	args := m.Called()
	return args.Int(0)
}

// MaxCol returns the last used column
func (m *MockSheet) MaxCol() int {
	args := m.Called()
	return args.Int(0)
}

// FindHeader returns the column of a header
func (m *MockSheet) FindHeader(name string) (int, bool) {
	args := m.Called(name)
	return args.Int(0), args.Bool(1)
}

// Headers returns the header row
func (m *MockSheet) Headers() []string {
	args := m.Called()
	if headers, ok := args.Get(0).([]string); ok {
		return headers
	}
	return []string{}
}
