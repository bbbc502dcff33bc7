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

package helpers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// SheetData describes one worksheet of a fixture workbook. Rows[0] is the
// header row.
type SheetData struct {
	Name string
	Rows [][]any
}

// Font is the font of a single cell as stored in the workbook.
type Font struct {
	// Color is upper-case RGB hex without a leading '#', or "" when unset.
	Color string
	Bold  bool
}

// CreateWorkbook writes an xlsx file holding sheets, in order.
func (h *FSHelper) CreateWorkbook(path string, sheets ...SheetData) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for workbook: %w", err)
	}

	f := workbook.New(h.Fs)
	defer func() { _ = f.Close() }()

	for _, sd := range sheets {
		s, err := f.AddSheet(sd.Name)
		if err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sd.Name, err)
		}
		for _, row := range sd.Rows {
			if _, err := s.AppendRow(row); err != nil {
				return fmt.Errorf("failed to write fixture row: %w", err)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save workbook fixture: %w", err)
	}
	return nil
}

// ReadSheet returns every cell of a sheet as text, one slice per row, padded
// to the widest row.
func (h *FSHelper) ReadSheet(path, sheet string) ([][]string, error) {
	f, err := workbook.Open(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := f.Sheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}

	rows := make([][]string, s.MaxRow())
	for r := 1; r <= s.MaxRow(); r++ {
		rows[r-1] = make([]string, s.MaxCol())
		for c := 1; c <= s.MaxCol(); c++ {
			v, err := s.ReadCell(r, c)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell: %w", err)
			}
			rows[r-1][c-1] = workbook.CellString(v)
		}
	}
	return rows, nil
}

// CellFont returns the font of one cell, addressed 1-based.
func (h *FSHelper) CellFont(path, sheet string, row, col int) (Font, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return Font{}, fmt.Errorf("failed to read workbook: %w", err)
	}
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Font{}, fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer func() { _ = xl.Close() }()

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Font{}, fmt.Errorf("invalid cell: %w", err)
	}
	id, err := xl.GetCellStyle(sheet, cell)
	if err != nil {
		return Font{}, fmt.Errorf("failed to read cell style: %w", err)
	}
	style, err := xl.GetStyle(id)
	if err != nil {
		return Font{}, fmt.Errorf("failed to read style: %w", err)
	}
	if style == nil || style.Font == nil {
		return Font{}, nil
	}
	return Font{Color: normalizeColor(style.Font.Color), Bold: style.Font.Bold}, nil
}

// SetCellFill gives one cell of a saved workbook a solid background color.
func (h *FSHelper) SetCellFill(path, sheet string, row, col int, color string) error {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer func() { _ = xl.Close() }()

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell: %w", err)
	}
	id, err := xl.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return fmt.Errorf("failed to create fill style: %w", err)
	}
	if err := xl.SetCellStyle(sheet, cell, cell, id); err != nil {
		return fmt.Errorf("failed to set cell style: %w", err)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := afero.WriteFile(h.Fs, path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// CellFill returns the background color of one cell, or "" when it has none.
func (h *FSHelper) CellFill(path, sheet string, row, col int) (string, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read workbook: %w", err)
	}
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer func() { _ = xl.Close() }()

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell: %w", err)
	}
	id, err := xl.GetCellStyle(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("failed to read cell style: %w", err)
	}
	style, err := xl.GetStyle(id)
	if err != nil {
		return "", fmt.Errorf("failed to read style: %w", err)
	}
	if style == nil || len(style.Fill.Color) == 0 {
		return "", nil
	}
	return normalizeColor(style.Fill.Color[0]), nil
}

// normalizeColor strips '#' and an ARGB alpha prefix.
func normalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	return c
}

// CreateConfigFile writes cfg as TOML to path.
func (h *FSHelper) CreateConfigFile(path string, cfg map[string]any) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for config file: %w", err)
	}

	if err := afero.WriteFile(h.Fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}
