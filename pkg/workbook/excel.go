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

package workbook

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in a new file.
const defaultSheet = "Sheet1"

// File is an xlsx workbook backed by excelize. Bytes are read and written
// through an afero filesystem so tests can run against memory.
type File struct {
	fs       afero.Fs
	xl       *excelize.File
	sheets   map[string]*excelSheet
	styles   map[styleKey]int
	pristine bool
}

var _ Workbook = (*File)(nil)

// Open reads the workbook at path.
func Open(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %s: %w", path, err)
	}

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook %s: %w", path, err)
	}

	return newFile(fs, xl, false), nil
}

// New returns an empty workbook. The first AddSheet call replaces the
// default sheet excelize creates.
func New(fs afero.Fs) *File {
	return newFile(fs, excelize.NewFile(), true)
}

func newFile(fs afero.Fs, xl *excelize.File, pristine bool) *File {
	return &File{
		fs:       fs,
		xl:       xl,
		sheets:   make(map[string]*excelSheet),
		styles:   make(map[styleKey]int),
		pristine: pristine,
	}
}

// SheetNames lists the sheets in workbook order.
func (f *File) SheetNames() []string {
	return f.xl.GetSheetList()
}

// Sheet returns the named sheet or ErrSheetNotFound.
func (f *File) Sheet(name string) (Sheet, error) {
	if s, ok := f.sheets[name]; ok {
		return s, nil
	}

	idx, err := f.xl.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}

	s := &excelSheet{file: f, name: name}
	if err := s.measure(); err != nil {
		return nil, err
	}
	f.sheets[name] = s
	return s, nil
}

// AddSheet creates a sheet. On a workbook returned by New the default
// sheet is renamed instead so the result holds only the sheets added.
func (f *File) AddSheet(name string) (Sheet, error) {
	if f.pristine {
		f.pristine = false
		if err := f.xl.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("failed to rename default sheet: %w", err)
		}
	} else if _, err := f.xl.NewSheet(name); err != nil {
		return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return f.Sheet(name)
}

// Save writes the workbook to path.
func (f *File) Save(path string) error {
	buf, err := f.xl.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := afero.WriteFile(f.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", path, err)
	}
	return nil
}

// Close releases the resources excelize holds for the file.
func (f *File) Close() error {
	if err := f.xl.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	return nil
}

// styleKey identifies a derived style: the font of Style laid over the
// cell's existing style.
type styleKey struct {
	base int
	Style
}

// styleID returns a style equal to base with only the font changed. Fill,
// border, alignment and number format of base are kept.
func (f *File) styleID(base int, style Style) (int, error) {
	key := styleKey{base: base, Style: style}
	if id, ok := f.styles[key]; ok {
		return id, nil
	}

	derived := excelize.Style{}
	if base > 0 {
		existing, err := f.xl.GetStyle(base)
		if err != nil {
			return 0, fmt.Errorf("failed to read style %d: %w", base, err)
		}
		if existing != nil {
			derived = *existing
		}
	}

	font := excelize.Font{}
	if derived.Font != nil {
		font = *derived.Font
	}
	font.Bold = style.Bold
	if style.Color != "" {
		font.Color = style.Color
	}
	derived.Font = &font

	id, err := f.xl.NewStyle(&derived)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	f.styles[key] = id
	return id, nil
}

type excelSheet struct {
	file   *File
	name   string
	maxRow int
	maxCol int
}

func (s *excelSheet) measure() error {
	rows, err := s.file.xl.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", s.name, err)
	}
	s.maxRow = len(rows)
	s.maxCol = 0
	for _, row := range rows {
		s.maxCol = max(s.maxCol, len(row))
	}
	log.Debug().
		Str("sheet", s.name).
		Int("rows", s.maxRow).
		Int("cols", s.maxCol).
		Msg("measured sheet")
	return nil
}

func (s *excelSheet) Name() string {
	return s.name
}

func (s *excelSheet) MaxRow() int {
	return s.maxRow
}

func (s *excelSheet) MaxCol() int {
	return s.maxCol
}

func cellName(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("%w: row %d, col %d", ErrOutOfRange, row, col)
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return name, nil
}

func (s *excelSheet) ReadCell(row, col int) (any, error) {
	cell, err := cellName(row, col)
	if err != nil {
		return nil, err
	}

	value, err := s.file.xl.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s!%s: %w", s.name, cell, err)
	}
	if value == "" {
		return nil, nil
	}

	typ, err := s.file.xl.GetCellType(s.name, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to read type of %s!%s: %w", s.name, cell, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return value == "1" || value == "TRUE" || value == "true", nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f, nil
		}
		return value, nil
	default:
		return value, nil
	}
}

func (s *excelSheet) WriteCell(row, col int, value any, style *Style) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}

	if value == nil {
		value = ""
	}
	if err := s.file.xl.SetCellValue(s.name, cell, value); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", s.name, cell, err)
	}

	if style != nil {
		base, err := s.file.xl.GetCellStyle(s.name, cell)
		if err != nil {
			return fmt.Errorf("failed to read style of %s!%s: %w", s.name, cell, err)
		}
		id, err := s.file.styleID(base, *style)
		if err != nil {
			return err
		}
		if err := s.file.xl.SetCellStyle(s.name, cell, cell, id); err != nil {
			return fmt.Errorf("failed to style %s!%s: %w", s.name, cell, err)
		}
	}

	s.maxRow = max(s.maxRow, row)
	s.maxCol = max(s.maxCol, col)
	return nil
}

func (s *excelSheet) CopyStyle(fromRow, fromCol, toRow, toCol int) error {
	from, err := cellName(fromRow, fromCol)
	if err != nil {
		return err
	}
	to, err := cellName(toRow, toCol)
	if err != nil {
		return err
	}

	id, err := s.file.xl.GetCellStyle(s.name, from)
	if err != nil {
		return fmt.Errorf("failed to read style of %s!%s: %w", s.name, from, err)
	}
	if err := s.file.xl.SetCellStyle(s.name, to, to, id); err != nil {
		return fmt.Errorf("failed to style %s!%s: %w", s.name, to, err)
	}
	return nil
}

func (s *excelSheet) InsertColumnAfter(col int) error {
	if col < 0 {
		return fmt.Errorf("%w: col %d", ErrOutOfRange, col)
	}
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	if err := s.file.xl.InsertCols(s.name, name, 1); err != nil {
		return fmt.Errorf("failed to insert column after %d in %s: %w", col, s.name, err)
	}
	if col < s.maxCol {
		s.maxCol++
	}
	return nil
}

func (s *excelSheet) InsertRowAfter(row int) error {
	if row < 0 {
		return fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	if err := s.file.xl.InsertRows(s.name, row+1, 1); err != nil {
		return fmt.Errorf("failed to insert row after %d in %s: %w", row, s.name, err)
	}
	if row < s.maxRow {
		s.maxRow++
	}
	return nil
}

func (s *excelSheet) AppendRow(values []any) (int, error) {
	row := s.maxRow + 1
	for i, v := range values {
		if err := s.WriteCell(row, i+1, v, nil); err != nil {
			return row, err
		}
	}
	s.maxRow = max(s.maxRow, row)
	return row, nil
}

func (s *excelSheet) Headers() []string {
	headers := make([]string, s.maxCol)
	for col := 1; col <= s.maxCol; col++ {
		v, err := s.ReadCell(HeaderRow, col)
		if err != nil {
			log.Warn().Err(err).Str("sheet", s.name).Int("col", col).Msg("failed to read header")
			continue
		}
		headers[col-1] = CellString(v)
	}
	return headers
}

func (s *excelSheet) FindHeader(name string) (int, bool) {
	for i, h := range s.Headers() {
		if h != "" && h == name {
			return i + 1, true
		}
	}
	return 0, false
}
