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
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/rs/zerolog/log"
)

// BaseIndex maps each key of a base sheet to every row carrying it.
type BaseIndex struct {
	Rows map[string][]int
	// Keys holds each distinct key once, in the order first seen.
	Keys []string
	// Scanned is the number of data rows read, including rows with an
	// empty key.
	Scanned int
}

// RefIndex maps each key of a reference sheet to the first row carrying it.
type RefIndex struct {
	Rows map[string]int
	Keys []string
}

// Row returns the reference row for key.
func (r RefIndex) Row(key string) (int, bool) {
	row, ok := r.Rows[key]
	return row, ok
}

// readCell reads through the single coercion point. Failures are logged
// and read as "".
func readCell(sheet workbook.Sheet, row, col int) string {
	v, err := sheet.ReadCell(row, col)
	if err != nil {
		log.Warn().
			Err(fmt.Errorf("%w: %w", ErrCellIO, err)).
			Str("sheet", sheet.Name()).
			Int("row", row).
			Int("col", col).
			Msg("cell read failed, using empty value")
		return ""
	}
	return workbook.CellString(v)
}

func readKey(sheet workbook.Sheet, row, col int) string {
	return strings.TrimSpace(readCell(sheet, row, col))
}

// BuildBaseIndex scans the key column of a base sheet. Rows with an empty
// key are counted but not indexed. Progress is reported through t.
func BuildBaseIndex(ctx context.Context, sheet workbook.Sheet, keyCol int, t *tracker) (BaseIndex, error) {
	idx := BaseIndex{Rows: make(map[string][]int)}
	msg := "scanning " + sheet.Name()

	for row := workbook.FirstDataRow; row <= sheet.MaxRow(); row++ {
		idx.Scanned++
		key := readKey(sheet, row, keyCol)
		if key != "" {
			if _, ok := idx.Rows[key]; !ok {
				idx.Keys = append(idx.Keys, key)
			}
			idx.Rows[key] = append(idx.Rows[key], row)
		}
		if err := t.row(ctx, msg); err != nil {
			return idx, err
		}
	}

	return idx, nil
}

// BuildRefIndex scans the key column of the reference sheet. The first row
// carrying a key wins.
func BuildRefIndex(sheet workbook.Sheet, keyCol int) RefIndex {
	idx := RefIndex{Rows: make(map[string]int)}
	for row := workbook.FirstDataRow; row <= sheet.MaxRow(); row++ {
		key := readKey(sheet, row, keyCol)
		if key == "" {
			continue
		}
		if _, ok := idx.Rows[key]; ok {
			continue
		}
		idx.Rows[key] = row
		idx.Keys = append(idx.Keys, key)
	}
	return idx
}
