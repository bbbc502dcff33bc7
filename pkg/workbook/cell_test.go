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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stringerValue struct{}

func (stringerValue) String() string { return "stringer" }

func TestCellString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "string", input: " Album ", expected: " Album "},
		{name: "int", input: 42, expected: "42"},
		{name: "negative int64", input: int64(-7), expected: "-7"},
		{name: "integral float", input: 3.0, expected: "3"},
		{name: "integral negative float", input: -12.0, expected: "-12"},
		{name: "fractional float", input: 3.25, expected: "3.25"},
		{name: "float32", input: float32(2), expected: "2"},
		{name: "huge float", input: 1e20, expected: "100000000000000000000"},
		{name: "nan", input: math.NaN(), expected: "NaN"},
		{name: "bool", input: true, expected: "true"},
		{name: "stringer", input: stringerValue{}, expected: "stringer"},
		{name: "error value", input: errors.New("boom"), expected: "boom"},
		{name: "slice", input: []int{1, 2}, expected: "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CellString(tt.input))
		})
	}
}
