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
	"github.com/ZaparooProject/sheetjoin/pkg/matcher"
	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
)

// Color marks how a written value was matched.
type Color int

const (
	Black Color = iota
	DarkGreen
	DeepBlue
	Red
)

// RGB values written as font colors. Downstream filters depend on them.
const (
	RGBBlack     = "#000000"
	RGBDarkGreen = "#228B22"
	RGBDeepBlue  = "#1E90FF"
	RGBRed       = "#FF0000"
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case DarkGreen:
		return "dark-green"
	case DeepBlue:
		return "deep-blue"
	case Red:
		return "red"
	default:
		return "unknown"
	}
}

// RGB returns the hex font color.
func (c Color) RGB() string {
	switch c {
	case DarkGreen:
		return RGBDarkGreen
	case DeepBlue:
		return RGBDeepBlue
	case Red:
		return RGBRed
	default:
		return RGBBlack
	}
}

// Bold reports whether cells of this color are written in bold.
func (c Color) Bold() bool {
	return c != Black
}

// Style returns the font style for cells written with this color. Black
// leaves the existing font alone and returns nil.
func (c Color) Style() *workbook.Style {
	if c == Black {
		return nil
	}
	return &workbook.Style{Color: c.RGB(), Bold: c.Bold()}
}

// ColorFor maps a match tier and kind to its provenance color.
func ColorFor(tier matcher.Tier, kind matcher.Kind) Color {
	switch tier {
	case matcher.TierVariant:
		return DarkGreen
	case matcher.TierContainment:
		if kind == matcher.KindContainmentShort {
			return Red
		}
		return DeepBlue
	default:
		return Black
	}
}
