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

//go:build !deadlock

package config

import "sync"

// DeadlockDetection reports whether config locks run under go-deadlock.
const DeadlockDetection = false

//nolint:gocritic // embedding is the point of the wrapper
type rwMutex struct {
	sync.RWMutex
}
