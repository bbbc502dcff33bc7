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
)

// ProgressInterval is the number of rows or plan operations between two
// progress callbacks.
const ProgressInterval = 10

// ProgressFunc receives progress updates. processed never exceeds total.
type ProgressFunc func(message string, processed, total int)

// tracker counts processed base rows and is the only place cancellation is
// observed. A nil tracker reports nothing and never cancels.
type tracker struct {
	fn        ProgressFunc
	processed int
	total     int
	pending   int
}

func newTracker(fn ProgressFunc, total int) *tracker {
	return &tracker{fn: fn, total: total}
}

// report emits the current position and checks ctx.
func (t *tracker) report(ctx context.Context, message string) error {
	if t == nil {
		return nil
	}
	t.pending = 0
	if t.fn != nil {
		t.fn(message, min(t.processed, t.total), t.total)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// row marks one base row processed and reports every ProgressInterval rows.
func (t *tracker) row(ctx context.Context, message string) error {
	if t == nil {
		return nil
	}
	t.processed++
	return t.tick(ctx, message)
}

// tick counts a unit of work that does not advance the row count.
func (t *tracker) tick(ctx context.Context, message string) error {
	if t == nil {
		return nil
	}
	t.pending++
	if t.pending < ProgressInterval {
		return nil
	}
	return t.report(ctx, message)
}

// skip advances past rows of a sheet that will not be scanned.
func (t *tracker) skip(n int) {
	if t == nil || n <= 0 {
		return
	}
	t.processed += n
}
