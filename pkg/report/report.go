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

// Package report writes an optional CSV audit of the match decisions made
// during one join invocation. Reports are write-only; nothing reads them
// back into a later run.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// Entry is one row of the audit report.
type Entry struct {
	RunID      string  `csv:"run_id"`
	Sheet      string  `csv:"sheet"`
	Op         string  `csv:"op"`
	BaseKey    string  `csv:"base_key"`
	MatchedKey string  `csv:"matched_key"`
	Tier       string  `csv:"tier"`
	Kind       string  `csv:"kind"`
	Color      string  `csv:"color"`
	RecordedAt string  `csv:"recorded_at"`
	Row        int     `csv:"base_row"`
	Score      float64 `csv:"score"`
	Similarity float64 `csv:"similarity"`
}

// Writer buffers entries for one run and writes them on Flush.
type Writer struct {
	fs      afero.Fs
	clock   clockwork.Clock
	dir     string
	runID   string
	entries []Entry
}

// NewWriter returns a Writer that will write into dir on fs.
func NewWriter(fs afero.Fs, clock clockwork.Clock, dir string) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Writer{fs: fs, clock: clock, dir: dir}
}

// Begin starts a new run, dropping any entries not yet flushed.
func (w *Writer) Begin(runID string) {
	w.runID = runID
	w.entries = w.entries[:0]
}

// Add records an entry, stamping the run ID and time.
func (w *Writer) Add(e Entry) {
	e.RunID = w.runID
	e.RecordedAt = w.clock.Now().UTC().Format(time.RFC3339)
	w.entries = append(w.entries, e)
}

// Len returns the number of buffered entries.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Path returns the file the current run is written to.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, fmt.Sprintf("sheetjoin-%s.csv", w.runID))
}

// Flush writes the buffered entries and returns the file path. A run with
// no entries still produces a file holding only the header row.
func (w *Writer) Flush() (string, error) {
	data, err := gocsv.MarshalBytes(&w.entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := w.fs.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := w.Path()
	if err := afero.WriteFile(w.fs, path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.entries = w.entries[:0]
	return path, nil
}
