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

// Package cli is the command line front end of the join engine. It turns
// flags into the same raw form a desktop front end would submit.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/sheetjoin/pkg/config"
	"github.com/ZaparooProject/sheetjoin/pkg/helpers"
	"github.com/ZaparooProject/sheetjoin/pkg/join"
	"github.com/ZaparooProject/sheetjoin/pkg/report"
	"github.com/ZaparooProject/sheetjoin/pkg/workbook"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// pairList collects repeated -pair flags.
type pairList []string

func (p *pairList) String() string {
	return strings.Join(*p, ";")
}

func (p *pairList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type Flags struct {
	set        *flag.FlagSet
	Base       *string
	Ref        *string
	BaseSheet  *string
	RefSheet   *string
	BaseKey    *string
	RefKey     *string
	MaxMatches *string
	TagValue   *string
	Pairs      pairList
	Fuzzy      *bool
	Advanced   *bool
	Tag        *bool
	List       *bool
	Report     *bool
	Debug      *bool
	Version    *bool
}

// SetupFlags defines every flag on set.
func SetupFlags(set *flag.FlagSet) *Flags {
	f := &Flags{
		set: set,
		Base: set.String(
			"base",
			"",
			"base workbook to write into",
		),
		Ref: set.String(
			"ref",
			"",
			"reference workbook to read from",
		),
		BaseSheet: set.String(
			"base-sheet",
			join.AllSheets,
			"base sheet name, "+join.AllSheets+" for every sheet",
		),
		RefSheet: set.String(
			"ref-sheet",
			"",
			"reference sheet name",
		),
		BaseKey: set.String(
			"base-key",
			"",
			"key column header in the base sheet",
		),
		RefKey: set.String(
			"ref-key",
			"",
			"key column header in the reference sheet",
		),
		MaxMatches: set.String(
			"max-matches",
			"",
			"matches kept per key in advanced mode",
		),
		TagValue: set.String(
			"tag-value",
			"",
			"value written to the tag column",
		),
		Fuzzy: set.Bool(
			"fuzzy",
			false,
			"enable fuzzy matching",
		),
		Advanced: set.Bool(
			"advanced",
			false,
			"keep up to max-matches matches per key, requires -fuzzy",
		),
		Tag: set.Bool(
			"tag",
			false,
			"mark matched rows in a tag column",
		),
		List: set.Bool(
			"list",
			false,
			"print the sheets and headers of -base and -ref and exit",
		),
		Report: set.Bool(
			"report",
			false,
			"write a CSV audit of every match",
		),
		Debug: set.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
	set.Var(&f.Pairs, "pair", "data column pair base=reference, repeatable")
	return f
}

func (f *Flags) isPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Form overlays the flags onto defaults. Boolean and numeric defaults only
// change when their flag was passed.
func (f *Flags) Form(defaults map[string]string) map[string]string {
	form := make(map[string]string, len(defaults)+8)
	for k, v := range defaults {
		form[k] = v
	}

	form["base_path"] = *f.Base
	form["reference_path"] = *f.Ref
	form["base_sheet"] = *f.BaseSheet
	form["reference_sheet"] = *f.RefSheet
	form["base_key_column"] = *f.BaseKey
	form["reference_key_column"] = *f.RefKey
	form["data_column_pairs"] = f.Pairs.String()

	if f.isPassed("fuzzy") {
		form["fuzzy"] = strconv.FormatBool(*f.Fuzzy)
	}
	if f.isPassed("advanced") {
		form["advanced"] = strconv.FormatBool(*f.Advanced)
	}
	if f.isPassed("tag") {
		form["tag_enabled"] = strconv.FormatBool(*f.Tag)
	}
	if f.isPassed("max-matches") {
		form["max_matches"] = *f.MaxMatches
	}
	if f.isPassed("tag-value") {
		form["tag_value"] = *f.TagValue
	}
	return form
}

// Setup initializes logging and loads the user config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(fs afero.Fs, defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	if err := helpers.InitLogging(helpers.LogDir(), writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(fs, helpers.ConfigDir(), defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	helpers.SetDebug(cfg.DebugLogging())
	return cfg, nil
}

// Env is everything a join run needs from the outside.
type Env struct {
	Fs      afero.Fs
	Clock   clockwork.Clock
	Cfg     *config.Instance
	Out     io.Writer
	Err     io.Writer
	DataDir string
}

// RunJoin runs one join from flags and prints progress and a summary.
func RunJoin(ctx context.Context, env Env, f *Flags) (join.Result, error) {
	opts, err := join.ParseForm(f.Form(env.Cfg.FormDefaults()))
	if err != nil {
		return join.Result{}, err
	}

	deps := join.Deps{Fs: env.Fs, Clock: env.Clock}
	if *f.Report || env.Cfg.ReportEnabled() {
		deps.Reporter = report.NewWriter(env.Fs, env.Clock, env.Cfg.ReportDir(env.DataDir))
	}

	res, err := join.Run(ctx, deps, opts, progressPrinter(env.Err))
	if len(res.Sheets) > 0 {
		PrintSummary(env.Out, res)
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("join failed")
		return res, err
	}
	return res, nil
}

// progressPrinter prints one line each time the percentage changes.
func progressPrinter(w io.Writer) join.ProgressFunc {
	last := -1
	return func(message string, processed, total int) {
		pct := 100
		if total > 0 {
			pct = processed * 100 / total
		}
		if pct == last {
			return
		}
		last = pct
		_, _ = fmt.Fprintf(w, "[%3d%%] %s\n", pct, message)
	}
}

// PrintSummary writes one line per sheet followed by the totals.
func PrintSummary(w io.Writer, res join.Result) {
	for _, s := range res.Sheets {
		_, _ = fmt.Fprintf(w, "%s: %s (scanned %d, matched %d", s.Name, s.Status, s.RowsScanned, s.RowsMatched)
		if s.RowsAppended > 0 {
			_, _ = fmt.Fprintf(w, ", appended %d", s.RowsAppended)
		}
		if s.CellErrors > 0 {
			_, _ = fmt.Fprintf(w, ", cell errors %d", s.CellErrors)
		}
		_, _ = fmt.Fprintln(w, ")")
	}
	_, _ = fmt.Fprintf(w, "Total: scanned %d, matched %d in %s\n",
		res.TotalScanned, res.TotalMatched, res.Elapsed.Round(time.Millisecond))
	if res.ReportPath != "" {
		_, _ = fmt.Fprintf(w, "Report: %s\n", res.ReportPath)
	}
}

// List prints every sheet of each workbook with its header row.
func List(fs afero.Fs, w io.Writer, paths ...string) error {
	var errs []error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := listWorkbook(fs, w, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func listWorkbook(fs afero.Fs, w io.Writer, path string) error {
	f, err := workbook.Open(fs, path)
	if err != nil {
		return fmt.Errorf("%w: %w", join.ErrFileMissing, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	_, _ = fmt.Fprintln(w, path)
	for _, name := range f.SheetNames() {
		sheet, err := f.Sheet(name)
		if err != nil {
			return fmt.Errorf("failed to open sheet %q: %w", name, err)
		}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(sheet.Headers(), ", "))
	}
	return nil
}
