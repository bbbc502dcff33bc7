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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/sheetjoin/pkg/cli"
	"github.com/ZaparooProject/sheetjoin/pkg/config"
	"github.com/ZaparooProject/sheetjoin/pkg/helpers"
	"github.com/ZaparooProject/sheetjoin/pkg/join"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if *flags.Version {
		_, _ = fmt.Printf("Sheetjoin v%s\n", config.AppVersion)
		return nil
	}

	fs := afero.NewOsFs()

	if *flags.List {
		return cli.List(fs, os.Stdout, *flags.Base, *flags.Ref)
	}

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}

	cfg, err := cli.Setup(fs, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	if *flags.Debug {
		helpers.SetDebug(true)
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = cli.RunJoin(ctx, cli.Env{
		Fs:      fs,
		Clock:   clockwork.NewRealClock(),
		Cfg:     cfg,
		Out:     os.Stdout,
		Err:     os.Stderr,
		DataDir: helpers.DataDir(),
	}, flags)
	if errors.Is(err, join.ErrCancelled) {
		return errors.New("cancelled, partial results were saved")
	}
	return err
}
