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

// Package config loads the sheetjoin.toml settings file. File values are
// merged over defaults and supply the starting values of every join.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	AppName       = "sheetjoin"
	CfgEnv        = "SHEETJOIN_CFG"
	CfgFile       = "sheetjoin.toml"
	LogFile       = "sheetjoin.log"
	ReportsDir    = "reports"
)

var AppVersion = "DEVELOPMENT"

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Report       Report `toml:"report"`
	Join         Join   `toml:"join"`
	ConfigSchema int    `toml:"config_schema"`
	DebugLogging bool   `toml:"debug_logging"`
}

// Join holds the defaults for options a single invocation does not set.
type Join struct {
	TagValue         string `toml:"tag_value,omitempty"`
	TagHeader        string `toml:"tag_header,omitempty"`
	ProvenanceHeader string `toml:"provenance_header,omitempty"`
	MaxMatches       int    `toml:"max_matches,omitempty"`
	Fuzzy            bool   `toml:"fuzzy"`
	Advanced         bool   `toml:"advanced"`
	Tag              bool   `toml:"tag"`
}

type Report struct {
	// Dir is relative to the data directory unless absolute.
	Dir     string `toml:"dir,omitempty"`
	Enabled bool   `toml:"enabled"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Join: Join{
		MaxMatches: 3,
		TagValue:   "T",
	},
	Report: Report{
		Dir: ReportsDir,
	},
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       rwMutex
}

// NewConfig loads the config file from configDir, or from the path in
// SHEETJOIN_CFG when set. A default file is written if none exists.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their default values.
	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if newVals.Join.MaxMatches < 1 {
		log.Warn().Msgf("invalid max_matches %d, using default", newVals.Join.MaxMatches)
		newVals.Join.MaxMatches = c.defaults.Join.MaxMatches
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

func (c *Instance) Join() Join {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Join
}

func (c *Instance) SetJoin(j Join) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Join = j
}

func (c *Instance) ReportEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Report.Enabled
}

// ReportDir returns the directory audit reports are written to. Relative
// paths are resolved against dataDir.
func (c *Instance) ReportDir(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := c.vals.Report.Dir
	if dir == "" {
		dir = ReportsDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(dataDir, dir)
}

// FormDefaults returns the join defaults as raw form fields, ready to be
// overlaid by the fields of one invocation.
func (c *Instance) FormDefaults() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	j := c.vals.Join
	form := map[string]string{
		"fuzzy":       strconv.FormatBool(j.Fuzzy),
		"advanced":    strconv.FormatBool(j.Advanced),
		"tag_enabled": strconv.FormatBool(j.Tag),
		"max_matches": strconv.Itoa(j.MaxMatches),
	}
	if j.TagValue != "" {
		form["tag_value"] = j.TagValue
	}
	if j.TagHeader != "" {
		form["tag_header"] = j.TagHeader
	}
	if j.ProvenanceHeader != "" {
		form["provenance_header"] = j.ProvenanceHeader
	}
	return form
}
