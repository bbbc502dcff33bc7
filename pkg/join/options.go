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
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ZaparooProject/sheetjoin/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// AllSheets selects every sheet of the base workbook.
const AllSheets = "全部sheet"

const (
	DefaultMaxMatches       = 3
	DefaultTagValue         = "T"
	DefaultTagHeader        = "匹配标记"
	DefaultProvenanceHeader = "模糊匹配关键字"
)

// Pair maps a base column to the reference column it is filled from.
type Pair struct {
	Base      string `validate:"notblank"`
	Reference string `validate:"notblank"`
}

// Options configures one join invocation.
type Options struct {
	BasePath           string `form:"base_path"            validate:"required,workbook"`
	ReferencePath      string `form:"reference_path"       validate:"required,workbook"`
	BaseSheet          string `form:"base_sheet"           validate:"notblank"`
	ReferenceSheet     string `form:"reference_sheet"      validate:"notblank"`
	BaseKeyColumn      string `form:"base_key_column"      validate:"notblank"`
	ReferenceKeyColumn string `form:"reference_key_column" validate:"notblank"`
	TagValue           string `form:"tag_value"`
	TagHeader          string `form:"tag_header"`
	ProvenanceHeader   string `form:"provenance_header"`
	Pairs              []Pair `form:"data_column_pairs"    validate:"dive"`
	MaxMatches         int    `form:"max_matches"          validate:"gte=1"`
	Fuzzy              bool   `form:"fuzzy"`
	Advanced           bool   `form:"advanced"`
	TagEnabled         bool   `form:"tag_enabled"`
}

// WithDefaults fills unset values.
func (o Options) WithDefaults() Options {
	if o.MaxMatches < 1 {
		o.MaxMatches = DefaultMaxMatches
	}
	if o.TagValue == "" {
		o.TagValue = DefaultTagValue
	}
	if o.TagHeader == "" {
		o.TagHeader = DefaultTagHeader
	}
	if o.ProvenanceHeader == "" {
		o.ProvenanceHeader = DefaultProvenanceHeader
	}
	return o
}

var optionsValidator = newOptionsValidator()

func newOptionsValidator() *validation.Validator {
	v := validation.NewValidator()
	v.RegisterStructValidation(validateOptions, Options{})
	return v
}

func validateOptions(sl validator.StructLevel) {
	o, ok := sl.Current().Interface().(Options)
	if !ok {
		return
	}
	if len(o.Pairs) == 0 && !o.TagEnabled {
		sl.ReportError(o.Pairs, "Pairs", "pairs", validation.TagPairsOrTag, "")
	}
	if o.Advanced && !o.Fuzzy {
		sl.ReportError(o.Advanced, "Advanced", "advanced", validation.TagRequiresFuzzy, "")
	}
}

// Validate checks the options after defaults are applied. Failures wrap
// ErrBadInput.
func (o Options) Validate() error {
	if err := optionsValidator.Validate(o.WithDefaults()); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	return nil
}

// ParseMaxMatches parses a positive decimal integer. Anything else,
// including zero and negative numbers, yields DefaultMaxMatches.
func ParseMaxMatches(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultMaxMatches
	}
	return n
}

// ParsePairs parses "a=titleA;b=titleB". Entries may also be separated by
// newlines; blank entries are skipped.
func ParsePairs(s string) ([]Pair, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '\n' || r == '；'
	})

	pairs := make([]Pair, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		base, ref, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%w: column pair %q must be base=reference", ErrBadInput, field)
		}
		pairs = append(pairs, Pair{
			Base:      strings.TrimSpace(base),
			Reference: strings.TrimSpace(ref),
		})
	}
	return pairs, nil
}

// ParseForm decodes the raw string form a front end submits into Options
// and applies defaults. It does not validate; call Validate or Run.
func ParseForm(form map[string]string) (Options, error) {
	raw := make(map[string]any, len(form))
	for k, v := range form {
		raw[k] = v
	}

	maxMatches := DefaultMaxMatches
	if v, ok := form["max_matches"]; ok {
		maxMatches = ParseMaxMatches(v)
		delete(raw, "max_matches")
	}

	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		TagName:          "form",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToPairsHook(),
			stringToBoolHook(),
		),
	})
	if err != nil {
		return Options{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("%w: failed to decode form: %w", ErrBadInput, err)
	}

	opts.MaxMatches = maxMatches
	return opts.WithDefaults(), nil
}

func stringToPairsHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]Pair{}) {
			return data, nil
		}
		str, ok := data.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return []Pair{}, nil
		}
		return ParsePairs(str)
	}
}

// stringToBoolHook accepts the checkbox values HTML and desktop forms send.
func stringToBoolHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
			return data, nil
		}
		str, _ := data.(string)
		switch strings.ToLower(strings.TrimSpace(str)) {
		case "", "0", "off", "no", "n", "false", "否":
			return false, nil
		case "1", "on", "yes", "y", "true", "是":
			return true, nil
		default:
			b, err := strconv.ParseBool(str)
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", str)
			}
			return b, nil
		}
	}
}
