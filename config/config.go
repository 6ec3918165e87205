// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the settings of a classification run, read from a
// JSON file.
package config

import (
	"strings"

	"github.com/ebay/taxoclass/catalog"
)

// Classifier is the root of a configuration file. Every field is optional.
type Classifier struct {
	// "open" (the default) or "closed".
	World string `json:"world,omitempty"`
	// Path to a YAML catalogue. If empty, the built-in gUFO catalogue is used.
	Catalog string `json:"catalog,omitempty"`
	// Path to the fact file describing the taxonomy and its seeds, or "-" for
	// stdin.
	Taxonomy string `json:"taxonomy,omitempty"`
	// If nonzero, a run that hasn't reached a fixpoint after this many passes
	// fails.
	MaxPasses int `json:"maxPasses,omitempty"`
	// How results are written.
	Output *Output `json:"output,omitempty"`
	// If set, Prometheus metrics are written to this file after a run, in the
	// text exposition format.
	MetricsFile string `json:"metricsFile,omitempty"`
}

// Output configures how results are written.
type Output struct {
	// "table" (the default) or "json".
	Format string `json:"format"`
	// If set, the JSON result is also written to this file.
	JSONFile string `json:"jsonFile,omitempty"`
	// If set, the classified taxonomy is rendered here with Graphviz. The
	// extension picks the format: .dot, .pdf, .png, or .svg.
	DotFile string `json:"dotFile,omitempty"`
	// If set, the table lists excluded categories too.
	ShowExcluded bool `json:"showExcluded,omitempty"`
}

// Validate checks the values of cfg, reporting every problem found in a
// *catalog.ConfigurationError.
func (cfg *Classifier) Validate() error {
	errs := &catalog.ConfigurationError{Source: "configuration"}
	switch strings.ToLower(cfg.World) {
	case "", "open", "closed":
	default:
		errs.Problems = append(errs.Problems, `world must be "open" or "closed", got "`+cfg.World+`"`)
	}
	if cfg.MaxPasses < 0 {
		errs.Problems = append(errs.Problems, "maxPasses must not be negative")
	}
	if cfg.Output != nil {
		switch cfg.Output.Format {
		case "", "table", "json":
		default:
			errs.Problems = append(errs.Problems,
				`output.format must be "table" or "json", got "`+cfg.Output.Format+`"`)
		}
	}
	if len(errs.Problems) > 0 {
		return errs
	}
	return nil
}

// OutputOrDefault returns cfg.Output, or the default output settings if it's
// nil.
func (cfg *Classifier) OutputOrDefault() Output {
	if cfg.Output == nil {
		return Output{Format: "table"}
	}
	out := *cfg.Output
	if out.Format == "" {
		out.Format = "table"
	}
	return out
}
