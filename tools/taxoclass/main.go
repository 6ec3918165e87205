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

// Command taxoclass classifies the classes of a taxonomy against a catalogue
// of categories, such as the gUFO types.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/taxoclass/catalog"
	"github.com/ebay/taxoclass/config"
	"github.com/ebay/taxoclass/util/debuglog"
	log "github.com/sirupsen/logrus"
)

const usage = `taxoclass classifies the classes of a taxonomy against a category catalogue.

It reads facts, one per line, of the forms:
  <Student>  rdfs:subClassOf  <Person> .
  <Person>   rdf:type         gufo:Kind .
  <Student>  taxo:notType     gufo:Phase .
and applies the catalogue's rules until nothing more can be deduced. Type facts
naming RDF, RDFS, or OWL terms (owl:Class, owl:NamedIndividual, ...) only
declare the class. It exits with status 2 if the facts are inconsistent.

Usage:
  taxoclass default-catalog
  taxoclass [options] write-config FILE
  taxoclass [options] [FACTS]

Options:
  -c=FILE, --config=FILE      Read settings from this JSON file. Flags override it.
  --catalog=FILE              Use this YAML catalogue instead of the built-in gUFO one.
  -w=WORLD, --world=WORLD     World assumption for unresolved rules: open or closed.
  -f=FORMAT, --format=FORMAT  Output format: table or json.
  --dot=FILE                  Draw the classified taxonomy here (.dot, .pdf, .png, or .svg).
  --json=FILE                 Also write the JSON result here.
  --metrics=FILE              Write Prometheus metrics here after the run.
  --max-passes=N              Fail if no fixpoint is reached after N passes.
  -x, --excluded              List excluded categories in the table.
  -v, --verbose               Log every pass, and list moves by rule.
  -t=DUR, --timeout=DUR       Stop between passes after this long; 0 means never [default: 0s].
  -h, --help                  Show this screen.

FACTS defaults to "-", which reads standard input.

Examples:
  # Classify a fact file and draw the result.
  taxoclass --dot=people.svg people.tsv

  # Classify from stdin under the closed world assumption.
  cat people.tsv | taxoclass --world=closed

  # Start from the built-in catalogue and customize it.
  taxoclass default-catalog > mycatalog.yaml
  taxoclass --catalog=mycatalog.yaml people.tsv
`

// Exit statuses.
const (
	exitOK           = 0
	exitError        = 1
	exitInconsistent = 2
)

type options struct {
	// Commands
	DefaultCatalog bool   `docopt:"default-catalog"`
	WriteConfig    bool   `docopt:"write-config"`
	ConfigOut      string `docopt:"FILE"`

	// Inputs
	Facts   string `docopt:"FACTS"`
	Config  string `docopt:"--config"`
	Catalog string `docopt:"--catalog"`

	// Classification
	World           string `docopt:"--world"`
	MaxPasses       int
	MaxPassesString string `docopt:"--max-passes"`
	// Zero means no timeout.
	Timeout       time.Duration
	TimeoutString string `docopt:"--timeout"`

	// Output
	Format       string `docopt:"--format"`
	DotFile      string `docopt:"--dot"`
	JSONFile     string `docopt:"--json"`
	MetricsFile  string `docopt:"--metrics"`
	ShowExcluded bool   `docopt:"--excluded"`
	Verbose      bool   `docopt:"--verbose"`
}

func parseArgs(argv []string) (*options, error) {
	opts, err := docopt.ParseArgs(usage, argv, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		return nil, fmt.Errorf("error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	if options.TimeoutString != "" {
		options.Timeout, err = time.ParseDuration(options.TimeoutString)
		if err != nil {
			return nil, fmt.Errorf("unable to parse timeout value: %v", err)
		}
	}
	if options.MaxPassesString != "" {
		options.MaxPasses, err = strconv.Atoi(options.MaxPassesString)
		if err != nil || options.MaxPasses <= 0 {
			return nil, fmt.Errorf("--max-passes must be a positive integer, got %q", options.MaxPassesString)
		}
	}
	return &options, nil
}

// settings combines the configuration file, if any, with the command-line
// flags, which take precedence.
func settings(options *options) (*config.Classifier, error) {
	cfg := new(config.Classifier)
	if options.Config != "" {
		var err error
		cfg, err = config.Load(options.Config)
		if err != nil {
			return nil, err
		}
	}
	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	override(&cfg.World, options.World)
	override(&cfg.Catalog, options.Catalog)
	override(&cfg.Taxonomy, options.Facts)
	override(&cfg.MetricsFile, options.MetricsFile)
	if options.MaxPasses > 0 {
		cfg.MaxPasses = options.MaxPasses
	}
	if options.Format != "" || options.DotFile != "" || options.JSONFile != "" || options.ShowExcluded {
		if cfg.Output == nil {
			cfg.Output = new(config.Output)
		}
		override(&cfg.Output.Format, options.Format)
		override(&cfg.Output.DotFile, options.DotFile)
		override(&cfg.Output.JSONFile, options.JSONFile)
		if options.ShowExcluded {
			cfg.Output.ShowExcluded = true
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	options, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	level := log.InfoLevel
	if options.Verbose {
		level = log.DebugLevel
	}
	logger := debuglog.Configure(debuglog.Options{Level: level, Quiet: true})

	if options.DefaultCatalog {
		os.Stdout.Write(catalog.DefaultYAML())
		return
	}
	cfg, err := settings(options)
	if err != nil {
		logger.Fatal(err)
	}
	if options.WriteConfig {
		if err := config.Write(cfg, options.ConfigOut); err != nil {
			logger.Fatal(err)
		}
		return
	}
	ctx := context.Background()
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	code := run(ctx, cfg, runOptions{
		verbose: options.Verbose,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		log:     logger,
	})
	os.Exit(code)
}
