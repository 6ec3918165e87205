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

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ebay/taxoclass/catalog"
	"github.com/ebay/taxoclass/classify"
	"github.com/ebay/taxoclass/config"
	"github.com/ebay/taxoclass/report"
	"github.com/ebay/taxoclass/taxonomy"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type runOptions struct {
	// If set, every move is logged and the table output lists moves by rule.
	verbose bool
	// Read when the taxonomy is "-" or empty.
	stdin  io.Reader
	stdout io.Writer
	log    logrus.FieldLogger
}

// run classifies the taxonomy described by cfg and writes the results. It
// returns the process exit status.
func run(ctx context.Context, cfg *config.Classifier, opts runOptions) int {
	span, ctx := opentracing.StartSpanFromContext(ctx, "taxoclass")
	defer span.Finish()
	res, graph, err := classifyTaxonomy(ctx, cfg, opts)
	if cfg.MetricsFile != "" {
		if merr := prometheus.WriteToTextfile(cfg.MetricsFile, prometheus.DefaultGatherer); merr != nil {
			opts.log.WithError(merr).Warn("Unable to write metrics")
		}
	}
	if err != nil {
		if inc, ok := err.(*classify.Inconsistency); ok {
			report.Inconsistency(opts.stdout, inc)
			return exitInconsistent
		}
		opts.log.WithError(err).Error("Classification failed")
		return exitError
	}
	if err := writeResult(cfg.OutputOrDefault(), res, graph, opts); err != nil {
		opts.log.WithError(err).Error("Unable to write results")
		return exitError
	}
	return exitOK
}

func classifyTaxonomy(ctx context.Context, cfg *config.Classifier, opts runOptions) (*classify.Result, *taxonomy.Graph, error) {
	cat := catalog.Default()
	if cfg.Catalog != "" {
		var err error
		cat, err = catalog.Load(cfg.Catalog)
		if err != nil {
			return nil, nil, err
		}
	}
	graph, seeds, err := loadTaxonomy(cfg.Taxonomy, opts.stdin)
	if err != nil {
		return nil, nil, err
	}
	world, err := classify.ParseWorld(cfg.World)
	if err != nil {
		return nil, nil, err
	}
	opts.log.WithFields(logrus.Fields{
		"nodes":      graph.Len(),
		"seeds":      len(seeds),
		"categories": cat.Len(),
		"world":      world,
	}).Info("Loaded taxonomy")

	engineOpts := classify.Options{
		World:     world,
		Log:       opts.log,
		MaxPasses: cfg.MaxPasses,
	}
	if opts.verbose {
		engineOpts.OnMove = func(ev classify.MoveEvent) {
			opts.log.WithFields(logrus.Fields{
				"rule":     ev.Rule,
				"node":     ev.Node,
				"category": cat.Name(ev.Category),
				"to":       ev.To,
			}).Debug("Move")
		}
	}
	engine, err := classify.New(cat, graph, engineOpts)
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Seed(seeds); err != nil {
		return nil, nil, err
	}
	res, err := engine.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return res, graph, nil
}

func loadTaxonomy(path string, stdin io.Reader) (*taxonomy.Graph, []taxonomy.Seed, error) {
	if path == "" || path == "-" {
		g, seeds, err := taxonomy.ParseTSV(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading standard input: %v", err)
		}
		return g, seeds, nil
	}
	return taxonomy.LoadFile(path)
}

func writeResult(out config.Output, res *classify.Result, graph *taxonomy.Graph, opts runOptions) error {
	switch out.Format {
	case "json":
		if err := report.JSON(opts.stdout, res); err != nil {
			return err
		}
	default:
		report.Table(opts.stdout, res, report.TableOptions{ShowExcluded: out.ShowExcluded})
		if len(res.Incomplete) > 0 {
			fmt.Fprintln(opts.stdout)
			report.Incomplete(opts.stdout, res.Incomplete)
		}
		if opts.verbose {
			fmt.Fprintln(opts.stdout)
			report.Moves(opts.stdout, res)
		}
		fmt.Fprintln(opts.stdout)
		report.Summary(opts.stdout, res)
	}
	if out.JSONFile != "" {
		f, err := os.Create(out.JSONFile)
		if err != nil {
			return err
		}
		err = report.JSON(f, res)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("error writing %v: %v", out.JSONFile, err)
		}
	}
	if out.DotFile != "" {
		if err := report.WriteDot(out.DotFile, res, graph); err != nil {
			return err
		}
	}
	return nil
}
