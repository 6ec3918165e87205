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

// Package classify assigns categories from a catalogue to the nodes of a
// taxonomy. For every (node, category) pair it tracks whether the category is
// Asserted, Excluded, or still Possible, and applies the catalogue's rules
// until a full pass changes nothing. Pairs only ever move out of Possible.
//
// Rules that apply but can't be resolved with the information available are
// recorded as Incompleteness entries. Deductions that contradict a committed
// fact are returned as an *Inconsistency, which aborts the run.
package classify

import (
	"context"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ebay/taxoclass/catalog"
	"github.com/ebay/taxoclass/taxonomy"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Options define optional settings for an Engine.
type Options struct {
	// The world assumption for existential rules that don't name a policy.
	World World
	// Where the engine logs. Defaults to a logger that discards everything.
	Log logrus.FieldLogger
	// If nonzero, Run gives up after this many passes without reaching a
	// fixpoint.
	MaxPasses int
	// If set, called after every successful move, before its consequences
	// are applied.
	OnMove func(MoveEvent)
}

// An Engine classifies the nodes of one taxonomy. It's not safe for
// concurrent use. An Engine must be constructed with New.
type Engine struct {
	cat    *catalog.Catalog
	graph  *taxonomy.Graph
	world  World
	log    logrus.FieldLogger
	rules  []Rule
	onMove func(MoveEvent)
	// If nonzero, the pass limit for Run.
	maxPasses int
	// Every node key, in ascending order. Fixed at construction.
	keys   []string
	nodes  map[string]*nodeState
	ledger *ledger
	// Set once the reflexive edges have been added.
	based bool
	// Set while settle is sweeping the nodes.
	inClosure bool
	// The first Inconsistency, after which the engine does nothing more.
	failed error
	// Statistics.
	passes      int
	moves       int
	movesByRule map[string]int
}

// New returns an Engine that classifies every node in graph against cat. The
// Engine takes ownership of graph: it adds reflexive edges and derived
// relations to it, and the caller must not modify it afterwards.
func New(cat *catalog.Catalog, graph *taxonomy.Graph, opts Options) (*Engine, error) {
	rules, err := compileRules(cat.Rules(), opts.World)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = l
	}
	e := &Engine{
		cat:         cat,
		graph:       graph,
		world:       opts.World,
		log:         log,
		rules:       rules,
		onMove:      opts.OnMove,
		maxPasses:   opts.MaxPasses,
		keys:        graph.Keys(),
		nodes:       make(map[string]*nodeState, graph.Len()),
		ledger:      newLedger(),
		movesByRule: make(map[string]int),
	}
	for _, key := range e.keys {
		e.nodes[key] = new(nodeState)
	}
	for _, spec := range cat.Derived() {
		graph.SetRelation(spec.Name, make(taxonomy.Relation))
	}
	return e, nil
}

// Catalog returns the catalogue the engine classifies against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Rules returns the compiled rules in the order each pass applies them.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Seed applies initial facts before the first pass. Unknown nodes or
// categories are reported together as a *catalog.ConfigurationError, and no
// seed is applied then. Seeds that contradict each other return an
// *Inconsistency.
func (e *Engine) Seed(seeds []taxonomy.Seed) error {
	if e.failed != nil {
		return e.failed
	}
	type move struct {
		node   string
		c      catalog.Category
		target Status
	}
	moves := make([]move, 0, len(seeds))
	errs := catalog.ConfigurationError{Source: "seeds"}
	for _, seed := range seeds {
		if _, ok := e.nodes[seed.Node]; !ok {
			errs.Problems = append(errs.Problems, fmt.Sprintf("unknown node %q", seed.Node))
			continue
		}
		c, ok := e.cat.Lookup(seed.Category)
		if !ok {
			errs.Problems = append(errs.Problems,
				fmt.Sprintf("unknown category %q for node %q", seed.Category, seed.Node))
			continue
		}
		target := Excluded
		if seed.Asserted {
			target = Asserted
		}
		moves = append(moves, move{seed.Node, c, target})
	}
	if len(errs.Problems) > 0 {
		return &errs
	}
	for _, m := range moves {
		if err := e.move(SeedRule, m.node, m.c, m.target); err != nil {
			return err
		}
	}
	e.log.WithFields(logrus.Fields{
		"seeds": len(seeds),
		"moves": e.moves,
	}).Debug("Applied seeds")
	return nil
}

// base makes every node specialize itself, so that ancestor and descendant
// queries are reflexive, and brings every node to its intra-node fixpoint.
func (e *Engine) base() error {
	if e.based {
		return nil
	}
	for _, key := range e.keys {
		e.graph.AddEdge(key, key)
	}
	e.based = true
	return e.settle()
}

// Step runs one outer pass: it recomputes the derived relations, then applies
// every rule in order. It returns true if the pass changed the state.
func (e *Engine) Step(ctx context.Context) (changed bool, err error) {
	if e.failed != nil {
		return false, e.failed
	}
	if err := e.base(); err != nil {
		return false, err
	}
	span, _ := opentracing.StartSpanFromContext(ctx, "classify pass")
	span.SetTag("pass", e.passes+1)
	defer span.Finish()
	start := time.Now()
	movesBefore := e.moves
	h0 := e.Hash()
	e.derive()
	for _, r := range e.rules {
		if err := r.apply(e); err != nil {
			span.SetTag("error", true)
			return false, err
		}
	}
	h1 := e.Hash()
	e.passes++
	metrics.passesTotal.Inc()
	metrics.passDurationSecond.Observe(time.Since(start).Seconds())
	e.log.WithFields(logrus.Fields{
		"pass":       e.passes,
		"moves":      e.moves - movesBefore,
		"incomplete": e.ledger.len(),
		"hash":       fmt.Sprintf("%016x", h1),
	}).Debug("Finished classification pass")
	return h0 != h1, nil
}

// Run applies passes until one changes nothing, then returns the
// classification. The context is only checked between passes. Run returns an
// *Inconsistency if the rules contradict each other or the seeds, in which
// case no Result is returned and the Engine is unusable.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "classify run")
	defer span.Finish()
	start := time.Now()
	res, err := e.run(ctx)
	outcome := "ok"
	switch {
	case err == nil:
	case IsInconsistency(err):
		outcome = "inconsistent"
	case err == context.Canceled || err == context.DeadlineExceeded:
		outcome = "canceled"
	default:
		outcome = "error"
	}
	metrics.runsTotal.WithLabelValues(outcome).Inc()
	span.SetTag("outcome", outcome)
	fields := logrus.Fields{
		"passes":  e.passes,
		"moves":   e.moves,
		"outcome": outcome,
		"elapsed": time.Since(start),
	}
	if err != nil {
		e.log.WithFields(fields).WithError(err).Warn("Classification failed")
		return nil, err
	}
	metrics.incompleteEntries.Set(float64(len(res.Incomplete)))
	fields["incomplete"] = len(res.Incomplete)
	e.log.WithFields(fields).Info("Classification reached fixpoint")
	return res, nil
}

func (e *Engine) run(ctx context.Context) (*Result, error) {
	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.maxPasses > 0 && pass > e.maxPasses {
			return nil, fmt.Errorf("no fixpoint after %d passes", e.maxPasses)
		}
		changed, err := e.Step(ctx)
		if err != nil {
			return nil, err
		}
		if !changed {
			return e.result(), nil
		}
	}
}

// Hash returns a digest of every node's classification. It doesn't depend on
// the order in which moves were made.
func (e *Engine) Hash() uint64 {
	h := xxhash.New()
	for _, key := range e.keys {
		n := e.nodes[key]
		h.WriteString(key)
		h.Write([]byte{0})
		for _, set := range []catalog.Set{n.asserted, n.excluded, n.possible(e.cat.All())} {
			for _, name := range e.cat.Names(set) {
				h.WriteString(name)
				h.Write([]byte{0})
			}
			h.Write([]byte{1})
		}
	}
	return h.Sum64()
}
