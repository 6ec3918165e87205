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

package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/ebay/taxoclass/catalog"
	"github.com/ebay/taxoclass/taxonomy"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomInput describes a random taxonomy over the default catalogue. Edges
// and seeds are encoded as integers so that gopter can generate and shrink
// them.
type randomInput struct {
	numNodes int
	edges    []int
	seeds    []int
	closed   bool
}

func (in randomInput) node(i int) string {
	return fmt.Sprintf("n%d", i%in.numNodes)
}

// build returns an engine and the seeds for it. Edge e makes node e/16
// specialize node e%16, when that keeps the graph acyclic. Seed s asserts
// leaf s%8 on node s/8.
func (in randomInput) build(cat *catalog.Catalog, onMove func(MoveEvent)) (*Engine, []taxonomy.Seed, error) {
	g := taxonomy.New()
	for i := 0; i < in.numNodes; i++ {
		g.AddNode(in.node(i))
	}
	for _, e := range in.edges {
		sub, super := (e/16)%in.numNodes, (e%16)%in.numNodes
		if super < sub {
			g.AddEdge(in.node(sub), in.node(super))
		}
	}
	world := OpenWorld
	if in.closed {
		world = ClosedWorld
	}
	engine, err := New(cat, g, Options{World: world, OnMove: onMove})
	if err != nil {
		return nil, nil, err
	}
	leaves := cat.Names(cat.Leaves())
	var seeds []taxonomy.Seed
	for _, s := range in.seeds {
		seeds = append(seeds, is(in.node(s/8), leaves[s%8]))
	}
	return engine, seeds, nil
}

func genRandomInput() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 16*16-1)),
		gen.SliceOf(gen.IntRange(0, 12*8-1)),
		gen.Bool(),
	).Map(func(vals []interface{}) randomInput {
		return randomInput{
			numNodes: vals[0].(int),
			edges:    vals[1].([]int),
			seeds:    vals[2].([]int),
			closed:   vals[3].(bool),
		}
	})
}

// Every state reachable during a run partitions each node's categories, never
// undoes a move, and never has two leaves asserted. This holds whether the
// run reaches a fixpoint or stops at an Inconsistency.
func Test_Property_Invariants(t *testing.T) {
	cat := catalog.Default()
	leaves := cat.Leaves()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("moves preserve the invariants", prop.ForAll(
		func(in randomInput) string {
			var engine *Engine
			var prev Snapshot
			var violation string
			check := func(ev MoveEvent) {
				if violation != "" {
					return
				}
				snap := engine.Snapshot()
				for key, v := range snap {
					if !v.Asserted.Intersect(v.Excluded).Empty() {
						violation = fmt.Sprintf("%v has categories both asserted and excluded", key)
						return
					}
					if v.Asserted.Intersect(leaves).Len() > 1 {
						violation = fmt.Sprintf("%v has leaves %v asserted", key,
							cat.Names(v.Asserted.Intersect(leaves)))
						return
					}
				}
				if prev != nil && !snap.Extends(prev) {
					violation = fmt.Sprintf("move %+v undid an earlier move", ev)
					return
				}
				prev = snap
			}
			var seeds []taxonomy.Seed
			var err error
			engine, seeds, err = in.build(cat, check)
			if err != nil {
				return err.Error()
			}
			if err := engine.Seed(seeds); err != nil && !IsInconsistency(err) {
				return err.Error()
			}
			_, err = engine.Run(context.Background())
			if err != nil && !IsInconsistency(err) {
				return err.Error()
			}
			return violation
		},
		genRandomInput(),
	))

	properties.TestingRun(t)
}

// After a run reaches its fixpoint, another pass changes nothing and every
// node's three lists partition the catalogue.
func Test_Property_Fixpoint(t *testing.T) {
	cat := catalog.Default()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fixpoint is stable", prop.ForAll(
		func(in randomInput) string {
			engine, seeds, err := in.build(cat, nil)
			if err != nil {
				return err.Error()
			}
			if err := engine.Seed(seeds); err != nil {
				return ""
			}
			res, err := engine.Run(context.Background())
			if err != nil {
				if IsInconsistency(err) {
					return ""
				}
				return err.Error()
			}
			for _, n := range res.Nodes {
				if len(n.Asserted)+len(n.Excluded)+len(n.Possible) != cat.Len() {
					return fmt.Sprintf("%v: lists don't partition the catalogue", n.Key)
				}
			}
			changed, err := engine.Step(context.Background())
			if err != nil {
				return err.Error()
			}
			if changed || engine.Hash() != res.Hash {
				return "extra pass changed the state"
			}
			return ""
		},
		genRandomInput(),
	))

	properties.TestingRun(t)
}
