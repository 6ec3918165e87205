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
	"sort"
)

// Result is the outcome of a successful Run.
type Result struct {
	World World `json:"world"`
	// Every node, in ascending order of key.
	Nodes []NodeResult `json:"nodes"`
	// Every unresolved rule application, sorted by node, then rule.
	Incomplete  []Incompleteness `json:"incomplete"`
	Passes      int              `json:"passes"`
	Moves       int              `json:"moves"`
	MovesByRule map[string]int   `json:"movesByRule"`
	// The final value of Engine.Hash.
	Hash uint64 `json:"hash"`
}

// NodeResult is the classification of one node. Each category of the
// catalogue appears in exactly one of the three lists, each sorted by name.
type NodeResult struct {
	Key string `json:"key"`
	// The asserted leaf category, if the node has one.
	Leaf     string   `json:"leaf,omitempty"`
	Asserted []string `json:"asserted"`
	Excluded []string `json:"excluded"`
	Possible []string `json:"possible"`
}

// Node returns the result for the node with the given key.
func (r *Result) Node(key string) (NodeResult, bool) {
	i := sort.Search(len(r.Nodes), func(i int) bool {
		return r.Nodes[i].Key >= key
	})
	if i < len(r.Nodes) && r.Nodes[i].Key == key {
		return r.Nodes[i], true
	}
	return NodeResult{}, false
}

func (e *Engine) result() *Result {
	res := &Result{
		World:       e.world,
		Nodes:       make([]NodeResult, 0, len(e.keys)),
		Incomplete:  e.ledger.list(),
		Passes:      e.passes,
		Moves:       e.moves,
		MovesByRule: make(map[string]int, len(e.movesByRule)),
		Hash:        e.Hash(),
	}
	all := e.cat.All()
	for _, key := range e.keys {
		n := e.nodes[key]
		nr := NodeResult{
			Key:      key,
			Asserted: e.cat.Names(n.asserted),
			Excluded: e.cat.Names(n.excluded),
			Possible: e.cat.Names(n.possible(all)),
		}
		if leaf, ok := n.asserted.Intersect(e.cat.Leaves()).First(); ok {
			nr.Leaf = e.cat.Name(leaf)
		}
		res.Nodes = append(res.Nodes, nr)
	}
	for rule, count := range e.movesByRule {
		res.MovesByRule[rule] = count
	}
	return res
}
