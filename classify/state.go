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
	"fmt"

	"github.com/ebay/taxoclass/catalog"
)

// Status is the classification state of a (node, category) pair.
type Status int

// The classification states. A pair starts Possible and moves at most once,
// to Asserted or to Excluded.
const (
	Possible Status = iota
	Asserted
	Excluded
)

func (s Status) String() string {
	switch s {
	case Possible:
		return "possible"
	case Asserted:
		return "asserted"
	case Excluded:
		return "excluded"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// nodeState is the classification vector of one node. A category is never in
// both sets; a category in neither is Possible.
type nodeState struct {
	asserted catalog.Set
	excluded catalog.Set
}

func (n *nodeState) status(c catalog.Category) Status {
	switch {
	case n.asserted.Has(c):
		return Asserted
	case n.excluded.Has(c):
		return Excluded
	}
	return Possible
}

func (n *nodeState) set(c catalog.Category, s Status) {
	switch s {
	case Asserted:
		n.asserted = n.asserted.Add(c)
	case Excluded:
		n.excluded = n.excluded.Add(c)
	default:
		panic(fmt.Sprintf("cannot move a category to %v", s))
	}
}

func (n *nodeState) possible(all catalog.Set) catalog.Set {
	return all.Minus(n.asserted).Minus(n.excluded)
}

// Is returns true if the node has category c Asserted. Unknown nodes have
// nothing Asserted.
func (e *Engine) Is(key string, c catalog.Category) bool {
	return e.AssertedSet(key).Has(c)
}

// Excluded returns true if the node has category c Excluded.
func (e *Engine) Excluded(key string, c catalog.Category) bool {
	return e.ExcludedSet(key).Has(c)
}

// Possible returns true if category c is still undetermined for the node.
func (e *Engine) Possible(key string, c catalog.Category) bool {
	return e.PossibleSet(key).Has(c)
}

// Status returns the state of category c for the node.
func (e *Engine) Status(key string, c catalog.Category) Status {
	if n, ok := e.nodes[key]; ok {
		return n.status(c)
	}
	return Possible
}

// AssertedSet returns the categories Asserted for the node.
func (e *Engine) AssertedSet(key string) catalog.Set {
	if n, ok := e.nodes[key]; ok {
		return n.asserted
	}
	return 0
}

// ExcludedSet returns the categories Excluded for the node.
func (e *Engine) ExcludedSet(key string) catalog.Set {
	if n, ok := e.nodes[key]; ok {
		return n.excluded
	}
	return 0
}

// PossibleSet returns the categories still undetermined for the node.
func (e *Engine) PossibleSet(key string) catalog.Set {
	if n, ok := e.nodes[key]; ok {
		return n.possible(e.cat.All())
	}
	return e.cat.All()
}

// Keys returns every node key in ascending order. The returned slice must not
// be modified.
func (e *Engine) Keys() []string {
	return e.keys
}

// Snapshot is an immutable copy of every node's classification vector.
type Snapshot map[string]Vector

// Vector is the classification of one node.
type Vector struct {
	Asserted catalog.Set
	Excluded catalog.Set
}

// Snapshot returns a copy of the current classification of every node.
func (e *Engine) Snapshot() Snapshot {
	snap := make(Snapshot, len(e.nodes))
	for key, n := range e.nodes {
		snap[key] = Vector{Asserted: n.asserted, Excluded: n.excluded}
	}
	return snap
}

// Extends returns true if every category Asserted or Excluded in prev has the
// same state in s.
func (s Snapshot) Extends(prev Snapshot) bool {
	for key, p := range prev {
		v, ok := s[key]
		if !ok {
			return false
		}
		if !v.Asserted.Contains(p.Asserted) || !v.Excluded.Contains(p.Excluded) {
			return false
		}
	}
	return true
}
