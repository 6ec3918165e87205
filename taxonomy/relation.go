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

package taxonomy

// Relation is a derived binary relation between node keys.
type Relation map[string]map[string]struct{}

// Add records the pair (x, y).
func (r Relation) Add(x, y string) {
	ys, ok := r[x]
	if !ok {
		ys = make(map[string]struct{})
		r[x] = ys
	}
	ys[y] = struct{}{}
}

// Has returns true if the pair (x, y) is in the relation.
func (r Relation) Has(x, y string) bool {
	_, ok := r[x][y]
	return ok
}

// Len returns the number of pairs in the relation.
func (r Relation) Len() int {
	n := 0
	for _, ys := range r {
		n += len(ys)
	}
	return n
}

// SetRelation replaces the derived relation with the given name. The graph
// takes ownership of rel.
func (g *Graph) SetRelation(name string, rel Relation) {
	g.relations[name] = rel
}

// Relation returns the derived relation with the given name, or nil if it
// hasn't been set.
func (g *Graph) Relation(name string) Relation {
	return g.relations[name]
}

// Related returns every y such that (key, y) is in the named relation, in
// ascending order.
func (g *Graph) Related(name, key string) []string {
	return sortedKeys(g.relations[name][key])
}

// StrictRelated is like Related but never includes key.
func (g *Graph) StrictRelated(name, key string) []string {
	return without(g.Related(name, key), key)
}

// RelationNames returns the names of the derived relations that have been
// set, in ascending order.
func (g *Graph) RelationNames() []string {
	names := make(map[string]struct{}, len(g.relations))
	for name := range g.relations {
		names[name] = struct{}{}
	}
	return sortedKeys(names)
}
