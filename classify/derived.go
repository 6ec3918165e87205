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

import "github.com/ebay/taxoclass/taxonomy"

// derive recomputes every auxiliary relation from the current state and
// stores it in the graph. For a relation with Via K, nodes X and Y are
// related when both specialize some node Z that has K Asserted.
func (e *Engine) derive() {
	for _, spec := range e.cat.Derived() {
		rel := make(taxonomy.Relation)
		for _, z := range e.keys {
			if !e.nodes[z].asserted.Has(spec.Via) {
				continue
			}
			members := e.graph.Descendants(z)
			for _, x := range members {
				for _, y := range members {
					if spec.Distinct && x == y {
						continue
					}
					rel.Add(x, y)
				}
			}
		}
		e.graph.SetRelation(spec.Name, rel)
	}
}
