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

package catalog

import (
	"math/bits"
)

// MaxCategories is the largest catalogue size supported. Per-node state is
// kept in machine-word bitsets.
const MaxCategories = 64

// A Category is one label of a Catalog, identified by its position in the
// catalogue's declared order.
type Category uint8

// Set is a set of Categories from a single Catalog.
type Set uint64

// SetOf returns a Set containing exactly the given categories.
func SetOf(cs ...Category) Set {
	var s Set
	for _, c := range cs {
		s = s.Add(c)
	}
	return s
}

// Has returns true if c is a member of s.
func (s Set) Has(c Category) bool {
	return s&(1<<c) != 0
}

// Add returns s with c added.
func (s Set) Add(c Category) Set {
	return s | (1 << c)
}

// Remove returns s without c.
func (s Set) Remove(c Category) Set {
	return s &^ (1 << c)
}

// Union returns the categories in either s or o.
func (s Set) Union(o Set) Set {
	return s | o
}

// Intersect returns the categories in both s and o.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Minus returns the categories in s that are not in o.
func (s Set) Minus(o Set) Set {
	return s &^ o
}

// Contains returns true if every category in o is also in s.
func (s Set) Contains(o Set) bool {
	return o&^s == 0
}

// Empty returns true if s has no members.
func (s Set) Empty() bool {
	return s == 0
}

// Len returns the number of categories in s.
func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

// First returns the lowest-numbered category in s. It returns false if s is
// empty.
func (s Set) First() (Category, bool) {
	if s == 0 {
		return 0, false
	}
	return Category(bits.TrailingZeros64(uint64(s))), true
}

// Slice returns the members of s in ascending order.
func (s Set) Slice() []Category {
	res := make([]Category, 0, s.Len())
	for s != 0 {
		c := Category(bits.TrailingZeros64(uint64(s)))
		res = append(res, c)
		s = s.Remove(c)
	}
	return res
}
