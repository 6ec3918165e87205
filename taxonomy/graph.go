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

// Package taxonomy holds the class-specialization hierarchy that nodes are
// classified within. A Graph answers reflexive/transitive ancestor and
// descendant queries by breadth first traversal, and stores derived binary
// relations computed over the hierarchy.
//
// For example, given
//
//	<Student> rdfs:subClassOf <Person>
//	<Person> rdfs:subClassOf <Agent>
//
// Ancestors(Student) is {Person, Agent}, and Descendants(Agent) is
// {Person, Student}. A node is only its own ancestor if it has an explicit
// edge to itself.
package taxonomy

import (
	"sort"

	"github.com/google/btree"
)

// Graph is a directed specialization hierarchy. Edges are never removed. A
// Graph is not safe for concurrent mutation.
type Graph struct {
	// Every node, ordered by key. Each item has type *node.
	nodes *btree.BTree
	// Derived relations, by name.
	relations map[string]Relation
	// Memoized closures, by key. Cleared whenever an edge is added.
	ancestors   map[string][]string
	descendants map[string][]string
}

type node struct {
	key      string
	parents  map[string]struct{}
	children map[string]struct{}
}

// Less is needed to order the btree.
func (n *node) Less(other btree.Item) bool {
	return n.key < other.(*node).key
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:       btree.New(16),
		relations:   make(map[string]Relation),
		ancestors:   make(map[string][]string),
		descendants: make(map[string][]string),
	}
}

func (g *Graph) get(key string) *node {
	item := g.nodes.Get(&node{key: key})
	if item == nil {
		return nil
	}
	return item.(*node)
}

// AddNode adds a node with the given key, if it doesn't already exist.
func (g *Graph) AddNode(key string) {
	g.getOrAdd(key)
}

func (g *Graph) getOrAdd(key string) *node {
	if n := g.get(key); n != nil {
		return n
	}
	n := &node{
		key:      key,
		parents:  make(map[string]struct{}),
		children: make(map[string]struct{}),
	}
	g.nodes.ReplaceOrInsert(n)
	return n
}

// AddEdge records that sub specializes super, adding either node if needed.
// sub and super may be the same node.
func (g *Graph) AddEdge(sub, super string) {
	s := g.getOrAdd(sub)
	p := g.getOrAdd(super)
	if _, exists := s.parents[super]; exists {
		return
	}
	s.parents[super] = struct{}{}
	p.children[sub] = struct{}{}
	g.ancestors = make(map[string][]string)
	g.descendants = make(map[string][]string)
}

// Has returns true if the graph contains a node with the given key.
func (g *Graph) Has(key string) bool {
	return g.get(key) != nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return g.nodes.Len()
}

// Keys returns every node key in ascending order.
func (g *Graph) Keys() []string {
	keys := make([]string, 0, g.nodes.Len())
	g.nodes.Ascend(func(item btree.Item) bool {
		keys = append(keys, item.(*node).key)
		return true
	})
	return keys
}

// Edges calls fn for every edge in order of (sub, super).
func (g *Graph) Edges(fn func(sub, super string)) {
	g.nodes.Ascend(func(item btree.Item) bool {
		n := item.(*node)
		for _, p := range sortedKeys(n.parents) {
			fn(n.key, p)
		}
		return true
	})
}

// Parents returns the nodes that key directly specializes, in ascending order.
func (g *Graph) Parents(key string) []string {
	if n := g.get(key); n != nil {
		return sortedKeys(n.parents)
	}
	return nil
}

// Children returns the nodes that directly specialize key, in ascending order.
func (g *Graph) Children(key string) []string {
	if n := g.get(key); n != nil {
		return sortedKeys(n.children)
	}
	return nil
}

// Ancestors returns every node that key transitively specializes, in
// ascending order. key itself is included only if it's reachable from itself.
// The returned slice must not be modified.
func (g *Graph) Ancestors(key string) []string {
	return g.closure(key, g.ancestors, func(n *node) map[string]struct{} { return n.parents })
}

// Descendants returns every node that transitively specializes key, in
// ascending order. key itself is included only if it's reachable from itself.
// The returned slice must not be modified.
func (g *Graph) Descendants(key string) []string {
	return g.closure(key, g.descendants, func(n *node) map[string]struct{} { return n.children })
}

// StrictAncestors is like Ancestors but never includes key.
func (g *Graph) StrictAncestors(key string) []string {
	return without(g.Ancestors(key), key)
}

// StrictDescendants is like Descendants but never includes key.
func (g *Graph) StrictDescendants(key string) []string {
	return without(g.Descendants(key), key)
}

// closure performs a breadth first traversal from key following 'next'. The
// visited set stops the traversal on cycles.
func (g *Graph) closure(key string, memo map[string][]string, next func(*node) map[string]struct{}) []string {
	if res, ok := memo[key]; ok {
		return res
	}
	start := g.get(key)
	if start == nil {
		return nil
	}
	visited := make(map[string]struct{})
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for k := range next(n) {
			if _, seen := visited[k]; seen {
				continue
			}
			visited[k] = struct{}{}
			queue = append(queue, g.get(k))
		}
	}
	res := sortedKeys(visited)
	memo[key] = res
	return res
}

func sortedKeys(set map[string]struct{}) []string {
	res := make([]string, 0, len(set))
	for k := range set {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// without returns keys minus key; keys must be sorted. It doesn't modify keys.
func without(keys []string, key string) []string {
	i := sort.SearchStrings(keys, key)
	if i == len(keys) || keys[i] != key {
		return keys
	}
	res := make([]string, 0, len(keys)-1)
	res = append(res, keys[:i]...)
	return append(res, keys[i+1:]...)
}
