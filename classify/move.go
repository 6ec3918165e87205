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
	"strings"

	"github.com/ebay/taxoclass/catalog"
)

// Rule ids for moves that don't come from a hierarchy rule.
const (
	// SeedRule moves pairs given in the input.
	SeedRule = "seed"
	// ImplicationRule applies the catalogue's implies_is and implies_not
	// tables.
	ImplicationRule = "implication"
	// CompletionRule asserts a category once its witnesses are all excluded.
	CompletionRule = "completion"
	// LeafRule keeps exactly one leaf category per node.
	LeafRule = "leaf"
)

// MoveEvent describes one state transition. It's passed to Options.OnMove.
type MoveEvent struct {
	Rule     string
	Node     string
	Category catalog.Category
	To       Status
}

// move sets category c of node key to target. It's a no-op if the pair is
// already in target, and an Inconsistency if the pair is in the other
// terminal state or if asserting c would give the node a second leaf. A
// successful move clears the node's Incompleteness entries and brings every
// node back to its intra-node fixpoint before returning.
func (e *Engine) move(rule, key string, c catalog.Category, target Status) error {
	if e.failed != nil {
		return e.failed
	}
	n := e.nodes[key]
	switch cur := n.status(c); cur {
	case target:
		return nil
	case Possible:
	default:
		return e.fail(&Inconsistency{
			Rule:     rule,
			Node:     key,
			Category: e.cat.Name(c),
			Reason:   fmt.Sprintf("cannot make %v %v", cur, target),
		})
	}
	leaves := e.cat.Leaves()
	if target == Asserted && leaves.Has(c) {
		if other, found := n.asserted.Intersect(leaves).First(); found {
			return e.fail(&Inconsistency{
				Rule:     rule,
				Node:     key,
				Category: e.cat.Name(c),
				Reason:   fmt.Sprintf("leaf category %v is already asserted", e.cat.Name(other)),
			})
		}
	}
	n.set(c, target)
	e.moves++
	e.movesByRule[rule]++
	metrics.movesTotal.WithLabelValues(target.String()).Inc()
	e.ledger.clearNode(key)
	if e.onMove != nil {
		e.onMove(MoveEvent{Rule: rule, Node: key, Category: c, To: target})
	}
	return e.settle()
}

// settle runs the intra-node closure to fixpoint. Calls made while the closure
// is already running return immediately; the running closure picks up their
// effects on its next sweep.
func (e *Engine) settle() error {
	if e.inClosure {
		return nil
	}
	e.inClosure = true
	defer func() { e.inClosure = false }()
	for {
		before := e.moves
		for _, key := range e.keys {
			if err := e.closeNode(key); err != nil {
				return err
			}
		}
		if e.moves == before {
			return nil
		}
	}
}

// closeNode applies the implication table, the completions, and the leaf check
// to one node once.
func (e *Engine) closeNode(key string) error {
	n := e.nodes[key]
	for _, c := range n.asserted.Slice() {
		for _, d := range e.cat.ImpliesIs(c).Minus(n.asserted).Slice() {
			if err := e.move(ImplicationRule, key, d, Asserted); err != nil {
				return err
			}
		}
		for _, d := range e.cat.ImpliesNot(c).Minus(n.excluded).Slice() {
			if err := e.move(ImplicationRule, key, d, Excluded); err != nil {
				return err
			}
		}
	}
	for _, comp := range e.cat.Completions() {
		if n.asserted.Has(comp.Target) {
			continue
		}
		if n.asserted.Contains(comp.When) && n.excluded.Contains(comp.Unless) {
			if err := e.move(CompletionRule, key, comp.Target, Asserted); err != nil {
				return err
			}
		}
	}
	return e.checkLeaves(key)
}

// checkLeaves enforces that every node ends up with exactly one leaf
// category. Once one leaf is asserted the others are excluded, and once all
// but one are excluded the last is asserted.
func (e *Engine) checkLeaves(key string) error {
	leaves := e.cat.Leaves()
	if leaves.Empty() {
		return nil
	}
	n := e.nodes[key]
	asserted := n.asserted.Intersect(leaves)
	if !asserted.Empty() {
		for _, c := range leaves.Minus(asserted).Minus(n.excluded).Slice() {
			if err := e.move(LeafRule, key, c, Excluded); err != nil {
				return err
			}
		}
		return nil
	}
	possible := leaves.Minus(n.excluded)
	switch possible.Len() {
	case 0:
		return e.fail(&Inconsistency{
			Rule:     LeafRule,
			Node:     key,
			Category: strings.Join(e.cat.Names(leaves), ", "),
			Reason:   "every leaf category is excluded",
		})
	case 1:
		c, _ := possible.First()
		return e.move(LeafRule, key, c, Asserted)
	}
	return nil
}
