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

// Rule is a compiled hierarchy rule. The only implementations are
// *Universal, *ExistentialUnique, and *ExistentialSome.
type Rule interface {
	// Spec returns the descriptor the rule was compiled from.
	Spec() catalog.RuleSpec
	// apply runs the rule once over every node.
	apply(e *Engine) error
}

// Universal moves its targets on every candidate of every node that matches
// the rule. It never records Incompleteness.
type Universal struct {
	spec   catalog.RuleSpec
	target Status
}

// ExistentialUnique requires exactly one candidate of every matching node to
// have the target category Asserted.
type ExistentialUnique struct {
	spec   catalog.RuleSpec
	target catalog.Category
	policy catalog.Policy
}

// ExistentialSome requires at least one candidate of every matching node to
// have all the target categories Asserted.
type ExistentialSome struct {
	spec   catalog.RuleSpec
	policy catalog.Policy
}

// Spec implements Rule.
func (r *Universal) Spec() catalog.RuleSpec { return r.spec }

// Spec implements Rule.
func (r *ExistentialUnique) Spec() catalog.RuleSpec { return r.spec }

// Spec implements Rule.
func (r *ExistentialSome) Spec() catalog.RuleSpec { return r.spec }

// compileRules builds the rules in the given order. Existential rules without
// their own policy take the one implied by world.
func compileRules(specs []catalog.RuleSpec, world World) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		switch spec.Kind {
		case catalog.Universal:
			r := &Universal{spec: spec}
			switch spec.Action {
			case catalog.Assert:
				r.target = Asserted
			case catalog.Exclude:
				r.target = Excluded
			default:
				return nil, fmt.Errorf("rule %v: unknown action %v", spec.ID, spec.Action)
			}
			rules = append(rules, r)
		case catalog.ExistentialUnique:
			target, ok := spec.Targets.First()
			if !ok || spec.Targets.Len() != 1 {
				return nil, fmt.Errorf("rule %v: unique rules need exactly one target", spec.ID)
			}
			rules = append(rules, &ExistentialUnique{
				spec:   spec,
				target: target,
				policy: world.policy(spec.Policy),
			})
		case catalog.ExistentialSome:
			if spec.Targets.Empty() {
				return nil, fmt.Errorf("rule %v: some rules need a target", spec.ID)
			}
			rules = append(rules, &ExistentialSome{
				spec:   spec,
				policy: world.policy(spec.Policy),
			})
		default:
			return nil, fmt.Errorf("rule %v: unknown kind %v", spec.ID, spec.Kind)
		}
	}
	return rules, nil
}

// forEachSubject calls fn for every node with all of 'when' Asserted, in key
// order. The check is made as each node is reached, so earlier calls to fn may
// add subjects.
func (e *Engine) forEachSubject(when catalog.Set, fn func(key string) error) error {
	for _, key := range e.keys {
		if !e.nodes[key].asserted.Contains(when) {
			continue
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return nil
}

// candidates returns the nodes that q selects for key, in ascending order.
func (e *Engine) candidates(key string, q catalog.Query) []string {
	switch q.Direction {
	case catalog.Ancestors:
		if q.Strict {
			return e.graph.StrictAncestors(key)
		}
		return e.graph.Ancestors(key)
	case catalog.Descendants:
		if q.Strict {
			return e.graph.StrictDescendants(key)
		}
		return e.graph.Descendants(key)
	case catalog.Related:
		if q.Strict {
			return e.graph.StrictRelated(q.Relation, key)
		}
		return e.graph.Related(q.Relation, key)
	}
	panic(fmt.Sprintf("unknown query direction %v", q.Direction))
}

// partition splits candidates into those that have every target Asserted
// ('is') and those that could still get them ('can': no target Excluded).
// Candidates with some target Excluded are dropped.
func (e *Engine) partition(cands []string, targets catalog.Set) (is, can []string) {
	for _, key := range cands {
		n := e.nodes[key]
		switch {
		case n.asserted.Contains(targets):
			is = append(is, key)
		case n.excluded.Intersect(targets).Empty():
			can = append(can, key)
		}
	}
	return is, can
}

func (e *Engine) names(s catalog.Set) string {
	return strings.Join(e.cat.Names(s), ", ")
}

func (r *Universal) apply(e *Engine) error {
	targets := r.spec.Targets.Slice()
	return e.forEachSubject(r.spec.When, func(x string) error {
		for _, y := range e.candidates(x, r.spec.Query) {
			for _, c := range targets {
				if err := e.move(r.spec.ID, y, c, r.target); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *ExistentialUnique) apply(e *Engine) error {
	return e.forEachSubject(r.spec.When, func(x string) error {
		return r.applyTo(e, x)
	})
}

func (r *ExistentialUnique) applyTo(e *Engine, x string) error {
	id := r.spec.ID
	name := e.cat.Name(r.target)
	is, can := e.partition(e.candidates(x, r.spec.Query), catalog.SetOf(r.target))
	switch {
	case len(is) > 1:
		return e.fail(&Inconsistency{
			Rule:     id,
			Node:     x,
			Category: name,
			Reason:   fmt.Sprintf("needs exactly one candidate (%v) to be %v but has %v", r.spec.Query, name, strings.Join(is, ", ")),
		})
	case len(is) == 1:
		e.ledger.resolve(id, x)
		for _, y := range can {
			if err := e.move(id, y, r.target, Excluded); err != nil {
				return err
			}
		}
		return nil
	}
	switch len(can) {
	case 0:
		if r.policy == catalog.PolicyClosed {
			return e.fail(&Inconsistency{
				Rule:     id,
				Node:     x,
				Category: name,
				Reason:   fmt.Sprintf("no candidate (%v) can be %v", r.spec.Query, name),
			})
		}
		e.ledger.register(id, x, fmt.Sprintf("no candidate (%v) is known to be %v", r.spec.Query, name))
	case 1:
		if r.policy == catalog.PolicyOpen {
			e.ledger.register(id, x, fmt.Sprintf("the sole candidate %v is not known to be %v", can[0], name))
			return nil
		}
		e.ledger.resolve(id, x)
		return e.move(id, can[0], r.target, Asserted)
	default:
		e.ledger.register(id, x, fmt.Sprintf("choose exactly one of %v to be %v", strings.Join(can, ", "), name))
	}
	return nil
}

func (r *ExistentialSome) apply(e *Engine) error {
	return e.forEachSubject(r.spec.When, func(x string) error {
		return r.applyTo(e, x)
	})
}

func (r *ExistentialSome) applyTo(e *Engine, x string) error {
	id := r.spec.ID
	targets := r.spec.Targets
	names := e.names(targets)
	is, can := e.partition(e.candidates(x, r.spec.Query), targets)
	if len(is) > 0 {
		e.ledger.resolve(id, x)
		return nil
	}
	switch len(can) {
	case 0:
		if r.policy == catalog.PolicyClosed {
			return e.fail(&Inconsistency{
				Rule:     id,
				Node:     x,
				Category: names,
				Reason:   fmt.Sprintf("no candidate (%v) can be %v", r.spec.Query, names),
			})
		}
		e.ledger.register(id, x, fmt.Sprintf("no candidate (%v) is known to be %v", r.spec.Query, names))
	case 1:
		if r.policy == catalog.PolicyOpen {
			e.ledger.register(id, x, fmt.Sprintf("the sole candidate %v is not known to be %v", can[0], names))
			return nil
		}
		e.ledger.resolve(id, x)
		for _, c := range targets.Slice() {
			if err := e.move(id, can[0], c, Asserted); err != nil {
				return err
			}
		}
	default:
		e.ledger.register(id, x, fmt.Sprintf("set one of %v to %v", strings.Join(can, ", "), names))
	}
	return nil
}
