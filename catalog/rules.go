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
	"fmt"
	"strings"
)

// RuleKind identifies which of the hierarchy rule templates a rule uses.
type RuleKind int

// The rule templates.
const (
	// Universal rules move the target categories on every candidate of a
	// node that satisfies the rule's precondition.
	Universal RuleKind = iota + 1
	// ExistentialUnique rules require exactly one candidate to hold the
	// target category.
	ExistentialUnique
	// ExistentialSome rules require at least one candidate to hold all the
	// target categories.
	ExistentialSome
)

var ruleKindNames = map[RuleKind]string{
	Universal:         "universal",
	ExistentialUnique: "unique",
	ExistentialSome:   "some",
}

func (k RuleKind) String() string {
	if s, ok := ruleKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// Direction says which hierarchy query selects a rule's candidates.
type Direction int

// The candidate queries.
const (
	// Ancestors selects the nodes that the node specializes.
	Ancestors Direction = iota + 1
	// Descendants selects the nodes that specialize the node.
	Descendants
	// Related selects the nodes paired with the node in a derived relation.
	Related
)

// Query describes how candidates are selected for a node.
type Query struct {
	Direction Direction
	// Name of the derived relation; only used with Related.
	Relation string
	// If set, the node itself is never a candidate.
	Strict bool
}

func (q Query) String() string {
	var s string
	switch q.Direction {
	case Ancestors:
		s = "ancestors"
	case Descendants:
		s = "descendants"
	case Related:
		s = "related:" + q.Relation
	default:
		s = fmt.Sprintf("Direction(%d)", int(q.Direction))
	}
	if q.Strict {
		s = "strict " + s
	}
	return s
}

func parseQuery(s string, strict bool) (Query, error) {
	q := Query{Strict: strict}
	switch {
	case s == "ancestors":
		q.Direction = Ancestors
	case s == "descendants":
		q.Direction = Descendants
	case strings.HasPrefix(s, "related:") && len(s) > len("related:"):
		q.Direction = Related
		q.Relation = strings.TrimPrefix(s, "related:")
	default:
		return q, fmt.Errorf("unknown query %q (want ancestors, descendants, or related:<name>)", s)
	}
	return q, nil
}

// Action is what a Universal rule does to its candidates.
type Action int

// The Universal rule actions.
const (
	Assert Action = iota + 1
	Exclude
)

func (a Action) String() string {
	switch a {
	case Assert:
		return "assert"
	case Exclude:
		return "exclude"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Policy is the world assumption an existential rule resolves under.
type Policy int

// The world assumption policies.
const (
	// PolicyDefault uses the world assumption the engine runs with.
	PolicyDefault Policy = iota
	// PolicyOpen treats missing information as unknown.
	PolicyOpen
	// PolicyClosed treats missing information as false.
	PolicyClosed
	// PolicyForced resolves a sole candidate as under PolicyClosed but never
	// turns a missing candidate into an inconsistency.
	PolicyForced
)

var policyNames = map[Policy]string{
	PolicyDefault: "default",
	PolicyOpen:    "open",
	PolicyClosed:  "closed",
	PolicyForced:  "forced",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// RuleSpec describes one instance of a hierarchy rule template.
type RuleSpec struct {
	ID   string
	Kind RuleKind
	// The rule applies to every node that has all of these categories
	// Asserted.
	When Set
	// How candidates are found for such a node.
	Query Query
	// Universal: the categories moved on every candidate. ExistentialUnique:
	// exactly one category. ExistentialSome: the categories a witness must
	// have Asserted together.
	Targets Set
	// Only used by Universal rules.
	Action Action
	// Only used by existential rules.
	Policy Policy
	Doc    string
}

// DerivedSpec describes an auxiliary relation recomputed each pass: X and Y
// are related when both specialize a common node that has category Via
// Asserted.
type DerivedSpec struct {
	Name string
	Via  Category
	// If set, a node is never related to itself.
	Distinct bool
}
