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

import "sort"

// Incompleteness records that a rule applies to a node but couldn't be
// resolved with the information available.
type Incompleteness struct {
	Rule   string `json:"rule"`
	Node   string `json:"node"`
	Reason string `json:"reason"`
}

type ledgerKey struct {
	rule string
	node string
}

// ledger holds at most one Incompleteness per (rule, node) pair.
type ledger struct {
	entries map[ledgerKey]string
	// Keys of entries, by node. Used to clear a node's entries.
	byNode map[string]map[string]struct{}
}

func newLedger() *ledger {
	return &ledger{
		entries: make(map[ledgerKey]string),
		byNode:  make(map[string]map[string]struct{}),
	}
}

// register records an entry, replacing any earlier one for the same rule and
// node.
func (l *ledger) register(rule, node, reason string) {
	l.entries[ledgerKey{rule, node}] = reason
	rules, ok := l.byNode[node]
	if !ok {
		rules = make(map[string]struct{})
		l.byNode[node] = rules
	}
	rules[rule] = struct{}{}
}

// resolve removes the entry for the rule and node, if any.
func (l *ledger) resolve(rule, node string) {
	delete(l.entries, ledgerKey{rule, node})
	if rules, ok := l.byNode[node]; ok {
		delete(rules, rule)
		if len(rules) == 0 {
			delete(l.byNode, node)
		}
	}
}

// clearNode removes every entry for the node.
func (l *ledger) clearNode(node string) {
	for rule := range l.byNode[node] {
		delete(l.entries, ledgerKey{rule, node})
	}
	delete(l.byNode, node)
}

func (l *ledger) len() int {
	return len(l.entries)
}

// list returns the entries sorted by node, then rule.
func (l *ledger) list() []Incompleteness {
	res := make([]Incompleteness, 0, len(l.entries))
	for k, reason := range l.entries {
		res = append(res, Incompleteness{Rule: k.rule, Node: k.node, Reason: reason})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Node != res[j].Node {
			return res[i].Node < res[j].Node
		}
		return res[i].Rule < res[j].Rule
	})
	return res
}

// Incomplete returns the current Incompleteness entries, sorted by node, then
// rule.
func (e *Engine) Incomplete() []Incompleteness {
	return e.ledger.list()
}
