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

import "fmt"

// Inconsistency is returned when a deduction contradicts a committed fact. It
// is fatal: the engine that returned it rejects any further work, and none of
// its state should be reported as a classification.
type Inconsistency struct {
	// The rule that attempted the contradicting move, or one of the built-in
	// rule ids such as "seed" or "leaf".
	Rule     string
	Node     string
	Category string
	Reason   string
}

func (e *Inconsistency) Error() string {
	return fmt.Sprintf("inconsistency in rule %v at node %v, category %v: %v",
		e.Rule, e.Node, e.Category, e.Reason)
}

// IsInconsistency returns true if err is an *Inconsistency.
func IsInconsistency(err error) bool {
	_, ok := err.(*Inconsistency)
	return ok
}

// fail records err as the engine's terminal error and returns it.
func (e *Engine) fail(err error) error {
	if e.failed == nil {
		e.failed = err
	}
	return err
}
