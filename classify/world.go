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

// World is the assumption existential rules resolve under, unless a rule
// names its own policy.
type World int

const (
	// OpenWorld treats missing information as unknown: unresolved existential
	// rules are recorded as Incompleteness.
	OpenWorld World = iota
	// ClosedWorld treats missing information as false: a sole candidate is
	// forced, and no candidate at all is an Inconsistency.
	ClosedWorld
)

func (w World) String() string {
	switch w {
	case OpenWorld:
		return "open"
	case ClosedWorld:
		return "closed"
	}
	return fmt.Sprintf("World(%d)", int(w))
}

// MarshalText implements encoding.TextMarshaler.
func (w World) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// ParseWorld parses "open" or "closed". The empty string means open.
func ParseWorld(s string) (World, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open":
		return OpenWorld, nil
	case "closed":
		return ClosedWorld, nil
	}
	return OpenWorld, fmt.Errorf("unknown world assumption %q (want open or closed)", s)
}

// policy resolves p against the world. The result is never PolicyDefault.
func (w World) policy(p catalog.Policy) catalog.Policy {
	if p != catalog.PolicyDefault {
		return p
	}
	if w == ClosedWorld {
		return catalog.PolicyClosed
	}
	return catalog.PolicyOpen
}
