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

// Package catalog defines the closed set of categories that taxonomy nodes are
// classified against, the static implication table between them, and the list
// of hierarchy rules that constrain how categories may be combined along the
// specialization hierarchy.
//
// A Catalog is immutable once built by New, and validated as it's built; a
// malformed catalogue results in a *ConfigurationError.
package catalog

import (
	"sort"
	"strings"
)

// File is the serialized form of a catalogue: categories, implications, and
// rules, all by name.
type File struct {
	Categories  []CategoryDef   `yaml:"categories"`
	Completions []CompletionDef `yaml:"completions"`
	Derived     []DerivedDef    `yaml:"derived"`
	Rules       []RuleDef       `yaml:"rules"`
}

// CategoryDef declares one category.
type CategoryDef struct {
	Name string `yaml:"name"`
	// Categories that must be Asserted whenever this one is.
	ImpliesIs []string `yaml:"implies_is"`
	// Categories that must be Excluded whenever this one is Asserted.
	ImpliesNot []string `yaml:"implies_not"`
	// Member of the mutually-exclusive leaf set: every node has exactly one.
	Leaf bool   `yaml:"leaf"`
	Doc  string `yaml:"doc"`
}

// CompletionDef declares that Target must be Asserted once every category in
// When is Asserted and every category in Unless is Excluded.
type CompletionDef struct {
	Target string   `yaml:"target"`
	When   []string `yaml:"when"`
	Unless []string `yaml:"unless"`
}

// DerivedDef is the serialized form of a DerivedSpec.
type DerivedDef struct {
	Name     string `yaml:"name"`
	Via      string `yaml:"via"`
	Distinct bool   `yaml:"distinct"`
}

// RuleDef is the serialized form of a RuleSpec.
type RuleDef struct {
	ID      string   `yaml:"id"`
	Kind    string   `yaml:"kind"`
	When    []string `yaml:"when"`
	Query   string   `yaml:"query"`
	Strict  bool     `yaml:"strict"`
	Targets []string `yaml:"targets"`
	Action  string   `yaml:"action"`
	Policy  string   `yaml:"policy"`
	Doc     string   `yaml:"doc"`
}

// Completion is the compiled form of a CompletionDef.
type Completion struct {
	Target Category
	When   Set
	Unless Set
}

// Catalog is a validated category catalogue. It is safe for concurrent use.
type Catalog struct {
	names      []string
	docs       []string
	index      map[string]Category
	impliesIs  []Set
	impliesNot []Set
	leaves     Set
	completes  []Completion
	derived    []DerivedSpec
	rules      []RuleSpec
}

// New validates the catalogue described by f and compiles it. All problems
// found are reported together in a *ConfigurationError.
func New(f *File) (*Catalog, error) {
	errs := new(ConfigurationError)
	cat := &Catalog{
		index: make(map[string]Category, len(f.Categories)),
	}
	if len(f.Categories) == 0 {
		errs.addf("no categories declared")
	}
	if len(f.Categories) > MaxCategories {
		errs.addf("%d categories declared, at most %d are supported",
			len(f.Categories), MaxCategories)
		return nil, errs
	}
	for i, def := range f.Categories {
		name := strings.TrimSpace(def.Name)
		switch {
		case name == "":
			errs.addf("category %d has no name", i+1)
			continue
		case strings.ContainsAny(name, ":#/<> \t"):
			errs.addf("category name %q contains reserved characters", name)
		}
		if _, dup := cat.index[name]; dup {
			errs.addf("category %q declared more than once", name)
			continue
		}
		cat.index[name] = Category(len(cat.names))
		cat.names = append(cat.names, name)
		cat.docs = append(cat.docs, def.Doc)
	}
	cat.impliesIs = make([]Set, len(cat.names))
	cat.impliesNot = make([]Set, len(cat.names))
	for _, def := range f.Categories {
		c, ok := cat.index[strings.TrimSpace(def.Name)]
		if !ok {
			continue
		}
		what := "implies_is of " + cat.names[c]
		cat.impliesIs[c] = cat.setOf(errs, what, def.ImpliesIs)
		what = "implies_not of " + cat.names[c]
		cat.impliesNot[c] = cat.setOf(errs, what, def.ImpliesNot)
		if def.Leaf {
			cat.leaves = cat.leaves.Add(c)
		}
	}
	cat.closeImplications(errs)

	for i, def := range f.Completions {
		what := "completion " + def.Target
		target, ok := cat.lookup(def.Target)
		if !ok {
			errs.addf("completion %d: unknown target category %q", i+1, def.Target)
			continue
		}
		comp := Completion{
			Target: target,
			When:   cat.setOf(errs, what, def.When),
			Unless: cat.setOf(errs, what, def.Unless),
		}
		if comp.When.Empty() && comp.Unless.Empty() {
			errs.addf("%v: needs at least one when or unless category", what)
		}
		if comp.Unless.Has(target) {
			errs.addf("%v: target can't be in its own unless set", what)
		}
		if !comp.When.Intersect(comp.Unless).Empty() {
			errs.addf("%v: when and unless overlap", what)
		}
		cat.completes = append(cat.completes, comp)
	}

	derived := make(map[string]bool, len(f.Derived))
	for _, def := range f.Derived {
		switch {
		case def.Name == "":
			errs.addf("derived relation with no name")
			continue
		case derived[def.Name]:
			errs.addf("derived relation %q declared more than once", def.Name)
			continue
		}
		derived[def.Name] = true
		via, ok := cat.lookup(def.Via)
		if !ok {
			errs.addf("derived relation %v: unknown category %q", def.Name, def.Via)
			continue
		}
		cat.derived = append(cat.derived, DerivedSpec{Name: def.Name, Via: via, Distinct: def.Distinct})
	}

	ids := make(map[string]bool, len(f.Rules))
	for i, def := range f.Rules {
		if def.ID == "" {
			errs.addf("rule %d has no id", i+1)
			continue
		}
		if ids[def.ID] {
			errs.addf("rule %v declared more than once", def.ID)
			continue
		}
		ids[def.ID] = true
		if rule, ok := cat.compileRule(errs, def, derived); ok {
			cat.rules = append(cat.rules, rule)
		}
	}
	if len(errs.Problems) > 0 {
		return nil, errs
	}
	return cat, nil
}

// closeImplications makes the implication table transitive and rejects any
// category that implies its own exclusion.
func (cat *Catalog) closeImplications(errs *ConfigurationError) {
	closedIs := make([]Set, len(cat.names))
	for c := range cat.names {
		// worklist over the implies_is graph, starting at c itself.
		seen := SetOf(Category(c))
		work := []Category{Category(c)}
		for len(work) > 0 {
			next := work[len(work)-1]
			work = work[:len(work)-1]
			for _, d := range cat.impliesIs[next].Minus(seen).Slice() {
				seen = seen.Add(d)
				work = append(work, d)
			}
		}
		closedIs[c] = seen.Remove(Category(c))
	}
	closedNot := make([]Set, len(cat.names))
	for c := range cat.names {
		not := cat.impliesNot[c]
		for _, d := range closedIs[c].Slice() {
			not = not.Union(cat.impliesNot[d])
		}
		closedNot[c] = not
		self := closedIs[c].Add(Category(c))
		if conflict := self.Intersect(not); !conflict.Empty() {
			errs.addf("category %v implies its own exclusion (%v both implied and excluded)",
				cat.names[c], strings.Join(cat.Names(conflict), ", "))
		}
	}
	cat.impliesIs = closedIs
	cat.impliesNot = closedNot
}

func (cat *Catalog) compileRule(errs *ConfigurationError, def RuleDef, derived map[string]bool) (RuleSpec, bool) {
	what := "rule " + def.ID
	before := len(errs.Problems)
	rule := RuleSpec{
		ID:      def.ID,
		When:    cat.setOf(errs, what, def.When),
		Targets: cat.setOf(errs, what, def.Targets),
		Doc:     def.Doc,
	}
	switch def.Kind {
	case "universal":
		rule.Kind = Universal
	case "unique":
		rule.Kind = ExistentialUnique
	case "some":
		rule.Kind = ExistentialSome
	default:
		errs.addf("%v: unknown kind %q (want universal, unique, or some)", what, def.Kind)
	}
	q, err := parseQuery(def.Query, def.Strict)
	if err != nil {
		errs.addf("%v: %v", what, err)
	} else if q.Direction == Related && !derived[q.Relation] {
		errs.addf("%v: unknown derived relation %q", what, q.Relation)
	}
	rule.Query = q
	if rule.When.Empty() {
		errs.addf("%v: needs at least one when category", what)
	}
	if rule.Targets.Empty() {
		errs.addf("%v: needs at least one target category", what)
	}
	switch rule.Kind {
	case Universal:
		switch def.Action {
		case "assert":
			rule.Action = Assert
		case "exclude":
			rule.Action = Exclude
		default:
			errs.addf("%v: unknown action %q (want assert or exclude)", what, def.Action)
		}
		if def.Policy != "" {
			errs.addf("%v: universal rules take no policy", what)
		}
	case ExistentialUnique, ExistentialSome:
		if def.Action != "" {
			errs.addf("%v: %v rules take no action", what, rule.Kind)
		}
		if rule.Kind == ExistentialUnique && rule.Targets.Len() > 1 {
			errs.addf("%v: unique rules take exactly one target category", what)
		}
		switch def.Policy {
		case "", "default":
			rule.Policy = PolicyDefault
		case "open":
			rule.Policy = PolicyOpen
		case "closed":
			rule.Policy = PolicyClosed
		case "forced":
			rule.Policy = PolicyForced
		default:
			errs.addf("%v: unknown policy %q (want default, open, closed, or forced)", what, def.Policy)
		}
	}
	return rule, len(errs.Problems) == before
}

// setOf resolves names into a Set, reporting unknown names against 'what'.
func (cat *Catalog) setOf(errs *ConfigurationError, what string, names []string) Set {
	var s Set
	for _, name := range names {
		c, ok := cat.lookup(name)
		if !ok {
			errs.addf("%v: unknown category %q", what, name)
			continue
		}
		s = s.Add(c)
	}
	return s
}

func (cat *Catalog) lookup(name string) (Category, bool) {
	c, ok := cat.index[strings.TrimSpace(name)]
	return c, ok
}

// Lookup returns the category with the given name. Names may carry a
// namespace, as in "gufo:Kind" or "http://purl.org/nemo/gufo#Kind"; only the
// part after the last ':', '#', or '/' is significant then.
func (cat *Catalog) Lookup(name string) (Category, bool) {
	if c, ok := cat.lookup(name); ok {
		return c, true
	}
	name = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(name), "<"), ">")
	if i := strings.LastIndexAny(name, ":#/"); i >= 0 {
		return cat.lookup(name[i+1:])
	}
	return cat.lookup(name)
}

// Len returns the number of categories.
func (cat *Catalog) Len() int {
	return len(cat.names)
}

// All returns the set of every category.
func (cat *Catalog) All() Set {
	if len(cat.names) == MaxCategories {
		return ^Set(0)
	}
	return Set(1)<<uint(len(cat.names)) - 1
}

// Name returns the name of c.
func (cat *Catalog) Name(c Category) string {
	return cat.names[c]
}

// Doc returns the documentation of c, if any was given.
func (cat *Catalog) Doc(c Category) string {
	return cat.docs[c]
}

// Names returns the names of the categories in s, sorted by name.
func (cat *Catalog) Names(s Set) []string {
	res := make([]string, 0, s.Len())
	for _, c := range s.Slice() {
		res = append(res, cat.names[c])
	}
	sort.Strings(res)
	return res
}

// ImpliesIs returns the categories forced Asserted whenever c is Asserted.
// The table is transitively closed.
func (cat *Catalog) ImpliesIs(c Category) Set {
	return cat.impliesIs[c]
}

// ImpliesNot returns the categories forced Excluded whenever c is Asserted.
// The table is transitively closed.
func (cat *Catalog) ImpliesNot(c Category) Set {
	return cat.impliesNot[c]
}

// Leaves returns the mutually-exclusive leaf set. It may be empty.
func (cat *Catalog) Leaves() Set {
	return cat.leaves
}

// Completions returns the completion-by-elimination entries in declared order.
func (cat *Catalog) Completions() []Completion {
	return cat.completes
}

// Derived returns the auxiliary relations in declared order.
func (cat *Catalog) Derived() []DerivedSpec {
	return cat.derived
}

// Rules returns the hierarchy rules in declared order.
func (cat *Catalog) Rules() []RuleSpec {
	return cat.rules
}

// Rule returns the rule with the given ID.
func (cat *Catalog) Rule(id string) (RuleSpec, bool) {
	for _, r := range cat.rules {
		if r.ID == id {
			return r, true
		}
	}
	return RuleSpec{}, false
}
