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

// Package report renders classification results for people and programs:
// text tables, JSON, and Graphviz drawings of the classified taxonomy.
package report

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/ebay/taxoclass/classify"
	"github.com/ebay/taxoclass/util/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

// TableOptions control Table.
type TableOptions struct {
	// If set, a column lists each node's excluded categories.
	ShowExcluded bool
}

// Table writes one row per node: its key, its leaf category, and its asserted
// and possible categories.
func Table(w io.Writer, res *classify.Result, opts TableOptions) {
	header := []string{"Node", "Leaf", "Asserted", "Possible"}
	if opts.ShowExcluded {
		header = append(header, "Excluded")
	}
	t := [][]string{header}
	for _, n := range res.Nodes {
		leaf := n.Leaf
		if leaf == "" {
			leaf = "?"
		}
		row := []string{n.Key, leaf, list(n.Asserted), list(n.Possible)}
		if opts.ShowExcluded {
			row = append(row, list(n.Excluded))
		}
		t = append(t, row)
	}
	table.PrettyPrint(w, t, table.HeaderRow)
}

func list(names []string) string {
	return strings.Join(names, ", ")
}

// Incomplete writes the Incompleteness entries as a table. It writes nothing
// if there are none.
func Incomplete(w io.Writer, entries []classify.Incompleteness) {
	t := [][]string{{"Node", "Rule", "Reason"}}
	for _, e := range entries {
		t = append(t, []string{e.Node, e.Rule, e.Reason})
	}
	table.PrettyPrint(w, t, table.HeaderRow|table.SkipEmpty)
}

// Moves writes the number of moves each rule made, in descending order of
// count, with the total in the footer.
func Moves(w io.Writer, res *classify.Result) {
	type ruleCount struct {
		rule  string
		count int
	}
	counts := make([]ruleCount, 0, len(res.MovesByRule))
	for rule, count := range res.MovesByRule {
		counts = append(counts, ruleCount{rule, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].rule < counts[j].rule
	})
	t := [][]string{{"Rule", "Moves"}}
	for _, c := range counts {
		t = append(t, []string{c.rule, fmtr.Sprintf("%d", c.count)})
	}
	t = append(t, []string{"Total", fmtr.Sprintf("%d", res.Moves)})
	table.PrettyPrint(w, t, table.HeaderRow|table.FooterRow|table.RightJustify)
}

// Summary writes a one-line description of the run.
func Summary(w io.Writer, res *classify.Result) {
	classified := 0
	for _, n := range res.Nodes {
		if n.Leaf != "" {
			classified++
		}
	}
	fmtr.Fprintf(w, "%d of %d nodes have a leaf category after %d passes and %d moves (%v world); %d incomplete\n",
		classified, len(res.Nodes), res.Passes, res.Moves, res.World, len(res.Incomplete))
}

// Inconsistency describes a failed run.
func Inconsistency(w io.Writer, inc *classify.Inconsistency) {
	bw := bufio.NewWriter(w)
	bw.WriteString("Classification is inconsistent:\n")
	table.PrettyPrint(bw, [][]string{
		{"Rule", inc.Rule},
		{"Node", inc.Node},
		{"Category", inc.Category},
		{"Reason", inc.Reason},
	}, 0)
	bw.Flush()
}
