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

package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ebay/taxoclass/classify"
	"github.com/ebay/taxoclass/taxonomy"
	"github.com/ebay/taxoclass/util/graphviz"
)

// Dot writes a Graphviz description of the classified taxonomy. Each node is
// labeled with its leaf category, and drawn dashed if it has Incompleteness
// entries. Edges point from the specialization to the node it specializes.
// Errors from w are ignored.
func Dot(w io.Writer, res *classify.Result, g *taxonomy.Graph) {
	incomplete := make(map[string]int)
	for _, e := range res.Incomplete {
		incomplete[e.Node]++
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph taxonomy {\n")
	fmt.Fprintf(bw, "\trankdir=BT;\n")
	fmt.Fprintf(bw, "\tnode [shape=box];\n")
	for _, n := range res.Nodes {
		leaf := n.Leaf
		if leaf == "" {
			leaf = "?"
		}
		attrs := ""
		if count := incomplete[n.Key]; count > 0 {
			attrs = fmt.Sprintf(", style=dashed, tooltip=%v",
				graphviz.Quote(fmtr.Sprintf("%d incomplete", count)))
		}
		fmt.Fprintf(bw, "\t%v [label=%v%v];\n",
			graphviz.Quote(n.Key), graphviz.Quote(n.Key+"\n("+leaf+")"), attrs)
	}
	g.Edges(func(sub, super string) {
		if sub != super {
			fmt.Fprintf(bw, "\t%v -> %v;\n", graphviz.Quote(sub), graphviz.Quote(super))
		}
	})
	fmt.Fprintf(bw, "}\n")
	bw.Flush()
}

// WriteDot renders the classified taxonomy to filename. The extension picks
// the format; anything but .dot or .gv needs the Graphviz dot program.
func WriteDot(filename string, res *classify.Result, g *taxonomy.Graph) error {
	return graphviz.Create(filename, func(w io.Writer) {
		Dot(w, res, g)
	}, graphviz.Options{})
}
