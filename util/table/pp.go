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

// Package table formats data into a text-based table for human consumption.
package table

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ebay/taxoclass/util/cmp"
	"golang.org/x/text/unicode/norm"
)

// Options represents different ways to control how the table is generated
type Options int

const (
	// HeaderRow if specified will format the first row in the table
	// as a header (i.e. there is a separator between it and the next row)
	HeaderRow Options = 1 << iota
	// FooterRow if specified will format the last row of the table
	// as a footer (i.e. there is a separator between it and the previous row)
	FooterRow
	// SkipEmpty if specified will cause nothing to be generated in the case
	// that the table has no data (i.e. no rows besides the header & footer rows
	// if they are enabled)
	SkipEmpty
	// RightJustify indicates that cells should have their contents right
	// justified (left padded), rather than the default of left justified.
	RightJustify
)

func (o Options) has(flag Options) bool {
	return o&flag != 0
}

func (o Options) chromeRows() int {
	r := 0
	if o.has(HeaderRow) {
		r++
	}
	if o.has(FooterRow) {
		r++
	}
	return r
}

// String returns 't' formatted as PrettyPrint would write it.
func String(t [][]string, opts Options) string {
	var b strings.Builder
	PrettyPrint(&b, t, opts)
	return b.String()
}

// PrettyPrint writes 't' as a nicely formatted table to the supplied Writer.
//
// if HeaderRow / FooterRow options are specified then a divider will be added
// between the header and/or footer rows. Cells are allowed to be multi-line,
// use \n as a line break. Rows shorter than the first row are padded with
// empty cells. If no Justify option is used, the default is to left justify.
func PrettyPrint(dest io.Writer, t [][]string, opts Options) {
	if len(t) == 0 || (opts.has(SkipEmpty) && len(t) <= opts.chromeRows()) {
		return
	}
	w := bufio.NewWriterSize(dest, 256)
	defer w.Flush()
	cols := len(t[0])
	table := make([][]cell, len(t))
	for ridx, row := range t {
		table[ridx] = make([]cell, cols)
		for cidx := range table[ridx] {
			s := ""
			if cidx < len(row) {
				s = row[cidx]
			}
			table[ridx][cidx] = makeCell(s)
		}
	}
	widths := make([]int, cols)
	for _, row := range table {
		for cidx := range row {
			widths[cidx] = cmp.MaxInt(widths[cidx], row[cidx].width)
		}
	}
	divider := func() {
		for _, width := range widths {
			io.WriteString(w, " ")
			io.WriteString(w, strings.Repeat("-", width))
			io.WriteString(w, " |")
		}
		io.WriteString(w, "\n")
	}
	for ridx, row := range table {
		height := 0
		for cidx := range row {
			height = cmp.MaxInt(height, len(row[cidx].lines))
		}
		for cidx := range row {
			row[cidx].pad(opts, height, widths[cidx])
		}
		for lidx := 0; lidx < height; lidx++ {
			for cidx := range row {
				io.WriteString(w, " ")
				io.WriteString(w, row[cidx].lines[lidx])
				io.WriteString(w, " |")
			}
			io.WriteString(w, "\n")
		}
		if (opts.has(HeaderRow) && ridx == 0) || (opts.has(FooterRow) && ridx == len(table)-2) {
			divider()
		}
	}
}

type cell struct {
	lines []string
	width int
}

func makeCell(s string) cell {
	c := cell{
		lines: strings.Split(s, "\n"),
	}
	for _, l := range c.lines {
		c.width = cmp.MaxInt(c.width, charsWide(l))
	}
	return c
}

// pad grows the cell to the supplied size, which must be at least as large as
// it currently is.
func (c *cell) pad(opts Options, height, width int) {
	for len(c.lines) < height {
		c.lines = append(c.lines, "")
	}
	for i, l := range c.lines {
		lwidth := charsWide(l)
		if lwidth < width {
			pad := strings.Repeat(" ", width-lwidth)
			if opts.has(RightJustify) {
				c.lines[i] = pad + l
			} else {
				c.lines[i] = l + pad
			}
		}
	}
	c.width = width
}

// charsWide estimates how wide a string will be on a typical terminal. The
// problem is a bit harder than it appears thanks to Unicode; the corresponding
// unit tests have some interesting cases.
func charsWide(s string) int {
	s = norm.NFC.String(s)
	return utf8.RuneCountInString(s)
}
