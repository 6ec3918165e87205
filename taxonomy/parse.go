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

package taxonomy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Seed is an initial classification fact read from a fact file.
type Seed struct {
	// The node being classified.
	Node string
	// The category name as written, possibly prefixed (e.g. "gufo:Kind").
	Category string
	// True for rdf:type facts, false for taxo:notType facts.
	Asserted bool
}

// ParseError describes a malformed line in a fact file.
type ParseError struct {
	// 1-based line number.
	Line int
	// 1-based column in runes, of the offending term.
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

const (
	rdfType    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	subClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	notType    = "taxo:notType"
)

// predicates maps each accepted spelling to its canonical form.
var predicates = map[string]string{
	"a":               rdfType,
	"rdf:type":        rdfType,
	rdfType:           rdfType,
	"rdfs:subClassOf": subClassOf,
	subClassOf:        subClassOf,
	notType:           notType,
}

// vocabularies hold the RDF, RDFS, and OWL terms, in prefixed and full form.
// A type fact whose object is one of them (owl:Class, owl:NamedIndividual,
// rdfs:Class, and so on) only declares the node.
var vocabularies = []string{
	"rdf:",
	"rdfs:",
	"owl:",
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"http://www.w3.org/2000/01/rdf-schema#",
	"http://www.w3.org/2002/07/owl#",
}

func isVocabularyTerm(text string) bool {
	for _, prefix := range vocabularies {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// term is a single token from a fact line.
type term struct {
	text   string
	iri    bool
	column int
}

// key returns the node key for the term: the IRI without its angle brackets,
// or the prefixed name as written.
func (t term) key() string {
	return t.text
}

// LoadFile reads a fact file from disk, or from stdin if path is "-".
func LoadFile(path string) (*Graph, []Seed, error) {
	if path == "-" {
		return ParseTSV(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	g, seeds, err := ParseTSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading %v: %v", path, err)
	}
	return g, seeds, nil
}

// ParseTSV reads facts, one per line, in the form
//
//	<subject> predicate <object> .
//
// The trailing '.' is optional. Blank lines and lines starting with '#' are
// ignored. Type facts naming an RDF, RDFS, or OWL term, such as
// owl:NamedIndividual, declare the node but produce no Seed. It returns the first error encountered, which is a *ParseError for
// malformed input.
func ParseTSV(input io.Reader) (*Graph, []Seed, error) {
	g := New()
	var seeds []Seed
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := norm.NFC.String(scanner.Text())
		terms, err := tokenize(line)
		if err != nil {
			err.Line = lineNum
			return nil, nil, err
		}
		if len(terms) == 0 {
			continue
		}
		if len(terms) != 3 {
			col := 1
			if len(terms) > 3 {
				col = terms[3].column
			}
			return nil, nil, &ParseError{
				Line:   lineNum,
				Column: col,
				Msg:    fmt.Sprintf("expected 3 terms, got %d", len(terms)),
			}
		}
		subject, pred, object := terms[0], terms[1], terms[2]
		p, ok := predicates[pred.text]
		if !ok {
			return nil, nil, &ParseError{
				Line:   lineNum,
				Column: pred.column,
				Msg:    fmt.Sprintf("unsupported predicate %q", pred.text),
			}
		}
		switch p {
		case subClassOf:
			g.AddEdge(subject.key(), object.key())
		case rdfType:
			g.AddNode(subject.key())
			if !isVocabularyTerm(object.text) {
				seeds = append(seeds, Seed{Node: subject.key(), Category: object.text, Asserted: true})
			}
		case notType:
			g.AddNode(subject.key())
			if !isVocabularyTerm(object.text) {
				seeds = append(seeds, Seed{Node: subject.key(), Category: object.text, Asserted: false})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return g, seeds, nil
}

// tokenize splits a line into terms. It strips a trailing '.' term and any
// comment. The returned error has no line number set.
func tokenize(line string) ([]term, *ParseError) {
	var terms []term
	col := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		col++
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '#':
			return trimDot(terms), nil
		case r == '<':
			end := strings.IndexByte(line[i:], '>')
			if end < 0 {
				return nil, &ParseError{Column: col, Msg: "unterminated IRI"}
			}
			text := line[i+1 : i+end]
			if text == "" {
				return nil, &ParseError{Column: col, Msg: "empty IRI"}
			}
			if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
				return nil, &ParseError{Column: col, Msg: "whitespace in IRI"}
			}
			terms = append(terms, term{text: text, iri: true, column: col})
			col += utf8.RuneCountInString(line[i+1 : i+end+1])
			i += end + 1
		default:
			end := strings.IndexFunc(line[i:], unicode.IsSpace)
			if end < 0 {
				end = len(line) - i
			}
			text := line[i : i+end]
			terms = append(terms, term{text: text, column: col})
			col += utf8.RuneCountInString(text) - 1
			i += end
		}
	}
	return trimDot(terms), nil
}

// trimDot removes the statement terminator, which may stand alone or be
// attached to the last prefixed name.
func trimDot(terms []term) []term {
	if len(terms) == 0 {
		return terms
	}
	last := &terms[len(terms)-1]
	switch {
	case last.iri:
	case last.text == ".":
		return terms[:len(terms)-1]
	case len(terms) == 3 && strings.HasSuffix(last.text, "."):
		last.text = strings.TrimSuffix(last.text, ".")
	}
	return terms
}
