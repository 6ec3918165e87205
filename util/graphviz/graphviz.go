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

// Package graphviz generates diagrams from dot input.
package graphviz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ebay/taxoclass/util/errors"
)

// Filetype is the file format of output image.
type Filetype int

// Supported Filetypes.
const (
	PDF Filetype = 1
	PNG Filetype = 2
	SVG Filetype = 3
	// DOT writes the Graphviz spec itself, without running the dot program.
	DOT Filetype = 4
)

// Options to Create.
type Options struct {
	// Unless provided, Create will attempt to autodetect this from the filename.
	Filetype Filetype
	// The program used to render images. Defaults to "dot".
	Program string
}

// FiletypeOf returns the Filetype implied by the filename's extension.
func FiletypeOf(filename string) (Filetype, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return PDF, nil
	case "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	case "dot", "gv":
		return DOT, nil
	}
	return 0, fmt.Errorf("could not determine filetype from filename: %v", filename)
}

// Create writes an image file from a Graphviz spec. For image formats it
// invokes the "dot" program internally. 'generate' should write the Graphviz
// spec into the given writer; it may safely ignore errors from the writer.
func Create(filename string, generate func(io.Writer), options Options) error {
	if options.Filetype == 0 {
		ft, err := FiletypeOf(filename)
		if err != nil {
			return err
		}
		options.Filetype = ft
	}
	if options.Program == "" {
		options.Program = "dot"
	}
	var format string
	switch options.Filetype {
	case PDF:
		format = "-Tpdf"
	case PNG:
		format = "-Tpng"
	case SVG:
		format = "-Tsvg"
	case DOT:
	default:
		return fmt.Errorf("unknown file type: %v", options.Filetype)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if options.Filetype == DOT {
		w := bufio.NewWriter(file)
		generate(w)
		if err := errors.Any(w.Flush(), file.Close()); err != nil {
			return fmt.Errorf("failed to write %v: %v", filename, err)
		}
		return nil
	}
	cmd := exec.Command(options.Program, format)
	cmd.Stdout = file
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	go func() {
		defer stdin.Close()
		generate(stdin)
	}()
	var errOut strings.Builder
	cmd.Stderr = &errOut
	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("error executing %v: %v. Stderr: %v", options.Program, err, errOut.String())
	}
	return nil
}

// Quote returns s as a double-quoted dot ID.
func Quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}
