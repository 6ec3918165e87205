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

package graphviz

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FiletypeOf(t *testing.T) {
	tests := []struct {
		in  string
		exp Filetype
	}{
		{"a.pdf", PDF},
		{"a.PNG", PNG},
		{"dir.x/a.svg", SVG},
		{"a.dot", DOT},
		{"a.gv", DOT},
	}
	for _, test := range tests {
		ft, err := FiletypeOf(test.in)
		assert.NoError(t, err, test.in)
		assert.Equal(t, test.exp, ft, test.in)
	}
	_, err := FiletypeOf("noext")
	assert.EqualError(t, err, "could not determine filetype from filename: noext")
}

func Test_CreateDot(t *testing.T) {
	dir, err := ioutil.TempDir("", "graphviz-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "out.dot")
	err = Create(filename, func(w io.Writer) {
		io.WriteString(w, "digraph g { a -> b }\n")
	}, Options{})
	require.NoError(t, err)
	data, err := ioutil.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "digraph g { a -> b }\n", string(data))
}

func Test_CreateMissingProgram(t *testing.T) {
	dir, err := ioutil.TempDir("", "graphviz-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	err = Create(filepath.Join(dir, "out.svg"), func(w io.Writer) {
		io.WriteString(w, "digraph g {}\n")
	}, Options{Program: "no-such-dot-program"})
	assert.Error(t, err)
}

func Test_Quote(t *testing.T) {
	assert.Equal(t, `"plain"`, Quote("plain"))
	assert.Equal(t, `"a \"b\"\nc\\"`, Quote("a \"b\"\nc\\"))
}
