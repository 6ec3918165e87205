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

package catalog

import (
	"bytes"
	_ "embed" // for the built-in catalogue
	"fmt"
	"io"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

//go:embed gufo.yaml
var gufoYAML []byte

// Default returns the built-in catalogue: the gUFO taxonomy of types (Kind,
// SubKind, Role, Phase, Category, Mixin, RoleMixin, PhaseMixin and their
// abstract generalizations) along with the rules that constrain how they may
// specialize each other.
func Default() *Catalog {
	cat, err := Parse(gufoYAML, "built-in catalog")
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return cat
}

// DefaultYAML returns the source of the built-in catalogue, which is a useful
// starting point for a custom one.
func DefaultYAML() []byte {
	return append([]byte(nil), gufoYAML...)
}

// Load reads and validates a YAML catalogue from the given file.
func Load(filename string) (*Catalog, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data, filename)
}

// Parse decodes and validates a YAML catalogue. Unknown fields are rejected.
// 'source' is used in error messages only.
func Parse(data []byte, source string) (*Catalog, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var f File
	err := decoder.Decode(&f)
	if err == io.EOF {
		return nil, &ConfigurationError{Source: source, Problems: []string{"empty document"}}
	}
	if err != nil {
		return nil, &ConfigurationError{Source: source, Problems: []string{
			fmt.Sprintf("error decoding YAML: %v", err)}}
	}
	cat, err := New(&f)
	if err != nil {
		err.(*ConfigurationError).Source = source
		return nil, err
	}
	return cat, nil
}
