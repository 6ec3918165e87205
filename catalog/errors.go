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
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed catalogue or rule list. It's fatal:
// no node may be classified against a catalogue that failed validation.
type ConfigurationError struct {
	// Where the configuration came from, if known.
	Source string
	// Every problem found, in the order found.
	Problems []string
}

func (e *ConfigurationError) Error() string {
	src := e.Source
	if src == "" {
		src = "catalog"
	}
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid %v: %v", src, e.Problems[0])
	}
	return fmt.Sprintf("invalid %v: %d problems:\n  %v", src, len(e.Problems),
		strings.Join(e.Problems, "\n  "))
}

func (e *ConfigurationError) addf(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// IsConfigurationError returns true if err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}
