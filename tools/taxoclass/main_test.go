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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/taxoclass/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseArgs(t *testing.T) {
	var tests = []struct {
		name         string
		inputArgv    []string
		expValidArgs bool
		expOpts      options
	}{
		{
			name:         "no_args",
			inputArgv:    []string{},
			expValidArgs: true,
			expOpts:      options{TimeoutString: "0s"},
		}, {
			name:         "facts",
			inputArgv:    []string{"people.tsv"},
			expValidArgs: true,
			expOpts:      options{Facts: "people.tsv", TimeoutString: "0s"},
		}, {
			name: "all_flags",
			inputArgv: []string{"-w", "closed", "--max-passes=5", "-x", "-v",
				"--dot=out.svg", "--json=out.json", "--format=json", "--metrics=m.prom",
				"--catalog=cat.yaml", "-c", "cfg.json", "-t", "2s", "people.tsv"},
			expValidArgs: true,
			expOpts: options{
				Facts:           "people.tsv",
				Config:          "cfg.json",
				Catalog:         "cat.yaml",
				World:           "closed",
				MaxPasses:       5,
				MaxPassesString: "5",
				Timeout:         2 * time.Second,
				TimeoutString:   "2s",
				Format:          "json",
				DotFile:         "out.svg",
				JSONFile:        "out.json",
				MetricsFile:     "m.prom",
				ShowExcluded:    true,
				Verbose:         true,
			},
		}, {
			name:         "write_config",
			inputArgv:    []string{"--world=closed", "write-config", "out.json"},
			expValidArgs: true,
			expOpts: options{
				WriteConfig:   true,
				ConfigOut:     "out.json",
				World:         "closed",
				TimeoutString: "0s",
			},
		}, {
			name:         "default_catalog",
			inputArgv:    []string{"default-catalog"},
			expValidArgs: true,
			expOpts:      options{DefaultCatalog: true, TimeoutString: "0s"},
		}, {
			name:         "unknown_flag",
			inputArgv:    []string{"--bogus"},
			expValidArgs: false,
		}, {
			name:         "write_config_without_file",
			inputArgv:    []string{"write-config", "a", "b"},
			expValidArgs: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var parseErr error
			docopt.DefaultParser.HelpHandler = func(err error, usage string) {
				parseErr = err
			}
			opts, err := parseArgs(test.inputArgv)
			if !test.expValidArgs {
				assert.Error(t, err)
				assert.Error(t, parseErr)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, parseErr)
			if assert.NotNil(t, opts) {
				assert.Equal(t, test.expOpts, *opts)
			}
		})
	}
}

func Test_parseArgs_badValues(t *testing.T) {
	docopt.DefaultParser.HelpHandler = docopt.NoHelpHandler
	_, err := parseArgs([]string{"--max-passes=0"})
	assert.EqualError(t, err, `--max-passes must be a positive integer, got "0"`)
	_, err = parseArgs([]string{"--max-passes=many"})
	assert.EqualError(t, err, `--max-passes must be a positive integer, got "many"`)
	_, err = parseArgs([]string{"--timeout=soon"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "unable to parse timeout value")
	}
}

func Test_settings(t *testing.T) {
	dir, err := ioutil.TempDir("", "taxoclass-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	cfgFile := filepath.Join(dir, "cfg.json")
	require.NoError(t, config.Write(&config.Classifier{
		World:     "closed",
		Taxonomy:  "from-config.tsv",
		MaxPasses: 10,
		Output:    &config.Output{Format: "json", JSONFile: "out.json"},
	}, cfgFile))

	t.Run("flags only", func(t *testing.T) {
		cfg, err := settings(&options{Facts: "people.tsv", ShowExcluded: true})
		require.NoError(t, err)
		assert.Equal(t, &config.Classifier{
			Taxonomy: "people.tsv",
			Output:   &config.Output{ShowExcluded: true},
		}, cfg)
	})
	t.Run("config only", func(t *testing.T) {
		cfg, err := settings(&options{Config: cfgFile})
		require.NoError(t, err)
		assert.Equal(t, "closed", cfg.World)
		assert.Equal(t, "from-config.tsv", cfg.Taxonomy)
		assert.Equal(t, 10, cfg.MaxPasses)
		assert.Equal(t, "json", cfg.Output.Format)
	})
	t.Run("flags override config", func(t *testing.T) {
		cfg, err := settings(&options{
			Config:    cfgFile,
			World:     "open",
			Facts:     "people.tsv",
			MaxPasses: 3,
			Format:    "table",
			DotFile:   "out.dot",
		})
		require.NoError(t, err)
		assert.Equal(t, &config.Classifier{
			World:     "open",
			Taxonomy:  "people.tsv",
			MaxPasses: 3,
			Output: &config.Output{
				Format:   "table",
				JSONFile: "out.json",
				DotFile:  "out.dot",
			},
		}, cfg)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := settings(&options{World: "flat"})
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), `world must be "open" or "closed", got "flat"`)
		}
	})
	t.Run("missing config", func(t *testing.T) {
		_, err := settings(&options{Config: filepath.Join(dir, "404.json")})
		assert.Error(t, err)
	})
}

const peopleFacts = `
<Person>	a	gufo:Kind .
<Student>	rdfs:subClassOf	<Person> .
<Child>	rdfs:subClassOf	<Person> .
<Child>	a	gufo:Phase .
`

func testRunOptions(stdin string, stdout *bytes.Buffer) runOptions {
	logger := logrus.New()
	logger.Out = ioutil.Discard
	return runOptions{
		stdin:  strings.NewReader(stdin),
		stdout: stdout,
		log:    logger,
	}
}

func Test_run_table(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &config.Classifier{Taxonomy: "-"},
		testRunOptions(peopleFacts, &out))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), " Person ")
	assert.Contains(t, out.String(), "phase_some_sibling_phase")
	assert.Contains(t, out.String(),
		"2 of 3 nodes have a leaf category after 2 passes")
}

func Test_run_verboseListsMoves(t *testing.T) {
	var out bytes.Buffer
	opts := testRunOptions(peopleFacts, &out)
	opts.verbose = true
	code := run(context.Background(), &config.Classifier{}, opts)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), "sortal_descendants_sortal")
	assert.Contains(t, out.String(), "Total")
}

func Test_run_verboseLogsMoveNames(t *testing.T) {
	var out, logs bytes.Buffer
	logger := logrus.New()
	logger.Out = &logs
	logger.Level = logrus.DebugLevel
	opts := testRunOptions(peopleFacts, &out)
	opts.verbose = true
	opts.log = logger
	code := run(context.Background(), &config.Classifier{}, opts)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, logs.String(),
		"msg=Move category=Sortal node=Student rule=sortal_descendants_sortal to=asserted")
	assert.NotRegexp(t, `category=[0-9]`, logs.String())
}

func Test_run_skipsVocabularyTypes(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &config.Classifier{}, testRunOptions(
		"<Person>\trdf:type\towl:NamedIndividual .\n"+peopleFacts, &out))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), "2 of 3 nodes have a leaf category")
}

func Test_run_jsonAndFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "taxoclass-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	factsFile := filepath.Join(dir, "people.tsv")
	require.NoError(t, ioutil.WriteFile(factsFile, []byte(peopleFacts), 0644))
	cfg := &config.Classifier{
		World:       "open",
		Taxonomy:    factsFile,
		MetricsFile: filepath.Join(dir, "metrics.prom"),
		Output: &config.Output{
			Format:   "json",
			JSONFile: filepath.Join(dir, "result.json"),
			DotFile:  filepath.Join(dir, "result.dot"),
		},
	}
	var out bytes.Buffer
	code := run(context.Background(), cfg, testRunOptions("", &out))
	require.Equal(t, exitOK, code)

	type nodeResult struct {
		Key  string `json:"key"`
		Leaf string `json:"leaf"`
	}
	var res struct {
		World  string       `json:"world"`
		Nodes  []nodeResult `json:"nodes"`
		Passes int          `json:"passes"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "open", res.World)
	assert.Len(t, res.Nodes, 3)
	assert.Equal(t, nodeResult{Key: "Person", Leaf: "Kind"}, res.Nodes[1])

	written, err := ioutil.ReadFile(cfg.Output.JSONFile)
	require.NoError(t, err)
	assert.Equal(t, out.String(), string(written))

	dot, err := ioutil.ReadFile(cfg.Output.DotFile)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")

	metrics, err := ioutil.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "taxoclass_classify_passes_total")
	assert.Contains(t, string(metrics), `taxoclass_classify_runs_total{outcome="ok"}`)
}

func Test_run_inconsistent(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &config.Classifier{}, testRunOptions(`
<Person>	a	gufo:Kind .
<Employee>	rdfs:subClassOf	<Person> .
<Employee>	a	gufo:Kind .
`, &out))
	assert.Equal(t, exitInconsistent, code)
	assert.Contains(t, out.String(), "Classification is inconsistent:")
	assert.Contains(t, out.String(), "kind_ancestors_not_sortal")
}

func Test_run_errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.Classifier
		facts string
	}{
		{name: "missing facts file", cfg: config.Classifier{Taxonomy: "/nonexistent/facts.tsv"}},
		{name: "missing catalog", cfg: config.Classifier{Catalog: "/nonexistent/catalog.yaml"}},
		{name: "parse error", facts: "<A> rdfs:subClassOf\n"},
		{name: "unknown category", facts: "<A> a gufo:Unicorn .\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg := test.cfg
			code := run(context.Background(), &cfg, testRunOptions(test.facts, &out))
			assert.Equal(t, exitError, code)
			assert.Empty(t, out.String())
		})
	}
}

func Test_run_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	code := run(ctx, &config.Classifier{}, testRunOptions(peopleFacts, &out))
	assert.Equal(t, exitError, code)
}
