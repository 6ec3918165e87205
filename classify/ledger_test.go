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

package classify

import (
	"context"
	"testing"

	"github.com/ebay/taxoclass/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Ledger(t *testing.T) {
	l := newLedger()
	assert.Empty(t, l.list())
	l.register("r1", "Y", "first")
	l.register("r2", "X", "second")
	l.register("r1", "X", "third")
	l.register("r1", "Y", "replaced")
	assert.Equal(t, 3, l.len())
	assert.Equal(t, []Incompleteness{
		{Rule: "r1", Node: "X", Reason: "third"},
		{Rule: "r2", Node: "X", Reason: "second"},
		{Rule: "r1", Node: "Y", Reason: "replaced"},
	}, l.list())

	l.resolve("r1", "X")
	l.resolve("r9", "X")
	assert.Equal(t, []Incompleteness{
		{Rule: "r2", Node: "X", Reason: "second"},
		{Rule: "r1", Node: "Y", Reason: "replaced"},
	}, l.list())

	l.clearNode("X")
	l.clearNode("Z")
	assert.Equal(t, []Incompleteness{
		{Rule: "r1", Node: "Y", Reason: "replaced"},
	}, l.list())
	l.resolve("r1", "Y")
	assert.Equal(t, 0, l.len())
	assert.Empty(t, l.byNode)
}

const ledgerCatalog = `
categories:
  - name: Sortal
  - name: Kind
  - name: Extra
rules:
  - id: unique
    kind: unique
    when: [Sortal]
    query: ancestors
    strict: true
    targets: [Kind]
`

// Moving any category of a node clears its entries, and the next pass
// detects them again if they still apply.
func Test_Ledger_ClearedOnMove(t *testing.T) {
	cat := parseCatalog(t, ledgerCatalog)
	engine := newEngine(t, cat, nil, [][2]string{{"X", "A"}, {"X", "B"}}, Options{})
	require.NoError(t, engine.Seed([]taxonomy.Seed{is("X", "Sortal")}))
	ctx := context.Background()
	_, err := engine.Run(ctx)
	require.NoError(t, err)
	require.Len(t, engine.Incomplete(), 1)

	require.NoError(t, engine.Seed([]taxonomy.Seed{is("X", "Extra")}))
	assert.Empty(t, engine.Incomplete())

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Incomplete, 1)
}

// An entry is dropped once the rule is satisfied, even though the node it's
// recorded against never moved.
func Test_Ledger_ResolvedWhenSatisfied(t *testing.T) {
	cat := parseCatalog(t, ledgerCatalog)
	engine := newEngine(t, cat, nil, [][2]string{{"X", "A"}, {"X", "B"}}, Options{})
	require.NoError(t, engine.Seed([]taxonomy.Seed{is("X", "Sortal")}))
	ctx := context.Background()
	_, err := engine.Run(ctx)
	require.NoError(t, err)
	require.Len(t, engine.Incomplete(), 1)

	require.NoError(t, engine.Seed([]taxonomy.Seed{is("A", "Kind")}))
	assert.Len(t, engine.Incomplete(), 1, "only A moved")

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Incomplete)
	assert.True(t, engine.Excluded("B", category(t, cat, "Kind")))
}
