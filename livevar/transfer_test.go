//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package livevar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowgraph/dataflow/dataflow"
	"github.com/flowgraph/dataflow/livevar"
)

// testNode is a minimal livevar.Node fixture: no real syntax, just a fixed kill/read set, used to
// drive the engine over a hand-built CFG without needing a real source-level CFG provider.
type testNode struct {
	block   dataflow.Block
	kill    livevar.Var
	hasKill bool
	reads   []livevar.Var
}

func (n *testNode) Block() dataflow.Block        { return n.block }
func (n *testNode) Kills() (livevar.Var, bool)   { return n.kill, n.hasKill }
func (n *testNode) Reads() []livevar.Var         { return n.reads }

// buildCFG constructs: entry -> [x = 1; y = x + z; print(y)] -> exit, as three nodes in one
// RegularBlock, equivalent to a straight-line function body with no branching.
func buildCFG(t *testing.T) (*dataflow.ControlFlowGraph, *testNode, *testNode, *testNode) {
	t.Helper()

	body := &dataflow.RegularBlock{}
	entry := &dataflow.SpecialBlock{SpecialKind: dataflow.EntryBlock, Successor: body}
	exit := &dataflow.SpecialBlock{SpecialKind: dataflow.RegularExitBlock}

	n1 := &testNode{block: body, kill: "x", hasKill: true}
	n2 := &testNode{block: body, kill: "y", hasKill: true, reads: []livevar.Var{"x", "z"}}
	n3 := &testNode{block: body, reads: []livevar.Var{"y"}}

	body.Nodes = []dataflow.Node{n1, n2, n3}
	body.Successor = exit
	body.FlowRule = dataflow.EachToEach

	cfg := dataflow.NewControlFlowGraph(entry, exit, nil, []dataflow.Block{entry, body, exit}, nil, dataflow.MethodUnit, nil)
	return cfg, n1, n2, n3
}

func TestLiveVarAnalysis_StraightLine(t *testing.T) {
	t.Parallel()

	cfg, n1, n2, n3 := buildCFG(t)
	analyzer := livevar.NewAnalyzer(dataflow.NeverWiden)
	require.NoError(t, analyzer.PerformAnalysis(cfg))

	result := analyzer.Result()

	requireVars := func(s dataflow.Store, want ...livevar.Var) {
		store := s.(*livevar.Store)
		got := store.Vars()
		require.ElementsMatch(t, want, got)
	}

	requireVars(result.GetStoreBefore(n3), "y")
	requireVars(result.GetStoreAfter(n3))
	requireVars(result.GetStoreBefore(n2), "x", "z")
	requireVars(result.GetStoreBefore(n1), "z")
	requireVars(result.GetEntryStore(), "z")
}

func TestLiveVarAnalysis_ReuseAcrossRuns(t *testing.T) {
	t.Parallel()

	cfg1, _, _, _ := buildCFG(t)
	cfg2, _, _, n3 := buildCFG(t)

	analyzer := livevar.NewAnalyzer(dataflow.NeverWiden)
	require.NoError(t, analyzer.PerformAnalysis(cfg1))
	require.NoError(t, analyzer.PerformAnalysis(cfg2))

	result := analyzer.Result()
	store := result.GetStoreBefore(n3).(*livevar.Store)
	require.ElementsMatch(t, []livevar.Var{"y"}, store.Vars())
}
