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

package visualize_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/dataflow/dataflow"
	"github.com/flowgraph/dataflow/livevar"
	"github.com/flowgraph/dataflow/visualize"
)

type node struct {
	block   dataflow.Block
	kill    livevar.Var
	hasKill bool
	reads   []livevar.Var
}

func (n *node) Block() dataflow.Block      { return n.block }
func (n *node) Kills() (livevar.Var, bool) { return n.kill, n.hasKill }
func (n *node) Reads() []livevar.Var       { return n.reads }

func buildCFG() *dataflow.ControlFlowGraph {
	body := &dataflow.RegularBlock{FlowRule: dataflow.EachToEach}
	entry := &dataflow.SpecialBlock{SpecialKind: dataflow.EntryBlock, Successor: body}
	exit := &dataflow.SpecialBlock{SpecialKind: dataflow.RegularExitBlock}
	body.Successor = exit
	body.Nodes = []dataflow.Node{
		&node{block: body, kill: "x", hasKill: true},
		&node{block: body, reads: []livevar.Var{"x"}},
	}
	return dataflow.NewControlFlowGraph(entry, exit, nil, []dataflow.Block{entry, body, exit}, nil, dataflow.MethodUnit, nil)
}

func TestWriteDot(t *testing.T) {
	t.Parallel()

	cfg := buildCFG()
	analyzer := livevar.NewAnalyzer(dataflow.NeverWiden)
	require.NoError(t, analyzer.PerformAnalysis(cfg))

	var sb strings.Builder
	require.NoError(t, visualize.WriteDot(&sb, cfg, analyzer.Result(), visualize.Visitor{}))

	out := sb.String()
	require.True(t, strings.HasPrefix(out, "digraph dataflow {\n"))
	require.Contains(t, out, "->")
	require.Contains(t, out, "regular")
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := buildCFG()
	analyzer := livevar.NewAnalyzer(dataflow.NeverWiden)
	require.NoError(t, analyzer.PerformAnalysis(cfg))

	snap := visualize.NewSnapshot(cfg, analyzer.Result(), visualize.Visitor{})
	require.NotEmpty(t, snap.Labels)

	data, err := visualize.MarshalCompressed(snap)
	require.NoError(t, err)

	got, err := visualize.ReadCompressed(strings.NewReader(string(data)))
	require.NoError(t, err)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot changed after a compressed round trip (-want +got):\n%s", diff)
	}
}
