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

package sourcecfg_test

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowgraph/dataflow/livevar"
	"github.com/flowgraph/dataflow/sourcecfg"
)

func TestNode_KillsAndReads_SimpleAssign(t *testing.T) {
	t.Parallel()

	cfg, _, _ := buildTestCFG(t, `package test

func f(z int) {
	x := z + 1
	y := x
	_ = y
}
`)

	var assigns []*sourcecfg.Node
	for _, b := range cfg.Blocks() {
		for _, n := range blockNodes(b) {
			if sn, ok := n.(*sourcecfg.Node); ok {
				if _, ok := sn.AST().(*ast.AssignStmt); ok {
					assigns = append(assigns, sn)
				}
			}
		}
	}
	require.Len(t, assigns, 3) // x := z+1, y := x, _ = y

	kill, ok := assigns[0].Kills()
	require.True(t, ok)
	require.Equal(t, "x", varName(kill))
	reads := varNames(assigns[0].Reads())
	require.ElementsMatch(t, []string{"z"}, reads)

	kill, ok = assigns[1].Kills()
	require.True(t, ok)
	require.Equal(t, "y", varName(kill))
	reads = varNames(assigns[1].Reads())
	require.ElementsMatch(t, []string{"x"}, reads)

	// `_ = y` has a blank LHS: it kills nothing, but still reads y.
	_, ok = assigns[2].Kills()
	require.False(t, ok)
	reads = varNames(assigns[2].Reads())
	require.ElementsMatch(t, []string{"y"}, reads)
}

func TestNode_IncDec_ReadsAndKillsSameVar(t *testing.T) {
	t.Parallel()

	cfg, _, _ := buildTestCFG(t, `package test

func f() {
	x := 0
	x++
	_ = x
}
`)

	var incDec *sourcecfg.Node
	for _, b := range cfg.Blocks() {
		for _, n := range blockNodes(b) {
			if sn, ok := n.(*sourcecfg.Node); ok {
				if _, ok := sn.AST().(*ast.IncDecStmt); ok {
					incDec = sn
				}
			}
		}
	}
	require.NotNil(t, incDec)

	kill, ok := incDec.Kills()
	require.True(t, ok)
	require.Equal(t, "x", varName(kill))
	require.ElementsMatch(t, []string{"x"}, varNames(incDec.Reads()))
}

func varName(v livevar.Var) string {
	type named interface{ Name() string }
	if n, ok := v.(named); ok {
		return n.Name()
	}
	return ""
}

func varNames(vs []livevar.Var) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = varName(v)
	}
	return out
}
