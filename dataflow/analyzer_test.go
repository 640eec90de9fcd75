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

package dataflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// incFn is a ForwardTransferFunction fixture: every node adds its own fixed increment to the
// incoming store's counter and reports the counter's new value as its abstract value.
type incFn struct {
	incs map[*fixtureNode]int
}

func (f *incFn) VisitNode(node Node, in *TransferInput) (*TransferResult, error) {
	n := node.(*fixtureNode)
	s := in.RegularStore().Copy().(*intStore)
	s.n += f.incs[n]
	return RegularTransferResult(intValue{n: s.n}, s), nil
}

func (f *incFn) InitialStore(*ControlFlowGraph) Store { return &intStore{} }

func buildStraightLineCFG(t *testing.T) (*ControlFlowGraph, *fixtureNode, *fixtureNode, *incFn) {
	t.Helper()

	body := &RegularBlock{}
	entry := &SpecialBlock{SpecialKind: EntryBlock, Successor: body}
	exit := &SpecialBlock{SpecialKind: RegularExitBlock}

	n1 := &fixtureNode{block: body, id: "n1"}
	n2 := &fixtureNode{block: body, id: "n2"}
	body.Nodes = []Node{n1, n2}
	body.Successor = exit
	body.FlowRule = EachToEach

	cfg := NewControlFlowGraph(entry, exit, nil, []Block{entry, body, exit}, nil, MethodUnit, nil)
	fn := &incFn{incs: map[*fixtureNode]int{n1: 1, n2: 2}}
	return cfg, n1, n2, fn
}

func TestAnalyzer_Forward_StraightLine(t *testing.T) {
	t.Parallel()

	cfg, n1, n2, fn := buildStraightLineCFG(t)
	a := NewForwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	result := a.Result()

	v1, ok := result.GetValue(n1)
	require.True(t, ok)
	require.Equal(t, intValue{n: 1}, v1)

	v2, ok := result.GetValue(n2)
	require.True(t, ok)
	require.Equal(t, intValue{n: 3}, v2)

	require.Equal(t, 0, result.GetStoreBefore(n1).(*intStore).n)
	require.Equal(t, 1, result.GetStoreAfter(n1).(*intStore).n)
	require.Equal(t, 3, result.GetStoreAfter(n2).(*intStore).n)
}

func TestAnalyzer_GetFinalLocalValues_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	cfg, n1, n2, fn := buildStraightLineCFG(t)
	a := NewForwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	pairs := a.Result().GetFinalLocalValues()
	require.Len(t, pairs, 2)
	require.Equal(t, Node(n1), pairs[0].Key)
	require.Equal(t, intValue{n: 1}, pairs[0].Value)
	require.Equal(t, Node(n2), pairs[1].Key)
	require.Equal(t, intValue{n: 3}, pairs[1].Value)
}

func TestAnalyzer_Forward_ConditionalJoin(t *testing.T) {
	t.Parallel()

	cond := &RegularBlock{}
	split := &ConditionalBlock{}
	thenBlock := &RegularBlock{}
	elseBlock := &RegularBlock{}
	entry := &SpecialBlock{SpecialKind: EntryBlock, Successor: cond}
	exit := &SpecialBlock{SpecialKind: RegularExitBlock}

	cNode := &fixtureNode{block: cond, id: "c"}
	tNode := &fixtureNode{block: thenBlock, id: "t"}
	eNode := &fixtureNode{block: elseBlock, id: "e"}

	cond.Nodes = []Node{cNode}
	cond.Successor = split
	cond.FlowRule = EachToEach

	split.Then, split.Else = thenBlock, elseBlock
	split.ThenFlowRule, split.ElseFlowRule = EachToEach, EachToEach

	thenBlock.Nodes = []Node{tNode}
	thenBlock.Successor = exit
	thenBlock.FlowRule = ThenToThen

	elseBlock.Nodes = []Node{eNode}
	elseBlock.Successor = exit
	elseBlock.FlowRule = ElseToElse

	cfg := NewControlFlowGraph(entry, exit, nil,
		[]Block{entry, cond, split, thenBlock, elseBlock, exit}, nil, MethodUnit, nil)

	fn := &incFn{incs: map[*fixtureNode]int{cNode: 1, tNode: 10, eNode: 100}}
	a := NewForwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	result := a.Result()
	cv, _ := result.GetValue(cNode)
	require.Equal(t, intValue{n: 1}, cv)
	tv, _ := result.GetValue(tNode)
	require.Equal(t, intValue{n: 11}, tv)
	ev, _ := result.GetValue(eNode)
	require.Equal(t, intValue{n: 101}, ev)

	// The exit's incoming store is the least upper bound (max) of the then and else branch
	// outcomes, since both branches flow into it via opposite, non-overlapping sides.
	require.Equal(t, 101, result.GetStoreBeforeBlock(exit).(*intStore).n)
}

// backwardSumFn is a BackwardTransferFunction fixture: every node adds its own fixed contribution
// to the store flowing backward through it.
type backwardSumFn struct {
	incs map[*fixtureNode]int
}

func (f *backwardSumFn) VisitNode(node Node, in *TransferInput) (*TransferResult, error) {
	n := node.(*fixtureNode)
	s := in.RegularStore().Copy().(*intStore)
	s.n += f.incs[n]
	return RegularTransferResult(nil, s), nil
}

func (f *backwardSumFn) InitialNormalExitStore(*ControlFlowGraph) Store      { return &intStore{} }
func (f *backwardSumFn) InitialExceptionalExitStore(*ControlFlowGraph) Store { return &intStore{} }

func TestAnalyzer_Backward_StraightLine(t *testing.T) {
	t.Parallel()

	cfg, n1, n2, _ := buildStraightLineCFG(t)
	fn := &backwardSumFn{incs: map[*fixtureNode]int{n1: 1, n2: 2}}
	a := NewBackwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	result := a.Result()
	require.Equal(t, 3, result.GetEntryStore().(*intStore).n)
	require.Equal(t, 2, result.GetStoreBefore(n2).(*intStore).n)
	require.Equal(t, 0, result.GetStoreAfter(n2).(*intStore).n)
}

func TestAnalyzer_Reset_ClearsStateBetweenRuns(t *testing.T) {
	t.Parallel()

	cfg1, n1, _, fn := buildStraightLineCFG(t)
	cfg2, m1, _, _ := buildStraightLineCFG(t)

	a := NewForwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg1))
	require.NoError(t, a.PerformAnalysis(cfg2))

	_, ok := a.Result().GetValue(n1)
	require.False(t, ok, "value from the first run must not leak into the second")

	v, ok := a.Result().GetValue(m1)
	require.True(t, ok)
	require.Equal(t, intValue{n: 1}, v)
}

func TestAnalyzer_PerformAnalysis_PanicsOnReentrantUse(t *testing.T) {
	t.Parallel()

	cfg, _, _, fn := buildStraightLineCFG(t)
	a := NewForwardAnalyzer(fn, NeverWiden)
	a.isRunning = true
	require.Panics(t, func() { _ = a.PerformAnalysis(cfg) })
}

// backwardCaptureFn is a BackwardTransferFunction fixture that records, as the node's abstract
// value, the incoming store's counter *before* applying its own increment — so a test can tell
// exactly which store a node's transfer actually ran over.
type backwardCaptureFn struct {
	incs map[*fixtureNode]int
}

func (f *backwardCaptureFn) VisitNode(node Node, in *TransferInput) (*TransferResult, error) {
	n := node.(*fixtureNode)
	captured := in.RegularStore().(*intStore).n
	s := in.RegularStore().Copy().(*intStore)
	s.n += f.incs[n]
	return RegularTransferResult(intValue{n: captured}, s), nil
}

func (f *backwardCaptureFn) InitialNormalExitStore(*ControlFlowGraph) Store      { return &intStore{} }
func (f *backwardCaptureFn) InitialExceptionalExitStore(*ControlFlowGraph) Store { return &intStore{} }

// TestAnalyzer_Backward_ExceptionBlock builds entry -> excBlock -> regularExit, with excBlock also
// raising an exceptional edge to a handler block that flows into exceptionalExit. It confirms that
// excBlock's own node transfer runs only over the store accumulated from its normal successor
// (regularExit), never over the store contributed backward across its exceptional edge from
// handler — and that the exceptional contribution is still correctly folded in (via least upper
// bound) after the transfer, before propagating on to excBlock's predecessors.
func TestAnalyzer_Backward_ExceptionBlock(t *testing.T) {
	t.Parallel()

	regularExit := &SpecialBlock{SpecialKind: RegularExitBlock}
	exceptionalExit := &SpecialBlock{SpecialKind: ExceptionalExitBlock}

	handler := &RegularBlock{}
	hNode := &fixtureNode{block: handler, id: "h"}
	handler.Nodes = []Node{hNode}
	handler.Successor = exceptionalExit
	handler.FlowRule = EachToEach

	excBlock := &ExceptionBlock{Successor: regularExit, FlowRule: EachToEach}
	eNode := &fixtureNode{block: excBlock, id: "e"}
	excBlock.Node = eNode
	excBlock.Exceptional = map[ExceptionTag][]Block{"panic": {handler}}

	entry := &SpecialBlock{SpecialKind: EntryBlock, Successor: excBlock}

	cfg := NewControlFlowGraph(entry, regularExit, exceptionalExit,
		[]Block{entry, excBlock, handler, regularExit, exceptionalExit}, nil, MethodUnit, nil)

	fn := &backwardCaptureFn{incs: map[*fixtureNode]int{eNode: 1, hNode: 100}}
	a := NewBackwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	result := a.Result()

	ev, ok := result.GetValue(eNode)
	require.True(t, ok)
	require.Equal(t, intValue{n: 0}, ev,
		"excBlock's node transfer must run over only its normal-edge store, not the exceptional contribution from handler")

	require.Equal(t, 100, result.GetEntryStore().(*intStore).n,
		"the exceptional contribution must still reach predecessors, folded in after the transfer via least upper bound")
}

// TestAnalyzer_UnreachableBlock_QueriesReturnNilRatherThanPanic builds a CFG containing a
// RegularBlock with no path from entry, and confirms every AnalysisResult query against it (or a
// node inside it) returns nil rather than dereferencing the nil *TransferInput an unvisited block
// leaves behind.
func TestAnalyzer_UnreachableBlock_QueriesReturnNilRatherThanPanic(t *testing.T) {
	t.Parallel()

	cfg, _, _, fn := buildStraightLineCFG(t)

	orphan := &RegularBlock{Successor: nil, FlowRule: EachToEach}
	orphanNode := &fixtureNode{block: orphan, id: "orphan"}
	orphan.Nodes = []Node{orphanNode}

	blocks := append(cfg.Blocks(), orphan)
	cfg = NewControlFlowGraph(cfg.Entry(), cfg.RegularExit(), cfg.ExceptionalExit(), blocks, nil, MethodUnit, nil)

	a := NewForwardAnalyzer(fn, NeverWiden)
	require.NoError(t, a.PerformAnalysis(cfg))

	result := a.Result()

	_, ok := result.GetValue(orphanNode)
	require.False(t, ok)

	require.NotPanics(t, func() {
		require.Nil(t, result.GetStoreBefore(orphanNode))
		require.Nil(t, result.GetStoreAfter(orphanNode))
		require.Nil(t, result.GetStoreBeforeBlock(orphan))
		require.Nil(t, result.GetStoreAfterBlock(orphan))
	})
}
