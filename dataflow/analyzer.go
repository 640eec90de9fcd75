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

import "github.com/flowgraph/dataflow/util/orderedmap"

// Analyzer is the worklist-based fixed-point solver: construct one with NewForwardAnalyzer or
// NewBackwardAnalyzer, call PerformAnalysis once per control-flow graph, then read out its
// findings through Result. An Analyzer may be reused across multiple, sequential (never
// concurrent) calls to PerformAnalysis; each call discards the previous run's state via Reset.
type Analyzer struct {
	forwardFn              ForwardTransferFunction
	backwardFn             BackwardTransferFunction
	maxCountBeforeWidening int

	cfg        *ControlFlowGraph
	inputs     map[Block]*TransferInput
	// nodeValues keeps insertion order so that GetFinalLocalValues (and anything built on top of
	// it, e.g. visualize's dot output) produces deterministic output across runs.
	nodeValues *orderedmap.OrderedMap[Node, AbstractValue]

	forward  *forwardState
	backward *backwardState

	isRunning bool

	replaying   map[Block]bool
	replayCache map[Block]*blockReplay
	treeIdx     map[Tree][]Node
}

// NewForwardAnalyzer constructs an Analyzer that runs fn forward over a CFG: entry to exits,
// following successor edges. maxCountBeforeWidening bounds how many times a block may be merged
// into with LeastUpperBound before the solver switches to WidenedUpperBound for one round; pass
// NeverWiden if fn's lattice is known to have finite height.
func NewForwardAnalyzer(fn ForwardTransferFunction, maxCountBeforeWidening int) *Analyzer {
	a := &Analyzer{forwardFn: fn, maxCountBeforeWidening: maxCountBeforeWidening}
	a.Reset()
	return a
}

// NewBackwardAnalyzer constructs an Analyzer that runs fn backward over a CFG: exits to entry,
// following predecessor edges.
func NewBackwardAnalyzer(fn BackwardTransferFunction, maxCountBeforeWidening int) *Analyzer {
	a := &Analyzer{backwardFn: fn, maxCountBeforeWidening: maxCountBeforeWidening}
	a.Reset()
	return a
}

// PerformAnalysis runs the fixed-point solver over cfg to completion. It panics if called while
// another call to PerformAnalysis on the same Analyzer is already in progress — concurrent or
// nested reentrant use of a single Analyzer is not supported; construct a separate Analyzer (or
// call Reset between sequential runs, which PerformAnalysis already does for you).
func (a *Analyzer) PerformAnalysis(cfg *ControlFlowGraph) error {
	if a.isRunning {
		panic("dataflow: PerformAnalysis called while this Analyzer is already running")
	}
	a.isRunning = true
	defer func() { a.isRunning = false }()

	a.Reset()
	a.cfg = cfg

	if a.forwardFn != nil {
		return a.runForward(cfg)
	}
	return a.runBackward(cfg)
}

// Result returns the query interface over the most recently completed PerformAnalysis run. It is
// only meaningful after PerformAnalysis has returned nil; before the first run GetEntryStore and
// GetReturnStatementStores panic.
func (a *Analyzer) Result() *AnalysisResult {
	return &AnalysisResult{a: a}
}

// Reset discards all state from any previous run, so this Analyzer can be used on a different
// ControlFlowGraph (or the same one again). PerformAnalysis calls Reset itself at the start of
// every run; exported so callers can release an Analyzer's memory between runs without
// immediately starting a new one.
func (a *Analyzer) Reset() {
	a.cfg = nil
	a.inputs = make(map[Block]*TransferInput)
	a.nodeValues = orderedmap.New[Node, AbstractValue]()
	a.forward = nil
	a.backward = nil
	a.replaying = make(map[Block]bool)
	a.replayCache = make(map[Block]*blockReplay)
	a.treeIdx = nil
}
