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

import "fmt"

// forwardState holds everything a forward analysis accumulates while performAnalysis runs. It is
// reset at the start of every run so a single Analyzer value can be reused across sequential
// (never concurrent) calls to PerformAnalysis.
type forwardState struct {
	thenStores map[Block]Store
	elseStores map[Block]Store

	storesAtReturn map[Node]*TransferResult
}

func (a *Analyzer) runForward(cfg *ControlFlowGraph) error {
	fn := a.forwardFn
	fs := &forwardState{
		thenStores:     make(map[Block]Store),
		elseStores:     make(map[Block]Store),
		storesAtReturn: make(map[Node]*TransferResult),
	}
	a.forward = fs

	wl := NewWorklist(cfg, forward)
	wc := newWideningController(a.maxCountBeforeWidening)

	entry := cfg.Entry()
	if entry == nil {
		panic("dataflow: forward analysis requires a non-nil entry block")
	}
	initial := fn.InitialStore(cfg)
	fs.thenStores[entry] = initial
	fs.elseStores[entry] = initial
	wl.Add(entry)

	for {
		b, ok := wl.Poll()
		if !ok {
			break
		}
		in := NewConditionalTransferInput(fs.thenStores[b], fs.elseStores[b])
		in.analyzer = a
		a.inputs[b] = in

		if err := a.forwardVisitBlock(cfg, wl, wc, fs, b, in); err != nil {
			return err
		}
	}
	return nil
}

// forwardVisitBlock dispatches on b's kind and propagates its outgoing store(s) to its
// successor(s), per spec section 4.2.
func (a *Analyzer) forwardVisitBlock(
	cfg *ControlFlowGraph,
	wl *Worklist,
	wc *wideningController,
	fs *forwardState,
	b Block,
	in *TransferInput,
) error {
	switch blk := b.(type) {
	case *RegularBlock:
		cur := in.Copy()
		for _, node := range blk.Nodes {
			result, err := a.forwardFn.VisitNode(node, cur)
			if err != nil {
				return fmt.Errorf("forward transfer on node in regular block failed: %w", err)
			}
			a.recordValue(node, result.Value)
			a.recordReturn(fs, node, result)
			cur = result.asTransferInput()
		}
		a.forwardPropagate(wc, fs, wl, blk.Successor, blk.FlowRule, cur)

	case *ConditionalBlock:
		cur := in.Copy()
		a.forwardPropagate(wc, fs, wl, blk.Then, blk.ThenFlowRule, cur)
		a.forwardPropagate(wc, fs, wl, blk.Else, blk.ElseFlowRule, cur)

	case *ExceptionBlock:
		cur := in.Copy()
		result, err := a.forwardFn.VisitNode(blk.Node, cur)
		if err != nil {
			return fmt.Errorf("forward transfer on exception block node failed: %w", err)
		}
		a.recordValue(blk.Node, result.Value)
		a.recordReturn(fs, blk.Node, result)

		a.forwardPropagate(wc, fs, wl, blk.Successor, blk.FlowRule, result.asTransferInput())

		for tag, targets := range blk.Exceptional {
			store, ok := result.ExceptionalStores[tag]
			if !ok {
				// The exception may have been raised before the node had any effect: fall back to
				// a fresh copy of the block's input regular store.
				store = in.RegularStore().Copy()
			}
			for _, target := range targets {
				a.forwardMerge(wc, fs, wl, target, store, mergeBoth)
			}
		}

	case *SpecialBlock:
		switch blk.SpecialKind {
		case EntryBlock:
			// Already seeded before the worklist started; nothing further to do.
		case RegularExitBlock, ExceptionalExitBlock:
			// Exits have no successor.
		default:
			panic(fmt.Sprintf("dataflow: unknown special block kind %v", blk.SpecialKind))
		}
		if blk.Successor != nil {
			a.forwardPropagate(wc, fs, wl, blk.Successor, EachToEach, in)
		}

	default:
		panic(fmt.Sprintf("dataflow: unknown block kind in forward dispatch: %T", b))
	}
	return nil
}

// forwardPropagate applies rule to in and merges each resulting (store, side) pair into successor.
// It is a no-op if successor is nil (e.g. an exit block).
func (a *Analyzer) forwardPropagate(wc *wideningController, fs *forwardState, wl *Worklist, successor Block, rule FlowRule, in *TransferInput) {
	if successor == nil {
		return
	}
	for _, pair := range rule.apply(in) {
		a.forwardMerge(wc, fs, wl, successor, pair.store, pair.kind)
	}
}

// forwardMerge implements the store-merging algorithm of spec section 4.2: it folds store into
// successor's then/else store(s) according to kind, using the widening controller to decide
// between least-upper-bound and widened-upper-bound, and re-enqueues successor iff the result
// changed.
func (a *Analyzer) forwardMerge(wc *wideningController, fs *forwardState, wl *Worklist, successor Block, store Store, kind mergeKind) {
	changed := false

	mergeSide := func(sideStores map[Block]Store) {
		prev := sideStores[successor]
		merged := wc.merge(successor, store, prev)
		if prev == nil || !merged.Equal(prev) {
			changed = true
		}
		sideStores[successor] = merged
	}

	switch kind {
	case mergeThen:
		mergeSide(fs.thenStores)
	case mergeElse:
		mergeSide(fs.elseStores)
	case mergeBoth:
		if shareStore(fs.thenStores[successor], fs.elseStores[successor]) {
			prev := fs.thenStores[successor]
			merged := wc.merge(successor, store, prev)
			if prev == nil || !merged.Equal(prev) {
				changed = true
			}
			fs.thenStores[successor] = merged
			fs.elseStores[successor] = merged
		} else {
			mergeSide(fs.thenStores)
			mergeSide(fs.elseStores)
		}
	default:
		panic(fmt.Sprintf("dataflow: unknown merge kind %v", kind))
	}

	if changed {
		wl.Add(successor)
	}
}

// shareStore reports whether two (possibly nil) stores are the very same store value, i.e. a
// block's then/else stores have not yet diverged. Used purely to decide whether a BOTH update can
// merge once and keep the sides shared, per spec section 4.2.
func shareStore(a, b Store) bool {
	return a == b
}

func (a *Analyzer) recordValue(node Node, value AbstractValue) {
	if value == nil {
		return
	}
	if existing, ok := a.nodeValues.Load(node); ok {
		a.nodeValues.Store(node, existing.LeastUpperBound(value))
	} else {
		a.nodeValues.Store(node, value)
	}
}

// recordReturn implements the return-node bookkeeping of spec section 4.2: whenever the
// transferred node is one of the CFG's known return nodes, its transfer result is recorded for
// later retrieval via GetReturnStatementStores.
func (a *Analyzer) recordReturn(fs *forwardState, node Node, result *TransferResult) {
	for _, r := range a.cfg.ReturnNodes() {
		if r == node {
			fs.storesAtReturn[node] = result
			return
		}
	}
}
