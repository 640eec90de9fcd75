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

// backwardState holds everything a backward analysis accumulates while performAnalysis runs.
// Unlike forward analysis, backward blocks carry a single out-store apiece: there is no then/else
// split, since conditionals only ever affect which store reaches which predecessor, never how many
// stores a block itself holds.
type backwardState struct {
	// outStores holds, per block, the store that flows out of it via its normal successor (in
	// execution order) — i.e. the least upper bound of whatever every normal-edge successor has so
	// far propagated backward into it. This is the store a block's own node transfer runs over.
	outStores map[Block]Store

	// exceptionStores holds, per ExceptionBlock, the least upper bound of whatever has propagated
	// backward into it across its exceptional edges. Per spec section 4.4, an exceptional
	// successor's contribution must bypass the block's node transfer entirely (the exception may
	// have been raised before the node had any effect) and is instead lub'd into the transfer's
	// result only after the transfer has run, at the ExceptionBlock dispatch site.
	exceptionStores map[Block]Store

	// entryStore snapshots the store that reached the CFG's entry block, for GetEntryStore.
	entryStore Store
}

func (a *Analyzer) runBackward(cfg *ControlFlowGraph) error {
	fn := a.backwardFn
	bs := &backwardState{
		outStores:       make(map[Block]Store),
		exceptionStores: make(map[Block]Store),
	}
	a.backward = bs

	if cfg.RegularExit() == nil && cfg.ExceptionalExit() == nil {
		panic("dataflow: backward analysis requires at least one of regular-exit or exceptional-exit")
	}

	wl := NewWorklist(cfg, backward)
	wc := newWideningController(a.maxCountBeforeWidening)

	if exit := cfg.RegularExit(); exit != nil {
		bs.outStores[exit] = fn.InitialNormalExitStore(cfg)
		wl.Add(exit)
	}
	if exit := cfg.ExceptionalExit(); exit != nil {
		bs.outStores[exit] = fn.InitialExceptionalExitStore(cfg)
		wl.Add(exit)
	}

	for {
		b, ok := wl.Poll()
		if !ok {
			break
		}
		in := NewTransferInput(bs.outStores[b])
		in.analyzer = a
		a.inputs[b] = in

		if err := a.backwardVisitBlock(cfg, wl, wc, bs, b, in); err != nil {
			return err
		}
	}
	return nil
}

// backwardVisitBlock dispatches on b's kind and propagates the store flowing into b (backward,
// i.e. out of b in execution order) to each of b's predecessors, per spec sections 4.3 and 4.4.
func (a *Analyzer) backwardVisitBlock(
	cfg *ControlFlowGraph,
	wl *Worklist,
	wc *wideningController,
	bs *backwardState,
	b Block,
	in *TransferInput,
) error {
	switch blk := b.(type) {
	case *RegularBlock:
		cur := in
		for i := len(blk.Nodes) - 1; i >= 0; i-- {
			node := blk.Nodes[i]
			result, err := a.backwardFn.VisitNode(node, cur)
			if err != nil {
				return fmt.Errorf("backward transfer on node in regular block failed: %w", err)
			}
			if result.IsTwoStores() {
				panic("dataflow: backward transfer function must not return a split TransferResult")
			}
			a.recordValue(node, result.Value)
			cur = result.asTransferInput()
		}
		a.backwardPropagateTo(wc, wl, bs, b, cfg.Predecessors(b), cur.RegularStore())

	case *ExceptionBlock:
		result, err := a.backwardFn.VisitNode(blk.Node, in)
		if err != nil {
			return fmt.Errorf("backward transfer on exception block node failed: %w", err)
		}
		if result.IsTwoStores() {
			panic("dataflow: backward transfer function must not return a split TransferResult")
		}
		a.recordValue(blk.Node, result.Value)

		// Merge the node's regular transfer outcome with any store accumulated from this block's
		// exceptional edges: the exceptional contribution bypasses the node's own transfer (the
		// exception may have been raised before the node had any effect), so it is folded in here,
		// after the transfer, rather than fed into VisitNode as if it were ordinary predecessor
		// traffic.
		out := result.RegularStore()
		if exc, ok := bs.exceptionStores[b]; ok {
			out = out.LeastUpperBound(exc)
		}
		a.backwardPropagateTo(wc, wl, bs, b, cfg.Predecessors(b), out)

	case *ConditionalBlock:
		// A backward transfer function never splits a store; every predecessor, whether it reaches
		// b via its "then" or "else" side, simply receives b's single incoming store unchanged. Any
		// flow rule other than EACH_TO_EACH on an edge into a ConditionalBlock would imply the
		// engine is being asked to split on the way *into* a node that never runs a transfer
		// function, which cannot happen for a well-formed CFG feeding a backward analysis.
		a.backwardPropagateTo(wc, wl, bs, b, cfg.Predecessors(b), in.RegularStore())

	case *SpecialBlock:
		switch blk.SpecialKind {
		case EntryBlock:
			bs.entryStore = in.RegularStore()
		case RegularExitBlock, ExceptionalExitBlock:
			a.backwardPropagateTo(wc, wl, bs, b, cfg.Predecessors(b), in.RegularStore())
		default:
			panic(fmt.Sprintf("dataflow: unknown special block kind %v", blk.SpecialKind))
		}

	default:
		panic(fmt.Sprintf("dataflow: unknown block kind in backward dispatch: %T", b))
	}
	return nil
}

// backwardPropagateTo merges store, which is flowing out of from (in execution order) backward
// into every one of from's predecessors, and re-enqueues any predecessor whose accumulated state
// changed as a result. Per spec section 4.4, a predecessor that is an ExceptionBlock reaching from
// via one of its exceptional edges accumulates the contribution separately from its normal-edge
// out-store, since the two must not be merged until after that predecessor's own node transfer has
// run (see the ExceptionBlock case of backwardVisitBlock).
func (a *Analyzer) backwardPropagateTo(wc *wideningController, wl *Worklist, bs *backwardState, from Block, preds []Block, store Store) {
	for _, p := range preds {
		if isExceptionalEdge(p, from) {
			prev, had := bs.exceptionStores[p]
			merged := wc.merge(p, store, prev)
			bs.exceptionStores[p] = merged
			if !had || !merged.Equal(prev) {
				wl.Add(p)
			}
			continue
		}

		prev, had := bs.outStores[p]
		merged := wc.merge(p, store, prev)
		bs.outStores[p] = merged
		if !had || !merged.Equal(prev) {
			wl.Add(p)
		}
	}
}

// isExceptionalEdge reports whether to is reached from p via one of p's exceptional edges rather
// than its normal successor edge. Only an ExceptionBlock has exceptional edges; every other block
// kind has exactly one successor per edge, which is always "normal".
func isExceptionalEdge(p Block, to Block) bool {
	eb, ok := p.(*ExceptionBlock)
	if !ok || eb.Successor == to {
		return false
	}
	for _, targets := range eb.Exceptional {
		for _, t := range targets {
			if t == to {
				return true
			}
		}
	}
	return false
}
