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
	"fmt"

	"github.com/flowgraph/dataflow/util/orderedmap"
)

// TreeNode is an optional refinement of Node for CFG providers whose nodes are derived from a
// syntax tree. Implementing it lets AnalysisResult answer tree-keyed queries (GetValuesForTree,
// GetNodesForTree, GetStoreBeforeTree, GetStoreAfterTree); nodes that don't implement it simply
// never show up in those queries' results.
type TreeNode interface {
	Node
	// Tree returns the syntax tree this node was derived from.
	Tree() Tree
}

// blockReplay holds the per-node before/after stores recomputed for one block by replaying its
// transfer function over its converged TransferInput. It is cached on the Analyzer so repeated
// queries against the same block don't redo work.
type blockReplay struct {
	before map[Node]*TransferInput
	after  map[Node]*TransferResult
}

// AnalysisResult is the read-only query interface to a completed PerformAnalysis run. It is safe
// to hold onto and query repeatedly; queries replay the transfer function on demand rather than
// retaining every intermediate store computed during the run.
type AnalysisResult struct {
	a *Analyzer
}

// GetValue returns the abstract value computed for node, and false if the analysis never assigned
// node a value (e.g. it is not an expression node).
func (r *AnalysisResult) GetValue(node Node) (AbstractValue, bool) {
	return r.a.nodeValues.Load(node)
}

// GetNodesForTree returns every node derived from tree, in unspecified order. Nodes whose
// concrete type does not implement TreeNode are never returned.
func (r *AnalysisResult) GetNodesForTree(tree Tree) []Node {
	return r.a.treeIndex()[tree]
}

// GetValuesForTree returns the abstract value of every node derived from tree that was assigned
// one.
func (r *AnalysisResult) GetValuesForTree(tree Tree) []AbstractValue {
	var out []AbstractValue
	for _, n := range r.GetNodesForTree(tree) {
		if v, ok := r.GetValue(n); ok {
			out = append(out, v)
		}
	}
	return out
}

// GetFinalLocalValues returns every node-to-value assignment computed by the analysis, in the
// order the analysis first assigned each node a value. The returned slice must not be mutated.
func (r *AnalysisResult) GetFinalLocalValues() []orderedmap.Pair[Node, AbstractValue] {
	pairs := make([]orderedmap.Pair[Node, AbstractValue], len(r.a.nodeValues.Pairs))
	for i, p := range r.a.nodeValues.Pairs {
		pairs[i] = *p
	}
	return pairs
}

// GetReturnStatementStores returns, for a forward analysis, the TransferResult computed at each of
// the CFG's return nodes. It panics if called on a backward analysis's result, since backward
// analyses never special-case return nodes (see spec section 4.2 vs 4.3).
func (r *AnalysisResult) GetReturnStatementStores() map[Node]*TransferResult {
	if r.a.forward == nil {
		panic("dataflow: GetReturnStatementStores is only meaningful for a forward analysis")
	}
	return r.a.forward.storesAtReturn
}

// GetEntryStore returns the store that reached the CFG's entry block, for a backward analysis. It
// panics if called on a forward analysis's result, since a forward analysis never re-visits its
// entry block after seeding it.
func (r *AnalysisResult) GetEntryStore() Store {
	if r.a.backward == nil {
		panic("dataflow: GetEntryStore is only meaningful for a backward analysis")
	}
	return r.a.backward.entryStore
}

// GetStoreBefore returns the store flowing into node, in program execution order (regardless of
// which direction the analysis ran). It returns nil if node's block was never reached by the
// solver (e.g. an unreachable block).
func (r *AnalysisResult) GetStoreBefore(node Node) Store {
	rep := r.a.replayBlock(node.Block())
	if in, ok := rep.before[node]; ok {
		return in.RegularStore()
	}
	return r.a.storeForBlock(node.Block())
}

// GetStoreAfter returns the store flowing out of node, in program execution order. It returns nil
// if node's block was never reached by the solver (e.g. an unreachable block).
func (r *AnalysisResult) GetStoreAfter(node Node) Store {
	rep := r.a.replayBlock(node.Block())
	if res, ok := rep.after[node]; ok {
		return res.RegularStore()
	}
	return r.a.storeForBlock(node.Block())
}

// GetStoreBeforeTree returns the store flowing into the first node derived from tree, in
// unspecified order among nodes that share a tree.
func (r *AnalysisResult) GetStoreBeforeTree(tree Tree) (Store, bool) {
	nodes := r.GetNodesForTree(tree)
	if len(nodes) == 0 {
		return nil, false
	}
	return r.GetStoreBefore(nodes[0]), true
}

// GetStoreAfterTree returns the store flowing out of the first node derived from tree, in
// unspecified order among nodes that share a tree.
func (r *AnalysisResult) GetStoreAfterTree(tree Tree) (Store, bool) {
	nodes := r.GetNodesForTree(tree)
	if len(nodes) == 0 {
		return nil, false
	}
	return r.GetStoreAfter(nodes[0]), true
}

// GetStoreBeforeBlock returns the store flowing into block b, in program execution order. For a
// backward analysis this is the store a replay of b's own transfer function computes before b's
// first node, i.e. at b's top; for a block with no nodes it is the store the solver recorded for
// b. It returns nil if b was never reached by the solver (e.g. an unreachable block).
func (r *AnalysisResult) GetStoreBeforeBlock(b Block) Store {
	if r.a.forward != nil {
		return r.a.storeForBlock(b)
	}
	rep := r.a.replayBlock(b)
	if nodes := blockNodes(b); len(nodes) > 0 {
		if in, ok := rep.before[nodes[0]]; ok {
			return in.RegularStore()
		}
	}
	return r.a.storeForBlock(b)
}

// GetStoreAfterBlock returns the store flowing out of block b, in program execution order.
// Conditional and Special blocks never run a transfer function, so their "after" store is simply
// whatever flowed in. It returns nil if b was never reached by the solver (e.g. an unreachable
// block).
func (r *AnalysisResult) GetStoreAfterBlock(b Block) Store {
	if r.a.backward != nil {
		return r.a.storeForBlock(b)
	}
	rep := r.a.replayBlock(b)
	nodes := blockNodes(b)
	if len(nodes) == 0 {
		return r.a.storeForBlock(b)
	}
	if res, ok := rep.after[nodes[len(nodes)-1]]; ok {
		return res.RegularStore()
	}
	return r.a.storeForBlock(b)
}

// storeForBlock returns the regular store recorded for b's converged TransferInput, or nil if b
// was never reached by the solver (e.g. an unreachable block never dequeued from the worklist).
func (a *Analyzer) storeForBlock(b Block) Store {
	in, ok := a.inputs[b]
	if !ok || in == nil {
		return nil
	}
	return in.RegularStore()
}

// blockNodes returns the node(s), if any, that a block runs its transfer function over, in
// execution order. Conditional and Special blocks return nil.
func blockNodes(b Block) []Node {
	switch blk := b.(type) {
	case *RegularBlock:
		return blk.Nodes
	case *ExceptionBlock:
		return []Node{blk.Node}
	default:
		return nil
	}
}

// treeIndex lazily builds and caches the Tree -> []Node index over every block in the CFG this
// analyzer last ran on.
func (a *Analyzer) treeIndex() map[Tree][]Node {
	if a.treeIdx != nil {
		return a.treeIdx
	}
	idx := make(map[Tree][]Node)
	if a.cfg != nil {
		for _, b := range a.cfg.Blocks() {
			for _, n := range blockNodes(b) {
				if tn, ok := n.(TreeNode); ok {
					idx[tn.Tree()] = append(idx[tn.Tree()], n)
				}
			}
		}
	}
	a.treeIdx = idx
	return idx
}

// replayBlock recomputes, and caches, the per-node before/after stores for b by re-running the
// transfer function over b's converged TransferInput. If a replay of b is already in progress
// higher up the call stack — i.e. the transfer function itself queried AnalysisResult for a node
// in the very block it is currently being replayed for — this returns an empty replay rather than
// recursing forever; callers fall back to the block's own (regular, unsplit) input store in that
// case, which is the best available answer short of the recursive one.
func (a *Analyzer) replayBlock(b Block) *blockReplay {
	if rep, ok := a.replayCache[b]; ok {
		return rep
	}
	if a.replaying[b] {
		return &blockReplay{}
	}
	if _, ok := a.inputs[b]; !ok {
		// b was never dequeued from the worklist (e.g. an unreachable block); there is no
		// converged TransferInput to replay it over.
		rep := &blockReplay{}
		a.replayCache[b] = rep
		return rep
	}
	a.replaying[b] = true
	defer delete(a.replaying, b)

	rep := &blockReplay{before: make(map[Node]*TransferInput), after: make(map[Node]*TransferResult)}

	switch {
	case a.forwardFn != nil:
		cur := a.inputs[b]
		for _, node := range blockNodes(b) {
			rep.before[node] = cur
			result, err := a.forwardFn.VisitNode(node, cur)
			if err != nil {
				panic(fmt.Errorf("dataflow: replaying forward transfer function for query failed: %w", err))
			}
			rep.after[node] = result
			cur = result.asTransferInput()
		}
	case a.backwardFn != nil:
		nodes := blockNodes(b)
		cur := a.inputs[b]
		for i := len(nodes) - 1; i >= 0; i-- {
			node := nodes[i]
			rep.after[node] = &TransferResult{Value: nil, regular: cur.RegularStore()}
			result, err := a.backwardFn.VisitNode(node, cur)
			if err != nil {
				panic(fmt.Errorf("dataflow: replaying backward transfer function for query failed: %w", err))
			}
			rep.before[node] = result.asTransferInput()
			cur = result.asTransferInput()
		}
	}

	a.replayCache[b] = rep
	return rep
}
