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

import "container/heap"

// direction picks which depth-first numbering a Worklist orders blocks by.
type direction int

const (
	forward direction = iota
	backward
)

// Worklist is a priority queue of blocks ordered by depth-first numbering (reverse postorder for
// a forward analysis, postorder for a backward one) with set semantics: a block is never present
// more than once. Processing blocks in this order minimizes the number of times a block is
// revisited before its inputs stabilize.
type Worklist struct {
	order   map[Block]int
	present map[Block]bool
	items   blockHeap
}

// NewWorklist computes a depth-first order over every block reachable from cfg's entry (for a
// forward analysis) or from cfg's exits (for a backward analysis), and returns an empty Worklist
// ready to have blocks Added to it.
func NewWorklist(cfg *ControlFlowGraph, dir direction) *Worklist {
	w := &Worklist{
		order:   make(map[Block]int),
		present: make(map[Block]bool),
	}
	switch dir {
	case forward:
		w.numberReversePostorder(cfg)
	case backward:
		w.numberPostorder(cfg)
	}
	return w
}

// numberReversePostorder assigns increasing order numbers in reverse-postorder starting from the
// CFG's entry block, by successor edges (the direction control flow actually runs).
func (w *Worklist) numberReversePostorder(cfg *ControlFlowGraph) {
	var postorder []Block
	visited := make(map[Block]bool)
	var visit func(Block)
	visit = func(b Block) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, s := range successors(b) {
			visit(s)
		}
		postorder = append(postorder, b)
	}
	visit(cfg.Entry())
	n := len(postorder)
	for i, b := range postorder {
		w.order[b] = n - 1 - i
	}
}

// numberPostorder assigns increasing order numbers in postorder starting from the CFG's exits, by
// predecessor edges (the direction a backward analysis runs).
func (w *Worklist) numberPostorder(cfg *ControlFlowGraph) {
	visited := make(map[Block]bool)
	next := 0
	var visit func(Block)
	visit = func(b Block) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, p := range cfg.Predecessors(b) {
			visit(p)
		}
		w.order[b] = next
		next++
	}
	if cfg.RegularExit() != nil {
		visit(cfg.RegularExit())
	}
	if cfg.ExceptionalExit() != nil {
		visit(cfg.ExceptionalExit())
	}
}

// Add enqueues b if it is not already present, returning true iff it was added. Blocks with no
// recorded depth-first number (unreachable in the direction this Worklist was built for) are
// assigned an order number lazily, placed after every reachable block, so they still get
// processed if something enqueues them explicitly.
func (w *Worklist) Add(b Block) bool {
	if w.present[b] {
		return false
	}
	if _, ok := w.order[b]; !ok {
		w.order[b] = len(w.order)
	}
	w.present[b] = true
	heap.Push(&w.items, blockItem{block: b, order: w.order[b]})
	return true
}

// Poll removes and returns the lowest-order block in the worklist. The second return value is
// false if the worklist is empty.
func (w *Worklist) Poll() (Block, bool) {
	if w.items.Len() == 0 {
		return nil, false
	}
	item := heap.Pop(&w.items).(blockItem)
	delete(w.present, item.block)
	return item.block, true
}

// Empty reports whether the worklist has no pending blocks.
func (w *Worklist) Empty() bool { return w.items.Len() == 0 }

type blockItem struct {
	block Block
	order int
}

// blockHeap is a container/heap.Interface over blockItem ordered by ascending order number.
type blockHeap []blockItem

func (h blockHeap) Len() int            { return len(h) }
func (h blockHeap) Less(i, j int) bool  { return h[i].order < h[j].order }
func (h blockHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *blockHeap) Push(x any)         { *h = append(*h, x.(blockItem)) }
func (h *blockHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
