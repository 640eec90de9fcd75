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

// TransferInput is the store (or pair of stores) handed to a transfer function when it is asked
// to process a node. It is either a single regular store, or a split then/else pair produced by
// propagation across a conditional edge.
//
// TransferInput carries a back-reference to the Analyzer that produced it so the query layer
// (AnalysisResult) can replay the transfer function later; the reference is a handle for that
// purpose only; TransferInput never owns the Analyzer and never mutates it outside of a replay
// that the Analyzer itself initiated.
type TransferInput struct {
	split              bool
	regular            Store
	thenStore, elseStore Store
	analyzer           *Analyzer
}

// NewTransferInput constructs a regular (non-split) TransferInput wrapping store.
func NewTransferInput(store Store) *TransferInput {
	return &TransferInput{regular: store}
}

// NewConditionalTransferInput constructs a split TransferInput from separate then/else stores.
func NewConditionalTransferInput(thenStore, elseStore Store) *TransferInput {
	return &TransferInput{split: true, thenStore: thenStore, elseStore: elseStore}
}

// IsTwoStores reports whether this input carries a split then/else pair rather than one regular
// store.
func (in *TransferInput) IsTwoStores() bool { return in.split }

// RegularStore returns the input's store. If the input is split, it returns the least upper bound
// of the then and else stores (computed fresh on each call, not cached, since TransferInput values
// are expected to be short-lived).
func (in *TransferInput) RegularStore() Store {
	if !in.split {
		return in.regular
	}
	return in.thenStore.LeastUpperBound(in.elseStore)
}

// ThenStore returns the "then" branch store. If the input is regular (not split), it returns the
// single regular store.
func (in *TransferInput) ThenStore() Store {
	if in.split {
		return in.thenStore
	}
	return in.regular
}

// ElseStore returns the "else" branch store. If the input is regular (not split), it returns the
// single regular store.
func (in *TransferInput) ElseStore() Store {
	if in.split {
		return in.elseStore
	}
	return in.regular
}

// Copy deep-copies the store(s) contained in this input and returns a new TransferInput wrapping
// the copies; the analyzer back-reference, if any, is preserved.
func (in *TransferInput) Copy() *TransferInput {
	out := &TransferInput{split: in.split, analyzer: in.analyzer}
	if in.split {
		out.thenStore = in.thenStore.Copy()
		out.elseStore = in.elseStore.Copy()
	} else {
		out.regular = in.regular.Copy()
	}
	return out
}

// TransferResult is what a transfer function returns after processing a single node: the node's
// abstract value (if it produced one), its outgoing store(s), and any per-exception-cause stores
// for exception blocks.
type TransferResult struct {
	// Value is the abstract value computed for the node, or nil if the node is not an
	// expression or the transfer function has nothing to say about its value.
	Value AbstractValue

	split                bool
	regular              Store
	thenStore, elseStore Store

	// ExceptionalStores maps exception cause tag to the store that should propagate along the
	// corresponding exceptional edge(s) of an ExceptionBlock. It may be nil or incomplete: any
	// cause tag absent from this map falls back to a fresh copy of the block's input regular
	// store (the exception may have been raised before the node had any effect).
	ExceptionalStores map[ExceptionTag]Store

	// StoreChanged is set by a transfer function that mutated (rather than replaced) its input
	// store in place, purely informational for callers that want to detect that distinction; the
	// engine itself does not depend on it.
	StoreChanged bool
}

// RegularTransferResult builds a TransferResult with a single regular outgoing store.
func RegularTransferResult(value AbstractValue, store Store) *TransferResult {
	return &TransferResult{Value: value, regular: store}
}

// ConditionalTransferResult builds a TransferResult with a split then/else outgoing store pair,
// as produced when processing the node of a block feeding a ConditionalBlock.
func ConditionalTransferResult(value AbstractValue, thenStore, elseStore Store) *TransferResult {
	return &TransferResult{Value: value, split: true, thenStore: thenStore, elseStore: elseStore}
}

// WithExceptions attaches per-exception-cause stores to a TransferResult and returns it, for
// chaining at the construction site.
func (r *TransferResult) WithExceptions(stores map[ExceptionTag]Store) *TransferResult {
	r.ExceptionalStores = stores
	return r
}

// IsTwoStores reports whether this result carries a split then/else pair.
func (r *TransferResult) IsTwoStores() bool { return r.split }

// RegularStore returns the result's store, taking the least upper bound of the then/else pair if
// split.
func (r *TransferResult) RegularStore() Store {
	if !r.split {
		return r.regular
	}
	return r.thenStore.LeastUpperBound(r.elseStore)
}

// ThenStore returns the result's "then" store (the regular store, if not split).
func (r *TransferResult) ThenStore() Store {
	if r.split {
		return r.thenStore
	}
	return r.regular
}

// ElseStore returns the result's "else" store (the regular store, if not split).
func (r *TransferResult) ElseStore() Store {
	if r.split {
		return r.elseStore
	}
	return r.regular
}

// asTransferInput adapts this result's store(s) into a TransferInput, e.g. to seed processing of
// the next node in a regular block.
func (r *TransferResult) asTransferInput() *TransferInput {
	if r.split {
		return NewConditionalTransferInput(r.thenStore, r.elseStore)
	}
	return NewTransferInput(r.regular)
}

// ForwardTransferFunction is the visitor a client implements to drive a forward analysis. VisitNode
// is dispatched once per node, in the order Worklist/Analyzer determines; it must discriminate on
// the dynamic type of node itself (the engine never does).
type ForwardTransferFunction interface {
	// VisitNode processes a single node given the store(s) flowing into it, returning its value
	// (if any) and outgoing store(s).
	VisitNode(node Node, input *TransferInput) (*TransferResult, error)

	// InitialStore returns the store to seed the CFG's entry block with, given the unit's kind
	// and (for methods/lambdas) its formal parameters.
	InitialStore(cfg *ControlFlowGraph) Store
}

// BackwardTransferFunction is the visitor a client implements to drive a backward analysis.
type BackwardTransferFunction interface {
	// VisitNode processes a single node given the store flowing into it, returning its value
	// (if any) and outgoing store. The Analyzer accepts only a RegularTransferResult here: a
	// split result panics, and flow rules are not consulted in a backward analysis.
	VisitNode(node Node, input *TransferInput) (*TransferResult, error)

	// InitialNormalExitStore returns the store to seed the CFG's regular-exit block with.
	InitialNormalExitStore(cfg *ControlFlowGraph) Store

	// InitialExceptionalExitStore returns the store to seed the CFG's exceptional-exit block
	// with.
	InitialExceptionalExitStore(cfg *ControlFlowGraph) Store
}
