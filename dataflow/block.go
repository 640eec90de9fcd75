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

// Node is an opaque, tagged value produced by CFG construction. The engine never inspects a
// node's contents beyond its identity and the block that contains it; discriminating node
// variants is entirely the transfer function's job. Concrete Node implementations are expected to
// be reference types (pointers) so that Node values can be used directly as identity-keyed map
// keys, per the identity-keyed-maps design note: CFG construction can legitimately duplicate nodes
// (e.g. for a cloned `finally` block) that are structurally equal but semantically distinct.
type Node interface {
	// Block returns the block that contains this node.
	Block() Block
}

// Tree is an opaque handle to the source-level syntax tree a Node was derived from. Several nodes
// may share one Tree (e.g. both operands of a binary expression still belong to the enclosing
// statement as far as tree-level queries are concerned). Like Node, concrete Tree values are
// expected to support identity comparison (==) and are used as map keys.
type Tree any

// BlockKind discriminates the four block shapes the engine understands.
type BlockKind int

const (
	// RegularKind blocks hold an ordered, non-empty sequence of nodes and have exactly one
	// successor reached via a single flow rule.
	RegularKind BlockKind = iota
	// ConditionalKind blocks hold no nodes and split control into a "then" and an "else"
	// successor, each reached via its own flow rule.
	ConditionalKind
	// ExceptionKind blocks hold exactly one node, have one normal successor, and a mapping from
	// exception-cause tag to a set of exceptional successors.
	ExceptionKind
	// SpecialKind blocks hold no nodes and represent the entry, regular-exit, or
	// exceptional-exit of the CFG.
	SpecialKind
)

// String renders a BlockKind for diagnostics.
func (k BlockKind) String() string {
	switch k {
	case RegularKind:
		return "regular"
	case ConditionalKind:
		return "conditional"
	case ExceptionKind:
		return "exception"
	case SpecialKind:
		return "special"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// SpecialBlockKind discriminates the three subtypes of a SpecialBlock.
type SpecialBlockKind int

const (
	// EntryBlock is the unique entry point of a CFG; it has one successor and no predecessors.
	EntryBlock SpecialBlockKind = iota
	// RegularExitBlock is the unique normal exit of a CFG; it has no successors.
	RegularExitBlock
	// ExceptionalExitBlock is the unique exceptional exit of a CFG; it has no successors.
	ExceptionalExitBlock
)

// String renders a SpecialBlockKind for diagnostics.
func (k SpecialBlockKind) String() string {
	switch k {
	case EntryBlock:
		return "entry"
	case RegularExitBlock:
		return "regular-exit"
	case ExceptionalExitBlock:
		return "exceptional-exit"
	default:
		return fmt.Sprintf("SpecialBlockKind(%d)", int(k))
	}
}

// ExceptionTag identifies the cause of an exceptional edge out of an ExceptionBlock (e.g., a
// panic type, or a sentinel for "any error"). It must be comparable, since it is used as a map
// key in ExceptionBlock.Exceptional.
type ExceptionTag any

// Block is the common interface satisfied by RegularBlock, ConditionalBlock, ExceptionBlock, and
// SpecialBlock. Concrete blocks are reference types (pointers); a Block value's identity is its
// pointer identity, used directly as a map key throughout the engine (per-block store maps,
// worklist membership, visit counters).
type Block interface {
	// Kind reports which of the four block shapes this is.
	Kind() BlockKind
}

// RegularBlock is an ordered, non-empty sequence of nodes with a single successor.
type RegularBlock struct {
	// Nodes is the ordered sequence of nodes in this block. Must be non-empty.
	Nodes []Node
	// Successor is the unique successor block.
	Successor Block
	// FlowRule governs how this block's outgoing store is split across Successor.
	FlowRule FlowRule
}

// Kind implements Block.
func (*RegularBlock) Kind() BlockKind { return RegularKind }

// ConditionalBlock holds no nodes and has a "then" and "else" successor, each governed by its own
// flow rule.
type ConditionalBlock struct {
	Then, Else             Block
	ThenFlowRule, ElseFlowRule FlowRule
}

// Kind implements Block.
func (*ConditionalBlock) Kind() BlockKind { return ConditionalKind }

// ExceptionBlock holds exactly one node that may either complete normally (falling through to
// Successor via FlowRule) or raise one of several tagged exceptions (each routed to the
// corresponding set of blocks in Exceptional).
type ExceptionBlock struct {
	Node        Node
	Successor   Block
	FlowRule    FlowRule
	Exceptional map[ExceptionTag][]Block
}

// Kind implements Block.
func (*ExceptionBlock) Kind() BlockKind { return ExceptionKind }

// SpecialBlock holds no nodes and represents one of the CFG's fixed entry/exit points. Successor
// is set for EntryBlock and nil for RegularExitBlock/ExceptionalExitBlock.
type SpecialBlock struct {
	SpecialKind SpecialBlockKind
	Successor   Block
}

// Kind implements Block.
func (*SpecialBlock) Kind() BlockKind { return SpecialKind }

// successors returns every block kind's outgoing edges, flattened (normal and exceptional alike),
// in a fixed but otherwise unspecified order. It is used to precompute the predecessor index at
// CFG construction time and the depth-first orderings when a worklist is created.
func successors(b Block) []Block {
	switch b := b.(type) {
	case *RegularBlock:
		if b.Successor == nil {
			return nil
		}
		return []Block{b.Successor}
	case *ConditionalBlock:
		var out []Block
		if b.Then != nil {
			out = append(out, b.Then)
		}
		if b.Else != nil {
			out = append(out, b.Else)
		}
		return out
	case *ExceptionBlock:
		out := []Block{}
		if b.Successor != nil {
			out = append(out, b.Successor)
		}
		for _, targets := range b.Exceptional {
			out = append(out, targets...)
		}
		return out
	case *SpecialBlock:
		if b.Successor == nil {
			return nil
		}
		return []Block{b.Successor}
	default:
		panic(fmt.Sprintf("dataflow: unknown block kind in dispatch on successors: %T", b))
	}
}
