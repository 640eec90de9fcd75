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

package sourcecfg

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	xcfg "golang.org/x/tools/go/cfg"

	"github.com/flowgraph/dataflow/dataflow"
)

// mayReturn conservatively assumes every call may return normally. golang.org/x/tools/go/cfg uses
// this to decide whether code following a call is reachable; refining it (e.g. special-casing
// os.Exit, log.Fatal) would shrink the graph but risks dropping reachable blocks if the recognized
// name is shadowed, so this adapter stays conservative.
func mayReturn(*ast.CallExpr) bool { return true }

// Build adapts decl's body into a dataflow.ControlFlowGraph, constructing the underlying
// golang.org/x/tools/go/cfg.CFG itself. info must be the *types.Info produced by type-checking the
// package decl belongs to (Uses and Defs populated at minimum), so that Node's Kills/Reads can
// resolve identifiers to their *types.Var.
//
// The resulting graph never contains a dataflow.ExceptionBlock or a non-nil ExceptionalExit: see
// the package doc comment for why.
func Build(fset *token.FileSet, info *types.Info, decl *ast.FuncDecl) (*dataflow.ControlFlowGraph, error) {
	if decl.Body == nil {
		return nil, fmt.Errorf("sourcecfg: %s has no body (external or interface method)", decl.Name)
	}
	return BuildFromCFG(fset, info, decl, xcfg.New(decl.Body, mayReturn))
}

// BuildFromCFG is Build, but takes an already-constructed golang.org/x/tools/go/cfg.CFG rather than
// building one from decl.Body itself. Callers that already have one on hand — e.g. an analyzer that
// requires golang.org/x/tools/go/analysis/passes/ctrlflow and looks it up via
// (*ctrlflow.CFGs).FuncDecl(decl) — should prefer this over Build, to avoid constructing the same
// function's CFG twice in one pass.
func BuildFromCFG(fset *token.FileSet, info *types.Info, decl *ast.FuncDecl, g *xcfg.CFG) (*dataflow.ControlFlowGraph, error) {
	if len(g.Blocks) == 0 {
		return nil, fmt.Errorf("sourcecfg: %s produced an empty control-flow graph", decl.Name)
	}

	exit := &dataflow.SpecialBlock{SpecialKind: dataflow.RegularExitBlock}

	// blockOf maps each go/cfg block to the dataflow.Block external predecessors should link to:
	// for a two-successor (conditional) block, this is the RegularBlock that runs the condition
	// expression's own nodes, NOT the ConditionalBlock doing the split — the split is reached via
	// that RegularBlock's Successor and is never itself a predecessor target. Building this map
	// before wiring any successor fields (rather than swapping entries in place afterward) is what
	// keeps every forward reference valid: nothing is ever redirected mid-construction.
	blockOf := make(map[*xcfg.Block]dataflow.Block, len(g.Blocks))
	splitOf := make(map[*xcfg.Block]*dataflow.ConditionalBlock)

	for _, b := range g.Blocks {
		if len(b.Succs) == 2 {
			split := &dataflow.ConditionalBlock{ThenFlowRule: dataflow.EachToEach, ElseFlowRule: dataflow.EachToEach}
			blockOf[b] = &dataflow.RegularBlock{Successor: split, FlowRule: dataflow.EachToEach}
			splitOf[b] = split
		} else {
			blockOf[b] = &dataflow.RegularBlock{FlowRule: dataflow.EachToEach}
		}
	}

	allBlocks := []dataflow.Block{exit}
	var returnNodes []dataflow.Node

	for _, b := range g.Blocks {
		head := blockOf[b].(*dataflow.RegularBlock)

		nodes := make([]dataflow.Node, 0, len(b.Nodes))
		for _, astNode := range b.Nodes {
			sn := &Node{block: head, info: info, n: astNode}
			nodes = append(nodes, sn)
			if _, ok := astNode.(*ast.ReturnStmt); ok {
				returnNodes = append(returnNodes, sn)
			}
		}
		head.Nodes = nodes
		allBlocks = append(allBlocks, head)

		switch len(b.Succs) {
		case 0:
			head.Successor = exit
		case 1:
			head.Successor = blockOf[b.Succs[0]]
		case 2:
			split := splitOf[b]
			split.Then = blockOf[b.Succs[0]]
			split.Else = blockOf[b.Succs[1]]
			allBlocks = append(allBlocks, split)
		default:
			return nil, fmt.Errorf("sourcecfg: block has %d successors, want 0, 1, or 2", len(b.Succs))
		}
	}

	// go/cfg's first block is always the function's entry block.
	entryBody := blockOf[g.Blocks[0]]
	entry := &dataflow.SpecialBlock{SpecialKind: dataflow.EntryBlock, Successor: entryBody}
	allBlocks = append(allBlocks, entry)

	// A RegularBlock produced above with zero nodes (possible for an empty branch of a CFG, e.g. an
	// `if` with no else) is not allowed by the engine's "non-empty nodes" contract for RegularBlock;
	// splice such blocks out by repointing every predecessor straight at the empty block's own
	// successor. This must run after every block's Successor/Then/Else has been assigned above.
	allBlocks = elideEmptyBlocks(allBlocks)

	params := parametersOf(decl)

	return dataflow.NewControlFlowGraph(entry, exit, nil, allBlocks, returnNodes, dataflow.MethodUnit, params), nil
}

// elideEmptyBlocks removes every zero-node RegularBlock from blocks, repointing any block, split, or
// the entry block that pointed at it to point directly at its own Successor instead. A RegularBlock
// is only ever a predecessor target (never reachable from more than the predecessors computed here),
// so a single rewrite pass over every block's outgoing edges suffices.
func elideEmptyBlocks(blocks []dataflow.Block) []dataflow.Block {
	redirect := func(b dataflow.Block) dataflow.Block {
		for {
			rb, ok := b.(*dataflow.RegularBlock)
			if !ok || len(rb.Nodes) > 0 {
				return b
			}
			b = rb.Successor
		}
	}

	out := make([]dataflow.Block, 0, len(blocks))
	for _, b := range blocks {
		switch blk := b.(type) {
		case *dataflow.RegularBlock:
			if len(blk.Nodes) == 0 {
				continue
			}
			blk.Successor = redirect(blk.Successor)
		case *dataflow.ConditionalBlock:
			blk.Then = redirect(blk.Then)
			blk.Else = redirect(blk.Else)
		case *dataflow.SpecialBlock:
			if blk.Successor != nil {
				blk.Successor = redirect(blk.Successor)
			}
		}
		out = append(out, b)
	}
	return out
}

// parametersOf builds a dataflow.Parameter for each formal parameter of decl, using
// the field's own *ast.Ident as its Tree (stable across the lifetime of the parsed file, and
// distinct per parameter even when several share one *ast.Field via a combined type, e.g. `a, b
// int`).
func parametersOf(decl *ast.FuncDecl) []dataflow.Parameter {
	if decl.Type.Params == nil {
		return nil
	}
	var params []dataflow.Parameter
	for _, field := range decl.Type.Params.List {
		if len(field.Names) == 0 {
			params = append(params, dataflow.Parameter{Tree: field})
			continue
		}
		for _, name := range field.Names {
			params = append(params, dataflow.Parameter{Name: name.Name, Tree: name})
		}
	}
	return params
}
