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
	"go/ast"
	"go/token"
	"go/types"

	"github.com/flowgraph/dataflow/dataflow"
	"github.com/flowgraph/dataflow/livevar"
)

// Node wraps a single ast.Node inside a dataflow block. It implements dataflow.Node,
// dataflow.TreeNode, and livevar.Node, so the same node serves both the engine's identity-keyed
// bookkeeping and the illustrative live-variable client's kill/read queries.
type Node struct {
	block dataflow.Block
	info  *types.Info
	n     ast.Node
}

// Block implements dataflow.Node.
func (n *Node) Block() dataflow.Block { return n.block }

// Tree implements dataflow.TreeNode: the syntax tree a Node is derived from is simply the
// ast.Node itself, which is already comparable by identity.
func (n *Node) Tree() dataflow.Tree { return n.n }

// AST returns the underlying syntax node, for clients (like deadassign) that need to report
// diagnostics at its source position.
func (n *Node) AST() ast.Node { return n.n }

// Kills implements livevar.Node: a simple assignment or increment/decrement statement to a single,
// non-blank identifier kills that variable. Anything else (compound assignment to an
// index/selector expression, multi-value assignment, a bare expression statement, a condition)
// does not kill a tracked variable.
func (n *Node) Kills() (livevar.Var, bool) {
	switch s := n.n.(type) {
	case *ast.AssignStmt:
		if len(s.Lhs) != 1 {
			return nil, false
		}
		return varOf(n.info, s.Lhs[0])
	case *ast.IncDecStmt:
		return varOf(n.info, s.X)
	default:
		return nil, false
	}
}

// Reads implements livevar.Node: every tracked variable referenced by this node's subtree, other
// than the one it kills as a simple destination. ast.Inspect naturally recurses through arbitrarily
// nested binary, unary, index, selector, type-assertion, and conversion expressions, so no
// operator needs special-casing here.
func (n *Node) Reads() []livevar.Var {
	seen := make(map[*types.Var]bool)
	var out []livevar.Var
	add := func(v *types.Var) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	switch s := n.n.(type) {
	case *ast.AssignStmt:
		simple := len(s.Lhs) == 1 && s.Tok != token.ADD_ASSIGN && s.Tok != token.SUB_ASSIGN &&
			s.Tok != token.MUL_ASSIGN && s.Tok != token.QUO_ASSIGN && s.Tok != token.REM_ASSIGN &&
			s.Tok != token.AND_ASSIGN && s.Tok != token.OR_ASSIGN && s.Tok != token.XOR_ASSIGN &&
			s.Tok != token.SHL_ASSIGN && s.Tok != token.SHR_ASSIGN && s.Tok != token.AND_NOT_ASSIGN
		if simple {
			if _, ok := s.Lhs[0].(*ast.Ident); ok {
				// A plain `x = ...` or `x := ...` to a bare identifier overwrites x outright: the
				// destination is killed, not read.
			} else {
				// A destination like `a[i] = ...` or `p.f = ...` still reads whatever it indexes
				// into or selects through.
				collectVars(n.info, s.Lhs[0], add)
			}
		} else {
			// Either a compound assignment (`x += 1`, which reads x's prior value before
			// overwriting it) or a multi-value assignment — in both cases every LHS expression is
			// a read.
			for _, lhs := range s.Lhs {
				collectVars(n.info, lhs, add)
			}
		}
		for _, rhs := range s.Rhs {
			collectVars(n.info, rhs, add)
		}
	case *ast.IncDecStmt:
		// x++ reads the prior value of x before killing it.
		collectVars(n.info, s.X, add)
	default:
		collectVars(n.info, n.n, add)
	}

	return out
}

// varOf resolves expr to the *types.Var it denotes, if expr is a single non-blank identifier bound
// to a variable.
func varOf(info *types.Info, expr ast.Expr) (*types.Var, bool) {
	ident, ok := expr.(*ast.Ident)
	if !ok || ident.Name == "_" {
		return nil, false
	}
	obj := info.ObjectOf(ident)
	v, ok := obj.(*types.Var)
	return v, ok
}

// collectVars walks node's subtree (which may be a single expression or an entire statement),
// adding every *types.Var it finds referenced via an identifier.
func collectVars(info *types.Info, node ast.Node, add func(*types.Var)) {
	ast.Inspect(node, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		if v, ok := info.ObjectOf(ident).(*types.Var); ok {
			add(v)
		}
		return true
	})
}
