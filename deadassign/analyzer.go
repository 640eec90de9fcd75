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

package deadassign

import (
	"fmt"
	"go/ast"
	"go/types"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"

	"github.com/flowgraph/dataflow/config"
	"github.com/flowgraph/dataflow/dataflow"
	"github.com/flowgraph/dataflow/livevar"
	"github.com/flowgraph/dataflow/sourcecfg"
	"github.com/flowgraph/dataflow/util/analysishelper"
	"github.com/flowgraph/dataflow/util/asthelper"
)

const _doc = "Report assignments whose value is never read along any path before being " +
	"overwritten or going out of scope"

// Analyzer reports dead assignments. It requires ctrlflow.Analyzer so it never constructs a
// function's golang.org/x/tools/go/cfg.CFG more than once per pass: ctrlflow.Analyzer builds (and
// caches) one for every function declaration in the package as part of its own analysis, and
// sourcecfg.BuildFromCFG adapts that existing graph rather than asking golang.org/x/tools/go/cfg to
// build a second one.
var Analyzer = &analysis.Analyzer{
	Name:       "deadassign",
	Doc:        _doc,
	Run:        analysishelper.WrapRun(run),
	ResultType: reflect.TypeOf((*analysishelper.Result[any])(nil)),
	Requires:   []*analysis.Analyzer{config.Analyzer, ctrlflow.Analyzer},
}

func run(p *analysis.Pass) (any, error) {
	pass := analysishelper.NewEnhancedPass(p)
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	cfgs := pass.ResultOf[ctrlflow.Analyzer].(*ctrlflow.CFGs)

	for _, file := range pass.Files {
		if asthelper.DocContains(file.Doc, config.DataflowNoAnalysisString) {
			return nil, nil
		}
	}

	var decls []*ast.FuncDecl
	for _, file := range pass.Files {
		for _, d := range file.Decls {
			if decl, ok := d.(*ast.FuncDecl); ok && decl.Body != nil {
				decls = append(decls, decl)
			}
		}
	}

	// Each function declaration gets its own independent dataflow.Analyzer instance, so analyzing
	// them concurrently is safe: nothing is shared except the read-only pass.TypesInfo and the
	// mutex-guarded reporting below.
	var mu sync.Mutex
	var grp errgroup.Group
	for _, decl := range decls {
		grp.Go(func() error {
			g := cfgs.FuncDecl(decl)
			if g == nil {
				return nil
			}
			graph, err := sourcecfg.BuildFromCFG(pass.Fset, pass.TypesInfo, decl, g)
			if err != nil {
				// Not every function declaration sourcecfg can adapt is worth failing the whole
				// pass over (e.g. a function whose go/cfg came back with a shape this adapter
				// doesn't expect); skip it and keep analyzing the rest of the package.
				return nil
			}
			analyzer := livevar.NewAnalyzer(conf.MaxCountBeforeWidening)
			if err := analyzer.PerformAnalysis(graph); err != nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			reportDeadAssignments(pass, conf, graph, analyzer.Result())
			return nil
		})
	}
	_ = grp.Wait() // every goroutine above already swallows its own error; nothing left to join.

	return nil, nil
}

// reportDeadAssignments walks every node in graph that kills a tracked variable (see
// sourcecfg.Node.Kills) and reports it if that variable is not live in the store flowing out of the
// node — i.e. no path forward from here reads it before it is next written or the unit exits.
func reportDeadAssignments(pass *analysishelper.EnhancedPass, conf *config.Config, graph *dataflow.ControlFlowGraph, result *dataflow.AnalysisResult) {
	for _, b := range graph.Blocks() {
		rb, ok := b.(*dataflow.RegularBlock)
		if !ok {
			continue
		}
		for _, n := range rb.Nodes {
			sn, ok := n.(*sourcecfg.Node)
			if !ok {
				continue
			}
			v, ok := sn.Kills()
			if !ok {
				continue
			}
			store, ok := result.GetStoreAfter(sn).(*livevar.Store)
			if !ok || store.Has(v) {
				continue
			}
			reportDead(pass, conf, sn, v)
		}
	}
}

func reportDead(pass *analysishelper.EnhancedPass, conf *config.Config, sn *sourcecfg.Node, v livevar.Var) {
	tv, ok := v.(*types.Var)
	if !ok {
		return
	}

	expr := assignedExpr(sn.AST())
	msg := fmt.Sprintf("value assigned to %s is never used", tv.Name())
	if expr != nil && pass.ExprIsAuthentic(expr) {
		msg = fmt.Sprintf("value %s assigned to %s is never used", asthelper.PrintExpr(expr, pass.Pass, conf.PrettyPrint), tv.Name())
	}
	if decl := tv.Pos(); decl.IsValid() {
		declPos := pass.PosToLocation(decl)
		msg = fmt.Sprintf("%s (%s declared at %s:%d)", msg, tv.Name(), declPos.Filename, declPos.Line)
	}
	pass.Reportf(sn.AST().Pos(), "%s", msg)
}

// assignedExpr returns the single right-hand-side expression of node, if node is a single-value
// assignment statement.
func assignedExpr(node ast.Node) ast.Expr {
	assign, ok := node.(*ast.AssignStmt)
	if !ok || len(assign.Rhs) != 1 {
		return nil
	}
	return assign.Rhs[0]
}
