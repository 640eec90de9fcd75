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

package livevar

import (
	"fmt"

	"github.com/flowgraph/dataflow/dataflow"
)

// TransferFunction implements dataflow.BackwardTransferFunction for live-variable analysis: kill
// the variable a node assigns (it is no longer live above the assignment, since this write
// overwrites whatever was there), then gen every variable the node reads (it must have been live
// just before the node ran, since the node is about to consume its value).
type TransferFunction struct{}

// VisitNode implements dataflow.BackwardTransferFunction.
func (TransferFunction) VisitNode(node dataflow.Node, input *dataflow.TransferInput) (*dataflow.TransferResult, error) {
	n, ok := node.(Node)
	if !ok {
		return nil, fmt.Errorf("livevar: node %v does not implement livevar.Node", node)
	}

	store := input.RegularStore().Copy().(*Store)
	if v, ok := n.Kills(); ok {
		store.kill(v)
	}
	for _, v := range n.Reads() {
		store.add(v)
	}

	return dataflow.RegularTransferResult(nil, store), nil
}

// InitialNormalExitStore implements dataflow.BackwardTransferFunction: nothing is live once
// control falls off the end of the unit.
func (TransferFunction) InitialNormalExitStore(*dataflow.ControlFlowGraph) dataflow.Store {
	return NewStore()
}

// InitialExceptionalExitStore implements dataflow.BackwardTransferFunction: nothing is live once
// control leaves the unit via an exception, either (live-variable analysis does not track what the
// exception value itself "reads").
func (TransferFunction) InitialExceptionalExitStore(*dataflow.ControlFlowGraph) dataflow.Store {
	return NewStore()
}

// NewAnalyzer constructs a dataflow.Analyzer configured to run live-variable analysis backward
// over a CFG. maxCountBeforeWidening is forwarded to dataflow.NewBackwardAnalyzer unchanged (see
// config.Config.MaxCountBeforeWidening); pass dataflow.NeverWiden to disable widening outright,
// which is sound here since the live-variable lattice (a set over a function's own finite universe
// of variables) has finite height and never actually needs it, but callers driven by
// config.Config's own flag pass along whatever threshold the user configured regardless.
func NewAnalyzer(maxCountBeforeWidening int) *dataflow.Analyzer {
	return dataflow.NewBackwardAnalyzer(TransferFunction{}, maxCountBeforeWidening)
}
