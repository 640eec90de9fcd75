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

import "github.com/flowgraph/dataflow/dataflow"

// Var identifies a single tracked variable. It must be comparable, since it is used as a set
// element; a CFG provider backed by go/types would typically use a *types.Var here.
type Var any

// Node is the contract a dataflow.Node must satisfy to be processed by this package's
// TransferFunction. A provider's CFG construction is responsible for computing, for each node,
// which variable (if any) it assigns and which variables it reads — including recursing through
// the arbitrarily nested binary, unary, ternary, type-assertion, and type-conversion expressions
// that can appear on either side of an assignment. The engine itself never performs this
// recursion; it only ever calls Kills and Reads on whatever Node it is handed.
type Node interface {
	dataflow.Node

	// Kills returns the variable this node assigns, and true, or the zero Var and false if this
	// node does not assign a tracked variable (e.g. a bare expression statement, a condition, a
	// call with no tracked-variable receiver).
	Kills() (Var, bool)

	// Reads returns every tracked variable this node reads to compute its effect — for an
	// assignment, every variable appearing in the right-hand side (and, for something like
	// `a[i] = v`, the index expression `i` as well, since `a` is not fully overwritten).
	Reads() []Var
}
