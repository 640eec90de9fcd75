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

// Package dataflow implements a generic, worklist-based fixed-point dataflow analysis engine over
// a control-flow graph of basic blocks. It is deliberately independent of any particular source
// language: CFG construction, AST/node taxonomies, and type resolution are the responsibility of
// callers (see the sourcecfg package for a concrete provider backed by go/ast and go/types).
//
// A client supplies a ControlFlowGraph, an AbstractValue/Store lattice, and a transfer function
// (ForwardTransferFunction or BackwardTransferFunction), then drives the fixed point with an
// Analyzer. Once PerformAnalysis returns, Result yields an AnalysisResult that answers
// store-before/after queries by replaying the transfer function on demand.
package dataflow
