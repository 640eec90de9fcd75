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

package config

// This file hosts non-user-configurable parameters --- these are for development and testing purposes only.

// DefaultMaxCountBeforeWidening is the number of times a block may be merged into with
// LeastUpperBound before the solver switches to WidenedUpperBound for one round. Setting this too
// low can force premature, overly coarse widening; setting it too high defeats the point of
// widening (bounding analysis time over infinite-height lattices). A value around 3 has been
// sufficient for the client analyses this engine ships with.
const DefaultMaxCountBeforeWidening = 3

// DataflowNoAnalysisString is the string that may be inserted into the docstring for a package to
// prevent the deadassign checker from analyzing it — useful for generated code and test fixtures.
const DataflowNoAnalysisString = "<dataflow no analysis>"

const flowgraphPkgPathPrefix = "github.com/flowgraph"

// DataflowPkgPathPrefix is this module's own package prefix. No analyzer in this module filters
// packages by it.
const DataflowPkgPathPrefix = flowgraphPkgPathPrefix + "/dataflow"

// DirLevelsToPrintForDiagnostics controls the number of enclosing directories to print when
// referring to the locations that triggered a deadassign diagnostic.
const DirLevelsToPrintForDiagnostics = 1
