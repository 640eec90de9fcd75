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

// Package visualize renders a completed analysis as a Graphviz dot graph, with each block's
// converged store (per dataflow.Store.Visualize) embedded as a node label, and supports persisting
// a snapshot of that rendering to disk in a compact, gob-encoded, s2-compressed form for later
// inspection without re-running the analysis.
package visualize
