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

// Package deadassign implements a go/analysis.Analyzer that reports assignments whose value is
// never read afterward along any path, using the dataflow engine's backward solver driven by the
// livevar package's live-variable lattice over a sourcecfg-built control-flow graph for each
// function declaration in the package under analysis.
package deadassign
