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

// Package livevar implements live-variable analysis as an illustrative client of the dataflow
// engine: a backward analysis whose store is the set of variables that may be read before their
// next write, following the classic "kill the assigned variable, then gen every variable read"
// transfer rule. It exists to exercise every collaborator contract (dataflow.BackwardTransferFunction,
// dataflow.Store, dataflow.AbstractValue) concretely and is deliberately kept independent of any
// particular CFG provider: callers supply nodes satisfying the small Node interface below, whether
// produced by package sourcecfg or by a hand-built test fixture.
package livevar
