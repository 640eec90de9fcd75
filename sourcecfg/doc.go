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

// Package sourcecfg adapts a real Go function body (golang.org/x/tools/go/cfg, built from
// go/ast and go/types) into the engine's own dataflow.ControlFlowGraph/Block/Node model. This is
// the concrete CFG provider the core dataflow package deliberately leaves out of scope: building a
// control-flow graph from source is a parsing/typing concern, not a fixed-point-solver concern.
//
// golang.org/x/tools/go/cfg has no notion of exceptional control flow — Go has no checked
// exceptions — so this adapter only ever produces dataflow.RegularBlock, dataflow.ConditionalBlock
// and dataflow.SpecialBlock; dataflow.ExceptionBlock is exercised only by hand-built or
// synthetic-provider CFGs (see dataflow's own tests).
package sourcecfg
