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

package dataflow

import "fmt"

// FlowRule governs what a successor block receives when control leaves a block carrying a
// TransferInput. When the incoming input is split into then/else stores, the five rules differ in
// how they distribute those stores across the successor's then/else stores; when the incoming
// input is a single regular store, all five rules degenerate to sending that one store to
// whichever successor side(s) the rule names.
//
// Backward analyses do not consult flow rules: a block's single store is sent to every
// predecessor, and a split transfer result in a backward analysis panics (see backwardVisitBlock).
type FlowRule int

const (
	// EachToEach sends "then" to the successor's "then" and "else" to the successor's "else". For
	// a regular (non-split) input, the single store is sent to both sides.
	EachToEach FlowRule = iota
	// ThenToBoth sends the "then" store of the input to both the "then" and "else" store of the
	// successor. For a regular input, behaves like EachToEach.
	ThenToBoth
	// ElseToBoth sends the "else" store of the input to both the "then" and "else" store of the
	// successor. For a regular input, behaves like EachToEach.
	ElseToBoth
	// ThenToThen sends the "then" store of the input to the successor's "then" store only,
	// leaving the successor's "else" store untouched. For a regular input, the store is sent only
	// to the successor's "then" side.
	ThenToThen
	// ElseToElse sends the "else" store of the input to the successor's "else" store only,
	// leaving the successor's "then" store untouched. For a regular input, the store is sent only
	// to the successor's "else" side.
	ElseToElse
)

// String renders a FlowRule for diagnostics.
func (r FlowRule) String() string {
	switch r {
	case EachToEach:
		return "EACH_TO_EACH"
	case ThenToBoth:
		return "THEN_TO_BOTH"
	case ElseToBoth:
		return "ELSE_TO_BOTH"
	case ThenToThen:
		return "THEN_TO_THEN"
	case ElseToElse:
		return "ELSE_TO_ELSE"
	default:
		return fmt.Sprintf("FlowRule(%d)", int(r))
	}
}

// mergeKind is the shape of update a flow rule is asking a successor to apply: plant the store on
// the then side only, the else side only, or both.
type mergeKind int

const (
	mergeThen mergeKind = iota
	mergeElse
	mergeBoth
)

// apply decides, given this flow rule and whether the propagated input was split, which kind(s)
// of merge(s) should happen at the successor and with which store(s). It returns a slice of
// (store, mergeKind) pairs because THEN_TO_BOTH style rules with a split input still only
// contribute one source store even though it lands on both successor sides, whereas EACH_TO_EACH
// with a split input contributes two independent source stores.
func (r FlowRule) apply(in *TransferInput) []struct {
	store Store
	kind  mergeKind
} {
	type pair = struct {
		store Store
		kind  mergeKind
	}
	if !in.split {
		switch r {
		case ThenToThen:
			return []pair{{in.regular, mergeThen}}
		case ElseToElse:
			return []pair{{in.regular, mergeElse}}
		default:
			return []pair{{in.regular, mergeBoth}}
		}
	}
	switch r {
	case EachToEach:
		return []pair{{in.thenStore, mergeThen}, {in.elseStore, mergeElse}}
	case ThenToBoth:
		return []pair{{in.thenStore, mergeBoth}}
	case ElseToBoth:
		return []pair{{in.elseStore, mergeBoth}}
	case ThenToThen:
		return []pair{{in.thenStore, mergeThen}}
	case ElseToElse:
		return []pair{{in.elseStore, mergeElse}}
	default:
		panic(fmt.Sprintf("dataflow: unknown flow rule %v", r))
	}
}
