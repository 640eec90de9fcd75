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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlowRule_Apply_NonSplit(t *testing.T) {
	t.Parallel()

	regular := &intStore{n: 7}
	in := NewTransferInput(regular)

	tests := []struct {
		rule     FlowRule
		wantKind mergeKind
	}{
		{EachToEach, mergeBoth},
		{ThenToBoth, mergeBoth},
		{ElseToBoth, mergeBoth},
		{ThenToThen, mergeThen},
		{ElseToElse, mergeElse},
	}
	for _, tt := range tests {
		pairs := tt.rule.apply(in)
		require.Len(t, pairs, 1, "rule %v", tt.rule)
		require.Equal(t, tt.wantKind, pairs[0].kind, "rule %v", tt.rule)
		require.Same(t, regular, pairs[0].store, "rule %v", tt.rule)
	}
}

func TestFlowRule_Apply_Split(t *testing.T) {
	t.Parallel()

	thenS, elseS := &intStore{n: 1}, &intStore{n: 2}
	in := NewConditionalTransferInput(thenS, elseS)

	tests := []struct {
		rule FlowRule
		want []struct {
			store Store
			kind  mergeKind
		}
	}{
		{EachToEach, []struct {
			store Store
			kind  mergeKind
		}{{thenS, mergeThen}, {elseS, mergeElse}}},
		{ThenToBoth, []struct {
			store Store
			kind  mergeKind
		}{{thenS, mergeBoth}}},
		{ElseToBoth, []struct {
			store Store
			kind  mergeKind
		}{{elseS, mergeBoth}}},
		{ThenToThen, []struct {
			store Store
			kind  mergeKind
		}{{thenS, mergeThen}}},
		{ElseToElse, []struct {
			store Store
			kind  mergeKind
		}{{elseS, mergeElse}}},
	}
	for _, tt := range tests {
		got := tt.rule.apply(in)
		require.Len(t, got, len(tt.want), "rule %v", tt.rule)
		for i, w := range tt.want {
			require.Same(t, w.store, got[i].store, "rule %v pair %d", tt.rule, i)
			require.Equal(t, w.kind, got[i].kind, "rule %v pair %d", tt.rule, i)
		}
	}
}

func TestFlowRule_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "EACH_TO_EACH", EachToEach.String())
	require.Equal(t, "THEN_TO_BOTH", ThenToBoth.String())
	require.Equal(t, "ELSE_TO_BOTH", ElseToBoth.String())
	require.Equal(t, "THEN_TO_THEN", ThenToThen.String())
	require.Equal(t, "ELSE_TO_ELSE", ElseToElse.String())
	require.Contains(t, FlowRule(99).String(), "FlowRule")
}
