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

package visualize

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/flowgraph/dataflow/dataflow"
)

// Visitor is a dataflow.Visitor that formats an AbstractValue via a caller-supplied function,
// falling back to fmt.Sprintf("%v", ...) when none is given.
type Visitor struct {
	Format func(dataflow.AbstractValue) string
}

// FormatValue implements dataflow.Visitor.
func (v Visitor) FormatValue(val dataflow.AbstractValue) string {
	if v.Format != nil {
		return v.Format(val)
	}
	return fmt.Sprintf("%v", val)
}

// WriteDot renders cfg and result as a Graphviz dot graph to w. Each block becomes one node, its
// label showing the block kind and the store that flows out of it (per
// AnalysisResult.GetStoreAfterBlock), visualized with v. Block iteration order is stabilized by
// sorting on each block's dot node ID so repeated renderings of the same cfg diff cleanly.
func WriteDot(w io.Writer, cfg *dataflow.ControlFlowGraph, result *dataflow.AnalysisResult, v dataflow.Visitor) error {
	ids := assignIDs(cfg)

	var sb strings.Builder
	sb.WriteString("digraph dataflow {\n")
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	ordered := make([]dataflow.Block, 0, len(ids))
	for b := range ids {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ids[ordered[i]] < ids[ordered[j]] })

	for _, b := range ordered {
		label := blockLabel(b, result, v)
		fmt.Fprintf(&sb, "  %s [label=%q];\n", ids[b], label)
		for _, s := range blockSuccessors(b) {
			fmt.Fprintf(&sb, "  %s -> %s;\n", ids[b], ids[s])
		}
	}

	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// assignIDs gives every block in cfg a stable dot node identifier, numbered in cfg.Blocks() order.
func assignIDs(cfg *dataflow.ControlFlowGraph) map[dataflow.Block]string {
	ids := make(map[dataflow.Block]string, len(cfg.Blocks()))
	for i, b := range cfg.Blocks() {
		ids[b] = fmt.Sprintf("b%d", i)
	}
	return ids
}

// blockSuccessors mirrors the engine's own internal successor dispatch (see dataflow's
// unexported successors helper), duplicated here since it operates purely on the exported Block
// field accessors and visualize has no need to import engine-internal plumbing for it.
func blockSuccessors(b dataflow.Block) []dataflow.Block {
	switch blk := b.(type) {
	case *dataflow.RegularBlock:
		if blk.Successor == nil {
			return nil
		}
		return []dataflow.Block{blk.Successor}
	case *dataflow.ConditionalBlock:
		var out []dataflow.Block
		if blk.Then != nil {
			out = append(out, blk.Then)
		}
		if blk.Else != nil {
			out = append(out, blk.Else)
		}
		return out
	case *dataflow.ExceptionBlock:
		var out []dataflow.Block
		if blk.Successor != nil {
			out = append(out, blk.Successor)
		}
		for _, targets := range blk.Exceptional {
			out = append(out, targets...)
		}
		return out
	case *dataflow.SpecialBlock:
		if blk.Successor == nil {
			return nil
		}
		return []dataflow.Block{blk.Successor}
	default:
		return nil
	}
}

func blockLabel(b dataflow.Block, result *dataflow.AnalysisResult, v dataflow.Visitor) string {
	kind := b.Kind().String()
	store := result.GetStoreAfterBlock(b)
	if store == nil {
		return kind
	}
	return kind + "\n" + store.Visualize(v)
}
