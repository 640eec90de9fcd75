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
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/flowgraph/dataflow/dataflow"
)

// Snapshot is a serializable rendering of a completed analysis, keyed by each block's dot node ID
// rather than by dataflow.Block itself (which is not gob-encodable: it is an interface whose
// concrete block types point at each other and at client-defined nodes). A Snapshot is
// meant for archiving a run's result in a compact form for later inspection, not for reconstructing
// a live AnalysisResult.
type Snapshot struct {
	// Labels maps a dot node ID (see assignIDs) to the rendered block label produced by
	// blockLabel.
	Labels map[string]string
	// Edges maps a dot node ID to the node IDs of its successors.
	Edges map[string][]string
}

// NewSnapshot captures cfg and result into a Snapshot.
func NewSnapshot(cfg *dataflow.ControlFlowGraph, result *dataflow.AnalysisResult, v dataflow.Visitor) *Snapshot {
	ids := assignIDs(cfg)
	snap := &Snapshot{
		Labels: make(map[string]string, len(ids)),
		Edges:  make(map[string][]string, len(ids)),
	}
	for b, id := range ids {
		snap.Labels[id] = blockLabel(b, result, v)
		for _, s := range blockSuccessors(b) {
			snap.Edges[id] = append(snap.Edges[id], ids[s])
		}
	}
	return snap
}

// WriteCompressed gob-encodes snap and writes it to w through an s2 compressor.
func WriteCompressed(w io.Writer, snap *Snapshot) (err error) {
	sw := s2.NewWriter(w)
	defer func() {
		if cerr := sw.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := gob.NewEncoder(sw).Encode(snap); err != nil {
		return fmt.Errorf("visualize: encode snapshot: %w", err)
	}
	return nil
}

// ReadCompressed reads and decodes a Snapshot previously written by WriteCompressed.
func ReadCompressed(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := gob.NewDecoder(s2.NewReader(r)).Decode(snap); err != nil {
		return nil, fmt.Errorf("visualize: decode snapshot: %w", err)
	}
	return snap, nil
}

// MarshalCompressed is a convenience wrapper over WriteCompressed for callers that want an
// in-memory []byte rather than a stream.
func MarshalCompressed(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCompressed(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
