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

package livevar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowgraph/dataflow/dataflow"
)

// Store is the set of variables live at a given program point: those that may be read along some
// path before they are next written. It implements dataflow.Store.
type Store struct {
	vars map[Var]struct{}
}

// NewStore returns an empty live-variable set.
func NewStore() *Store {
	return &Store{vars: make(map[Var]struct{})}
}

// Has reports whether v is live in this store.
func (s *Store) Has(v Var) bool {
	_, ok := s.vars[v]
	return ok
}

// add marks v live.
func (s *Store) add(v Var) {
	s.vars[v] = struct{}{}
}

// kill marks v dead.
func (s *Store) kill(v Var) {
	delete(s.vars, v)
}

// Vars returns every variable currently live, in unspecified order.
func (s *Store) Vars() []Var {
	out := make([]Var, 0, len(s.vars))
	for v := range s.vars {
		out = append(out, v)
	}
	return out
}

// Copy implements dataflow.Store.
func (s *Store) Copy() dataflow.Store {
	out := NewStore()
	for v := range s.vars {
		out.vars[v] = struct{}{}
	}
	return out
}

// LeastUpperBound implements dataflow.Store: the union of live sets, since a variable is live at a
// join point if it is live along any incoming path.
func (s *Store) LeastUpperBound(other dataflow.Store) dataflow.Store {
	o := other.(*Store)
	out := NewStore()
	for v := range s.vars {
		out.vars[v] = struct{}{}
	}
	for v := range o.vars {
		out.vars[v] = struct{}{}
	}
	return out
}

// WidenedUpperBound always returns (nil, false): the live-variable lattice has finite height
// (bounded by the number of distinct variables in the unit under analysis), so widening is never
// needed; with a non-negative threshold the solver falls back to LeastUpperBound.
func (s *Store) WidenedUpperBound(dataflow.Store) (dataflow.Store, bool) {
	return nil, false
}

// Equal implements dataflow.Store.
func (s *Store) Equal(other dataflow.Store) bool {
	o, ok := other.(*Store)
	if !ok {
		return false
	}
	if len(s.vars) != len(o.vars) {
		return false
	}
	for v := range s.vars {
		if _, ok := o.vars[v]; !ok {
			return false
		}
	}
	return true
}

// CanAlias implements dataflow.Store. Live-variable analysis tracks no pointer aliasing
// information, so two distinct nodes are never reported as potentially aliasing.
func (s *Store) CanAlias(dataflow.Node, dataflow.Node) bool {
	return false
}

// Visualize implements dataflow.Store, rendering the live set as a sorted, comma-separated list
// via the supplied dataflow.Visitor (whose sole job here is to format a Var — this store has no
// dataflow.AbstractValue of its own to format, so it falls back to fmt.Sprint for each Var).
func (s *Store) Visualize(v dataflow.Visitor) string {
	names := make([]string, 0, len(s.vars))
	for va := range s.vars {
		names = append(names, formatVar(v, va))
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}

func formatVar(v dataflow.Visitor, va Var) string {
	if val, ok := va.(dataflow.AbstractValue); ok {
		return v.FormatValue(val)
	}
	return fmt.Sprint(va)
}
