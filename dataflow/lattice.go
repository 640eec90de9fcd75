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

// AbstractValue is an element of a join-semilattice attached to a single expression node. Values
// are created by a transfer function and are treated as immutable once returned: the engine only
// ever combines them via LeastUpperBound, it never mutates one in place.
//
// Implementations must satisfy the semilattice laws: LeastUpperBound is commutative, associative,
// and idempotent (x.LeastUpperBound(x) equals x).
type AbstractValue interface {
	// LeastUpperBound returns the join of this value with other.
	LeastUpperBound(other AbstractValue) AbstractValue

	// Equal reports whether this value is structurally equal to other. It is used as the fixed
	// point condition when merging values at a node that is visited more than once.
	Equal(other AbstractValue) bool
}

// Store is an element of a (typically) join-semilattice mapping program facts to abstractions at
// a single program point. Unlike AbstractValue, ownership of a Store is transferred into every
// transfer function call: the function is free to mutate the store it is handed rather than
// allocate a fresh one, and the engine copies a store with Copy whenever it needs to retain the
// prior value across that call.
//
// Implementations must satisfy: x.LeastUpperBound(x) equals x; x.LeastUpperBound(y) equals
// y.LeastUpperBound(x); x.LeastUpperBound(y) is greater than or equal to x under the lattice
// order. If WidenedUpperBound is supported, the sequence s0, widen(s1,s0), widen(s2,widen(s1,s0)),
// ... must stabilize (reach a fixed point under Equal) within a bounded number of applications.
type Store interface {
	// Copy returns a deep-enough copy of the store that mutating the copy never affects the
	// receiver.
	Copy() Store

	// LeastUpperBound returns the join of this store with other.
	LeastUpperBound(other Store) Store

	// WidenedUpperBound returns a widened join of this store with previous, used in place of
	// LeastUpperBound once a block has been visited more than the configured threshold of times,
	// to guarantee termination over lattices of infinite height. The second return value is false
	// for stores whose lattice has finite height and thus does not implement widening; callers
	// must not invoke widening in that case (Analyzer never does unless the configured threshold
	// is non-negative).
	WidenedUpperBound(previous Store) (Store, bool)

	// Equal reports whether this store is structurally equal to other. It is the fixed point
	// condition for worklist termination: a block is only re-enqueued when a merge changes its
	// stored value under Equal.
	Equal(other Store) bool

	// CanAlias is a conservative aliasing query used by transfer functions to decide whether two
	// trackable expressions might denote the same storage location. The zero-value-friendly
	// default answer for unimplemented lattices is true (conservatively assume aliasing).
	CanAlias(a, b Node) bool

	// Visualize renders the store for presentation purposes (e.g., embedding it in a CFG diagram)
	// using the supplied Visitor, which understands how to format whatever concrete value types
	// the store's lattice uses.
	Visualize(v Visitor) string
}

// Visitor formats an individual AbstractValue for presentation (see Store.Visualize).
type Visitor interface {
	// FormatValue returns a short, human-readable rendering of val.
	FormatValue(val AbstractValue) string
}
