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

// NeverWiden is the maxCountBeforeWidening value meaning "this lattice has finite height, never
// widen" (see Store.WidenedUpperBound). Clients whose lattice has infinite ascending chains must
// pass a non-negative threshold instead.
const NeverWiden = -1

// wideningController counts how many times each block has been merged into, and decides when a
// merge should widen rather than take a least upper bound. Once a block's count exceeds the
// configured threshold, the controller resets that block's count and signals that the next merge
// should widen; this bounds the number of distinct values a block can take on to a constant,
// guaranteeing termination over lattices with infinite ascending chains.
type wideningController struct {
	maxCountBeforeWidening int
	counts                 map[Block]int
}

func newWideningController(maxCountBeforeWidening int) *wideningController {
	return &wideningController{
		maxCountBeforeWidening: maxCountBeforeWidening,
		counts:                 make(map[Block]int),
	}
}

// shouldWiden reports whether the next merge into b should widen instead of taking a least upper
// bound, and advances b's internal counter accordingly. It always returns false when widening is
// disabled (maxCountBeforeWidening == NeverWiden).
func (c *wideningController) shouldWiden(b Block) bool {
	if c.maxCountBeforeWidening < 0 {
		return false
	}
	if c.counts[b] >= c.maxCountBeforeWidening {
		c.counts[b] = 0
		return true
	}
	c.counts[b]++
	return false
}

// merge combines incoming into previous using either LeastUpperBound or WidenedUpperBound,
// depending on the widening controller's verdict for b. If previous is nil, incoming is returned
// unchanged (there is nothing yet to merge with). Falls back to LeastUpperBound if widening was
// requested but the store does not support it.
func (c *wideningController) merge(b Block, incoming, previous Store) Store {
	if previous == nil {
		return incoming
	}
	if c.shouldWiden(b) {
		if widened, ok := incoming.WidenedUpperBound(previous); ok {
			return widened
		}
	}
	return incoming.LeastUpperBound(previous)
}
