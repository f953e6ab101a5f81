// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package memory

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Store accumulates the bytes written into a single region.  Bytes are held in
// a flat array indexed by offset, alongside a bitset marking which offsets have
// actually been written.  The array is only grown as far as the highest offset
// written so far, hence sparse images of large regions remain cheap.
type Store struct {
	// Capacity of the region.
	size uint64
	// Byte values, indexed by offset.
	data []byte
	// Offsets which have been written.
	written bitset.BitSet
	// Number of distinct offsets written.
	count uint
	// Smallest, largest and most recently written offsets.
	min, max, last uint64
}

// NewStore constructs an empty store for a region of the given size.
func NewStore(size uint64) *Store {
	return &Store{size: size}
}

// Write a byte at a given offset, replacing any value previously written there.
// This returns true if the write is discontinuous, meaning either nothing has
// been written before or the offset does not immediately follow the most
// recently written offset.
func (p *Store) Write(offset uint64, value byte) bool {
	if offset >= p.size {
		panic(fmt.Sprintf("offset 0x%x out of bounds (size 0x%x)", offset, p.size))
	}
	//
	discontinuous := p.count == 0 || offset != p.last+1
	// Grow storage as necessary
	if offset >= uint64(len(p.data)) {
		p.data = append(p.data, make([]byte, offset+1-uint64(len(p.data)))...)
	}
	//
	p.data[offset] = value
	//
	if !p.written.Test(uint(offset)) {
		p.written.Set(uint(offset))
		p.count++
	}
	// Update bookkeeping
	if p.count == 1 {
		p.min, p.max = offset, offset
	} else {
		p.min = min(p.min, offset)
		p.max = max(p.max, offset)
	}
	//
	p.last = offset
	//
	return discontinuous
}

// Read the byte at a given offset.  Offsets never written read as zero.
func (p *Store) Read(offset uint64) byte {
	if offset < uint64(len(p.data)) {
		return p.data[offset]
	}
	//
	return 0
}

// Written checks whether a given offset has been written.
func (p *Store) Written(offset uint64) bool {
	return p.written.Test(uint(offset))
}

// Count returns the number of distinct offsets written.
func (p *Store) Count() uint {
	return p.count
}

// Empty checks whether nothing has been written to this store.
func (p *Store) Empty() bool {
	return p.count == 0
}

// MinOffset returns the smallest offset written.  This is only meaningful when
// the store is not empty.
func (p *Store) MinOffset() uint64 {
	return p.min
}

// MaxOffset returns the largest offset written.  This is only meaningful when
// the store is not empty.
func (p *Store) MaxOffset() uint64 {
	return p.max
}

// LastOffset returns the most recently written offset.
func (p *Store) LastOffset() uint64 {
	return p.last
}
