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
	"errors"
	"fmt"
	"math"
	"strings"
)

// Base addresses and sizes of the three memory banks found on the target.
const (
	ILM_BASE    = uint64(0x80000000)
	ILM_SIZE    = uint64(64 * 1024)
	EXTRAM_BASE = uint64(0x00080000)
	EXTRAM_SIZE = uint64(512 * 1024)
	RAM_BASE    = uint64(0x90000000)
	RAM_SIZE    = uint64(64 * 1024)
)

// ILM_WORD_WIDTH is the number of bytes packed per line for the instruction
// local memory, which is fetched 64 bits at a time.
const ILM_WORD_WIDTH = uint(8)

// WORD_WIDTH is the number of bytes packed per line for all other regions.
const WORD_WIDTH = uint(4)

// Region describes a fixed window [Base, Base+Size) of the address space which
// is backed by a single physical memory bank.
type Region struct {
	// Name of the bank, which is used to name output artifacts.
	Name string
	// First absolute address of the window.
	Base uint64
	// Number of bytes in the window.
	Size uint64
	// Number of bytes packed into each word of the packed output.
	Width uint
}

// NewRegion constructs a region with the default word width for its name.
func NewRegion(name string, base uint64, size uint64) Region {
	width := WORD_WIDTH
	//
	if name == "ilm" {
		width = ILM_WORD_WIDTH
	}
	//
	return Region{name, base, size, width}
}

// End returns the last absolute address within this region.
func (p Region) End() uint64 {
	return p.Base + p.Size - 1
}

// Contains checks whether a given absolute address falls within this region.
func (p Region) Contains(addr uint64) bool {
	return p.Size != 0 && p.Base <= addr && addr <= p.End()
}

// Offset returns the offset of a given absolute address relative to the base of
// this region.  This is only meaningful for addresses within the region.
func (p Region) Offset(addr uint64) uint64 {
	return addr - p.Base
}

// Overlaps checks whether this region shares any address with another.
func (p Region) Overlaps(other Region) bool {
	if p.Size == 0 || other.Size == 0 {
		return false
	}
	//
	return p.Base <= other.End() && other.Base <= p.End()
}

func (p Region) String() string {
	return fmt.Sprintf("%s range: 0x%08x - 0x%08x", strings.ToUpper(p.Name), p.Base, p.End())
}

// Table is the set of regions making up the memory map of the target.  Regions
// are expected to be disjoint, though this is not enforced.  Where they are not,
// an address is owned by the first declared region containing it.
type Table []Region

// DefaultTable returns the memory map of the target, consisting of the
// instruction local memory, the external RAM and the data RAM.
func DefaultTable() Table {
	return Table{
		NewRegion("ilm", ILM_BASE, ILM_SIZE),
		NewRegion("extram", EXTRAM_BASE, EXTRAM_SIZE),
		NewRegion("ram", RAM_BASE, RAM_SIZE),
	}
}

// Lookup determines which region (if any) owns a given absolute address,
// returning its index within the table and the address relative to its base.
func (p Table) Lookup(addr uint64) (int, uint64, bool) {
	for i, r := range p {
		if r.Contains(addr) {
			return i, r.Offset(addr), true
		}
	}
	//
	return -1, 0, false
}

// Validate checks the table is usable.  Specifically, every region must have a
// unique name, be non-empty, not wrap around the top of the address space and
// have a supported word width.  Overlapping regions are not reported here, see
// Overlapping.
func (p Table) Validate() error {
	var names = make(map[string]bool)
	//
	if len(p) == 0 {
		return errors.New("no memory regions configured")
	}
	//
	for _, r := range p {
		switch {
		case r.Name == "":
			return errors.New("memory region has no name")
		case names[r.Name]:
			return fmt.Errorf("duplicate memory region \"%s\"", r.Name)
		case r.Size == 0:
			return fmt.Errorf("memory region \"%s\" is empty", r.Name)
		case r.Size-1 > math.MaxUint64-r.Base:
			return fmt.Errorf("memory region \"%s\" wraps around the address space", r.Name)
		case r.Width != 1 && r.Width != 2 && r.Width != 4 && r.Width != 8:
			return fmt.Errorf("memory region \"%s\" has unsupported word width %d", r.Name, r.Width)
		}
		//
		names[r.Name] = true
	}
	//
	return nil
}

// Overlapping returns the names of all pairs of regions which overlap.
func (p Table) Overlapping() [][2]string {
	var pairs [][2]string
	//
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if p[i].Overlaps(p[j]) {
				pairs = append(pairs, [2]string{p[i].Name, p[j].Name})
			}
		}
	}
	//
	return pairs
}
