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
package emit

import (
	"io"

	"github.com/consensys/go-memsplit/pkg/memory"
)

// PACKED_PLACEHOLDER is written in place of the packed output of a region which
// received no data.
const PACKED_PLACEHOLDER = "// No data found\n"

// WritePacked writes the contents of a store as a sequence of little-endian
// words, one per line.  Words start at the smallest offset written and continue
// in steps of the given width until the largest offset written is covered.
// Offsets never written are filled with zero.  For example, bytes de ad be ef
// at offsets 0..3 with a width of 4 give the line "efbeadde".
func WritePacked(out io.Writer, store *memory.Store, width uint) error {
	if store.Empty() {
		_, err := io.WriteString(out, PACKED_PLACEHOLDER)
		return err
	}
	//
	var (
		w    = uint64(width)
		last = store.MaxOffset()
		line = make([]byte, 2*width+1)
	)
	//
	line[2*width] = '\n'
	//
	for addr := store.MinOffset(); ; addr += w {
		// Highest offset first
		for i := uint64(0); i < w; i++ {
			b := store.Read(addr + i)
			j := 2 * (w - 1 - i)
			line[j] = hexDigits[b>>4]
			line[j+1] = hexDigits[b&0xf]
		}
		//
		if _, err := out.Write(line); err != nil {
			return err
		}
		// Stop once the next word would start beyond the last offset
		if last-addr < w {
			return nil
		}
	}
}
