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
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-memsplit/pkg/memory"
)

// SparseWriter writes the sparse (address tagged) representation of a region
// as bytes arrive.  Every byte is written as two hex digits on its own line,
// and an "@offset" marker line is written before any byte which does not
// immediately follow the previous one.
type SparseWriter struct {
	out io.Writer
	// Scratch buffer for formatting lines.
	buf []byte
}

// NewSparseWriter constructs a sparse writer on top of a given output.
func NewSparseWriter(out io.Writer) *SparseWriter {
	return &SparseWriter{out, make([]byte, 0, 16)}
}

// Emit records a byte at a given offset in the store, writing out a marker
// first if this breaks the run of consecutive offsets.
func (p *SparseWriter) Emit(store *memory.Store, offset uint64, value byte) error {
	if store.Write(offset, value) {
		if err := p.Marker(offset); err != nil {
			return err
		}
	}
	//
	return p.Byte(value)
}

// Marker writes an address marker for a given offset.
func (p *SparseWriter) Marker(offset uint64) error {
	p.buf = fmt.Appendf(p.buf[:0], "@%08x\n", offset)
	_, err := p.out.Write(p.buf)
	//
	return err
}

// Byte writes a single data byte.
func (p *SparseWriter) Byte(value byte) error {
	p.buf = append(p.buf[:0], hexDigits[value>>4], hexDigits[value&0xf], '\n')
	_, err := p.out.Write(p.buf)
	//
	return err
}

// WriteSparsePlaceholder writes the line used in place of the sparse output of
// a region which received no data.
func WriteSparsePlaceholder(out io.Writer, region string) error {
	_, err := fmt.Fprintf(out, "// No %s data found\n", strings.ToUpper(region))
	return err
}

const hexDigits = "0123456789abcdef"
