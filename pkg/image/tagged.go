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
package image

import (
	"bufio"
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/consensys/go-memsplit/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// MAX_LINE_LENGTH bounds the length of any single line in a source file.  A
// longer line is a read failure, and decoding stops there.
const MAX_LINE_LENGTH = 16 * 1024 * 1024

// TaggedDump decodes a memory image in the tagged dump format.  Decoding is a
// single streaming pass: bytes are passed on in file order as soon as they are
// read, hence ordering (and last-write-wins on repeated addresses) follows the
// file itself.
//
// Each line is either an address marker ("@80000000"), an address marker
// followed by byte tokens ("@80000000 de ad be ef"), or byte tokens alone which
// continue from the current address.  Blank lines and "//" comments are
// ignored.
type TaggedDump struct {
	// Address at which the next byte token is placed.
	cursor uint64
	// Set once a byte has been placed at the top of the address space, after
	// which no further bytes can follow until the next address marker.
	exhausted bool
}

// Token kinds for tagged dump lines.
const (
	tokEOF uint = iota
	tokSpace
	tokAt
	tokDigits
	tokComment
)

var taggedScanner = source.Or(
	source.One(tokAt, '@'),
	source.Trailing(tokComment, '/', '/'),
	source.While(tokSpace, isSpace),
	source.While(tokDigits, isHexDigit),
	source.Eof[rune](tokEOF))

// Decode a tagged dump, passing each byte to the visitor as it is read.
func (p *TaggedDump) Decode(r io.Reader, visit Visitor) (Stats, error) {
	var (
		stats   Stats
		scanner = bufio.NewScanner(r)
	)
	//
	scanner.Buffer(make([]byte, 64*1024), MAX_LINE_LENGTH)
	//
	for scanner.Scan() {
		stats.Lines++
		//
		line := strings.TrimSpace(scanner.Text())
		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		//
		addr, hasAddr, data, ok := parseTaggedLine(line)
		//
		if ok && hasAddr {
			ok = fits(addr, false, len(data))
		} else if ok {
			ok = fits(p.cursor, p.exhausted, len(data))
		}
		//
		if !ok {
			log.Debugf("skipping malformed line %d: %s", stats.Lines, line)
			stats.Malformed++

			continue
		} else if hasAddr {
			p.cursor, p.exhausted = addr, false
		}
		//
		for _, b := range data {
			if err := visit(Byte{p.cursor, b}); err != nil {
				return stats, err
			}
			//
			stats.Bytes++
			//
			if p.cursor == math.MaxUint64 {
				p.exhausted = true
			} else {
				p.cursor++
			}
		}
	}
	//
	return stats, scanner.Err()
}

// Check n bytes can be placed from a given address without running past the
// top of the address space.
func fits(addr uint64, exhausted bool, n int) bool {
	if n == 0 {
		return true
	}
	//
	return !exhausted && uint64(n-1) <= math.MaxUint64-addr
}

// Parse a single (non-blank) line of a tagged dump, returning the address
// marker (if present) and the bytes given.
func parseTaggedLine(line string) (uint64, bool, []byte, bool) {
	var (
		items   = []rune(line)
		lexer   = source.NewLexer(items, taggedScanner)
		tokens  = lexer.Collect()
		addr    uint64
		hasAddr bool
		data    []byte
	)
	// Everything must be matched
	if lexer.Remaining() != 0 {
		return 0, false, nil, false
	}
	// Check for leading address marker
	if len(tokens) > 0 && tokens[0].Kind == tokAt {
		var err error
		//
		if len(tokens) < 2 || tokens[1].Kind != tokDigits {
			return 0, false, nil, false
		} else if addr, err = strconv.ParseUint(string(lexer.Text(tokens[1])), 16, 64); err != nil {
			return 0, false, nil, false
		}
		//
		hasAddr = true
		tokens = tokens[2:]
	}
	//
	for _, token := range tokens {
		switch token.Kind {
		case tokAt:
			return 0, false, nil, false
		case tokDigits:
			bytes, err := hex.DecodeString(string(lexer.Text(token)))
			// Odd number of digits
			if err != nil {
				return 0, false, nil, false
			}
			//
			data = append(data, bytes...)
		}
	}
	//
	return addr, hasAddr, data, true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
