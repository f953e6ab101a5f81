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
	"maps"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Record types understood by the record format decoder.
const (
	DATA_RECORD            = byte(0x00)
	END_OF_FILE_RECORD     = byte(0x01)
	EXTENDED_LINEAR_RECORD = byte(0x04)
)

// RecordFormat decodes a memory image in the Intel HEX record format.  Unlike
// the tagged dump, decoding is buffered: all records are first collected into
// an address map (with later records overwriting earlier ones) and then passed
// on in strictly ascending address order.  Hence, the result does not depend on
// the order in which records appear.
//
// Only data, end-of-file and extended linear address records are consumed.
// Checksums are not verified.
type RecordFormat struct {
	// Upper 16 bits of the address, as set by the last extended linear
	// address record.
	latch uint64
}

// Record is a single parsed line of the record format.
type Record struct {
	Type   byte
	Offset uint16
	Data   []byte
}

// Decode a record format source, collecting all bytes before passing them to
// the visitor in ascending address order.
func (p *RecordFormat) Decode(r io.Reader, visit Visitor) (Stats, error) {
	var (
		stats   Stats
		memory  = make(map[uint64]byte)
		scanner = bufio.NewScanner(r)
	)
	//
	scanner.Buffer(make([]byte, 64*1024), MAX_LINE_LENGTH)
	//
	for scanner.Scan() {
		stats.Lines++
		//
		line := strings.TrimSpace(scanner.Text())
		//
		if !strings.HasPrefix(line, ":") {
			continue
		}
		//
		record, ok := ParseRecord(line)
		//
		if !ok {
			log.Debugf("skipping malformed record on line %d: %s", stats.Lines, line)
			stats.Malformed++

			continue
		}
		//
		if done := p.apply(record, memory); done {
			break
		}
	}
	//
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	//
	if len(memory) == 0 {
		log.Warn("no data found in record file")
		return stats, nil
	}
	//
	addresses := slices.Sorted(maps.Keys(memory))
	//
	log.Infof("data range: 0x%08x - 0x%08x (%d bytes)", addresses[0], addresses[len(addresses)-1], len(addresses))
	// Replay in address order
	for _, addr := range addresses {
		if err := visit(Byte{addr, memory[addr]}); err != nil {
			return stats, err
		}
		//
		stats.Bytes++
	}
	//
	return stats, nil
}

// Apply a record to the memory being collected, returning true when the end of
// file has been reached.
func (p *RecordFormat) apply(record Record, memory map[uint64]byte) bool {
	switch record.Type {
	case DATA_RECORD:
		base := p.latch + uint64(record.Offset)
		//
		for i, b := range record.Data {
			memory[base+uint64(i)] = b
		}
	case EXTENDED_LINEAR_RECORD:
		p.latch = uint64(record.Data[0])<<24 | uint64(record.Data[1])<<16
	case END_OF_FILE_RECORD:
		return true
	}
	//
	return false
}

// ParseRecord parses a single line of the form ":LLAAAATT[DD...]CC".  The
// line is rejected if any of the header fields is not valid hex, if fewer data
// bytes are present than the length field declares, or if an extended linear
// address record carries fewer than two data bytes.  The checksum is not
// examined.
func ParseRecord(line string) (Record, bool) {
	var record Record
	//
	if len(line) < 9 || line[0] != ':' {
		return record, false
	}
	//
	length, err1 := strconv.ParseUint(line[1:3], 16, 8)
	offset, err2 := strconv.ParseUint(line[3:7], 16, 16)
	kind, err3 := strconv.ParseUint(line[7:9], 16, 8)
	//
	if err1 != nil || err2 != nil || err3 != nil {
		return record, false
	}
	//
	end := 9 + 2*int(length)
	//
	if len(line) < end {
		return record, false
	}
	//
	data, err := hex.DecodeString(line[9:end])
	//
	if err != nil {
		return record, false
	} else if byte(kind) == EXTENDED_LINEAR_RECORD && len(data) < 2 {
		return record, false
	}
	//
	return Record{byte(kind), uint16(offset), data}, true
}
