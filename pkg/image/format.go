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
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Byte is a single byte of a memory image, located at an absolute address.
type Byte struct {
	Address uint64
	Value   byte
}

// Visitor is called by a decoder for every byte decoded, in the order dictated
// by the decoding strategy.  Any error returned by the visitor aborts decoding
// and is returned from the decoder as is.
type Visitor func(Byte) error

// Stats summarises what a decoder encountered whilst decoding a source.
type Stats struct {
	// Number of lines read.
	Lines uint
	// Number of lines skipped because they could not be parsed.
	Malformed uint
	// Number of bytes passed to the visitor.
	Bytes uint
}

// Decoder turns a memory image in some source encoding into a sequence of
// bytes.  Lines which cannot be parsed are skipped, and only failures of the
// underlying reader (or the visitor) are reported as errors.
type Decoder interface {
	Decode(r io.Reader, visit Visitor) (Stats, error)
}

// Format identifies the encoding of a memory image.
type Format uint

const (
	// AUTO indicates the format should be determined from the filename.
	AUTO Format = iota
	// TAGGED_DUMP is the textual format read by Verilog's $readmemh, where
	// byte tokens follow "@address" markers.
	TAGGED_DUMP
	// RECORD_FORMAT is the Intel HEX record format.
	RECORD_FORMAT
)

func (p Format) String() string {
	switch p {
	case AUTO:
		return "auto"
	case TAGGED_DUMP:
		return "verilog"
	case RECORD_FORMAT:
		return "hex"
	}
	//
	return "unknown"
}

// FormatOf determines the format of a memory image from its filename.  Files
// ending in ".hex" are in the record format, anything else is assumed to be a
// tagged dump.
func FormatOf(filename string) Format {
	if strings.ToLower(filepath.Ext(filename)) == ".hex" {
		return RECORD_FORMAT
	}
	//
	return TAGGED_DUMP
}

// IsKnownExtension checks whether a filename has one of the extensions
// conventionally used for memory images.
func IsKnownExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hex", ".verilog", ".vmem", ".vh":
		return true
	}
	//
	return false
}

// ParseFormat parses the name of a format, as given on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return AUTO, nil
	case "verilog", "tagged", "vmem":
		return TAGGED_DUMP, nil
	case "hex", "ihex", "record":
		return RECORD_FORMAT, nil
	}
	//
	return AUTO, fmt.Errorf("unknown format \"%s\"", name)
}

// NewDecoder constructs a decoder for a given (resolved) format.
func NewDecoder(format Format) Decoder {
	switch format {
	case TAGGED_DUMP:
		return &TaggedDump{}
	case RECORD_FORMAT:
		return &RecordFormat{}
	}
	//
	panic(fmt.Sprintf("no decoder for format %s", format.String()))
}
