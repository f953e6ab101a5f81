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
package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/consensys/go-memsplit/pkg/memory"
)

// ParseRegions parses the memory regions given on the command line, each of
// the form "name:base:size" or "name:base:size:width".  Numbers may be given in
// decimal or with a "0x" prefix, and sizes may carry a "K" or "M" suffix.  If
// no regions are given, the default memory map is used.
func ParseRegions(specs []string) (memory.Table, error) {
	if len(specs) == 0 {
		return memory.DefaultTable(), nil
	}
	//
	var table memory.Table
	//
	for _, spec := range specs {
		region, err := parseRegion(spec)
		//
		if err != nil {
			return nil, err
		}
		//
		table = append(table, region)
	}
	//
	return table, table.Validate()
}

func parseRegion(spec string) (memory.Region, error) {
	var (
		region memory.Region
		fields = strings.Split(spec, ":")
	)
	//
	if len(fields) != 3 && len(fields) != 4 {
		return region, fmt.Errorf("invalid region \"%s\" (expected name:base:size[:width])", spec)
	}
	//
	base, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return region, fmt.Errorf("invalid base address in region \"%s\"", spec)
	}
	//
	size, err := parseSize(fields[2])
	if err != nil {
		return region, fmt.Errorf("invalid size in region \"%s\"", spec)
	}
	//
	region = memory.NewRegion(fields[0], base, size)
	//
	if len(fields) == 4 {
		width, err := strconv.ParseUint(fields[3], 10, 8)
		if err != nil {
			return region, fmt.Errorf("invalid word width in region \"%s\"", spec)
		}
		//
		region.Width = uint(width)
	}
	//
	return region, nil
}

// Parse a size, which may have a K (x1024) or M (x1024*1024) suffix.
func parseSize(text string) (uint64, error) {
	var scale uint64 = 1
	//
	switch {
	case strings.HasSuffix(text, "K") || strings.HasSuffix(text, "k"):
		scale, text = 1024, text[:len(text)-1]
	case strings.HasSuffix(text, "M") || strings.HasSuffix(text, "m"):
		scale, text = 1024*1024, text[:len(text)-1]
	}
	//
	n, err := strconv.ParseUint(text, 0, 64)
	//
	if err != nil {
		return 0, err
	} else if n > math.MaxUint64/scale {
		return 0, fmt.Errorf("size %s too large", text)
	}
	//
	return n * scale, nil
}
