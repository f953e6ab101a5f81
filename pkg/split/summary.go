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
package split

import (
	"fmt"
	"strings"

	"github.com/consensys/go-memsplit/pkg/image"
	"github.com/consensys/go-memsplit/pkg/memory"
)

// RegionReport records what was written for a single region.
type RegionReport struct {
	Output
	// Number of distinct offsets written.
	Count uint
	// Smallest and largest offsets written (when Count is non-zero).
	Min, Max uint64
}

// Empty checks whether the region received no data.
func (p RegionReport) Empty() bool {
	return p.Count == 0
}

// Summary describes the outcome of a run.
type Summary struct {
	// Input file which was split.
	Input string
	// Format used to decode the input.
	Format image.Format
	// Per-region results, in table order.
	Regions []RegionReport
	// Number of bytes which fell outside every region.
	Dropped uint
	// Number of input lines skipped as malformed.
	Malformed uint
	// Output files found to exist already (if the run was refused).
	Conflicts []string
}

// Region returns the report for a given region name.
func (p Summary) Region(name string) (RegionReport, bool) {
	for _, r := range p.Regions {
		if r.Region.Name == name {
			return r, true
		}
	}
	//
	return RegionReport{}, false
}

func (p Summary) String() string {
	var builder strings.Builder
	//
	if len(p.Conflicts) > 0 {
		builder.WriteString("Output files already exist, nothing written:\n")
		//
		for _, path := range p.Conflicts {
			fmt.Fprintf(&builder, "  %s\n", path)
		}
		//
		return builder.String()
	}
	//
	builder.WriteString("Memory split completed:\n")
	//
	for _, r := range p.Regions {
		fmt.Fprintf(&builder, "  %s: %s (%d entries)\n", strings.ToUpper(r.Region.Name), r.Sparse, r.Count)
	}
	//
	if p.Dropped > 0 {
		fmt.Fprintf(&builder, "  %d bytes outside all regions were dropped\n", p.Dropped)
	}
	//
	return builder.String()
}

func newReport(output Output, store *memory.Store) RegionReport {
	report := RegionReport{Output: output, Count: store.Count()}
	//
	if !store.Empty() {
		report.Min, report.Max = store.MinOffset(), store.MaxOffset()
	}
	//
	return report
}
