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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/go-memsplit/pkg/memory"
	pkgErrors "github.com/pkg/errors"
)

// SPARSE_EXTENSION is the file extension of sparse (address tagged) outputs.
const SPARSE_EXTENSION = ".verilog"

// PACKED_EXTENSION is the file extension of packed word outputs.
const PACKED_EXTENSION = ".mem"

// Output identifies the two files generated for a given region.
type Output struct {
	Region memory.Region
	Sparse string
	Packed string
}

// Paths returns the files making up this output.
func (p Output) Paths() []string {
	return []string{p.Sparse, p.Packed}
}

// PlanOutputs determines the output files for each region.  Outputs are named
// after the input, with the region name appended, and placed in a given
// directory (or alongside the input if none given).  For example, the ilm
// outputs of "build/prog.verilog" are "build/prog_ilm.verilog" and
// "build/prog_ilm.mem".
func PlanOutputs(input string, dir string, regions memory.Table) []Output {
	var (
		base    = filepath.Base(input)
		stem    = strings.TrimSuffix(base, filepath.Ext(base))
		outputs = make([]Output, len(regions))
	)
	//
	if dir == "" {
		dir = filepath.Dir(input)
	}
	//
	for i, r := range regions {
		prefix := filepath.Join(dir, stem+"_"+r.Name)
		outputs[i] = Output{r, prefix + SPARSE_EXTENSION, prefix + PACKED_EXTENSION}
	}
	//
	return outputs
}

// ExistingOutputs returns those output files which already exist.
func ExistingOutputs(outputs []Output) ([]string, error) {
	var existing []string
	//
	for _, o := range outputs {
		for _, path := range o.Paths() {
			if _, err := os.Stat(path); err == nil {
				existing = append(existing, path)
			} else if !pkgErrors.Is(err, fs.ErrNotExist) {
				return nil, pkgErrors.Wrapf(err, "failed to check output %#v", path)
			}
		}
	}
	//
	return existing, nil
}

// RemoveOutputs deletes the given output files.
func RemoveOutputs(paths []string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !pkgErrors.Is(err, fs.ErrNotExist) {
			return pkgErrors.Wrapf(err, "failed to remove existing output %#v", path)
		}
	}
	//
	return nil
}
