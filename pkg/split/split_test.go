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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/go-memsplit/pkg/image"
	"github.com/consensys/go-memsplit/pkg/memory"
	"github.com/stretchr/testify/require"
)

// Small windows standing in for the real memory map.
var testRegions = memory.Table{
	{Name: "ilm", Base: 0x1000, Size: 0x100, Width: 8},
	{Name: "extram", Base: 0x0000, Size: 0x100, Width: 4},
	{Name: "ram", Base: 0x3000, Size: 0x10, Width: 4},
}

func Test_Split_Packing(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00000000 de ad be ef\n")
	//
	summary, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	//
	require.Equal(t, "@00000000\nde\nad\nbe\nef\n", readOutput(t, dir, "prog_extram.verilog"))
	require.Equal(t, "efbeadde\n", readOutput(t, dir, "prog_extram.mem"))
	//
	report, ok := summary.Region("extram")
	require.True(t, ok)
	require.Equal(t, uint(4), report.Count)
	require.Equal(t, uint64(0), report.Min)
	require.Equal(t, uint64(3), report.Max)
	require.Equal(t, image.TAGGED_DUMP, summary.Format)
}

func Test_Split_RecordEquivalence(t *testing.T) {
	var (
		taggedDir = t.TempDir()
		recordDir = t.TempDir()
		tagged    = writeInput(t, taggedDir, "prog.verilog", "@00000000 de ad be ef\n")
		record    = writeInput(t, recordDir, "prog.hex", ":020000040000FA\n:04000000DEADBEEFC4\n:00000001FF\n")
	)
	//
	_, err := Run(Config{Input: tagged, Regions: testRegions})
	require.NoError(t, err)
	summary, err := Run(Config{Input: record, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, image.RECORD_FORMAT, summary.Format)
	//
	for _, name := range outputNames("prog") {
		require.Equal(t, readOutput(t, taggedDir, name), readOutput(t, recordDir, name), name)
	}
}

func Test_Split_GapFill(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "gap.verilog", "@00003005 ab\n")
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, "@00000005\nab\n", readOutput(t, dir, "gap_ram.verilog"))
	require.Equal(t, "000000ab\n", readOutput(t, dir, "gap_ram.mem"))
}

func Test_Split_EmptyRegions(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00001000 01\n")
	//
	summary, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	//
	require.Equal(t, "// No RAM data found\n", readOutput(t, dir, "prog_ram.verilog"))
	require.Equal(t, "// No data found\n", readOutput(t, dir, "prog_ram.mem"))
	require.Equal(t, "// No EXTRAM data found\n", readOutput(t, dir, "prog_extram.verilog"))
	require.Equal(t, "0000000000000001\n", readOutput(t, dir, "prog_ilm.mem"))
	//
	report, _ := summary.Region("ram")
	require.True(t, report.Empty())
}

func Test_Split_OverwriteProtection(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00001000 01 02\n")
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	// Tamper with an output to detect any rewrite
	tampered := filepath.Join(dir, "prog_ilm.mem")
	require.NoError(t, os.WriteFile(tampered, []byte("sentinel\n"), 0o644))
	before := snapshot(t, dir, "prog")
	//
	summary, err := Run(Config{Input: input, Regions: testRegions})
	//
	require.ErrorIs(t, err, ErrOutputConflict)
	//
	var conflict *ConflictError
	//
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Paths, 6)
	require.Equal(t, conflict.Paths, summary.Conflicts)
	require.Equal(t, before, snapshot(t, dir, "prog"))
	require.Contains(t, summary.String(), "already exist")
}

func Test_Split_PartialConflict(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00001000 01\n")
	// A single pre-existing output is enough to refuse the run
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog_ram.mem"), nil, 0o644))
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.ErrorIs(t, err, ErrOutputConflict)
	//
	_, err = os.Stat(filepath.Join(dir, "prog_ilm.verilog"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func Test_Split_Force(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00001000 01 02\n@00003000 aa\n")
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	//
	first := snapshot(t, dir, "prog")
	// Tamper, then overwrite
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog_ram.verilog"), []byte("junk"), 0o644))
	//
	_, err = Run(Config{Input: input, Regions: testRegions, Force: true})
	require.NoError(t, err)
	require.Equal(t, first, snapshot(t, dir, "prog"))
}

func Test_Split_Unmapped(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00005000 11 22\n@00001000 33\n@000030ff 44\n")
	//
	summary, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, uint(3), summary.Dropped)
	//
	for _, name := range outputNames("prog") {
		require.NotContains(t, readOutput(t, dir, name), "11", name)
		require.NotContains(t, readOutput(t, dir, name), "22", name)
	}
}

func Test_Split_IndependentDiscontinuities(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00001000 01\n@00000010 02\n@00001001 03\n@00000011 04\n")
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, "@00000000\n01\n03\n", readOutput(t, dir, "prog_ilm.verilog"))
	require.Equal(t, "@00000010\n02\n04\n", readOutput(t, dir, "prog_extram.verilog"))
}

func Test_Split_LastWriteWins(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@00000000 01 02 03 04\n@00000001 ff\n")
	//
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, "@00000000\n01\n02\n03\n04\n@00000001\nff\n", readOutput(t, dir, "prog_extram.verilog"))
	require.Equal(t, "0403ff01\n", readOutput(t, dir, "prog_extram.mem"))
}

func Test_Split_OutputDir(t *testing.T) {
	var (
		dir    = t.TempDir()
		outDir = filepath.Join(dir, "out", "mem")
		input  = writeInput(t, dir, "prog.hex", ":0100000001FE\n")
	)
	//
	summary, err := Run(Config{Input: input, OutputDir: outDir, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, "00000001\n", readOutput(t, outDir, "prog_extram.mem"))
	require.Equal(t, filepath.Join(outDir, "prog_extram.verilog"), summary.Regions[1].Sparse)
}

func Test_Split_InputNotFound(t *testing.T) {
	dir := t.TempDir()
	//
	_, err := Run(Config{Input: filepath.Join(dir, "missing.hex"), Regions: testRegions})
	require.ErrorIs(t, err, ErrInputNotFound)
	//
	_, err = Run(Config{Input: dir, Regions: testRegions})
	require.ErrorIs(t, err, ErrInputNotFound)
	// Nothing should have been written
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func Test_Split_InvalidRegions(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@0 01\n")
	//
	_, err := Run(Config{Input: input, Regions: memory.Table{{Name: "x", Base: 0, Size: 0, Width: 4}}})
	require.ErrorIs(t, err, ErrInvalidRegions)
}

func Test_Split_IOFailure(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "prog.verilog", "@0 01\n")
	// Output directory cannot be created beneath a regular file
	_, err := Run(Config{Input: input, OutputDir: filepath.Join(input, "out"), Regions: testRegions})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrOutputConflict)
	require.NotErrorIs(t, err, ErrInputNotFound)
}

func Test_Split_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("0", image.MAX_LINE_LENGTH+2)
	input := writeInput(t, dir, "prog.verilog", "@00001000 01 02 03\n"+long+"\n@00001003 04\n")
	// Line exceeding the limit fails the run after some bytes were emitted
	_, err := Run(Config{Input: input, Regions: testRegions})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrOutputConflict)
	require.NotErrorIs(t, err, ErrInputNotFound)
	// Everything emitted before the failure is kept
	require.Equal(t, "@00000000\n01\n02\n03\n", readOutput(t, dir, "prog_ilm.verilog"))
	require.Equal(t, "", readOutput(t, dir, "prog_extram.verilog"))
	// Packed outputs are never started
	for _, r := range testRegions {
		require.NoFileExists(t, filepath.Join(dir, "prog_"+r.Name+PACKED_EXTENSION))
	}
}

func Test_Split_ExplicitFormat(t *testing.T) {
	dir := t.TempDir()
	// Record content under a non-standard extension
	input := writeInput(t, dir, "prog.txt", ":01000000AA00\n")
	//
	summary, err := Run(Config{Input: input, Format: image.RECORD_FORMAT, Regions: testRegions})
	require.NoError(t, err)
	require.Equal(t, "000000aa\n", readOutput(t, dir, "prog_extram.mem"))
	require.Equal(t, image.RECORD_FORMAT, summary.Format)
}

func Test_PlanOutputs(t *testing.T) {
	outputs := PlanOutputs(filepath.Join("build", "prog.v1.verilog"), "", memory.DefaultTable())
	//
	require.Len(t, outputs, 3)
	require.Equal(t, filepath.Join("build", "prog.v1_ilm.verilog"), outputs[0].Sparse)
	require.Equal(t, filepath.Join("build", "prog.v1_ilm.mem"), outputs[0].Packed)
	require.Equal(t, filepath.Join("build", "prog.v1_ram.mem"), outputs[2].Packed)
}

func writeInput(t *testing.T, dir string, name string, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	//
	return path
}

func readOutput(t *testing.T, dir string, name string) string {
	bytes, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	//
	return string(bytes)
}

func outputNames(stem string) []string {
	var names []string
	//
	for _, r := range testRegions {
		names = append(names, stem+"_"+r.Name+SPARSE_EXTENSION, stem+"_"+r.Name+PACKED_EXTENSION)
	}
	//
	return names
}

func snapshot(t *testing.T, dir string, stem string) map[string]string {
	var contents = make(map[string]string)
	//
	for _, name := range outputNames(stem) {
		contents[name] = readOutput(t, dir, name)
	}
	//
	return contents
}
