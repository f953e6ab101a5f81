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
	"bufio"
	"fmt"
	"io/fs"
	"os"

	"github.com/consensys/go-memsplit/pkg/emit"
	"github.com/consensys/go-memsplit/pkg/image"
	"github.com/consensys/go-memsplit/pkg/memory"
	"github.com/consensys/go-memsplit/pkg/util"
	pkgErrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config determines what a run does.
type Config struct {
	// Memory image to split.
	Input string
	// Encoding of the input, or AUTO to determine it from the filename.
	Format image.Format
	// Directory to write outputs to, or empty to write alongside the input.
	OutputDir string
	// Memory regions to split the image into.
	Regions memory.Table
	// Overwrite any existing outputs.
	Force bool
}

// regionSink holds everything associated with a region during a run.
type regionSink struct {
	output Output
	store  *memory.Store
	file   *os.File
	buffer *bufio.Writer
	sparse *emit.SparseWriter
}

// Run splits a memory image into its regions, writing both sparse and packed
// outputs for each.  Nothing is written if any output already exists, unless
// Force is set in which case existing outputs are removed first.  Should a
// failure occur part way through, the run stops immediately and whatever was
// emitted so far is left in place.
func Run(cfg Config) (Summary, error) {
	var summary = Summary{Input: cfg.Input, Format: cfg.Format}
	//
	if err := cfg.Regions.Validate(); err != nil {
		return summary, fmt.Errorf("%w: %s", ErrInvalidRegions, err.Error())
	}
	//
	for _, pair := range cfg.Regions.Overlapping() {
		log.Warnf("memory regions %s and %s overlap, %s takes precedence", pair[0], pair[1], pair[0])
	}
	// Check input exists
	if info, err := os.Stat(cfg.Input); pkgErrors.Is(err, fs.ErrNotExist) {
		return summary, fmt.Errorf("%w: %s", ErrInputNotFound, cfg.Input)
	} else if err != nil {
		return summary, pkgErrors.Wrapf(err, "failed to access input %#v", cfg.Input)
	} else if info.IsDir() {
		return summary, fmt.Errorf("%w: %s is a directory", ErrInputNotFound, cfg.Input)
	}
	//
	if summary.Format == image.AUTO {
		summary.Format = image.FormatOf(cfg.Input)
		//
		if !image.IsKnownExtension(cfg.Input) {
			log.Warnf("unrecognised extension for %s, assuming %s format", cfg.Input, summary.Format.String())
		}
	}
	// Check for existing outputs
	outputs := PlanOutputs(cfg.Input, cfg.OutputDir, cfg.Regions)
	//
	existing, err := ExistingOutputs(outputs)
	//
	if err != nil {
		return summary, err
	} else if len(existing) > 0 && !cfg.Force {
		summary.Conflicts = existing
		return summary, &ConflictError{existing}
	} else if err := RemoveOutputs(existing); err != nil {
		return summary, err
	}
	//
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return summary, pkgErrors.Wrapf(err, "failed to create output directory %#v", cfg.OutputDir)
		}
	}
	//
	log.Infof("processing %s (%s format)", cfg.Input, summary.Format.String())
	//
	for _, r := range cfg.Regions {
		log.Info(r.String())
	}
	//
	stats := util.NewPerfStats()
	defer stats.Log("memory split")
	//
	sinks, err := decodeInto(cfg, summary.Format, outputs, &summary)
	//
	if err != nil {
		return summary, err
	}
	// Packed outputs need the final state of each region
	for _, sink := range sinks {
		if err := writePacked(sink); err != nil {
			return summary, err
		}
		//
		summary.Regions = append(summary.Regions, newReport(sink.output, sink.store))
	}
	//
	return summary, nil
}

// Decode the input, routing each byte into its region and streaming out the
// sparse outputs as it goes.
func decodeInto(cfg Config, format image.Format, outputs []Output, summary *Summary) ([]*regionSink, error) {
	var sinks = make([]*regionSink, len(outputs))
	//
	input, err := os.Open(cfg.Input)
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to open input %#v", cfg.Input)
	}
	//
	defer input.Close()
	//
	for i, o := range outputs {
		file, err := os.Create(o.Sparse)
		//
		if err != nil {
			closeSinks(sinks[:i])
			return nil, pkgErrors.Wrapf(err, "failed to create %#v", o.Sparse)
		}
		//
		buffer := bufio.NewWriter(file)
		sinks[i] = &regionSink{o, memory.NewStore(o.Region.Size), file, buffer, emit.NewSparseWriter(buffer)}
	}
	// Route each byte to its region
	stats, err := image.NewDecoder(format).Decode(input, func(b image.Byte) error {
		index, offset, ok := cfg.Regions.Lookup(b.Address)
		//
		if !ok {
			summary.Dropped++
			return nil
		}
		//
		sink := sinks[index]
		//
		if err := sink.sparse.Emit(sink.store, offset, b.Value); err != nil {
			return pkgErrors.Wrapf(err, "failed to write %#v", sink.output.Sparse)
		}
		//
		return nil
	})
	//
	summary.Malformed = stats.Malformed
	//
	if err != nil {
		closeSinks(sinks)
		return nil, pkgErrors.Wrapf(err, "failed to decode %#v", cfg.Input)
	}
	//
	log.Debugf("decoded %d bytes from %d lines (%d malformed, %d unmapped)", stats.Bytes, stats.Lines,
		stats.Malformed, summary.Dropped)
	// Finish sparse outputs
	for i, sink := range sinks {
		if sink.store.Empty() {
			if err := emit.WriteSparsePlaceholder(sink.buffer, sink.output.Region.Name); err != nil {
				closeSinks(sinks[i:])
				return nil, pkgErrors.Wrapf(err, "failed to write %#v", sink.output.Sparse)
			}
		}
		//
		if err := finish(sink.file, sink.buffer); err != nil {
			closeSinks(sinks[i+1:])
			return nil, err
		}
	}
	//
	return sinks, nil
}

func writePacked(sink *regionSink) error {
	file, err := os.Create(sink.output.Packed)
	//
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to create %#v", sink.output.Packed)
	}
	//
	buffer := bufio.NewWriter(file)
	//
	if err := emit.WritePacked(buffer, sink.store, sink.output.Region.Width); err != nil {
		file.Close()
		return pkgErrors.Wrapf(err, "failed to write %#v", sink.output.Packed)
	}
	//
	return finish(file, buffer)
}

// Flush and close an output file.
func finish(file *os.File, buffer *bufio.Writer) error {
	if err := buffer.Flush(); err != nil {
		file.Close()
		return pkgErrors.Wrapf(err, "failed to write %#v", file.Name())
	} else if err := file.Close(); err != nil {
		return pkgErrors.Wrapf(err, "failed to close %#v", file.Name())
	}
	//
	return nil
}

// Close sparse outputs after a failure.  Everything emitted so far is flushed
// and left in place.  Secondary errors are ignored so the original cause is the
// one reported.
func closeSinks(sinks []*regionSink) {
	for _, sink := range sinks {
		if sink != nil {
			_ = sink.buffer.Flush()
			_ = sink.file.Close()
		}
	}
}
