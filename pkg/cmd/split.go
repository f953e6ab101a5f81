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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-memsplit/pkg/image"
	"github.com/consensys/go-memsplit/pkg/split"
	"github.com/consensys/go-memsplit/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split [flags] image.verilog|image.hex",
	Short: "split a memory image into per-region initialisation files.",
	Long: `Split a memory image into per-region initialisation files.  For each region
two files are written: a sparse file (one byte per line, with "@offset" markers
where data is not contiguous) and a packed file (one little-endian word per
line).  Existing outputs are never overwritten unless --force is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(EXIT_USAGE)
		}
		//
		configureLogging(cmd)
		//
		format, err := image.ParseFormat(GetString(cmd, "format"))
		if err != nil {
			log.Error(err)
			os.Exit(EXIT_USAGE)
		}
		//
		regions, err := ParseRegions(GetStringArray(cmd, "region"))
		if err != nil {
			log.Error(err)
			os.Exit(EXIT_CONFIG)
		}
		//
		cfg := split.Config{
			Input:     args[0],
			Format:    format,
			OutputDir: GetString(cmd, "output-dir"),
			Regions:   regions,
			Force:     GetFlag(cmd, "force"),
		}
		//
		os.Exit(runSplit(cfg, !GetFlag(cmd, "quiet")))
	},
}

// Perform a single run, reporting the outcome and returning the exit code.
func runSplit(cfg split.Config, report bool) int {
	summary, err := split.Run(cfg)
	//
	if code := ExitCode(err); code != EXIT_OK {
		log.Error(err)
		return code
	} else if err != nil {
		log.Warn("output files already exist, aborting to avoid overwrite (use --force to overwrite)")
		log.Debug(summary.String())
		//
		return code
	}
	//
	if report {
		if err := printSummary(summary); err != nil {
			log.Error(err)
			return EXIT_IO
		}
	}
	//
	return EXIT_OK
}

// ExitCode determines the process exit code for the outcome of a run.  Refusing
// to overwrite existing outputs is not considered a failure.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, split.ErrOutputConflict):
		return EXIT_OK
	case errors.Is(err, split.ErrInputNotFound), errors.Is(err, split.ErrInvalidRegions):
		return EXIT_CONFIG
	default:
		return EXIT_IO
	}
}

// Print the per-region summary of a run as a table.
func printSummary(summary split.Summary) error {
	table := termio.NewTablePrinter(5)
	table.AddRow("region", "range", "bytes", "sparse", "packed")
	table.SetRowEscape(0, termio.ANSI_BOLD)
	//
	for i, r := range summary.Regions {
		table.AddRow(strings.ToUpper(r.Region.Name),
			fmt.Sprintf("0x%08x-0x%08x", r.Region.Base, r.Region.End()),
			fmt.Sprintf("%d", r.Count),
			r.Sparse, r.Packed)
		// Highlight empty regions
		if r.Empty() {
			table.SetEscape(2, uint(i+1), termio.FgColour(termio.TERM_YELLOW))
		} else {
			table.SetEscape(2, uint(i+1), termio.FgColour(termio.TERM_GREEN))
		}
	}
	//
	table.AnsiEscapes(termio.IsTerminal(os.Stdout))
	//
	if summary.Dropped > 0 {
		log.Infof("%d bytes outside all regions were dropped", summary.Dropped)
	}
	//
	return table.Print(os.Stdout)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().Bool("force", false, "overwrite existing output files")
	splitCmd.Flags().String("format", "auto", "input format (auto, verilog or hex)")
	splitCmd.Flags().StringP("output-dir", "o", "", "directory to write outputs to (default: alongside input)")
	splitCmd.Flags().StringArray("region", nil,
		"memory region as name:base:size[:width], replacing the default memory map (repeatable)")
}
