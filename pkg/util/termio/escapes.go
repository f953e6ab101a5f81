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
package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal colours, as used in ANSI escapes.
const (
	TERM_BLACK = uint(iota)
	TERM_RED
	TERM_GREEN
	TERM_YELLOW
	TERM_BLUE
	TERM_MAGENTA
	TERM_CYAN
	TERM_WHITE
)

// ANSI_RESET cancels any previous escape.
const ANSI_RESET = "\033[0m"

// ANSI_BOLD switches to bold text.
const ANSI_BOLD = "\033[1m"

// FgColour returns the escape setting the foreground to a given colour.
func FgColour(col uint) string {
	return fmt.Sprintf("\033[%dm", 30+col)
}

// BoldFgColour returns the escape setting bold text in a given colour.
func BoldFgColour(col uint) string {
	return fmt.Sprintf("\033[1;%dm", 30+col)
}

// IsTerminal checks whether a given file is attached to a terminal, and hence
// whether escapes can be used when writing to it.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
