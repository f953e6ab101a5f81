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
	"fmt"
	"strings"
)

// ErrInputNotFound indicates the memory image to be split does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ErrOutputConflict indicates one or more output files already exist, and
// overwriting them was not requested.
var ErrOutputConflict = errors.New("output files already exist")

// ErrInvalidRegions indicates the memory region table is unusable.
var ErrInvalidRegions = errors.New("invalid memory regions")

// ConflictError identifies the output files which already exist.
type ConflictError struct {
	Paths []string
}

func (p *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrOutputConflict.Error(), strings.Join(p.Paths, ", "))
}

// Unwrap allows a ConflictError to be matched against ErrOutputConflict.
func (p *ConflictError) Unwrap() error {
	return ErrOutputConflict
}
