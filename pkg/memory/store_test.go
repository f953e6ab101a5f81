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
package memory

import (
	"slices"
	"testing"
)

func Test_Store_00(t *testing.T) {
	store := NewStore(16)
	//
	if !store.Empty() || store.Count() != 0 {
		t.Errorf("expected empty store")
	}
	//
	if store.Read(3) != 0 || store.Written(3) {
		t.Errorf("unwritten offset should read as zero")
	}
}

func Test_Store_01(t *testing.T) {
	checkStore(t, []uint64{0, 1, 2, 3}, []bool{true, false, false, false}, 0, 3, 4)
}

func Test_Store_02(t *testing.T) {
	checkStore(t, []uint64{5}, []bool{true}, 5, 5, 1)
}

func Test_Store_03(t *testing.T) {
	checkStore(t, []uint64{4, 5, 0, 1}, []bool{true, false, true, false}, 0, 5, 4)
}

func Test_Store_04(t *testing.T) {
	// Rewriting the same offset is a discontinuity, and counted once
	checkStore(t, []uint64{2, 2, 3}, []bool{true, true, false}, 2, 3, 2)
}

func Test_Store_05(t *testing.T) {
	checkStore(t, []uint64{9, 7, 8, 15}, []bool{true, true, false, true}, 7, 15, 4)
}

func Test_Store_LastWriteWins(t *testing.T) {
	store := NewStore(8)
	//
	store.Write(2, 0xaa)
	store.Write(3, 0xbb)
	store.Write(2, 0xcc)
	//
	if store.Read(2) != 0xcc || store.Read(3) != 0xbb {
		t.Errorf("expected last write to win, got %02x %02x", store.Read(2), store.Read(3))
	}
	//
	if store.LastOffset() != 2 {
		t.Errorf("expected last offset 2, got %d", store.LastOffset())
	}
}

func Test_Store_OutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	//
	NewStore(4).Write(4, 0)
}

func checkStore(t *testing.T, offsets []uint64, discontinuities []bool, lo uint64, hi uint64, count uint) {
	t.Helper()
	//
	var (
		store  = NewStore(16)
		actual []bool
	)
	//
	for i, offset := range offsets {
		actual = append(actual, store.Write(offset, byte(i+1)))
	}
	//
	if !slices.Equal(actual, discontinuities) {
		t.Errorf("expected discontinuities %v, got %v", discontinuities, actual)
	}
	//
	if store.MinOffset() != lo || store.MaxOffset() != hi {
		t.Errorf("expected range %d..%d, got %d..%d", lo, hi, store.MinOffset(), store.MaxOffset())
	}
	//
	if store.Count() != count {
		t.Errorf("expected count %d, got %d", count, store.Count())
	}
	//
	for _, offset := range offsets {
		if !store.Written(offset) {
			t.Errorf("expected offset %d written", offset)
		}
	}
}
