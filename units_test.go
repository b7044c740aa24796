// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import "testing"

func TestMillisToTicks16(t *testing.T) {
	got := MillisToTicks16(1000, 32768)
	want := uint32(32768) + 1
	if got != want {
		t.Fatalf("MillisToTicks16(1000, 32768) = %d, want %d", got, want)
	}
}

func TestMillis32ToTicksOverflow(t *testing.T) {
	if _, err := Millis32ToTicks(0xFFFFFFFF, 32768); err != ErrInvalidParameter {
		t.Fatalf("Millis32ToTicks(max, 32768) should overflow, got %v", err)
	}
	got, err := Millis32ToTicks(1000, 1000)
	if err != nil {
		t.Fatalf("Millis32ToTicks(1000,1000) failed: %s", err)
	}
	if got != 1000 {
		t.Fatalf("Millis32ToTicks(1000,1000) = %d, want 1000", got)
	}
}

func TestTicksToMillisPow2AndNonPow2Agree(t *testing.T) {
	pow2 := TicksToMillis(32768, 32768)
	nonPow2 := TicksToMillis(1000, 1000)
	if pow2 != 1000 {
		t.Fatalf("TicksToMillis(32768,32768) = %d, want 1000", pow2)
	}
	if nonPow2 != 1000 {
		t.Fatalf("TicksToMillis(1000,1000) = %d, want 1000", nonPow2)
	}
}

func TestTicks64ToMillisOverflow(t *testing.T) {
	if _, err := Ticks64ToMillis(^uint64(0), 1); err != ErrInvalidParameter {
		t.Fatalf("Ticks64ToMillis(max uint64) should overflow, got %v", err)
	}
}

func TestIsPow2(t *testing.T) {
	for _, v := range []uint32{1, 2, 4, 1024, 32768} {
		if !isPow2(v) {
			t.Fatalf("isPow2(%d) = false, want true", v)
		}
	}
	for _, v := range []uint32{0, 3, 5, 1000} {
		if isPow2(v) {
			t.Fatalf("isPow2(%d) = true, want false", v)
		}
	}
}
