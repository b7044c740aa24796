// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"testing"

	"github.com/intuitivelabs/lptimer/simhal"
)

func newWallClockScheduler(t *testing.T) *Scheduler {
	hal := simhal.New(32, 32768, nil)
	s, err := NewScheduler(hal, Config{CounterBits: 32, WallClock: true})
	if err != nil {
		t.Fatalf("NewScheduler: %s", err)
	}
	return s
}

// TestWallClockAdvanceAfterFullRing is scenario S4, exercised directly
// against wallClock.advanceOverflow rather than stepping a simulated
// 2^32-tick ring, which would make the test itself the slow part.
func TestWallClockAdvanceAfterFullRing(t *testing.T) {
	wc := newWallClock(32768, uint64(1)<<32)
	if err := wc.setTime(1600000000, 0); err != nil {
		t.Fatalf("setTime: %s", err)
	}
	wc.advanceOverflow()

	want := int64(1600000000) + int64((uint64(1)<<32)/32768)
	if got := wc.time(0); got != want {
		t.Fatalf("GetTime after 2^32 ticks = %d, want %d", got, want)
	}
}

// TestWallClockTimeWithinPeriod exercises the ⌊now/F⌋ term directly: the
// bug this guards against returned a frozen secondCount between
// overflows, ignoring however many ticks had elapsed in the current
// period.
func TestWallClockTimeWithinPeriod(t *testing.T) {
	hal := simhal.New(16, 1000, nil)
	s, err := NewScheduler(hal, Config{CounterBits: 16, WallClock: true})
	if err != nil {
		t.Fatalf("NewScheduler: %s", err)
	}
	if err := s.SetTime(1000); err != nil {
		t.Fatalf("SetTime: %s", err)
	}
	hal.Step(2500) // 2.5s at 1000Hz, well within the 65536-tick ring
	got, err := s.GetTime()
	if err != nil {
		t.Fatalf("GetTime: %s", err)
	}
	if got != 1002 {
		t.Fatalf("GetTime after 2500 ticks @1000Hz = %d, want 1002", got)
	}
}

// TestWallClockTimeCarriesPartialSecond exercises the "(now mod F) +
// overflowTickRest >= F" carry directly, independent of any scheduler.
func TestWallClockTimeCarriesPartialSecond(t *testing.T) {
	wc := newWallClock(1000, uint64(1)<<16)
	if err := wc.setTime(0, 0); err != nil {
		t.Fatalf("setTime: %s", err)
	}
	wc.overflowTickRest = 700

	got := wc.time(400) // 400 mod 1000 + 700 = 1100 >= 1000 -> carry
	want := int64(400/1000) + 1
	if got != want {
		t.Fatalf("time with carry = %d, want %d", got, want)
	}
}

func TestWallClockDisabledByDefault(t *testing.T) {
	s, _ := newTestScheduler(t, 8, 1000)
	if _, err := s.GetTime(); err != ErrInvalidState {
		t.Fatalf("GetTime with WallClock disabled = %v, want ErrInvalidState", err)
	}
}

func TestWallClockSetGetTime(t *testing.T) {
	s := newWallClockScheduler(t)
	if err := s.SetTime(1700000000); err != nil {
		t.Fatalf("SetTime: %s", err)
	}
	got, err := s.GetTime()
	if err != nil {
		t.Fatalf("GetTime: %s", err)
	}
	if got != 1700000000 {
		t.Fatalf("GetTime = %d, want 1700000000", got)
	}
}

func TestWallClockSetTimeRejectsOutOfRange(t *testing.T) {
	s := newWallClockScheduler(t)
	if err := s.SetTime(-1); err != ErrInvalidParameter {
		t.Fatalf("SetTime(-1) = %v, want ErrInvalidParameter", err)
	}
	if err := s.SetTime(int64(unixMax) + 1); err != ErrInvalidParameter {
		t.Fatalf("SetTime(unixMax+1) = %v, want ErrInvalidParameter", err)
	}
}

func TestWallClockSetTimeRejectsRebaseUnderflow(t *testing.T) {
	hal := simhal.New(16, 1000, nil)
	s, err := NewScheduler(hal, Config{CounterBits: 16, WallClock: true})
	if err != nil {
		t.Fatalf("NewScheduler: %s", err)
	}
	hal.Step(5000) // 5s worth of ticks already elapsed this period
	if err := s.SetTime(3); err != ErrInvalidParameter {
		t.Fatalf("SetTime(3) with 5s already elapsed = %v, want ErrInvalidParameter", err)
	}
}

func TestWallClockTZRoundTrip(t *testing.T) {
	s := newWallClockScheduler(t)
	if err := s.SetTZ(-3600); err != nil {
		t.Fatalf("SetTZ: %s", err)
	}
	tz, valid, err := s.GetTZ()
	if err != nil {
		t.Fatalf("GetTZ: %s", err)
	}
	if !valid || tz != -3600 {
		t.Fatalf("GetTZ = (%d, %v), want (-3600, true)", tz, valid)
	}
}
