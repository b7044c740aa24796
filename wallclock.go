// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

// wallClock tracks UTC seconds-since-epoch plus a timezone offset.
// secondCount is advanced incrementally on every hardware overflow IRQ
// instead of being recomputed from scratch (spec §4.3: "wall time
// bookkeeping happens incrementally on the overflow interrupt, not by
// dividing the full tick count on every read"); calcSec/calcRest are the
// per-overflow second/remainder contributions, precomputed once from the
// ring size and frequency so the overflow handler never divides.
//
// Between overflows, secondCount alone is stale by up to one overflow
// period: time() folds in the ticks elapsed within the current period
// (⌊now/F⌋, now being the raw hardware counter) plus a one-second carry
// when the fractional remainders (now mod F, and the rest left over from
// the last overflow) sum past a whole second.
type wallClock struct {
	freqHz   uint32
	ringSize uint64 // 2^N, the hardware counter's full period

	secondCount      int64
	overflowTickRest uint64

	calcSec  uint64
	calcRest uint64

	tzOffsetSec int32
	tzValid     bool
}

func newWallClock(freqHz uint32, ringSize uint64) *wallClock {
	w := &wallClock{freqHz: freqHz, ringSize: ringSize}
	if freqHz != 0 {
		w.calcSec = ringSize / uint64(freqHz)
		w.calcRest = ringSize % uint64(freqHz)
	}
	return w
}

// advanceOverflow folds one hardware overflow period (calcSec seconds plus
// calcRest leftover ticks) into secondCount/overflowTickRest. Must be
// called with the scheduler's critical section held, once per overflow
// IRQ (spec §4.3).
func (w *wallClock) advanceOverflow() {
	if w.freqHz == 0 {
		return
	}
	w.overflowTickRest += w.calcRest
	if w.overflowTickRest >= uint64(w.freqHz) {
		w.overflowTickRest -= uint64(w.freqHz)
		w.secondCount++
	}
	w.secondCount += int64(w.calcSec)
}

// time returns the current UTC seconds-since-epoch, given now, the raw
// hardware counter value (ticks elapsed within the current overflow
// period). Implements spec §4.3's get_time exactly: secondCount +
// ⌊now/F⌋, with one extra second when (now mod F) + overflowTickRest ≥ F.
func (w *wallClock) time(now uint32) int64 {
	if w.freqHz == 0 {
		return w.secondCount
	}
	f := uint64(w.freqHz)
	t := w.secondCount + int64(uint64(now)/f)
	if uint64(now)%f+w.overflowTickRest >= f {
		t++
	}
	return t
}

// setTime rebases secondCount so that time(now) == sec, per spec §4.3:
// validates sec as a representable UNIX timestamp, subtracts ⌊now/F⌋ from
// it to recover the value secondCount must hold, and zeros
// overflowTickRest. Fails with ErrInvalidParameter if sec is out of range
// or if the rebase would underflow (sec too small for the ticks already
// elapsed this period).
func (w *wallClock) setTime(sec int64, now uint32) error {
	if sec < 0 || sec > unixMax {
		return ErrInvalidParameter
	}
	var wholeSeconds int64
	if w.freqHz != 0 {
		wholeSeconds = int64(uint64(now) / uint64(w.freqHz))
	}
	if sec < wholeSeconds {
		return ErrInvalidParameter
	}
	w.secondCount = sec - wholeSeconds
	w.overflowTickRest = 0
	return nil
}

// GetTime returns the current UTC time as seconds since the UNIX epoch.
// It returns ErrInvalidState if the scheduler was created without
// Config.WallClock (spec §4.3).
func (s *Scheduler) GetTime() (int64, error) {
	if s.wc == nil {
		return 0, ErrInvalidState
	}
	s.enterCritical()
	defer s.exitCritical()
	return s.wc.time(s.counter()), nil
}

// SetTime sets the wall clock so that it reads sec seconds since the
// UNIX epoch right now.
func (s *Scheduler) SetTime(sec int64) error {
	if s.wc == nil {
		return ErrInvalidState
	}
	s.enterCritical()
	defer s.exitCritical()
	return s.wc.setTime(sec, s.counter())
}

// GetTZ returns the currently configured timezone offset in seconds east
// of UTC, and whether one has been set at all.
func (s *Scheduler) GetTZ() (int32, bool, error) {
	if s.wc == nil {
		return 0, false, ErrInvalidState
	}
	s.enterCritical()
	defer s.exitCritical()
	return s.wc.tzOffsetSec, s.wc.tzValid, nil
}

// SetTZ sets the timezone offset in seconds east of UTC. Offsets must
// satisfy |offsetSec| < 2^32-1 (spec §4.4's general timezone-sign bound);
// callers needing calendar conversions will additionally be bound by
// whatever epoch format they convert through.
func (s *Scheduler) SetTZ(offsetSec int32) error {
	if s.wc == nil {
		return ErrInvalidState
	}
	s.enterCritical()
	defer s.exitCritical()
	s.wc.tzOffsetSec = offsetSec
	s.wc.tzValid = true
	return nil
}
