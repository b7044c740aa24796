// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"runtime"
)

// DelayMilliseconds busy-waits for at least ms milliseconds, measured off
// the scheduler's own tick counter rather than the host's wall clock, for
// use on code paths that must block without arming a full timer handle
// (spec §4.5: "a simple spin-wait primitive for short, uninterruptible
// delays during init, bit-banged protocols, etc.").
//
// It measures elapsed time against GetTickCount64 rather than the raw
// N-bit counter: MillisToTicks16 can legitimately exceed the ring size on
// a narrow counter (e.g. a 16-bit counter above ~2s at a 32768Hz tick
// rate), and a single-ring elapsed computation would then never reach
// target, spinning forever. GetTickCount64 folds in the overflow count,
// so it keeps counting past any number of wraps as long as overflow
// interrupts keep arriving — the same requirement the rest of the
// scheduler already has.
//
// It is built directly on the tick counter rather than a pack transport
// or scheduling library: busy-waiting on a hardware counter has no
// ecosystem library in this module's dependency set, and pulling one in
// would be heavier than the loop it replaces. runtime.Gosched is used
// only to avoid starving other goroutines in host-simulated runs; real
// embedded targets have no scheduler to yield to.
func (s *Scheduler) DelayMilliseconds(ms uint16) {
	if ms == 0 {
		return
	}
	freq := s.GetTimerFrequency()
	target := uint64(MillisToTicks16(ms, freq))
	start := s.GetTickCount64()
	for s.GetTickCount64()-start < target {
		runtime.Gosched()
	}
}
