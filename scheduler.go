// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"sync"
)

// Config selects the hardware characteristics the Scheduler must account
// for. Every field corresponds to a parameter spec.md leaves open for the
// embedder to fix at init time (spec §1, §6).
type Config struct {
	// CounterBits is the width of the free-running hardware counter, e.g.
	// 16 or 32 (spec §1: "typically 32, but the design must not assume
	// more than N bits").
	CounterBits uint
	// WallClock enables the optional wall-clock/calendar subsystem (spec
	// §4.3). Leave false for pure relative-timer use to skip the wall-clock
	// part of the overflow bookkeeping; the overflow count behind
	// GetTickCount64 is kept either way.
	WallClock bool
}

// Scheduler multiplexes a single hardware compare/overflow interrupt pair
// across any number of logical timers using a sorted delta list (spec
// §2, §4.1). One Scheduler owns exactly one HAL.
//
// All mutation happens inside a nestable, non-reentrant-safe-across-
// goroutines critical section (spec §5): the scheduler assumes it is
// driven by a single core with interrupts as the only source of
// reentrancy, not by concurrent goroutines. csMu exists only to serialize
// the foreground/ISR boundary against genuinely concurrent Go callers of
// the public API (e.g. a background goroutine calling StopTimer while the
// "ISR" is simulated on another goroutine in tests); it is not a
// substitute for disabling interrupts on real hardware.
type Scheduler struct {
	hal  HAL
	mask uint32

	csMu    sync.Mutex
	csDepth int32

	head *TimerHandle
	// lastUpdate is the counter value (in the N-bit ring) at which head's
	// delta chain was last known consistent with the hardware.
	lastUpdate Ticks
	// overflowCount is incremented on every hardware overflow IRQ and forms
	// the high bits of the 64-bit tick count (spec §4.2).
	overflowCount uint8

	wc *wallClock
}

// NewScheduler allocates a Scheduler bound to hal, initializes the
// hardware counter and returns ready to accept StartTimer calls. cfg.
// CounterBits must be in [1, 32].
func NewScheduler(hal HAL, cfg Config) (*Scheduler, error) {
	if hal == nil {
		return nil, ErrNullPointer
	}
	if cfg.CounterBits == 0 || cfg.CounterBits > 32 {
		return nil, ErrInvalidParameter
	}
	var mask uint32
	if cfg.CounterBits == 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (uint32(1) << cfg.CounterBits) - 1
	}

	s := &Scheduler{hal: hal, mask: mask}
	hal.InitTimer()
	s.lastUpdate = newTicks(hal.Counter(), mask)
	if cfg.WallClock {
		s.wc = newWallClock(hal.Frequency(), uint64(mask)+1)
	}
	hal.EnableInt(EventOverflow)
	return s, nil
}

func (s *Scheduler) ticks(v uint32) Ticks {
	return newTicks(v, s.mask)
}

func (s *Scheduler) counter() uint32 {
	return s.hal.Counter() & s.mask
}

func (s *Scheduler) counterTicks() Ticks {
	return s.ticks(s.hal.Counter())
}

// enterCritical and exitCritical bracket any code that walks or mutates
// the delta list. Depth tracks nested calls, so an inner enter/exit pair
// does not release a section its caller still holds; the mutex is only
// taken on the outermost 0->1 transition,
// mirroring the teacher's convention of guarding hardware interrupt
// disable/enable with a nesting counter rather than toggling on every
// call.
func (s *Scheduler) enterCritical() {
	if s.csDepth == 0 {
		s.csMu.Lock()
	}
	s.csDepth++
}

func (s *Scheduler) exitCritical() {
	s.csDepth--
	if s.csDepth == 0 {
		s.csMu.Unlock()
	}
	if s.csDepth < 0 {
		PANIC("scheduler: critical section underflow")
	}
}

// refreshHeadDelta folds the ticks elapsed since lastUpdate into the
// list, so every node's delta always means "ticks from now" (or, once
// exhausted, "already due"), not "ticks from whenever the list was last
// touched". All arithmetic goes through Ticks so wraparound is handled
// the same way every counter comparison in this package is (spec §9).
//
// A single late compare IRQ can land past more than one node's deadline
// (a long callback, a delayed interrupt, a coalesced wakeup); the excess
// elapsed time is walked forward and subtracted from however many
// consecutive nodes it covers, rather than being clamped and dropped
// against the head alone, so every node that is in fact already due is
// left at delta 0 for dispatch to pop, and nodes still in the future keep
// their correct remaining delta. Must be called with the critical
// section held.
func (s *Scheduler) refreshHeadDelta(now Ticks) {
	elapsed := now.Sub(s.lastUpdate).Val()
	s.lastUpdate = now
	for cur := s.head; cur != nil && elapsed > 0; cur = cur.next {
		if cur.delta > elapsed {
			cur.delta -= elapsed
			elapsed = 0
		} else {
			elapsed -= cur.delta
			cur.delta = 0
		}
	}
}

// armCompare programs the hardware compare register for the current head,
// or disables the compare interrupt if the list is empty. Must be called
// with the critical section held.
func (s *Scheduler) armCompare() {
	if s.head == nil {
		s.hal.DisableInt(EventCompare)
		return
	}
	target := s.lastUpdate.AddU32(s.head.delta)
	s.hal.SetCompare(target.Val())
	s.hal.EnableInt(EventCompare)
}

// unlink removes h from the list, if present, and re-arms the compare
// register. Must be called with the critical section held.
func (s *Scheduler) unlink(h *TimerHandle) {
	now := s.counterTicks()
	s.refreshHeadDelta(now)
	s.head = deltaRemove(s.head, h)
	s.armCompare()
}

// onOverflow advances the 64-bit tick count's high word and the wall clock
// on a hardware overflow interrupt (spec §4.2, §4.3).
func (s *Scheduler) onOverflow() {
	s.overflowCount++
	if s.wc != nil {
		s.wc.advanceOverflow()
	}
}

// dispatch pops every handle whose delta has reached 0 and fires its
// callback outside the critical section (spec §5: user callbacks run
// without the lock held). A periodic handle is reinserted with its reload
// value before its callback runs, so a callback that stops its own handle
// ends the periodic cycle.
// Must be called with the critical section NOT held; it takes and
// releases it internally for each list mutation.
func (s *Scheduler) dispatch() {
	for {
		s.enterCritical()
		now := s.counterTicks()
		s.refreshHeadDelta(now)
		if s.head == nil || s.head.delta != 0 {
			s.armCompare()
			s.exitCritical()
			return
		}
		h := s.head
		s.head = h.next
		h.next = nil
		h.linked = false
		if h.timeoutPeriodic != 0 {
			h.delta = h.timeoutPeriodic
			s.head = deltaInsert(s.head, h)
		}
		cb := h.callback
		data := h.callbackData
		s.exitCritical()

		if cb != nil {
			cb(s, h, data)
		}
	}
}

// ProcessIRQ is the scheduler's single entry point from interrupt context.
// The embedder's overflow and compare-match ISRs must both call it, with
// ev set to the event(s) that fired (spec §6: "bridging the two hardware
// interrupt vectors into a single call is the embedder's job").
func (s *Scheduler) ProcessIRQ(ev Event) {
	if ev&EventOverflow != 0 {
		s.enterCritical()
		s.onOverflow()
		s.exitCritical()
	}
	if ev&EventCompare != 0 {
		s.dispatch()
	}
}

// GetTickCount returns the current value of the N-bit hardware counter,
// i.e. the low N bits of GetTickCount64 (spec §4.2).
func (s *Scheduler) GetTickCount() uint32 {
	return s.counter()
}

// GetTickCount64 returns the full 64-bit monotonic tick count, composed
// from the overflow counter and the raw hardware counter (spec §4.2).
func (s *Scheduler) GetTickCount64() uint64 {
	s.enterCritical()
	defer s.exitCritical()
	hi := uint64(s.overflowCount)
	lo := uint64(s.counter())
	return hi<<uint64(bitsFromMask(s.mask)) | lo
}

// GetTimerFrequency returns the HAL's configured tick rate in Hz.
func (s *Scheduler) GetTimerFrequency() uint32 {
	return s.hal.Frequency()
}

func bitsFromMask(mask uint32) uint {
	var n uint
	for mask != 0 {
		n++
		mask >>= 1
	}
	return n
}
