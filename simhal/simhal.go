// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package simhal implements a lptimer.HAL backed by a manually-steppable
// fake oscillator, for exercising the scheduler's core algorithm in
// ordinary `go test` without any real hardware or wall-clock dependency.
//
// The free-running counter and compare/overflow interrupts are simulated
// directly by Step, one tick at a time, giving tests full control over
// exactly how many ticks elapse between assertions. A
// github.com/noodlebox/clock steppedtime.Clock is advanced by one tick
// period alongside each tick, so Now reports simulated time consistent
// with the tick count.
package simhal

import (
	"sync"

	"github.com/intuitivelabs/lptimer"
	"github.com/noodlebox/clock/steppedtime"
)

// HAL is a software oscillator: an N-bit free-running counter advanced by
// calling Step, with compare-match and overflow delivered synchronously
// (no goroutines, no real interrupts) via a caller-supplied ISR callback.
type HAL struct {
	mu sync.Mutex

	clk  *steppedtime.Clock
	freq uint32
	bits uint
	mask uint32

	counter uint32
	compare uint32

	compareEnabled  bool
	overflowEnabled bool

	// irq receives the event mask whenever Step crosses a compare or
	// overflow boundary. The scheduler's ProcessIRQ is normally wired
	// here directly.
	irq func(lptimer.Event)
}

// New returns a HAL simulating an N-bit counter ticking at freqHz,
// delivering interrupts synchronously to irq from within Step.
func New(bits uint, freqHz uint32, irq func(lptimer.Event)) *HAL {
	var mask uint32
	if bits >= 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (uint32(1) << bits) - 1
	}
	return &HAL{
		clk:  steppedtime.NewClock(),
		freq: freqHz,
		bits: bits,
		mask: mask,
		irq:  irq,
	}
}

// InitTimer implements lptimer.HAL.
func (h *HAL) InitTimer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counter = 0
}

// Counter implements lptimer.HAL.
func (h *HAL) Counter() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counter & h.mask
}

// Frequency implements lptimer.HAL.
func (h *HAL) Frequency() uint32 {
	return h.freq
}

// SetCompare implements lptimer.HAL.
func (h *HAL) SetCompare(value uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compare = value & h.mask
}

// EnableInt implements lptimer.HAL.
func (h *HAL) EnableInt(ev lptimer.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev&lptimer.EventCompare != 0 {
		h.compareEnabled = true
	}
	if ev&lptimer.EventOverflow != 0 {
		h.overflowEnabled = true
	}
}

// DisableInt implements lptimer.HAL.
func (h *HAL) DisableInt(ev lptimer.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev&lptimer.EventCompare != 0 {
		h.compareEnabled = false
	}
	if ev&lptimer.EventOverflow != 0 {
		h.overflowEnabled = false
	}
}

// Step advances the simulated oscillator by n ticks, one at a time, so
// that a compare match and a subsequent overflow in the same call are
// each delivered as a distinct ProcessIRQ invocation, the way two
// genuinely separate hardware interrupts would be (spec §6).
func (h *HAL) Step(n uint32) {
	for i := uint32(0); i < n; i++ {
		h.stepOne()
	}
}

func (h *HAL) stepOne() {
	h.mu.Lock()
	h.clk.Step(steppedtime.Second / steppedtime.Duration(h.maxFreq()))
	prev := h.counter
	h.counter = (h.counter + 1) & h.mask
	overflowed := h.counter < prev
	compareHit := h.compareEnabled && h.counter == h.compare
	overflowEnabled := h.overflowEnabled
	irq := h.irq
	h.mu.Unlock()

	var ev lptimer.Event
	if overflowed && overflowEnabled {
		ev |= lptimer.EventOverflow
	}
	if compareHit {
		ev |= lptimer.EventCompare
	}
	if ev != 0 && irq != nil {
		irq(ev)
	}
}

func (h *HAL) maxFreq() uint32 {
	if h.freq == 0 {
		return 1
	}
	return h.freq
}

// Now returns the simulated wall-clock time, for tests asserting against
// github.com/intuitivelabs/timestamp-based expectations in hostsim-style
// comparisons.
func (h *HAL) Now() steppedtime.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clk.Now()
}
