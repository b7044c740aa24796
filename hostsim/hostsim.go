// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package hostsim implements a lptimer.HAL driven by the host machine's
// own real-time clock, for demo and integration use when no embedded
// target is attached. A background goroutine takes the place of the
// genuine free-running hardware counter, polling the host clock and
// synthesizing overflow/compare interrupts from the elapsed wall time.
package hostsim

import (
	"sync"
	"time"

	"github.com/intuitivelabs/lptimer"
	"github.com/intuitivelabs/timestamp"
)

// HAL drives a lptimer.Scheduler off the host's real-time clock. It polls
// at roughly one HAL tick per poll interval and detects host clock drift
// the same way the hardware-bound design detects a late/lost hardware
// interrupt: by comparing how much wall time actually elapsed against how
// many ticks were credited for it.
type HAL struct {
	freq uint32
	bits uint
	mask uint32

	mu      sync.Mutex
	counter uint32
	compare uint32

	compareEnabled  bool
	overflowEnabled bool

	lastTick timestamp.TS
	badTime  int

	stop chan struct{}
	done chan struct{}

	irq func(lptimer.Event)
}

// New returns a HAL ticking at freqHz over an N-bit counter, delivering
// interrupts to irq from an internal polling goroutine. Call Start to
// begin polling and Close to stop it.
func New(bits uint, freqHz uint32, irq func(lptimer.Event)) *HAL {
	var mask uint32
	if bits >= 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (uint32(1) << bits) - 1
	}
	return &HAL{
		freq: freqHz,
		bits: bits,
		mask: mask,
		irq:  irq,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// InitTimer implements lptimer.HAL.
func (h *HAL) InitTimer() {
	h.mu.Lock()
	h.counter = 0
	h.lastTick = timestamp.Now()
	h.mu.Unlock()
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

// Start launches the polling goroutine. pollEvery should be well under
// one tick period so individual compare-matches aren't coalesced away.
func (h *HAL) Start(pollEvery time.Duration) {
	go h.run(pollEvery)
}

// Close stops the polling goroutine and waits for it to exit.
func (h *HAL) Close() {
	close(h.stop)
	<-h.done
}

func (h *HAL) run(pollEvery time.Duration) {
	defer close(h.done)
	t := time.NewTicker(pollEvery)
	defer t.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-t.C:
			h.poll()
		}
	}
}

// poll advances the simulated counter by however many whole ticks worth of
// real wall time have elapsed since the previous poll, carrying the
// sub-tick remainder over to the next poll. A host clock that reads
// earlier than the previous poll is skipped; after more than 10 such polls
// in a row the reference point is reset to the current host time. Nothing
// is logged.
func (h *HAL) poll() {
	now := timestamp.Now()

	h.mu.Lock()
	if now.Before(h.lastTick) {
		h.badTime++
		if h.badTime > 10 {
			h.lastTick = now
			h.badTime = 0
		}
		h.mu.Unlock()
		return
	}
	h.badTime = 0

	elapsed := now.Sub(h.lastTick)
	tickDuration := time.Second / time.Duration(h.maxFreq())
	n := uint32(elapsed / tickDuration)
	if n == 0 {
		h.mu.Unlock()
		return
	}
	h.lastTick = now.Add(-((elapsed) - tickDuration*time.Duration(n)))

	prevCounter := h.counter
	prevCompare := h.compare
	compareEnabled := h.compareEnabled
	overflowEnabled := h.overflowEnabled
	mask := h.mask
	irq := h.irq
	h.mu.Unlock()

	var ev lptimer.Event
	counter := prevCounter
	for i := uint32(0); i < n; i++ {
		next := (counter + 1) & mask
		if next < counter && overflowEnabled {
			ev |= lptimer.EventOverflow
		}
		if compareEnabled && next == prevCompare {
			ev |= lptimer.EventCompare
		}
		counter = next
	}

	h.mu.Lock()
	h.counter = counter
	h.mu.Unlock()

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
