// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

// TimerCallback is invoked when a timer expires. s is the scheduler that
// dispatched it, h is the handle that fired, and data is the opaque
// argument passed to StartTimer, RestartTimer or their periodic variants.
//
// The callback runs outside the scheduler's critical section (spec §5:
// "User callbacks run with interrupts enabled ... without the
// critical-section lock"), so it may safely call back into any public
// Scheduler method, including stopping or restarting h itself.
type TimerCallback func(s *Scheduler, h *TimerHandle, data interface{})

// TimerHandle is owned by the caller for its entire active lifetime: the
// caller allocates it (or embeds it in a larger struct), initializes it
// implicitly on first StartTimer/StartPeriodicTimer, and must not destroy it while
// IsTimerRunning(h) is true (spec §3, §9 "Handle ownership").
//
// The scheduler borrows a handle while it is linked into the delta list;
// all mutation happens under the scheduler's critical section, never
// concurrently, matching the single-core/no-re-entrancy execution model
// (spec §5).
type TimerHandle struct {
	// delta is the number of ticks from the previous list entry (or from
	// lastUpdate, if this is the head) until this handle's expiry.
	delta uint32
	// next links to the following handle in the delta list; nil at tail.
	next *TimerHandle
	// timeoutPeriodic is the reload value in ticks for periodic timers, 0
	// for one-shot timers.
	timeoutPeriodic uint32

	callback     TimerCallback
	callbackData interface{}

	priority    uint8
	optionFlags uint16

	// linked is true iff this handle is reachable from the scheduler's
	// head (spec I3: "A handle is 'in the list' iff reachable from the
	// head").
	linked bool
}

// NewTimerHandle returns a fresh, inactive handle ready to be passed to
// StartTimer, StartPeriodicTimer, RestartTimer or RestartPeriodicTimer.
func NewTimerHandle() *TimerHandle {
	return &TimerHandle{}
}

// Priority returns the handle's configured priority (0 is highest).
func (h *TimerHandle) Priority() uint8 {
	return h.priority
}

// OptionFlags returns the handle's opaque classification tag.
func (h *TimerHandle) OptionFlags() uint16 {
	return h.optionFlags
}

// Periodic reports whether the handle is configured to reload on expiry.
func (h *TimerHandle) Periodic() bool {
	return h.timeoutPeriodic != 0
}
