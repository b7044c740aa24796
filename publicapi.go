// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

// StartTimer arms h as a one-shot timer expiring after ticks ticks, then
// invoking cb(s, h, data). It fails with ErrNullPointer if h or cb is nil,
// and with ErrNotReady if h is already running (spec §3: "starting an
// already-running one-shot timer is an error, not an implicit restart").
func (s *Scheduler) StartTimer(h *TimerHandle, ticks uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	return s.start(h, ticks, 0, cb, data, priority, flags)
}

// StartPeriodicTimer arms h to fire every period ticks, starting after
// the first period elapses. It fails with ErrInvalidState if h is already
// running (spec §3: restarting a periodic timer requires an explicit
// RestartPeriodicTimer call).
func (s *Scheduler) StartPeriodicTimer(h *TimerHandle, period uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	if period == 0 {
		return ErrInvalidParameter
	}
	return s.start(h, period, period, cb, data, priority, flags)
}

func (s *Scheduler) start(h *TimerHandle, ticks, period uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	if h == nil || cb == nil {
		return ErrNullPointer
	}
	s.enterCritical()
	defer s.exitCritical()
	if h.linked {
		if period != 0 {
			return ErrInvalidState
		}
		return ErrNotReady
	}
	h.timeoutPeriodic = period
	h.callback = cb
	h.callbackData = data
	h.priority = priority
	h.optionFlags = flags
	if ticks == 0 {
		s.fireNowLocked(h)
		return nil
	}
	h.delta = ticks
	s.linkLocked(h)
	return nil
}

// fireNowLocked implements the timeout_initial == 0 edge policy (spec
// §4.1): the callback runs synchronously instead of arming the compare
// register for a deadline that has, in effect, already passed — arming it
// would program SetCompare with the current counter value, which the
// hardware only matches on the next full wrap. If h is periodic it is
// reinserted with the periodic timeout afterwards, unless the callback
// already linked it again; otherwise it is left unlinked. Caller must
// already hold the critical section; the callback
// itself runs with it released (spec §5).
func (s *Scheduler) fireNowLocked(h *TimerHandle) {
	cb := h.callback
	data := h.callbackData
	s.exitCritical()
	if cb != nil {
		cb(s, h, data)
	}
	s.enterCritical()
	if h.timeoutPeriodic != 0 && !h.linked {
		h.delta = h.timeoutPeriodic
		s.linkLocked(h)
	}
}

// RestartTimer re-arms h as a one-shot timer for another ticks ticks from
// now, reconfiguring its callback, data, priority and flags, and removing
// it first if it was already linked. Unlike StartTimer it always
// succeeds regardless of h's prior state (spec §6: restart_timer takes
// the same full parameter set as start_timer).
func (s *Scheduler) RestartTimer(h *TimerHandle, ticks uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	return s.restart(h, ticks, 0, cb, data, priority, flags)
}

// RestartPeriodicTimer re-arms h as a periodic timer with the given
// period, reconfiguring its callback, data, priority and flags, taking
// effect starting now.
func (s *Scheduler) RestartPeriodicTimer(h *TimerHandle, period uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	if period == 0 {
		return ErrInvalidParameter
	}
	return s.restart(h, period, period, cb, data, priority, flags)
}

func (s *Scheduler) restart(h *TimerHandle, ticks, period uint32, cb TimerCallback, data interface{}, priority uint8, flags uint16) error {
	if h == nil || cb == nil {
		return ErrNullPointer
	}
	s.enterCritical()
	defer s.exitCritical()
	if h.linked {
		s.head = deltaRemove(s.head, h)
	}
	h.timeoutPeriodic = period
	h.callback = cb
	h.callbackData = data
	h.priority = priority
	h.optionFlags = flags
	if ticks == 0 {
		s.fireNowLocked(h)
		return nil
	}
	h.delta = ticks
	s.linkLocked(h)
	return nil
}

// linkLocked inserts h into the delta list and re-arms the compare
// register. Caller must already hold the critical section.
func (s *Scheduler) linkLocked(h *TimerHandle) {
	now := s.counterTicks()
	s.refreshHeadDelta(now)
	s.head = deltaInsert(s.head, h)
	s.armCompare()
}

// StopTimer removes h from the scheduler. It returns ErrInvalidState,
// leaving the list unchanged, if h is not running.
func (s *Scheduler) StopTimer(h *TimerHandle) error {
	if h == nil {
		return ErrNullPointer
	}
	s.enterCritical()
	defer s.exitCritical()
	if !h.linked {
		return ErrInvalidState
	}
	s.unlink(h)
	return nil
}

// IsTimerRunning reports whether h is currently scheduled.
func (s *Scheduler) IsTimerRunning(h *TimerHandle) bool {
	if h == nil {
		return false
	}
	s.enterCritical()
	defer s.exitCritical()
	return h.linked
}

// GetTimerTimeRemaining returns the ticks remaining until h next fires.
// It returns ErrNotReady if h is not currently scheduled (spec §4.1).
func (s *Scheduler) GetTimerTimeRemaining(h *TimerHandle) (uint32, error) {
	if h == nil {
		return 0, ErrNullPointer
	}
	s.enterCritical()
	defer s.exitCritical()
	if !h.linked {
		return 0, ErrNotReady
	}
	now := s.counterTicks()
	s.refreshHeadDelta(now)
	var sum uint32
	for cur := s.head; cur != nil; cur = cur.next {
		sum += cur.delta
		if cur == h {
			return sum, nil
		}
	}
	// h.linked was true but not reachable: bookkeeping is inconsistent.
	BUG("GetTimerTimeRemaining: linked handle not found in list")
	h.linked = false
	return 0, ErrNotReady
}

// GetRemainingTimeOfFirst returns the ticks remaining until the soonest
// handle whose OptionFlags, ANDed with mask, equals match, fires. It
// returns ErrEmpty if no scheduled handle matches (spec §4.1, used by
// embedders that classify timers, e.g. "any radio-keepalive timer").
func (s *Scheduler) GetRemainingTimeOfFirst(mask, match uint16) (uint32, error) {
	s.enterCritical()
	defer s.exitCritical()
	now := s.counterTicks()
	s.refreshHeadDelta(now)
	var sum uint32
	for cur := s.head; cur != nil; cur = cur.next {
		sum += cur.delta
		if cur.optionFlags&mask == match {
			return sum, nil
		}
	}
	return 0, ErrEmpty
}
