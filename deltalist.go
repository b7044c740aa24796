// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

// deltaInsert inserts h into the sorted delta list rooted at head so that
// the running sum of deltas along the list, starting from the scheduler's
// last update point, gives each handle's absolute expiry (spec §4.1: "a
// singly linked list where each node stores only the ticks remaining
// relative to the previous node").
//
// h.delta must already hold the desired *absolute* offset (in ticks, from
// the last update point) before calling deltaInsert; on return it holds the
// correct *relative* offset and the successor's delta has been reduced to
// match.
//
// Equal-deadline handles are ordered by priority (lower value first), and
// equal-deadline-equal-priority handles preserve insertion order (FIFO),
// per the ordering guarantee in spec §5.
func deltaInsert(head *TimerHandle, h *TimerHandle) *TimerHandle {
	remaining := h.delta
	var prev *TimerHandle
	cur := head

	for cur != nil {
		if remaining > cur.delta ||
			(remaining == cur.delta && h.priority >= cur.priority) {
			remaining -= cur.delta
			prev = cur
			cur = cur.next
			continue
		}
		break
	}

	h.delta = remaining
	h.next = cur
	h.linked = true
	if cur != nil {
		cur.delta -= remaining
	}
	if prev == nil {
		return h
	}
	prev.next = h
	return head
}

// deltaRemove unlinks h from the list rooted at head, folding its delta
// into its successor so every other handle's absolute expiry is unchanged
// (spec §4.1, I3). It is a no-op (returning head unchanged) if h is not
// linked.
func deltaRemove(head *TimerHandle, h *TimerHandle) *TimerHandle {
	if !h.linked {
		return head
	}

	var prev *TimerHandle
	cur := head
	for cur != nil && cur != h {
		prev = cur
		cur = cur.next
	}
	if cur != h {
		// Not reachable from head: caller's linked bookkeeping is stale.
		BUG("deltaRemove: handle marked linked but not found in list")
		h.linked = false
		return head
	}

	next := h.next
	if next != nil {
		next.delta += h.delta
	}
	h.linked = false
	h.next = nil
	h.delta = 0

	if prev == nil {
		return next
	}
	prev.next = next
	return head
}

// deltaForEach walks the list from head invoking fn on every handle in
// order. fn must not mutate the list.
func deltaForEach(head *TimerHandle, fn func(h *TimerHandle)) {
	for cur := head; cur != nil; cur = cur.next {
		fn(cur)
	}
}
