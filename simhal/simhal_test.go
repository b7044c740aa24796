// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package simhal

import (
	"testing"

	"github.com/intuitivelabs/lptimer"
)

func TestCounterWraps(t *testing.T) {
	h := New(4, 1000, nil) // 4-bit counter, 0..15
	h.InitTimer()
	h.Step(16)
	if got := h.Counter(); got != 0 {
		t.Fatalf("Counter() after 16 steps on a 4-bit ring = %d, want 0", got)
	}
}

func TestOverflowDelivered(t *testing.T) {
	var got lptimer.Event
	h := New(4, 1000, func(ev lptimer.Event) { got |= ev })
	h.InitTimer()
	h.EnableInt(lptimer.EventOverflow)
	h.Step(16)
	if got&lptimer.EventOverflow == 0 {
		t.Fatalf("expected EventOverflow to be delivered, got %v", got)
	}
}

func TestCompareDelivered(t *testing.T) {
	var got lptimer.Event
	h := New(8, 1000, func(ev lptimer.Event) { got |= ev })
	h.InitTimer()
	h.SetCompare(5)
	h.EnableInt(lptimer.EventCompare)
	h.Step(5)
	if got&lptimer.EventCompare == 0 {
		t.Fatalf("expected EventCompare to be delivered, got %v", got)
	}
}

func TestDisabledInterruptsAreSuppressed(t *testing.T) {
	fired := false
	h := New(8, 1000, func(lptimer.Event) { fired = true })
	h.InitTimer()
	h.SetCompare(3)
	// Neither EnableInt call made: nothing should fire.
	h.Step(20)
	if fired {
		t.Fatalf("IRQ callback fired with both interrupts disabled")
	}
}
