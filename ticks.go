// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"strconv"
)

// Ticks represents a snapshot of the hardware counter (or a value derived
// from it, such as a compare target) confined to an N-bit modular ring,
// where N is the configured counter width (see Config.CounterBits).
//
// It has no 0 or reference value. Two Ticks values can be compared as long
// as the difference between them is strictly less than half the ring (the
// same constraint the hardware counter itself is subject to). Comparisons
// must always go through its methods, never raw operators, so wraparound
// is handled correctly (spec §9: "all counter comparisons must be done in
// the N-bit modular ring via unsigned subtraction; do not sign-extend or
// compare as signed").
//
// Unlike a fixed-width tick counter, the ring width here is a runtime
// parameter carried alongside the value rather than a package constant:
// the hardware counter this module multiplexes is not fixed at 32 bits
// (spec §1: "typically 32").
type Ticks struct {
	v    uint32
	mask uint32
}

// newTicks creates a Ticks value confined to the ring defined by mask
// (mask must be of the form 2^N-1).
func newTicks(v, mask uint32) Ticks {
	return Ticks{v & mask, mask}
}

// halfMask returns the ring's sign bit: the boundary past which a
// difference is considered to have wrapped.
func (t Ticks) halfMask() uint32 {
	return (t.mask >> 1) + 1
}

// Val returns the value as a uint32, masked to the ring width.
func (t Ticks) Val() uint32 {
	return t.v & t.mask
}

// EQ returns whether t == u, taking wraparound into account.
func (t Ticks) EQ(u Ticks) bool {
	return (t.v-u.v)&t.mask == 0
}

// NE returns whether t != u, taking wraparound into account.
func (t Ticks) NE(u Ticks) bool {
	return !t.EQ(u)
}

// LT returns whether t < u.
func (t Ticks) LT(u Ticks) bool {
	return (t.v-u.v)&t.halfMask() != 0
}

// GT returns whether t > u.
func (t Ticks) GT(u Ticks) bool {
	return !t.LT(u) && t.NE(u)
}

// GE returns whether t >= u.
func (t Ticks) GE(u Ticks) bool {
	return !t.LT(u)
}

// LE returns whether t <= u.
func (t Ticks) LE(u Ticks) bool {
	return t.LT(u) || t.EQ(u)
}

// Add adds another Ticks value and returns the result.
func (t Ticks) Add(u Ticks) Ticks {
	return Ticks{(t.v + u.v) & t.mask, t.mask}
}

// Sub subtracts another Ticks value and returns the result.
func (t Ticks) Sub(u Ticks) Ticks {
	return Ticks{(t.v - u.v) & t.mask, t.mask}
}

// AddU32 adds a raw uint32 and returns the result.
func (t Ticks) AddU32(u uint32) Ticks {
	return Ticks{(t.v + u) & t.mask, t.mask}
}

// SubU32 subtracts a raw uint32 and returns the result.
func (t Ticks) SubU32(u uint32) Ticks {
	return Ticks{(t.v - u) & t.mask, t.mask}
}

// String converts a Ticks value to a string.
func (t Ticks) String() string {
	return strconv.FormatUint(uint64(t.v), 10)
}
