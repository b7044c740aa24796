// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

// ntpUnixOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the UNIX epoch (1970-01-01).
const ntpUnixOffset = 2208988800

// zigbeeUnixOffset is the number of seconds between the Zigbee epoch
// (2000-01-01) and the UNIX epoch.
const zigbeeUnixOffset = 946684800

// unixMax is the largest UNIX timestamp representable once converted to
// a signed 32-bit value (2038-01-19 03:14:07 UTC), the format-specific
// bound referenced by IsValidTime for TimeFormatUnix32 (spec §4.4, §9:
// "the 2038 cutoff must be derived from one constant, not duplicated").
const unixMax = 0x7FFFFFFF

// TimeFormat identifies which wire/epoch representation a timestamp is
// being validated or converted against (spec §4.4).
type TimeFormat uint8

const (
	TimeFormatUnix32 TimeFormat = iota
	TimeFormatNTP32
	TimeFormatZigbee32
)

// UnixToNTP converts a UNIX timestamp to its NTP (seconds since
// 1900-01-01) representation. It returns ErrInvalidParameter if the
// result would overflow a uint32, which for 32-bit NTP timestamps can
// already happen well before the 2038 UNIX cutoff (sec >= 2085978496)
// (spec §9, resolved open question).
func UnixToNTP(sec uint32) (uint32, error) {
	v := uint64(sec) + ntpUnixOffset
	if v > 0xFFFFFFFF {
		return 0, ErrInvalidParameter
	}
	return uint32(v), nil
}

// NTPToUnix converts an NTP timestamp back to UNIX seconds. It returns
// ErrInvalidParameter if ntp predates the UNIX epoch.
func NTPToUnix(ntp uint32) (uint32, error) {
	if ntp < ntpUnixOffset {
		return 0, ErrInvalidParameter
	}
	return ntp - ntpUnixOffset, nil
}

// UnixToZigbee converts a UNIX timestamp to Zigbee time (seconds since
// 2000-01-01). It returns ErrInvalidParameter if sec predates the Zigbee
// epoch.
func UnixToZigbee(sec uint32) (uint32, error) {
	if sec < zigbeeUnixOffset {
		return 0, ErrInvalidParameter
	}
	return sec - zigbeeUnixOffset, nil
}

// ZigbeeToUnix converts a Zigbee timestamp back to UNIX seconds. It
// returns ErrInvalidParameter if the result would overflow a uint32.
func ZigbeeToUnix(zb uint32) (uint32, error) {
	v := uint64(zb) + zigbeeUnixOffset
	if v > 0xFFFFFFFF {
		return 0, ErrInvalidParameter
	}
	return uint32(v), nil
}

// IsValidTime reports whether sec is representable in the given wire
// format once adjusted by tzOffsetSec. It is the conjunction of two
// independent checks, combined with a plain && rather than folded into a
// single bitwise test (spec §9, resolved open question: a timestamp
// failing the timezone bound must not be silently rewritten into a
// different, format-specific failure than the one that actually applies):
//
//  1. The timezone-sign bound (spec §4.4): if tzOffsetSec < 0, sec must
//     exceed |tzOffsetSec|; otherwise sec plus the offset must not wrap
//     past 2^32-1.
//  2. The format-specific bound: UNIX timestamps must not exceed the 2038
//     cutoff; NTP timestamps must be at least ntpUnixOffset (so
//     NTPToUnix cannot underflow); Zigbee timestamps plus
//     zigbeeUnixOffset must not exceed the 2038 cutoff.
func IsValidTime(sec uint32, format TimeFormat, tzOffsetSec int32) bool {
	return isValidTZBound(sec, tzOffsetSec) && isValidTimeFormat(sec, format)
}

func isValidTZBound(sec uint32, tzOffsetSec int32) bool {
	if tzOffsetSec < 0 {
		return sec > uint32(-tzOffsetSec)
	}
	return uint64(sec)+uint64(tzOffsetSec) <= 0xFFFFFFFF
}

func isValidTimeFormat(sec uint32, format TimeFormat) bool {
	switch format {
	case TimeFormatUnix32:
		return sec <= unixMax
	case TimeFormatNTP32:
		return sec >= ntpUnixOffset
	case TimeFormatZigbee32:
		return uint64(sec)+zigbeeUnixOffset <= unixMax
	default:
		return false
	}
}
