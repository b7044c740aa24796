// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import "time"

// CalendarDate is a proleptic-Gregorian broken-down date and time. Year
// is stored as an offset from 1900 (spec §3: "the year field in a date is
// stored as an offset from 1900, i.e. UNIX year = stored year − 70"), so
// 2020 is represented as 120. Month is 0-11, day-of-month is 1-31.
type CalendarDate struct {
	Year      int32
	Month     uint8
	Day       uint8
	Hour      uint8
	Minute    uint8
	Second    uint8
	DayOfWeek uint8 // 0-6, 0 = Sunday
	DayOfYear uint16
	TZOffset  int32 // signed seconds east of UTC
}

// yearOffset is the base the CalendarDate.Year field is relative to.
const yearOffset = 1900

func fullYear(d CalendarDate) int32 {
	return d.Year + yearOffset
}

func isLeapYear(year int32) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysInMonthTable = [12]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysInMonth takes a full year and a 0-11 month.
func daysInMonth(year int32, month uint8) uint8 {
	if month == 1 && isLeapYear(year) {
		return 29
	}
	return daysInMonthTable[month]
}

func daysInYear(year int32) uint16 {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

// unix2038CutoffYear is the stored (offset-from-1900) year of the 2038
// rollover, used to clamp dates in that year to the last representable
// 32-bit UNIX instant (spec §4.4: "if year == 2038-offset, clamps to
// January 19, 03:14:07").
const unix2038CutoffYear = 2038 - yearOffset

func isValidDate(d CalendarDate) bool {
	year := fullYear(d)
	if d.Month > 11 {
		return false
	}
	if d.Day < 1 || d.Day > daysInMonth(year, d.Month) {
		return false
	}
	if d.Hour > 23 || d.Minute > 59 || d.Second > 59 {
		return false
	}
	if d.Year == unix2038CutoffYear && d.Month == 0 && d.Day == 19 {
		if d.Hour > 3 || (d.Hour == 3 && (d.Minute > 14 || (d.Minute == 14 && d.Second > 7))) {
			return false
		}
	} else if d.Year >= unix2038CutoffYear+1 ||
		(d.Year == unix2038CutoffYear && (d.Month > 0 || d.Day > 19)) {
		return false
	}
	return true
}

// daysSinceEpoch counts the days from 1970-01-01 to the given full year
// and 0-11 month / 1-31 day, iterating year by year and month by month
// rather than using a closed-form formula, so the result can be checked
// step by step against the calendar tables above without running the
// conversion.
func daysSinceEpoch(year int32, month, day uint8) int64 {
	var days int64
	if year >= 1970 {
		for y := int32(1970); y < year; y++ {
			days += int64(daysInYear(y))
		}
	} else {
		for y := year; y < 1970; y++ {
			days -= int64(daysInYear(y))
		}
	}
	for m := uint8(0); m < month; m++ {
		days += int64(daysInMonth(year, m))
	}
	days += int64(day) - 1
	return days
}

// civilFromDays converts a day count relative to 1970-01-01 back into a
// (full year, 0-11 month, 1-31 day) triple, walking forward or backward
// one year/month at a time for the same auditability reason as
// daysSinceEpoch.
func civilFromDays(days int64) (int32, uint8, uint8) {
	year := int32(1970)
	if days >= 0 {
		for days >= int64(daysInYear(year)) {
			days -= int64(daysInYear(year))
			year++
		}
	} else {
		for days < 0 {
			year--
			days += int64(daysInYear(year))
		}
	}
	month := uint8(0)
	for days >= int64(daysInMonth(year, month)) {
		days -= int64(daysInMonth(year, month))
		month++
	}
	day := uint8(days) + 1
	return year, month, day
}

// dayOfWeek returns 0-6 (0 = Sunday) for the given day count relative to
// 1970-01-01, which was a Thursday (spec §4.3: "(days_since_1970 + 4) mod
// 7").
func dayOfWeek(days int64) uint8 {
	d := (days + 4) % 7
	if d < 0 {
		d += 7
	}
	return uint8(d)
}

// dayOfYear returns 1-366 for the given full year / 0-11 month / 1-31 day.
func dayOfYear(year int32, month, day uint8) uint16 {
	var n uint16
	for m := uint8(0); m < month; m++ {
		n += uint16(daysInMonth(year, m))
	}
	return n + uint16(day)
}

// convertTimeToDate converts UTC seconds-since-epoch plus a signed
// timezone offset to a fully populated broken-down date, truncating
// toward negative infinity for instants before 1970 (spec §4.3).
func convertTimeToDate(sec int64, tzOffsetSec int32) CalendarDate {
	local := sec + int64(tzOffsetSec)
	days := local / 86400
	rem := local % 86400
	if rem < 0 {
		rem += 86400
		days--
	}
	year, month, day := civilFromDays(days)
	return CalendarDate{
		Year:      year - yearOffset,
		Month:     month,
		Day:       day,
		Hour:      uint8(rem / 3600),
		Minute:    uint8((rem % 3600) / 60),
		Second:    uint8(rem % 60),
		DayOfWeek: dayOfWeek(days),
		DayOfYear: dayOfYear(year, month, day),
		TZOffset:  tzOffsetSec,
	}
}

// convertDateToTime converts a broken-down date (its TZOffset field
// applied as a correction back to UTC) to UTC seconds-since-epoch. It
// returns ErrInvalidParameter if d fails calendar validation (spec §4.3,
// §7).
func convertDateToTime(d CalendarDate) (int64, error) {
	if !isValidDate(d) {
		return 0, ErrInvalidParameter
	}
	year := fullYear(d)
	days := daysSinceEpoch(year, d.Month, d.Day)
	local := days*86400 + int64(d.Hour)*3600 + int64(d.Minute)*60 + int64(d.Second)
	return local - int64(d.TZOffset), nil
}

// BuildDateTime validates and assembles a CalendarDate from its
// individual fields, returning ErrInvalidParameter for any
// out-of-range value (e.g. 2021-02-29) (spec §6, S5).
func BuildDateTime(year int32, month, day, hour, minute, second uint8, tzOffsetSec int32) (CalendarDate, error) {
	d := CalendarDate{
		Year:     year,
		Month:    month,
		Day:      day,
		Hour:     hour,
		Minute:   minute,
		Second:   second,
		TZOffset: tzOffsetSec,
	}
	if !isValidDate(d) {
		return CalendarDate{}, ErrInvalidParameter
	}
	full := fullYear(d)
	days := daysSinceEpoch(full, d.Month, d.Day)
	d.DayOfWeek = dayOfWeek(days)
	d.DayOfYear = dayOfYear(full, d.Month, d.Day)
	return d, nil
}

// ConvertTimeToDate is the exported wrapper around convertTimeToDate.
func ConvertTimeToDate(sec int64, tzOffsetSec int32) CalendarDate {
	return convertTimeToDate(sec, tzOffsetSec)
}

// ConvertDateToTime is the exported wrapper around convertDateToTime.
func ConvertDateToTime(d CalendarDate) (int64, error) {
	return convertDateToTime(d)
}

// ConvertDateToStr renders d with a Go reference-time layout string, as
// accepted by time.Time.Format (e.g. "2006-01-02 15:04:05"), by converting
// d to a time.Time in a fixed zone of d.TZOffset seconds. strftime-style
// "%" directives are not interpreted and appear verbatim in the output.
func ConvertDateToStr(d CalendarDate, layout string) string {
	return timeFromDate(d).Format(layout)
}

func timeFromDate(d CalendarDate) time.Time {
	return time.Date(int(fullYear(d)), time.Month(int(d.Month)+1), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, time.FixedZone("", int(d.TZOffset)))
}

// GetDateTime returns the wall clock's current time as a broken-down date
// using the scheduler's configured timezone, or UTC if none was set.
func (s *Scheduler) GetDateTime() (CalendarDate, error) {
	sec, err := s.GetTime()
	if err != nil {
		return CalendarDate{}, err
	}
	tz, _, err := s.GetTZ()
	if err != nil {
		return CalendarDate{}, err
	}
	return convertTimeToDate(sec, tz), nil
}

// SetDateTime sets the wall clock from a broken-down date.
func (s *Scheduler) SetDateTime(d CalendarDate) error {
	sec, err := convertDateToTime(d)
	if err != nil {
		return err
	}
	return s.SetTime(sec)
}
