// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"fmt"
	"strconv"
	"strings"
	gotime "time"

	"github.com/pingcap/errors"
	"github.com/pingcap/parser/mysql"
)

// Time format without fractional seconds precision.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	// TimeMaxHour is the max hour for mysql time type.
	TimeMaxHour = 838
	// TimeMaxMinute is the max minute for mysql time type.
	TimeMaxMinute = 59
	// TimeMaxSecond is the max second for mysql time type.
	TimeMaxSecond = 59
	// MaxTime is the maximum for mysql time type.
	MaxTime = gotime.Duration(TimeMaxHour*3600+TimeMaxMinute*60+TimeMaxSecond) * gotime.Second
)

// ZeroTime is the zero value for MysqlTime, i.e. '0000-00-00 00:00:00'.
var ZeroTime = MysqlTime{}

// MysqlTime is the internal struct type for Time.
type MysqlTime struct {
	year        uint16 // year <= 9999
	month       uint8  // month <= 12
	day         uint8  // day <= 31
	hour        uint8  // hour <= 23
	minute      uint8  // minute <= 59
	second      uint8  // second <= 59
	microsecond uint32
}

// FromDate makes a internal time representation from the given date.
func FromDate(year int, month int, day int, hour int, minute int, second int, microsecond int) MysqlTime {
	return MysqlTime{
		year:        uint16(year),
		month:       uint8(month),
		day:         uint8(day),
		hour:        uint8(hour),
		minute:      uint8(minute),
		second:      uint8(second),
		microsecond: uint32(microsecond),
	}
}

// FromGoTime translates time.Time to mysql time internal representation.
func FromGoTime(t gotime.Time) MysqlTime {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	// Nanosecond plus 500 then divided 1000 means rounding to microseconds.
	microsecond := (t.Nanosecond() + 500) / 1000
	if microsecond == 1000000 {
		return FromGoTime(t.Truncate(gotime.Second).Add(gotime.Second))
	}
	return FromDate(year, int(month), day, hour, minute, second, microsecond)
}

// Year returns the year value.
func (t MysqlTime) Year() int { return int(t.year) }

// Month returns the month value.
func (t MysqlTime) Month() int { return int(t.month) }

// Day returns the day value.
func (t MysqlTime) Day() int { return int(t.day) }

// Hour returns the hour value.
func (t MysqlTime) Hour() int { return int(t.hour) }

// Minute returns the minute value.
func (t MysqlTime) Minute() int { return int(t.minute) }

// Second returns the second value.
func (t MysqlTime) Second() int { return int(t.second) }

// Microsecond returns the microsecond value.
func (t MysqlTime) Microsecond() int { return int(t.microsecond) }

// GoTime converts MysqlTime to time.Time. Dates that do not exist in the
// Gregorian calendar, including the zero date, are rejected.
func (t MysqlTime) GoTime(loc *gotime.Location) (gotime.Time, error) {
	tm := gotime.Date(t.Year(), gotime.Month(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Microsecond()*1000, loc)
	year, month, day := tm.Date()
	if year != t.Year() || int(month) != t.Month() || day != t.Day() {
		return gotime.Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(t)
	}
	return tm, nil
}

// String implements fmt.Stringer.
func (t MysqlTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
		t.year, t.month, t.day, t.hour, t.minute, t.second, t.microsecond)
}

// Time is the struct for handling datetime, timestamp and date.
type Time struct {
	Time MysqlTime
	Type uint8
	// Fsp is short for Fractional Seconds Precision.
	// See http://dev.mysql.com/doc/refman/5.7/en/fractional-seconds.html
	Fsp int
}

// IsZero returns a boolean indicating whether the time is equal to ZeroTime.
func (t Time) IsZero() bool {
	return t.Time == ZeroTime
}

// String formats t according to its type and fsp.
func (t Time) String() string {
	tm := t.Time
	if t.Type == mysql.TypeDate {
		return fmt.Sprintf("%04d-%02d-%02d", tm.year, tm.month, tm.day)
	}
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", tm.year, tm.month, tm.day, tm.hour, tm.minute, tm.second)
	if t.Fsp > 0 {
		frac := fmt.Sprintf("%06d", tm.microsecond)
		s += "." + frac[:t.Fsp]
	}
	return s
}

// Compare returns an integer comparing the time instant t to o.
// If t is after o, return 1, equal o, return 0, before o, return -1.
// Type and Fsp take no part in the ordering.
func (t Time) Compare(o Time) int {
	return CompareUint64(packTime(t.Time), packTime(o.Time))
}

// ConvertTimeZone converts the time value from one timezone to another.
// The input time should be a valid timestamp.
func (t *Time) ConvertTimeZone(from, to *gotime.Location) error {
	if t.IsZero() {
		return nil
	}
	raw, err := t.Time.GoTime(from)
	if err != nil {
		return errors.Trace(err)
	}
	t.Time = FromGoTime(raw.In(to))
	return nil
}

// ToPackedUint encodes Time to a packed uint64 value.
//
//    1 bit  0
//   17 bits year*13+month   (year 0-9999, month 0-12)
//    5 bits day             (0-31)
//    5 bits hour            (0-23)
//    6 bits minute          (0-59)
//    6 bits second          (0-59)
//   24 bits microseconds    (0-999999)
//
//   Total: 64 bits = 8 bytes
//
//   0YYYYYYY.YYYYYYYY.YYdddddh.hhhhmmmm.mmssssss.ffffffff.ffffffff.ffffffff
//
// The packed value grows with the time instant, so it is also used for ordering.
func (t Time) ToPackedUint() uint64 {
	return packTime(t.Time)
}

func packTime(tm MysqlTime) uint64 {
	ymd := uint64(((tm.Year()*13 + tm.Month()) << 5) | tm.Day())
	hms := uint64(tm.Hour()<<12 | tm.Minute()<<6 | tm.Second())
	return ((ymd<<17 | hms) << 24) | uint64(tm.Microsecond())
}

// FromPackedUint decodes Time from a packed uint64 value.
func (t *Time) FromPackedUint(packed uint64) {
	if packed == 0 {
		t.Time = ZeroTime
		return
	}
	ymdhms := packed >> 24
	ymd := ymdhms >> 17
	day := int(ymd & (1<<5 - 1))
	ym := ymd >> 5
	month := int(ym % 13)
	year := int(ym / 13)

	hms := ymdhms & (1<<17 - 1)
	second := int(hms & (1<<6 - 1))
	minute := int((hms >> 6) & (1<<6 - 1))
	hour := int(hms >> 12)
	microsec := int(packed % (1 << 24))

	t.Time = FromDate(year, month, day, hour, minute, second, microsec)
}

// ParseTime parses a formatted string with type tp and specific fsp.
// Accepted layouts are 'YYYY-MM-DD' and 'YYYY-MM-DD HH:MM:SS[.fraction]',
// with ' ' or 'T' between the date and the clock. The zero date is valid.
func ParseTime(str string, tp byte, fsp int) (Time, error) {
	fsp, err := CheckFsp(fsp)
	if err != nil {
		return Time{}, errors.Trace(err)
	}
	str = strings.TrimSpace(str)
	datePart, clockPart := str, ""
	if idx := strings.IndexAny(str, " T"); idx >= 0 {
		datePart, clockPart = str[:idx], strings.TrimSpace(str[idx+1:])
	}

	ymd, err := splitInts(datePart, "-", 3)
	if err != nil {
		return Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(str)
	}
	var hms [3]int
	var micro int
	var overflow bool
	if clockPart != "" {
		clock, fracStr := clockPart, ""
		if idx := strings.IndexByte(clockPart, '.'); idx >= 0 {
			clock, fracStr = clockPart[:idx], clockPart[idx+1:]
		}
		parts, err := splitInts(clock, ":", 3)
		if err != nil {
			return Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(str)
		}
		copy(hms[:], parts)
		micro, overflow, err = ParseFrac(fracStr, fsp)
		if err != nil {
			return Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(str)
		}
	}

	if ymd[0] > 9999 || ymd[1] > 12 || ymd[2] > 31 || hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(str)
	}
	tm := FromDate(ymd[0], ymd[1], ymd[2], hms[0], hms[1], hms[2], micro)
	if tm != ZeroTime || overflow {
		gt, err := tm.GoTime(gotime.UTC)
		if err != nil {
			return Time{}, ErrInvalidTimeFormat.GenWithStackByArgs(str)
		}
		if overflow {
			tm = FromGoTime(gt.Add(gotime.Second))
		}
	}
	if tp == mysql.TypeDate {
		tm = FromDate(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0)
		fsp = DefaultFsp
	}
	return Time{Time: tm, Type: tp, Fsp: fsp}, nil
}

func splitInts(s, sep string, n int) ([]int, error) {
	fields := strings.Split(s, sep)
	if len(fields) != n {
		return nil, errors.Errorf("expect %d fields in %q", n, s)
	}
	vals := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, errors.Errorf("invalid field %q in %q", f, s)
		}
		vals[i] = v
	}
	return vals, nil
}

// Duration is the type for MySQL TIME type.
type Duration struct {
	gotime.Duration
	// Fsp is short for Fractional Seconds Precision.
	// See http://dev.mysql.com/doc/refman/5.7/en/fractional-seconds.html
	Fsp int
}

// Compare returns an integer comparing the Duration instant t to o.
// If d is after o, return 1, equal o, return 0, before o, return -1.
func (d Duration) Compare(o Duration) int {
	return CompareInt64(int64(d.Duration), int64(o.Duration))
}

// String returns the time formatted using default TimeFormat and fsp.
func (d Duration) String() string {
	var sb strings.Builder
	dur := d.Duration
	if dur < 0 {
		sb.WriteByte('-')
		dur = -dur
	}
	hours := dur / gotime.Hour
	dur -= hours * gotime.Hour
	minutes := dur / gotime.Minute
	dur -= minutes * gotime.Minute
	seconds := dur / gotime.Second
	dur -= seconds * gotime.Second
	fmt.Fprintf(&sb, "%02d:%02d:%02d", hours, minutes, seconds)
	if d.Fsp > 0 {
		frac := fmt.Sprintf("%06d", dur/gotime.Microsecond)
		sb.WriteString(".")
		sb.WriteString(frac[:d.Fsp])
	}
	return sb.String()
}

// ParseDuration parses the time form of MySQL TIME: '[-][D ]HH:MM[:SS][.fraction]'
// or the numeric form 'HHMMSS[.fraction]'. Values beyond '838:59:59' are rejected.
func ParseDuration(str string, fsp int) (Duration, error) {
	fsp, err := CheckFsp(fsp)
	if err != nil {
		return Duration{}, errors.Trace(err)
	}
	s := strings.TrimSpace(str)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var day int
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		day, err = strconv.Atoi(s[:idx])
		if err != nil || day < 0 {
			return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	fracStr := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s, fracStr = s[:idx], s[idx+1:]
	}

	var hour, minute, second int
	switch strings.Count(s, ":") {
	case 0:
		num, err := strconv.Atoi(s)
		if err != nil || num < 0 {
			return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
		}
		hour, minute, second = num/10000, num/100%100, num%100
	case 1:
		parts, err := splitInts(s, ":", 2)
		if err != nil {
			return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
		}
		hour, minute = parts[0], parts[1]
	default:
		parts, err := splitInts(s, ":", 3)
		if err != nil {
			return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
		}
		hour, minute, second = parts[0], parts[1], parts[2]
	}
	if minute > 59 || second > 59 {
		return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
	}
	micro, overflow, err := ParseFrac(fracStr, fsp)
	if err != nil {
		return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
	}

	dur := gotime.Duration(day*24+hour)*gotime.Hour +
		gotime.Duration(minute)*gotime.Minute +
		gotime.Duration(second)*gotime.Second +
		gotime.Duration(micro)*gotime.Microsecond
	if overflow {
		dur += gotime.Second
	}
	if dur > MaxTime {
		return Duration{}, ErrInvalidDuration.GenWithStackByArgs(str)
	}
	if negative {
		dur = -dur
	}
	return Duration{Duration: dur, Fsp: fsp}, nil
}
