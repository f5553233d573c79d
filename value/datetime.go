package value

import (
	"fmt"
	"time"
)

// FormatKind selects which of the six overridable format strings applies
// (spec §3 Environment, §6 Format strings).
type FormatKind int

const (
	FormatDate FormatKind = iota
	FormatTimestamp
	FormatTimestampTZ
	FormatNumeric
	FormatBinaryFloat
	FormatBinaryDouble
)

// DefaultFormat returns the caller-overridable default pattern for kind
// (spec §6).
func DefaultFormat(kind FormatKind) string {
	switch kind {
	case FormatDate:
		return "YYYY-MM-DD HH24:MI:SS"
	case FormatTimestamp:
		return "YYYY-MM-DD HH24:MI:SS.FF"
	case FormatTimestampTZ:
		return "YYYY-MM-DD HH24:MI:SS.FF TZR"
	case FormatNumeric:
		return "FM99999999999999990.999999999999999"
	case FormatBinaryFloat, FormatBinaryDouble:
		return "%.*f"
	default:
		return ""
	}
}

// Date wraps the vendor DATE descriptor: year/month/day/hour/minute/second,
// no sub-second precision or timezone (spec §3).
type Date struct {
	Year                              int
	Month, Day                        int
	Hour, Minute, Second              int
}

// NewDateFromTime truncates a time.Time to DATE precision.
func NewDateFromTime(t time.Time) Date {
	return Date{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
}

// Time converts back to a time.Time in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// Timestamp adds fractional-second precision to Date (spec §3).
// Grounded on the teacher's Timestamp/TimestampPrecision (types.go),
// generalized from ODBC's 4 fixed precisions to OCI's FS9 nanosecond
// fractional field.
type Timestamp struct {
	Date
	Nanosecond int
}

// NewTimestampFromTime builds a Timestamp from a time.Time.
func NewTimestampFromTime(t time.Time) Timestamp {
	return Timestamp{NewDateFromTime(t), t.Nanosecond()}
}

func (t Timestamp) Time(loc *time.Location) time.Time {
	base := t.Date.Time(loc)
	return base.Add(time.Duration(t.Nanosecond))
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%s.%09d", t.Date.String(), t.Nanosecond)
}

// TimestampTZ adds an explicit zone offset to Timestamp (spec §3), grounded
// on the teacher's TimestampTZ.
type TimestampTZ struct {
	Timestamp
	OffsetMinutes int
}

func NewTimestampTZFromTime(t time.Time) TimestampTZ {
	_, offsetSec := t.Zone()
	return TimestampTZ{NewTimestampFromTime(t), offsetSec / 60}
}

func (t TimestampTZ) Time() time.Time {
	loc := time.FixedZone("", t.OffsetMinutes*60)
	return t.Timestamp.Time(loc)
}

func (t TimestampTZ) String() string {
	sign := "+"
	m := t.OffsetMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s %s%02d:%02d", t.Timestamp.String(), sign, m/60, m%60)
}

// IntervalYearMonth mirrors the teacher's IntervalYearMonth.
type IntervalYearMonth struct {
	Years, Months int
	Negative      bool
}

func (i IntervalYearMonth) String() string {
	sign := ""
	if i.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%d-%d", sign, i.Years, i.Months)
}

// IntervalDaySecond mirrors the teacher's IntervalDaySecond, including its
// ToDuration helper.
type IntervalDaySecond struct {
	Days, Hours, Minutes, Seconds, Nanoseconds int
	Negative                                   bool
}

// ToDuration converts to a time.Duration (lossy beyond time.Duration's
// range, which exceeds any realistic INTERVAL DAY TO SECOND value).
func (i IntervalDaySecond) ToDuration() time.Duration {
	d := time.Duration(i.Days)*24*time.Hour +
		time.Duration(i.Hours)*time.Hour +
		time.Duration(i.Minutes)*time.Minute +
		time.Duration(i.Seconds)*time.Second +
		time.Duration(i.Nanoseconds)
	if i.Negative {
		d = -d
	}
	return d
}

func (i IntervalDaySecond) String() string {
	sign := ""
	if i.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%d %02d:%02d:%02d.%09d", sign, i.Days, i.Hours, i.Minutes, i.Seconds, i.Nanoseconds)
}
