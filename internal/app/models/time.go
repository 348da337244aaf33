package models

import (
	"strings"
	"time"
)

// DayCode is a bitmask of weekdays, Monday being the highest bit.
type DayCode byte

// Weekday bits.
const (
	DayMonday    DayCode = 64
	DayTuesday   DayCode = 32
	DayWednesday DayCode = 16
	DayThursday  DayCode = 8
	DayFriday    DayCode = 4
	DaySaturday  DayCode = 2
	DaySunday    DayCode = 1
)

// SlotLength is the granularity of meeting times.
const SlotLength = 5 * time.Minute

var dayNames = []struct {
	code DayCode
	name string
}{
	{DayMonday, "M"},
	{DayTuesday, "T"},
	{DayWednesday, "W"},
	{DayThursday, "Th"},
	{DayFriday, "F"},
	{DaySaturday, "S"},
	{DaySunday, "Su"},
}

// TimeBlock is a weekly meeting pattern: a set of days plus a start time and
// length expressed in 5-minute slots from midnight.
type TimeBlock struct {
	Days      DayCode
	StartSlot int
	Length    int
}

// Shares reports whether the two patterns meet at the same time on at least
// one shared day.
func (t *TimeBlock) Shares(other *TimeBlock) bool {
	if t == nil || other == nil {
		return false
	}
	if t.Days&other.Days == 0 {
		return false
	}
	return t.StartSlot < other.StartSlot+other.Length && other.StartSlot < t.StartSlot+t.Length
}

// DayString renders the day bitmask, e.g. "MWF".
func (t *TimeBlock) DayString() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, d := range dayNames {
		if t.Days&d.code != 0 {
			sb.WriteString(d.name)
		}
	}
	return sb.String()
}

// StartTime returns the start of the block as minutes from midnight.
func (t *TimeBlock) StartTime() int {
	return t.StartSlot * int(SlotLength/time.Minute)
}

// EndTime returns the end of the block as minutes from midnight.
func (t *TimeBlock) EndTime() int {
	return (t.StartSlot + t.Length) * int(SlotLength/time.Minute)
}
