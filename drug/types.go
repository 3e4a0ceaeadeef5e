// Package drug implements the dose schedule of a single drug record.
// It decides whether a dose is due on a date and how fast the supply depletes,
// using exact fractions for every dose amount.
package drug

import (
	"fmt"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// DrugID uniquely identifies a stored drug. It takes no part in equality.
type DrugID string

// =============================================================================
// FORM - Presentation of the medication
// =============================================================================

type Form int

const (
	FormTablet Form = iota
	FormInjection
	FormSpray
	FormDrop
	FormGel
	FormOther
)

var formNames = [...]string{"tablet", "injection", "spray", "drop", "gel", "other"}

func (f Form) Valid() bool { return f >= FormTablet && f <= FormOther }

func (f Form) String() string {
	if !f.Valid() {
		return fmt.Sprintf("form(%d)", int(f))
	}
	return formNames[f]
}

// ParseForm maps a form name back to its code.
func ParseForm(s string) (Form, bool) {
	for i, name := range formNames {
		if name == s {
			return Form(i), true
		}
	}
	return 0, false
}

// =============================================================================
// DOSE TIME - The four fixed periods of a day
// =============================================================================

type DoseTime int

const (
	Morning DoseTime = iota
	Noon
	Evening
	Night
)

// DoseTimes lists every slot in day order.
var DoseTimes = [...]DoseTime{Morning, Noon, Evening, Night}

var doseTimeNames = [...]string{"morning", "noon", "evening", "night"}

func (t DoseTime) Valid() bool { return t >= Morning && t <= Night }

func (t DoseTime) String() string {
	if !t.Valid() {
		return fmt.Sprintf("dose_time(%d)", int(t))
	}
	return doseTimeNames[t]
}

// =============================================================================
// RECURRENCE KIND - Stored codes of the recurrence variants
// =============================================================================

type RecurrenceKind int

const (
	KindDaily RecurrenceKind = iota
	KindEveryNDays
	KindWeekdays
	KindEveryNHours
)

var kindNames = [...]string{"daily", "every_n_days", "weekdays", "every_n_hours"}

func (k RecurrenceKind) Valid() bool { return k >= KindDaily && k <= KindEveryNHours }

func (k RecurrenceKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseRecurrenceKind maps a kind name back to its code.
func ParseRecurrenceKind(s string) (RecurrenceKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return RecurrenceKind(i), true
		}
	}
	return 0, false
}

// =============================================================================
// WEEKDAY MASK - Bit 0 is Monday, bit 6 is Sunday
// =============================================================================

type WeekdayMask int64

const (
	Monday WeekdayMask = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	AllWeekdays WeekdayMask = 0x7f
)

// MaskOf returns the bit for a time.Weekday.
func MaskOf(wd time.Weekday) WeekdayMask {
	return 1 << ((int(wd) + 6) % 7)
}

// Has reports whether the bit for wd is set.
func (m WeekdayMask) Has(wd time.Weekday) bool { return m&MaskOf(wd) != 0 }

// Days lists the weekdays set in m, Monday first.
func (m WeekdayMask) Days() []time.Weekday {
	var days []time.Weekday
	for i := 0; i < 7; i++ {
		wd := time.Weekday((i + 1) % 7)
		if m.Has(wd) {
			days = append(days, wd)
		}
	}
	return days
}
