/*
recurrence.go - The recurrence rule families

PURPOSE:
  A Recurrence decides on which calendar days a dose is due and how much the
  supply projection must be corrected for days without doses. Each variant
  carries exactly the fields it needs:

    Daily{}                        due every day
    EveryNDays{Interval, Origin}   due when |origin - day| in days is a multiple of Interval
    Weekdays{Mask}                 due when the weekday's bit is set (bit 0 = Monday)
    EveryNHours{Hours, Origin}     recognised but not implemented; queries fail

VALIDATION:
  Validate() checks a variant against its legal range. Values produced by
  Import() are never validated, so HasDoseOn and the correction factor also
  cope with degenerate variants instead of dividing by zero.

SEE ALSO:
  - drug.go: Editing setters that switch between variants
  - import.go: Trusted construction from stored codes
*/
package drug

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/rxdose/dose-engine/generic"
)

// Recurrence is one of Daily, EveryNDays, Weekdays or EveryNHours.
type Recurrence interface {
	Kind() RecurrenceKind

	// Validate reports whether the variant's fields are within range.
	Validate() error

	// HasDoseOn reports whether a dose is due on day.
	HasDoseOn(day generic.TimePoint) (bool, error)

	// correction is the supply correction factor as num/den.
	correction() (num, den int64)

	// arg and origin expose the variant in the stored (kind, arg, origin) layout.
	arg() int64
	origin() time.Time
}

// SupplyCorrectionFactor returns the average number of days between doses for r.
func SupplyCorrectionFactor(r Recurrence) float64 {
	num, den := r.correction()
	return float64(num) / float64(den)
}

// UnimplementedError is returned for recurrence kinds that are recognised but
// cannot be evaluated yet.
type UnimplementedError struct {
	Kind RecurrenceKind
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("%v: recurrence %s not yet implemented", generic.ErrInvalidState, e.Kind)
}

func (e *UnimplementedError) Unwrap() error {
	return generic.ErrInvalidState
}

// =============================================================================
// DAILY
// =============================================================================

type Daily struct{}

func (Daily) Kind() RecurrenceKind                      { return KindDaily }
func (Daily) Validate() error                           { return nil }
func (Daily) HasDoseOn(generic.TimePoint) (bool, error) { return true, nil }
func (Daily) correction() (int64, int64)                { return 1, 1 }
func (Daily) arg() int64                                { return 0 }
func (Daily) origin() time.Time                         { return time.Time{} }

// =============================================================================
// EVERY N DAYS
// =============================================================================

type EveryNDays struct {
	Interval int64
	Origin   time.Time // midnight of the first dose day
}

// NewEveryNDays returns a validated EveryNDays.
func NewEveryNDays(interval int64, origin time.Time) (EveryNDays, error) {
	r := EveryNDays{Interval: interval, Origin: origin}
	return r, r.Validate()
}

func (r EveryNDays) Kind() RecurrenceKind { return KindEveryNDays }

func (r EveryNDays) Validate() error {
	if err := validateArg(KindEveryNDays, r.Interval); err != nil {
		return err
	}
	return validateOrigin(KindEveryNDays, r.Origin)
}

func (r EveryNDays) HasDoseOn(day generic.TimePoint) (bool, error) {
	if r.Interval <= 0 {
		return false, generic.InvalidState("recurrence_arg", r.Interval, "interval not set")
	}
	if r.Origin.IsZero() {
		return false, generic.InvalidState("recurrence_origin", nil, "origin not set")
	}
	diff := generic.AbsDaysBetween(generic.DateOf(r.Origin), day)
	return int64(diff)%r.Interval == 0, nil
}

func (r EveryNDays) correction() (int64, int64) {
	if r.Interval <= 0 {
		return 1, 1
	}
	return r.Interval, 1
}

func (r EveryNDays) arg() int64        { return r.Interval }
func (r EveryNDays) origin() time.Time { return r.Origin }

// =============================================================================
// WEEKDAYS
// =============================================================================

type Weekdays struct {
	Mask WeekdayMask
}

// NewWeekdays returns a validated Weekdays.
func NewWeekdays(mask WeekdayMask) (Weekdays, error) {
	r := Weekdays{Mask: mask}
	return r, r.Validate()
}

func (r Weekdays) Kind() RecurrenceKind { return KindWeekdays }
func (r Weekdays) Validate() error      { return validateArg(KindWeekdays, int64(r.Mask)) }

func (r Weekdays) HasDoseOn(day generic.TimePoint) (bool, error) {
	return r.Mask.Has(day.Weekday()), nil
}

func (r Weekdays) correction() (int64, int64) {
	n := bits.OnesCount8(uint8(r.Mask & AllWeekdays))
	if n == 0 {
		return 1, 1
	}
	return 7, int64(n)
}

func (r Weekdays) arg() int64        { return int64(r.Mask) }
func (r Weekdays) origin() time.Time { return time.Time{} }

// =============================================================================
// EVERY N HOURS - Recognised, not implemented
// =============================================================================

type EveryNHours struct {
	Hours  int64 // 6, 8 or 12
	Origin time.Time
}

func (r EveryNHours) Kind() RecurrenceKind { return KindEveryNHours }
func (r EveryNHours) Validate() error      { return validateArg(KindEveryNHours, r.Hours) }

func (r EveryNHours) HasDoseOn(generic.TimePoint) (bool, error) {
	return false, &UnimplementedError{Kind: KindEveryNHours}
}

// TODO: derive the factor from Hours once doses are mapped onto dose times.
func (r EveryNHours) correction() (int64, int64) { return 1, 1 }
func (r EveryNHours) arg() int64                 { return r.Hours }
func (r EveryNHours) origin() time.Time          { return r.Origin }

// =============================================================================
// UNKNOWN - Only produced by Import for codes outside the known kinds
// =============================================================================

type unknownRecurrence struct {
	code   RecurrenceKind
	value  int64
	anchor time.Time
}

func (r unknownRecurrence) Kind() RecurrenceKind { return r.code }

func (r unknownRecurrence) Validate() error {
	return generic.InvalidArgument("recurrence_kind", int(r.code), "unknown recurrence kind")
}

func (r unknownRecurrence) HasDoseOn(generic.TimePoint) (bool, error) {
	return false, generic.InvalidState("recurrence_kind", int(r.code), "unknown recurrence kind")
}

func (r unknownRecurrence) correction() (int64, int64) { return 1, 1 }
func (r unknownRecurrence) arg() int64                 { return r.value }
func (r unknownRecurrence) origin() time.Time          { return r.anchor }

// =============================================================================
// VALIDATION
// =============================================================================

func validateArg(kind RecurrenceKind, v int64) error {
	switch kind {
	case KindEveryNDays:
		if v <= 1 {
			return generic.InvalidArgument("recurrence_arg", v, "interval must be greater than 1")
		}
	case KindWeekdays:
		if v <= 0 || v > int64(AllWeekdays) {
			return generic.InvalidArgument("recurrence_arg", v, "weekday mask must be within 1..127")
		}
	case KindEveryNHours:
		if v != 6 && v != 8 && v != 12 {
			return generic.InvalidArgument("recurrence_arg", v, "hours must be 6, 8 or 12")
		}
	default:
		return generic.InvalidState("recurrence_arg", v, fmt.Sprintf("%s takes no argument", kind))
	}
	return nil
}

func validateOrigin(kind RecurrenceKind, t time.Time) error {
	if kind != KindEveryNDays && kind != KindEveryNHours {
		return generic.InvalidState("recurrence_origin", t, fmt.Sprintf("%s takes no origin", kind))
	}
	if t.IsZero() {
		return generic.NullInput("recurrence_origin")
	}
	if kind == KindEveryNDays && !generic.IsMidnight(t) {
		return generic.InvalidArgument("recurrence_origin", t.Format(time.RFC3339), "must be a date without time of day")
	}
	return nil
}

// fromStored rebuilds a variant from the stored layout without validation.
func fromStored(kind RecurrenceKind, arg int64, origin time.Time) Recurrence {
	switch kind {
	case KindDaily:
		return Daily{}
	case KindEveryNDays:
		return EveryNDays{Interval: arg, Origin: origin}
	case KindWeekdays:
		return Weekdays{Mask: WeekdayMask(arg)}
	case KindEveryNHours:
		return EveryNHours{Hours: arg, Origin: origin}
	default:
		return unknownRecurrence{code: kind, value: arg, anchor: origin}
	}
}
