package drug

import (
	"fmt"
	"time"

	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// =============================================================================
// DRUG - Scheduling-relevant drug record
// =============================================================================

// Drug is a mutable drug record. A "dose" is the smallest unit that can be
// taken without splitting (one tablet), so refill sizes are whole numbers while
// scheduled amounts and the current supply are fractions.
//
// Drug is not safe for concurrent use.
type Drug struct {
	ID DrugID

	name          string
	form          Form
	active        bool
	refillSize    int   // 0 disables supply tracking
	currentSupply fraction.Fraction
	doses         [4]fraction.Fraction
	recurrence    Recurrence
	comment       string
}

// New returns an active daily drug with no scheduled doses. Further fields are
// set through the validating setters.
func New(name string) *Drug {
	return &Drug{
		name:       name,
		active:     true,
		recurrence: Daily{},
	}
}

// Getters
func (d *Drug) Name() string                     { return d.name }
func (d *Drug) Form() Form                       { return d.form }
func (d *Drug) Active() bool                     { return d.active }
func (d *Drug) RefillSize() int                  { return d.refillSize }
func (d *Drug) CurrentSupply() fraction.Fraction { return d.currentSupply }
func (d *Drug) Comment() string                  { return d.comment }
func (d *Drug) Schedule() [4]fraction.Fraction   { return d.doses }

// Recurrence returns the current rule, Daily when none was ever set.
func (d *Drug) Recurrence() Recurrence {
	if d.recurrence == nil {
		return Daily{}
	}
	return d.recurrence
}

func (d *Drug) RecurrenceKind() RecurrenceKind { return d.Recurrence().Kind() }
func (d *Drug) RecurrenceArg() int64           { return d.Recurrence().arg() }

// RecurrenceOrigin returns the zero time when the current kind has no origin.
func (d *Drug) RecurrenceOrigin() time.Time { return d.Recurrence().origin() }

// Dose returns the amount scheduled for slot.
func (d *Drug) Dose(slot DoseTime) (fraction.Fraction, error) {
	if !slot.Valid() {
		return fraction.Zero, generic.InvalidArgument("dose_time", int(slot), "unknown dose time")
	}
	return d.doses[slot], nil
}

// DailyDose sums the four dose slots.
func (d *Drug) DailyDose() fraction.Fraction {
	total := fraction.Zero
	for _, f := range d.doses {
		total = total.Add(f)
	}
	return total
}

// =============================================================================
// PLAIN SETTERS
// =============================================================================

func (d *Drug) SetName(name string)       { d.name = name }
func (d *Drug) SetActive(active bool)     { d.active = active }
func (d *Drug) SetComment(comment string) { d.comment = comment }

func (d *Drug) SetForm(form Form) error {
	if !form.Valid() {
		return generic.InvalidArgument("form", int(form), "unknown form")
	}
	d.form = form
	return nil
}

func (d *Drug) SetRefillSize(size int) error {
	if size < 0 {
		return generic.InvalidArgument("refill_size", size, "must not be negative")
	}
	d.refillSize = size
	return nil
}

// SetCurrentSupply sets the doses left. A nil supply is stored as zero.
func (d *Drug) SetCurrentSupply(supply *fraction.Fraction) error {
	if supply == nil {
		d.currentSupply = fraction.Zero
		return nil
	}
	if supply.Cmp(fraction.Zero) < 0 {
		return generic.InvalidArgument("current_supply", supply.String(), "must not be negative")
	}
	d.currentSupply = *supply
	return nil
}

func (d *Drug) SetDose(slot DoseTime, amount fraction.Fraction) error {
	if !slot.Valid() {
		return generic.InvalidArgument("dose_time", int(slot), "unknown dose time")
	}
	d.doses[slot] = amount
	return nil
}

// =============================================================================
// RECURRENCE SETTERS
// =============================================================================

// SetRecurrence replaces the rule after validating it.
func (d *Drug) SetRecurrence(r Recurrence) error {
	if r == nil {
		return generic.NullInput("recurrence")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	d.recurrence = r
	return nil
}

// SetRecurrenceKind switches the rule family. Daily drops the argument and
// origin, Weekdays drops the origin. The other kinds keep whatever argument and
// origin were set before, so the caller must set them afterwards.
func (d *Drug) SetRecurrenceKind(kind RecurrenceKind) error {
	if !kind.Valid() {
		return generic.InvalidArgument("recurrence_kind", int(kind), "unknown recurrence kind")
	}

	prev := d.Recurrence()
	switch kind {
	case KindDaily:
		d.recurrence = Daily{}
	case KindWeekdays:
		d.recurrence = fromStored(kind, prev.arg(), time.Time{})
	default:
		d.recurrence = fromStored(kind, prev.arg(), prev.origin())
	}
	return nil
}

// SetRecurrenceArg sets the interval (EveryNDays), mask (Weekdays) or hours
// (EveryNHours) of the current kind.
func (d *Drug) SetRecurrenceArg(v int64) error {
	kind := d.RecurrenceKind()
	if !kind.Valid() {
		return generic.InvalidState("recurrence_kind", int(kind), "unknown recurrence kind")
	}
	if err := validateArg(kind, v); err != nil {
		return err
	}
	d.recurrence = fromStored(kind, v, d.RecurrenceOrigin())
	return nil
}

// SetRecurrenceOrigin sets the anchor date of EveryNDays (midnight only) or
// the start of EveryNHours.
func (d *Drug) SetRecurrenceOrigin(origin time.Time) error {
	kind := d.RecurrenceKind()
	if err := validateOrigin(kind, origin); err != nil {
		return err
	}
	d.recurrence = fromStored(kind, d.RecurrenceArg(), origin)
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// HasDoseOnDate reports whether a dose is due on the calendar date of t.
func (d *Drug) HasDoseOnDate(t time.Time) (bool, error) {
	if t.IsZero() {
		return false, generic.NullInput("date")
	}
	return d.Recurrence().HasDoseOn(generic.DateOf(t))
}

// SupplyCorrectionFactor is the average number of days between doses: N for
// every N days, 7 / active days for weekdays, 1 otherwise.
func (d *Drug) SupplyCorrectionFactor() float64 {
	return SupplyCorrectionFactor(d.Recurrence())
}

func (d *Drug) String() string {
	return fmt.Sprintf("%s(%s)={ %s - %s - %s - %s }", d.name, d.ID,
		d.doses[Morning], d.doses[Noon], d.doses[Evening], d.doses[Night])
}
