package drug

import (
	"time"

	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// Record is the flat, stored layout of a drug. Recurrence is kept as the
// (kind, arg, origin) triple.
type Record struct {
	ID               DrugID
	Name             string
	Form             Form
	Active           bool
	RefillSize       int
	CurrentSupply    fraction.Fraction
	Doses            [4]fraction.Fraction
	RecurrenceKind   RecurrenceKind
	RecurrenceArg    int64
	RecurrenceOrigin time.Time // zero when absent
	Comment          string
}

// Import builds a drug from already-decoded stored values. Nothing is
// validated: this is the path for loading and migrating existing data, and it
// can produce a Drug that the setters would have rejected (a negative supply,
// an interval of 0, an unknown recurrence kind). Queries on such a drug return
// ErrInvalidState rather than a wrong answer.
func Import(r Record) *Drug {
	return &Drug{
		ID:            r.ID,
		name:          r.Name,
		form:          r.Form,
		active:        r.Active,
		refillSize:    r.RefillSize,
		currentSupply: r.CurrentSupply,
		doses:         r.Doses,
		recurrence:    fromStored(r.RecurrenceKind, r.RecurrenceArg, r.RecurrenceOrigin),
		comment:       r.Comment,
	}
}

// Record flattens d into its stored layout.
func (d *Drug) Record() Record {
	rec := d.Recurrence()
	return Record{
		ID:               d.ID,
		Name:             d.name,
		Form:             d.form,
		Active:           d.active,
		RefillSize:       d.refillSize,
		CurrentSupply:    d.currentSupply,
		Doses:            d.doses,
		RecurrenceKind:   rec.Kind(),
		RecurrenceArg:    rec.arg(),
		RecurrenceOrigin: rec.origin(),
		Comment:          d.comment,
	}
}

// Clone returns an independent copy of d.
func (d *Drug) Clone() *Drug {
	c := *d
	return &c
}

// Validate runs the setter checks against the current field values. Drugs
// built through New and the setters pass unless the recurrence was switched
// without setting its argument or origin.
func (d *Drug) Validate() error {
	if !d.form.Valid() {
		return generic.InvalidArgument("form", int(d.form), "unknown form")
	}
	if d.refillSize < 0 {
		return generic.InvalidArgument("refill_size", d.refillSize, "must not be negative")
	}
	if d.currentSupply.IsNegative() {
		return generic.InvalidArgument("current_supply", d.currentSupply.String(), "must not be negative")
	}
	return d.Recurrence().Validate()
}
