package drug

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Equal compares every field except ID, so a drug loaded from a store equals
// the unsaved drug it was created from.
func (d *Drug) Equal(other *Drug) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}

	a, b := d.Record(), other.Record()
	if a.Name != b.Name ||
		a.Form != b.Form ||
		a.Active != b.Active ||
		a.RefillSize != b.RefillSize ||
		a.RecurrenceKind != b.RecurrenceKind ||
		a.RecurrenceArg != b.RecurrenceArg ||
		a.Comment != b.Comment {
		return false
	}
	if !a.CurrentSupply.Equal(b.CurrentSupply) {
		return false
	}
	for i := range a.Doses {
		if !a.Doses[i].Equal(b.Doses[i]) {
			return false
		}
	}
	return a.RecurrenceOrigin.Equal(b.RecurrenceOrigin)
}

// Hash is consistent with Equal: equal drugs hash alike regardless of ID.
func (d *Drug) Hash() uint64 {
	r := d.Record()
	h := xxhash.New()

	write := func(s string) {
		h.WriteString(s)
		h.Write([]byte{0})
	}

	write(r.Name)
	write(strconv.Itoa(int(r.Form)))
	write(strconv.FormatBool(r.Active))
	for _, dose := range r.Doses {
		write(dose.Text(false))
	}
	write(r.CurrentSupply.Text(false))
	write(strconv.Itoa(r.RefillSize))
	write(strconv.Itoa(int(r.RecurrenceKind)))
	write(strconv.FormatInt(r.RecurrenceArg, 10))
	if !r.RecurrenceOrigin.IsZero() {
		write(strconv.FormatInt(r.RecurrenceOrigin.UnixNano(), 10))
	}
	write(r.Comment)

	return h.Sum64()
}
