package drug

import (
	"github.com/shopspring/decimal"

	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// =============================================================================
// SUPPLY PROJECTION
// =============================================================================

// SupplyReport projects how long the current supply lasts.
type SupplyReport struct {
	// Tracked is false when the refill size is 0; the other supply fields are
	// then left zero.
	Tracked bool

	CorrectionFactor float64
	DailyDose        fraction.Fraction // sum of the four slots on a dose day

	// DailyConsumption is DailyDose spread over the days between doses.
	DailyConsumption generic.Amount

	// DaysOfSupply is only meaningful when Depletes is true.
	DaysOfSupply generic.Amount
	Depletes     bool

	// Low is set when the supply lasts fewer than the requested threshold days.
	Low bool
}

// Supply computes the report, flagging the supply as low when it lasts fewer
// than lowSupplyDays days.
func (d *Drug) Supply(lowSupplyDays int) SupplyReport {
	daily := d.DailyDose()
	report := SupplyReport{
		CorrectionFactor: d.SupplyCorrectionFactor(),
		DailyDose:        daily,
		DaysOfSupply:     generic.NewAmountFromInt(0, generic.UnitDays),
	}

	num, den := d.Recurrence().correction()
	report.DailyConsumption = generic.NewAmount(daily.Decimal(), generic.UnitDoses).
		Mul(decimal.NewFromInt(den)).
		Div(decimal.NewFromInt(num))

	if d.refillSize == 0 {
		return report
	}
	report.Tracked = true

	if !report.DailyConsumption.IsPositive() {
		return report
	}
	report.Depletes = true

	// days = supply * num / (daily * den)
	supply := generic.NewAmount(d.currentSupply.Decimal(), generic.UnitDoses).Mul(decimal.NewFromInt(num))
	perCycle := generic.NewAmount(daily.Decimal(), generic.UnitDoses).Mul(decimal.NewFromInt(den))
	report.DaysOfSupply = supply.Per(perCycle, generic.UnitDays)
	report.Low = report.DaysOfSupply.Value.LessThan(decimal.NewFromInt(int64(lowSupplyDays)))
	return report
}
