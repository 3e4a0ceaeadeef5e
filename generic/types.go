/*
Package generic provides the domain-agnostic building blocks of the dose engine.

PURPOSE:
  Calendar dates, error kinds and decimal quantities shared by the fraction and
  drug packages. Nothing here knows about drugs or recurrence rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity with a unit (e.g. 12.5 doses, 30 days)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so supply projections never go through float64
  2. Exact inputs: Amounts are usually built from fractions (see fraction.Decimal)

USAGE:
  perDay := generic.NewAmountFromInt(2, generic.UnitDoses)
  supply := generic.NewAmountFromInt(30, generic.UnitDoses)
  days := supply.Per(perDay, generic.UnitDays) // 15 days

SEE ALSO:
  - time.go: TimePoint calendar dates
  - errors.go: Error kinds
  - drug/supply.go: Supply projection built on Amount
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDoses Unit = "doses"
	UnitDays  Unit = "days"
)

// DivisionPrecision is the number of decimal places kept by Per.
const DivisionPrecision = 4

func NewAmount(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func NewAmountFromInt(value int64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(value), Unit: unit}
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Div divides by a scalar, keeping DivisionPrecision decimal places.
func (a Amount) Div(s decimal.Decimal) Amount {
	return Amount{Value: a.Value.DivRound(s, DivisionPrecision), Unit: a.Unit}
}

// Per divides a by b and labels the quotient with unit. b must be non-zero.
func (a Amount) Per(b Amount, unit Unit) Amount {
	return Amount{Value: a.Value.DivRound(b.Value, DivisionPrecision), Unit: unit}
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}
