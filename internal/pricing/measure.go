package pricing

import "github.com/shopspring/decimal"

// Measure is the dimensional input a line is priced by. The concrete type is
// fixed by the catalog item's Model: UnitMeasure, LengthMeasure, AreaMeasure
// or DurationMeasure.
type Measure interface {
	Model() Model
	// Quantity returns the measured quantity in the model's unit
	// (piece, meter, square meter, hour).
	Quantity() decimal.Decimal
	isMeasure()
}

type UnitMeasure struct{}

type LengthMeasure struct {
	LengthMM decimal.NullDecimal
}

type AreaMeasure struct {
	WidthMM  decimal.NullDecimal
	HeightMM decimal.NullDecimal
}

type DurationMeasure struct {
	Hours decimal.NullDecimal
}

func (UnitMeasure) Model() Model     { return PerUnit }
func (LengthMeasure) Model() Model   { return PerLength }
func (AreaMeasure) Model() Model     { return PerArea }
func (DurationMeasure) Model() Model { return PerDuration }

func (UnitMeasure) isMeasure()     {}
func (LengthMeasure) isMeasure()   {}
func (AreaMeasure) isMeasure()     {}
func (DurationMeasure) isMeasure() {}

func (UnitMeasure) Quantity() decimal.Decimal { return one }

// Quantity falls back to 1 when the length is missing or zero.
func (m LengthMeasure) Quantity() decimal.Decimal {
	if !present(m.LengthMM) {
		return one
	}
	return millimetersToMeters(m.LengthMM.Decimal)
}

// Quantity falls back to 1 when either side is missing or zero.
func (m AreaMeasure) Quantity() decimal.Decimal {
	if !present(m.WidthMM) || !present(m.HeightMM) {
		return one
	}
	return millimetersToMeters(m.WidthMM.Decimal).Mul(millimetersToMeters(m.HeightMM.Decimal))
}

// Quantity falls back to 1 when the duration is missing or zero.
func (m DurationMeasure) Quantity() decimal.Decimal {
	if !present(m.Hours) {
		return one
	}
	return m.Hours.Decimal
}

func present(v decimal.NullDecimal) bool {
	return v.Valid && !v.Decimal.IsZero()
}

func millimetersToMeters(mm decimal.Decimal) decimal.Decimal {
	return mm.Shift(-3)
}
