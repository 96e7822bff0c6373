package report

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// Round rounds v half-up to the given number of decimals.
// Rounding happens on the shortest decimal form of v, so 2.675 rounds to 2.68.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return v
	}

	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp

	var out apd.Decimal
	if _, err := ctx.Quantize(&out, &d, -places); err != nil {
		return v
	}

	f, err := out.Float64()
	if err != nil {
		return v
	}
	return f
}
