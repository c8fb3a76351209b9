package quant

import (
	"strings"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// ResolveQuantity truncates raw down to the nearest multiple of the
// instrument's quantity step. Never rounds up: an order for the result is
// always within the raw amount. Returns zero when the truncated value falls
// below the exchange minimum.
func ResolveQuantity(raw decimal.Decimal, filter models.InstrumentFilter) decimal.Decimal {
	qty := truncateToStep(raw, filter.QuantityStep)
	if qty.LessThan(filter.MinQuantity) {
		return decimal.Zero
	}
	return qty
}

// ResolvePrice truncates raw down to the nearest multiple of the price tick.
func ResolvePrice(raw decimal.Decimal, filter models.InstrumentFilter) decimal.Decimal {
	return truncateToStep(raw, filter.PriceTick)
}

func truncateToStep(raw, step decimal.Decimal) decimal.Decimal {
	if raw.Sign() <= 0 {
		return decimal.Zero
	}
	if step.Sign() <= 0 {
		return raw
	}
	return raw.Sub(raw.Mod(step))
}

// DerivePrecision reports the number of significant fractional digits implied
// by an increment. Accepts plain decimal and scientific notation: "0.001" and
// "1e-3" both yield 3, trailing zeros do not count.
func DerivePrecision(increment string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(increment))
	if err != nil {
		return 0, err
	}

	s := d.String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0, nil
	}
	return len(strings.TrimRight(s[dot+1:], "0")), nil
}
