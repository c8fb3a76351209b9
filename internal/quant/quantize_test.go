package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
)

func filter(step, tick, min string) models.InstrumentFilter {
	return models.InstrumentFilter{
		Instrument:   "ETHUSDT",
		QuantityStep: dec(step),
		PriceTick:    dec(tick),
		MinQuantity:  dec(min),
	}
}

func TestResolveQuantity(t *testing.T) {
	f := filter("0.001", "0.01", "0.001")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"truncates down", "1.23456", "1.234"},
		{"exact multiple unchanged", "1.234", "1.234"},
		{"below minimum is zero", "0.0004", "0"},
		{"at minimum survives", "0.001", "0.001"},
		{"zero raw", "0", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveQuantity(dec(tc.raw), f)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestResolveQuantityIdempotent(t *testing.T) {
	f := filter("0.001", "0.01", "0.001")

	once := ResolveQuantity(dec("2.71828"), f)
	twice := ResolveQuantity(once, f)
	assert.True(t, once.Equal(twice), "resolving an already-resolved value must not change it")
}

func TestResolveQuantityNegative(t *testing.T) {
	f := filter("0.001", "0.01", "0.001")
	assert.True(t, ResolveQuantity(dec("-1.5"), f).IsZero())
}

func TestResolvePrice(t *testing.T) {
	f := filter("0.001", "0.01", "0.001")

	got := ResolvePrice(dec("123.456"), f)
	assert.True(t, got.Equal(dec("123.45")), "got %s", got)

	// zero tick means no constraint
	free := ResolvePrice(dec("123.456"), filter("0.001", "0", "0.001"))
	assert.True(t, free.Equal(dec("123.456")))
}

func TestResolveQuantityCoarseStep(t *testing.T) {
	// whole-unit step, fractional raw
	f := filter("1", "0.01", "1")
	assert.True(t, ResolveQuantity(dec("3.999"), f).Equal(dec("3")))
	assert.True(t, ResolveQuantity(dec("0.8"), f).IsZero())
}

func TestDerivePrecision(t *testing.T) {
	tests := []struct {
		increment string
		want      int
	}{
		{"0.001", 3},
		{"1e-3", 3},
		{"0.00100", 3},
		{"0.1", 1},
		{"1", 0},
		{"10", 0},
		{"0.00000001", 8},
	}
	for _, tc := range tests {
		got, err := DerivePrecision(tc.increment)
		require.NoError(t, err, tc.increment)
		assert.Equal(t, tc.want, got, "increment %q", tc.increment)
	}
}

func TestDerivePrecisionInvalid(t *testing.T) {
	_, err := DerivePrecision("abc")
	assert.Error(t, err)
}
