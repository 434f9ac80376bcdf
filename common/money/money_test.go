package money

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumericConversion(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "integer", value: "100"},
		{name: "cents", value: "12.34"},
		{name: "zero", value: "0"},
		{name: "many digits", value: "987654321.05"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := decimal.RequireFromString(tc.value)

			got := FromNumeric(ToNumeric(d))

			assert.True(t, d.Equal(got), "expected %s got %s", d, got)
		})
	}
}

func TestFromNumericInvalid(t *testing.T) {
	assert.True(t, FromNumeric(pgtype.Numeric{}).IsZero())
	assert.True(t, FromNumeric(pgtype.Numeric{Int: big.NewInt(5), Exp: -1, Valid: true}).Equal(decimal.RequireFromString("0.5")))
}

func TestRound(t *testing.T) {
	assert.Equal(t, "2.10", Round(decimal.RequireFromString("2.1")).StringFixed(Scale))
	assert.Equal(t, "2.13", Round(decimal.RequireFromString("2.125")).StringFixed(Scale))
}
