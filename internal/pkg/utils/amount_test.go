package utils

import (
	"math"
	"math/big"
	"testing"

	"portal_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		want    string
		wantErr bool
	}{
		{name: "fraction", amount: 1.5, want: "1.5"},
		{name: "integer", amount: 2, want: "2"},
		{name: "small", amount: 0.0001, want: "0.0001"},
		{name: "large", amount: 1e21, want: "1000000000000000000000"},
		{name: "zero", amount: 0, wantErr: true},
		{name: "negative", amount: -5, wantErr: true},
		{name: "nan", amount: math.NaN(), wantErr: true},
		{name: "inf", amount: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatAmount(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 0.25 ")
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	for _, in := range []string{"", "abc", "0", "-1", "NaN", "Inf"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, in)
	}
}

func TestFormatBigInt(t *testing.T) {
	amount, ok := new(big.Int).SetString("1234500000000000000", 10)
	require.True(t, ok)

	got, err := FormatBigInt(amount, 18)
	require.NoError(t, err)
	assert.Equal(t, "1.2345", got)

	got, err = FormatBigInt(big.NewInt(0), 6)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = FormatBigInt(big.NewInt(42), 0)
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestFormatRawBalance(t *testing.T) {
	got, err := FormatRawBalance("1500000", 6)
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)

	_, err = FormatRawBalance("1.5", 6)
	assert.Error(t, err)

	_, err = FormatRawBalance("1", 300)
	assert.Error(t, err)
}
