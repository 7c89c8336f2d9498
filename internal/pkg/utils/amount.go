package utils

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"portal_wallet/internal/domain/entity"
)

// FormatAmount renders a transfer amount the way the provider expects it:
// the shortest decimal string that round-trips, without exponent.
// Example: 1.5 => "1.5", 2 => "2", 0.0001 => "0.0001".
func FormatAmount(amount float64) (string, error) {
	if err := ValidateAmount(amount); err != nil {
		return "", err
	}
	return strconv.FormatFloat(amount, 'f', -1, 64), nil
}

// ValidateAmount accepts only positive, finite numbers.
func ValidateAmount(amount float64) error {
	switch {
	case math.IsNaN(amount):
		return fmt.Errorf("%w: NaN", entity.ErrInvalidAmount)
	case math.IsInf(amount, 0):
		return fmt.Errorf("%w: infinite", entity.ErrInvalidAmount)
	case amount <= 0:
		return fmt.Errorf("%w: %v is not positive", entity.ErrInvalidAmount, amount)
	}
	return nil
}

// ParseAmount parses user input such as "1.5" into a validated amount.
func ParseAmount(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", entity.ErrInvalidAmount)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", entity.ErrInvalidAmount, s)
	}
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// FormatBigInt converts a raw on-chain amount to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(amountFloat, divisor)

	formattedStr := value.Text('f', int(decimals))
	if strings.Contains(formattedStr, ".") {
		formattedStr = strings.TrimRight(formattedStr, "0")
		formattedStr = strings.TrimRight(formattedStr, ".")
	}
	if formattedStr == "" || formattedStr == "-" {
		if amount.Sign() == 0 {
			return "0", nil
		}
		return value.Text('f', 2), fmt.Errorf("formatting resulted in empty string for non-zero value")
	}
	return formattedStr, nil
}

// FormatRawBalance parses a raw integer string (as returned in rawBalance) and formats it.
func FormatRawBalance(raw string, decimals int) (string, error) {
	if decimals < 0 || decimals > math.MaxUint8 {
		return "", fmt.Errorf("decimals out of range: %d", decimals)
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return "", fmt.Errorf("raw balance %q is not an integer", raw)
	}
	return FormatBigInt(n, uint8(decimals))
}
