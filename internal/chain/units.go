package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// NativeDecimals is the scale of the native currency and of the staking
// contract's amount fields.
const NativeDecimals uint8 = 18

// ToBaseUnits converts a decimal display string ("1.5") to base units.
// The math is exact; fractions longer than decimals are rejected.
func ToBaseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	intPart := amount
	fracPart := ""
	if idx := strings.Index(amount, "."); idx >= 0 {
		intPart = amount[:idx]
		fracPart = amount[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	digits := intPart + fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if neg {
		value.Neg(value)
	}
	return value, nil
}

// ToDisplayUnits converts a base-unit value to a decimal display string with
// trailing zeros trimmed.
func ToDisplayUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}

	v := new(big.Int).Set(value)
	neg := v.Sign() < 0
	v.Abs(v)

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(v, scale, new(big.Int))

	out := quo.String()
	if rem.Sign() > 0 {
		frac := fmt.Sprintf("%0*s", decimals, rem.String())
		frac = strings.TrimRight(frac, "0")
		if frac != "" {
			out += "." + frac
		}
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}
