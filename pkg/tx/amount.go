package tx

import (
	"fmt"
	"math/big"
	"strings"
)

// Denomination is the number of decimals in one whole coin.
const Denomination = 18

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Denomination), nil)

// ParseAmount converts a whole-coin decimal string ("1.5") into base units.
// More than Denomination fractional digits is an error, never a rounding.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Denomination {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, Denomination)
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("invalid amount %q", s)
			}
		}
	}

	v, _ := new(big.Int).SetString(whole+frac+strings.Repeat("0", Denomination-len(frac)), 10)
	return v, nil
}

// FormatAmount renders base units as a whole-coin decimal string with
// trailing zeros trimmed.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	q, r := new(big.Int).QuoRem(new(big.Int).Abs(v), unit, new(big.Int))

	s := q.String()
	if r.Sign() != 0 {
		frac := r.String()
		frac = strings.Repeat("0", Denomination-len(frac)) + frac
		s += "." + strings.TrimRight(frac, "0")
	}
	if neg {
		s = "-" + s
	}
	return s
}
