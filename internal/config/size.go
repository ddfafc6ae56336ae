package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"fortio.org/safecast"
)

var units = map[string]float64{
	"":   1,
	"k":  1 << 10,
	"kb": 1 << 10,
	"m":  1 << 20,
	"mb": 1 << 20,
	"g":  1 << 30,
	"gb": 1 << 30,
}

// ParseSize parses "<n> [unit]" where unit is k/kb, m/mb or g/gb (any
// case, binary multiples) or absent for bytes. n may be fractional; the
// result is rounded down.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	end := strings.LastIndexFunc(s, unicode.IsDigit)
	if end < 0 {
		return 0, fmt.Errorf("no number found in size %q", s)
	}
	number, unit := s[:end+1], strings.ToLower(strings.TrimSpace(s[end+1:]))

	mult, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size unit %q", unit)
	}
	n, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %q is negative", s)
	}
	bytes, err := safecast.Convert[uint64](math.Floor(n * mult))
	if err != nil {
		return 0, fmt.Errorf("size %q is too large: %w", s, err)
	}
	return bytes, nil
}

// ParseLimit is ParseSize for resource ceilings, which must be positive.
func ParseLimit(s string) (uint64, error) {
	n, err := ParseSize(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("size %q must be at least one byte", s)
	}
	return n, nil
}

// FormatSize renders n with the largest unit that divides it exactly.
func FormatSize(n uint64) string {
	switch {
	case n != 0 && n%(1<<30) == 0:
		return fmt.Sprintf("%d GB", n>>30)
	case n != 0 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n != 0 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d", n)
	}
}
