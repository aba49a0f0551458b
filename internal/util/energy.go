package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMicrojoules parses a powercap energy counter value (a decimal
// microjoule count, possibly with trailing whitespace) into microjoules.
func ParseMicrojoules(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty energy counter value")
	}

	uj, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid energy counter value %q: %w", s, err)
	}
	return uj, nil
}

// MicrojoulesToJoules converts a microjoule count to joules.
func MicrojoulesToJoules(uj uint64) float64 {
	return float64(uj) / 1e6
}

// FormatJoules renders an energy value for display.
func FormatJoules(j float64) string {
	switch {
	case j == 0:
		return "0 J"
	case j < 1e-3:
		return fmt.Sprintf("%.1f µJ", j*1e6)
	case j < 1:
		return fmt.Sprintf("%.3f mJ", j*1e3)
	case j < 1000:
		return fmt.Sprintf("%.3f J", j)
	default:
		return fmt.Sprintf("%.3f kJ", j/1000)
	}
}
