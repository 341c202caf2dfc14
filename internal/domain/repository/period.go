package repository

// Period is the lookback label the price API understands.
type Period string

const (
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
)

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period5d, Period1mo, Period3mo, Period6mo, Period1y:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default period.
func DefaultPeriod() Period { return Period1mo }

// NormalizePeriod converts a raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// PeriodForDays returns the shortest period covering the given calendar days.
func PeriodForDays(days int) Period {
	switch {
	case days <= 5:
		return Period5d
	case days <= 31:
		return Period1mo
	case days <= 92:
		return Period3mo
	case days <= 183:
		return Period6mo
	default:
		return Period1y
	}
}

// Days returns the calendar days a period spans.
func (p Period) Days() int {
	switch p {
	case Period5d:
		return 5
	case Period1mo:
		return 31
	case Period3mo:
		return 92
	case Period6mo:
		return 183
	case Period1y:
		return 366
	default:
		return 31
	}
}
