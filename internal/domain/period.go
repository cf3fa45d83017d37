package domain

import (
	"fmt"
	"strings"
	"time"
)

// Month is one of the twelve named calendar periods, stored by its English name
type Month string

const (
	January   Month = "January"
	February  Month = "February"
	March     Month = "March"
	April     Month = "April"
	May       Month = "May"
	June      Month = "June"
	July      Month = "July"
	August    Month = "August"
	September Month = "September"
	October   Month = "October"
	November  Month = "November"
	December  Month = "December"
)

var months = [12]Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// ParseMonth resolves a month token (full name or three-letter abbreviation, any case)
func ParseMonth(token string) (Month, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return "", fmt.Errorf("%w: empty month", ErrInvalidPeriod)
	}
	for _, m := range months {
		name := strings.ToLower(string(m))
		if t == name || t == name[:3] {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, token)
}

// Number returns the calendar position of the month (January=1 ... December=12).
// Unknown months return 0.
func (m Month) Number() int {
	for i, candidate := range months {
		if candidate == m {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether m is one of the twelve named periods
func (m Month) Valid() bool {
	return m.Number() != 0
}

// Period identifies a single ledger month
type Period struct {
	Year  int
	Month Month
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: months[t.Month()-1]}
}

// Next returns the following calendar month, rolling December into January of the next year
func (p Period) Next() Period {
	n := p.Month.Number()
	if n == 12 {
		return Period{Year: p.Year + 1, Month: January}
	}
	return Period{Year: p.Year, Month: months[n]}
}

// Before reports whether p sorts strictly before other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month.Number() < other.Month.Number()
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month.Number()
}

// String renders the period as "January 2024"
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
