package series

import (
	"fmt"
	"strconv"
	"time"
)

// PeriodKey is a monthly YYYYMM key. Keys compare correctly as plain strings.
type PeriodKey string

// PeriodOf returns the monthly key containing t.
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey(fmt.Sprintf("%04d%02d", t.Year(), int(t.Month())))
}

// Valid reports whether the key is six digits with a month in 01..12.
func (p PeriodKey) Valid() bool {
	if len(p) != 6 {
		return false
	}
	if _, err := strconv.Atoi(string(p)); err != nil {
		return false
	}
	m := p.Month()
	return m >= 1 && m <= 12
}

// Year returns the calendar year, or 0 for a malformed key.
func (p PeriodKey) Year() int {
	if len(p) != 6 {
		return 0
	}
	y, err := strconv.Atoi(string(p[:4]))
	if err != nil {
		return 0
	}
	return y
}

// Month returns the calendar month, or 0 for a malformed key.
func (p PeriodKey) Month() int {
	if len(p) != 6 {
		return 0
	}
	m, err := strconv.Atoi(string(p[4:]))
	if err != nil {
		return 0
	}
	return m
}

// AddYears shifts the key by n years keeping the month.
func (p PeriodKey) AddYears(n int) PeriodKey {
	if len(p) != 6 {
		return ""
	}
	return PeriodKey(fmt.Sprintf("%04d%s", p.Year()+n, p[4:]))
}

// YearEarlier is the same month one year before.
func (p PeriodKey) YearEarlier() PeriodKey {
	return p.AddYears(-1)
}

// Time returns the first instant of the month in UTC.
func (p PeriodKey) Time() time.Time {
	if !p.Valid() {
		return time.Time{}
	}
	return time.Date(p.Year(), time.Month(p.Month()), 1, 0, 0, 0, 0, time.UTC)
}

func (p PeriodKey) String() string { return string(p) }
