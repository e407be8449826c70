package indicator

// Period is a requested lookback window.
type Period string

const (
	Period1Y Period = "1y"
	Period3Y Period = "3y"
	Period5Y Period = "5y"
)

var periodYears = map[Period]int{
	Period1Y: 1,
	Period3Y: 3,
	Period5Y: 5,
}

// LookupPeriod reports whether raw names a supported window.
func LookupPeriod(raw string) (Period, bool) {
	p := Period(raw)
	_, ok := periodYears[p]
	return p, ok
}

// ParsePeriod maps the query value to a Period; anything unknown is 1y.
func ParsePeriod(raw string) Period {
	if p, ok := LookupPeriod(raw); ok {
		return p
	}
	return Period1Y
}

// Years is the window length.
func (p Period) Years() int {
	if y, ok := periodYears[p]; ok {
		return y
	}
	return 1
}
