package series

// YoY computes the year-over-year percentage change for each observation
// whose same month one year earlier exists with a nonzero value. Other
// observations are omitted, never zero-filled.
func YoY(s Series) Series {
	idx := s.Index()
	out := make(Series, 0, len(s))
	for _, o := range s {
		prev, ok := idx[o.Time.YearEarlier()]
		if !ok || prev == 0 {
			continue
		}
		out = append(out, Observation{
			Time:  o.Time,
			Value: Round2((o.Value - prev) / prev * 100),
		})
	}
	return out
}

// Spread emits b-a for every period of b that also exists in a. Periods
// only present in a are dropped.
func Spread(a, b Series) Series {
	idx := a.Index()
	out := make(Series, 0, len(b))
	for _, o := range b {
		av, ok := idx[o.Time]
		if !ok {
			continue
		}
		out = append(out, Observation{Time: o.Time, Value: Round2(o.Value - av)})
	}
	return out
}

// SliceWindow keeps observations at or after asOf shifted back by years.
func SliceWindow(s Series, years int, asOf PeriodKey) Series {
	cutoff := asOf.AddYears(-years)
	out := make(Series, 0, len(s))
	for _, o := range s {
		if o.Time >= cutoff {
			out = append(out, o)
		}
	}
	return out
}
