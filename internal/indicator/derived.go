package indicator

import "macro-signal/internal/series"

// Derived is a named analytical series for the current request together
// with its representative scalar.
type Derived struct {
	Name           string
	Full           series.Series
	Window         series.Series
	Representative Representative
}

// Build slices the full derived series to the lookback window ending at
// asOf and summarises it with the policy.
func Build(name string, full series.Series, years int, asOf series.PeriodKey, policy Policy) Derived {
	window := series.SliceWindow(full, years, asOf)
	return Derived{
		Name:           name,
		Full:           full,
		Window:         window,
		Representative: policy.Represent(window),
	}
}

// Set holds the derived indicators of one classification call.
type Set struct {
	Policy Policy
	Items  map[string]Derived
	Order  []string
}

// NewSet creates an empty set bound to one policy.
func NewSet(policy Policy) *Set {
	return &Set{Policy: policy, Items: make(map[string]Derived)}
}

// Add builds and stores a derived indicator using the set's policy.
func (s *Set) Add(name string, full series.Series, years int, asOf series.PeriodKey) Derived {
	d := Build(name, full, years, asOf, s.Policy)
	if _, exists := s.Items[name]; !exists {
		s.Order = append(s.Order, name)
	}
	s.Items[name] = d
	return d
}

// Value returns the representative scalar, 0 when absent.
func (s *Set) Value(name string) float64 {
	return s.Items[name].Representative.Value
}

// Missing reports which of names have no representative data, including
// names the set never built.
func (s *Set) Missing(names ...string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range names {
		if d, ok := s.Items[name]; !ok || !d.Representative.HasData {
			out[name] = true
		}
	}
	return out
}

// Representatives exposes the scalars keyed by name.
func (s *Set) Representatives() map[string]Representative {
	out := make(map[string]Representative, len(s.Items))
	for name, d := range s.Items {
		out[name] = d.Representative
	}
	return out
}
