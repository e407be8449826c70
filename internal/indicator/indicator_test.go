package indicator

import (
	"fmt"
	"testing"

	"macro-signal/internal/series"
)

func mk(points ...float64) series.Series {
	out := make(series.Series, len(points))
	for i, v := range points {
		out[i] = series.Observation{Time: series.PeriodKey(fmt.Sprintf("2024%02d", i+1)), Value: v}
	}
	return out
}

func TestParsePeriod(t *testing.T) {
	if ParsePeriod("3y") != Period3Y || ParsePeriod("5y").Years() != 5 {
		t.Fatal("known periods should parse")
	}
	if ParsePeriod("10y") != Period1Y || ParsePeriod("").Years() != 1 {
		t.Fatal("unknown period should fall back to 1y")
	}
}

func TestParsePolicy(t *testing.T) {
	if _, err := ParsePolicy("weighted_quadratic"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePolicy("median"); err == nil {
		t.Fatal("unknown policy should error")
	}
}

func TestRepresentPolicies(t *testing.T) {
	w := mk(1, 2, 3)
	cases := map[Policy]float64{
		PolicyLatest:            3,
		PolicyMean:              2,
		PolicyWeightedLinear:    14.0 / 6.0,
		PolicyWeightedQuadratic: 36.0 / 14.0,
	}
	for p, want := range cases {
		rep := p.Represent(w)
		if !rep.HasData {
			t.Fatalf("%s: expected data", p)
		}
		if diff := rep.Value - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("%s: got %v want %v", p, rep.Value, want)
		}
		if rep.Trend != series.TrendRising {
			t.Fatalf("%s: expected rising trend, got %s", p, rep.Trend)
		}
	}
}

func TestRepresentEmptyWindow(t *testing.T) {
	rep := PolicyWeightedQuadratic.Represent(nil)
	if rep.HasData || rep.Value != 0 || rep.Trend != series.TrendFlat {
		t.Fatalf("empty window should be 0/flat/no-data: %#v", rep)
	}
}

func TestBuildEconomic(t *testing.T) {
	raw := Raw{
		Rate3Y:  series.Series{{Time: "202401", Value: 3.0}, {Time: "202402", Value: 3.1}},
		Rate10Y: series.Series{{Time: "202401", Value: 4.2}, {Time: "202402", Value: 4.4}},
		MoneySupply: series.Series{
			{Time: "202302", Value: 100}, {Time: "202402", Value: 103},
		},
	}
	set := BuildEconomic(raw, 1, "202403", PolicyLatest)

	spread := set.Items[Spread]
	if len(spread.Window) != 2 || spread.Representative.Value != 1.3 {
		t.Fatalf("unexpected spread %#v", spread)
	}
	if got := set.Value(M2YoY); got != 3 {
		t.Fatalf("m2 yoy = %v", got)
	}
	if set.Items[CPIYoY].Representative.HasData {
		t.Fatal("missing cpi should have no data")
	}
	if len(set.Order) != 4 || set.Order[0] != Spread {
		t.Fatalf("unexpected order %v", set.Order)
	}
}

func TestBuildRealEstateUsesRateLevel(t *testing.T) {
	raw := Raw{BaseRate: series.Series{{Time: "202401", Value: 3.5}, {Time: "202402", Value: 3.25}}}
	set := BuildRealEstate(raw, 1, "202402", PolicyLatest)
	if got := set.Value(InterestRate); got != 3.25 {
		t.Fatalf("interest rate should be the level, got %v", got)
	}
	if _, ok := set.Representatives()[PermitYoY]; !ok {
		t.Fatal("permit yoy should be present even when empty")
	}
}

func TestDefinitionKey(t *testing.T) {
	d, ok := Lookup(RealEstateCatalog(), BuildPermits)
	if !ok {
		t.Fatal("permit definition missing")
	}
	if d.Key() != "901Y037/I43AA/1" {
		t.Fatalf("key = %s", d.Key())
	}
}
