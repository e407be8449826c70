package indicator

import "macro-signal/internal/series"

// Derived indicator names as they appear in responses.
const (
	Spread       = "spread"
	M2YoY        = "m2YoY"
	CPIYoY       = "cpiYoY"
	PPIYoY       = "ppiYoY"
	InterestRate = "interestRate"
	SaleYoY      = "salePriceYoY"
	RentYoY      = "rentPriceYoY"
	PermitYoY    = "permitYoY"
)

// Raw holds fetched series keyed by Definition.Name.
type Raw map[string]series.Series

// BuildEconomic derives the long-short spread and the YoY growth series
// used by the economic signal.
func BuildEconomic(raw Raw, years int, asOf series.PeriodKey, policy Policy) *Set {
	set := NewSet(policy)
	set.Add(Spread, series.Spread(raw[Rate3Y], raw[Rate10Y]), years, asOf)
	set.Add(M2YoY, series.YoY(raw[MoneySupply]), years, asOf)
	set.Add(CPIYoY, series.YoY(raw[ConsumerPx]), years, asOf)
	set.Add(PPIYoY, series.YoY(raw[ProducerPx]), years, asOf)
	return set
}

// BuildRealEstate derives the housing inputs. The policy rate is used as
// a level; everything else as YoY growth.
func BuildRealEstate(raw Raw, years int, asOf series.PeriodKey, policy Policy) *Set {
	set := NewSet(policy)
	set.Add(SaleYoY, series.YoY(raw[SalePrice]), years, asOf)
	set.Add(RentYoY, series.YoY(raw[RentPrice]), years, asOf)
	set.Add(InterestRate, raw[BaseRate], years, asOf)
	set.Add(M2YoY, series.YoY(raw[MoneySupply]), years, asOf)
	set.Add(PermitYoY, series.YoY(raw[BuildPermits]), years, asOf)
	return set
}
