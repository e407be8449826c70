package indicator

import "strings"

// Definition identifies one upstream monthly statistic.
type Definition struct {
	Name      string   `mapstructure:"name"`
	StatCode  string   `mapstructure:"stat_code"`
	ItemCodes []string `mapstructure:"item_codes"`
	Cycle     string   `mapstructure:"cycle"`
	// Required series fail the whole pipeline when they come back empty.
	Required bool `mapstructure:"required"`
}

// Key is a log-friendly identifier.
func (d Definition) Key() string {
	if len(d.ItemCodes) == 0 {
		return d.StatCode
	}
	return d.StatCode + "/" + strings.Join(d.ItemCodes, "/")
}

// Economic signal inputs.
const (
	Rate3Y       = "rate3y"
	Rate10Y      = "rate10y"
	MoneySupply  = "m2"
	ConsumerPx   = "cpi"
	ProducerPx   = "ppi"
	BaseRate     = "baseRate"
	SalePrice    = "sale"
	RentPrice    = "rent"
	BuildPermits = "permit"
)

// EconomicCatalog lists the statistics behind the economic signal.
func EconomicCatalog() []Definition {
	return []Definition{
		{Name: Rate3Y, StatCode: "721Y001", ItemCodes: []string{"5020000"}, Cycle: "M"},
		{Name: Rate10Y, StatCode: "721Y001", ItemCodes: []string{"5050000"}, Cycle: "M"},
		{Name: MoneySupply, StatCode: "101Y004", ItemCodes: []string{"BBHA01"}, Cycle: "M"},
		{Name: ConsumerPx, StatCode: "102Y003", ItemCodes: []string{"ABA2"}, Cycle: "M"},
		{Name: ProducerPx, StatCode: "404Y014", ItemCodes: []string{"*AA"}, Cycle: "M"},
	}
}

// RealEstateCatalog lists the statistics behind the housing risk model.
func RealEstateCatalog() []Definition {
	return []Definition{
		{Name: BaseRate, StatCode: "722Y001", ItemCodes: []string{"0101000"}, Cycle: "M"},
		{Name: MoneySupply, StatCode: "101Y004", ItemCodes: []string{"BBHA01"}, Cycle: "M"},
		{Name: SalePrice, StatCode: "901Y062", ItemCodes: []string{"P63A"}, Cycle: "M"},
		{Name: RentPrice, StatCode: "901Y063", ItemCodes: []string{"P64A"}, Cycle: "M"},
		{Name: BuildPermits, StatCode: "901Y037", ItemCodes: []string{"I43AA", "1"}, Cycle: "M"},
	}
}

// Lookup finds a definition by name.
func Lookup(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
