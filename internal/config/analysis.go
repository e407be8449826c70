package config

import (
	"fmt"
	"strings"

	"macro-signal/internal/indicator"
	"macro-signal/internal/scoring"
)

// FamilyConfig tunes one classification family. Empty fields keep the
// built-in catalog, weights and tables.
type FamilyConfig struct {
	Policy     string                        `mapstructure:"policy"`
	Indicators []indicator.Definition        `mapstructure:"indicators"`
	Weights    map[string]float64            `mapstructure:"weights"`
	Tables     map[string]scoring.ScoreTable `mapstructure:"tables"`
}

// AnalysisConfig holds the data-driven parts of the scoring engine.
type AnalysisConfig struct {
	Economic             FamilyConfig                 `mapstructure:"economic"`
	RealEstate           FamilyConfig                 `mapstructure:"real_estate"`
	EconomicThresholds   scoring.EconomicThresholds   `mapstructure:"economic_thresholds"`
	RealEstateThresholds scoring.RealEstateThresholds `mapstructure:"real_estate_thresholds"`
}

// DefaultAnalysis returns the canonical policies and thresholds.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Economic:             FamilyConfig{Policy: string(indicator.PolicyLatest)},
		RealEstate:           FamilyConfig{Policy: string(indicator.PolicyWeightedQuadratic)},
		EconomicThresholds:   scoring.DefaultEconomicThresholds(),
		RealEstateThresholds: scoring.DefaultRealEstateThresholds(),
	}
}

// Validate checks that every configured family resolves cleanly.
func (a AnalysisConfig) Validate() error {
	if _, _, _, err := a.Economic.Resolve(indicator.EconomicCatalog(), scoring.EconomicModel()); err != nil {
		return fmt.Errorf("analysis.economic: %w", err)
	}
	if _, _, _, err := a.RealEstate.Resolve(indicator.RealEstateCatalog(), scoring.RealEstateModel()); err != nil {
		return fmt.Errorf("analysis.real_estate: %w", err)
	}
	return nil
}

// Resolve overlays the configuration on the built-in catalog and model.
// Indicators replace catalog entries with the same name or are appended;
// weights replace the default weight set wholesale; tables replace by name.
func (f FamilyConfig) Resolve(catalog []indicator.Definition, model scoring.Model) ([]indicator.Definition, indicator.Policy, scoring.Model, error) {
	policy := indicator.PolicyLatest
	if f.Policy != "" {
		p, err := indicator.ParsePolicy(f.Policy)
		if err != nil {
			return nil, "", scoring.Model{}, err
		}
		policy = p
	}

	defs := append([]indicator.Definition(nil), catalog...)
	for _, override := range f.Indicators {
		if override.Name == "" || override.StatCode == "" {
			return nil, "", scoring.Model{}, fmt.Errorf("indicator override needs name and stat_code")
		}
		replaced := false
		for i := range defs {
			if defs[i].Name == override.Name {
				defs[i] = override
				replaced = true
				break
			}
		}
		if !replaced {
			defs = append(defs, override)
		}
	}

	resolved := scoring.Model{
		Tables:  make(map[string]scoring.ScoreTable, len(model.Tables)),
		Weights: model.Weights,
	}
	for name, t := range model.Tables {
		resolved.Tables[name] = t
	}
	for name, t := range f.Tables {
		resolved.Tables[canonicalName(model, name)] = t
	}
	if len(f.Weights) > 0 {
		resolved.Weights = make(map[string]float64, len(f.Weights))
		for name, w := range f.Weights {
			resolved.Weights[canonicalName(model, name)] = w
		}
	}
	if err := resolved.Validate(); err != nil {
		return nil, "", scoring.Model{}, err
	}
	return defs, policy, resolved, nil
}

// canonicalName restores the case of a built-in indicator name; viper
// lowercases every map key it reads.
func canonicalName(model scoring.Model, name string) string {
	for known := range model.Tables {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return name
}
