package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is the reward category a winning code resolves to.
type Tier string

const (
	TierPremium  Tier = "premium"
	TierStandard Tier = "standard"
	TierEconomy  Tier = "economy"
	TierSymbolic Tier = "symbolic"
)

// Tiers lists every known tier in display order.
var Tiers = []Tier{TierPremium, TierStandard, TierEconomy, TierSymbolic}

func validTier(t Tier) bool {
	for _, k := range Tiers {
		if k == t {
			return true
		}
	}
	return false
}

// TierManifest is the process-wide, read-only table of winning code values.
// It is loaded once at startup and injected into the redemption engine;
// resolution is independent of whether a Code row exists for the value.
type TierManifest struct {
	byValue map[string]Tier
}

// NewTierManifest builds a manifest from an explicit value→tier table.
// Used by tests to inject synthetic manifests.
func NewTierManifest(byValue map[string]Tier) (*TierManifest, error) {
	m := &TierManifest{byValue: make(map[string]Tier, len(byValue))}
	for v, t := range byValue {
		if !validTier(t) {
			return nil, fmt.Errorf("manifest value %q: unknown tier %q", v, t)
		}
		m.byValue[CanonicalValue(v)] = t
	}
	return m, nil
}

// manifestFile is the on-disk YAML shape: tier → list of winning values.
type manifestFile struct {
	Winners map[Tier][]string `yaml:"winners"`
}

// LoadTierManifest reads the winner manifest from a YAML file.
func LoadTierManifest(path string) (*TierManifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var f manifestFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	byValue := make(map[string]Tier)
	for tier, values := range f.Winners {
		for _, v := range values {
			byValue[v] = tier
		}
	}
	return NewTierManifest(byValue)
}

// Resolve returns the tier for a canonical code value, if the value is a
// winner. O(1); never mutates.
func (m *TierManifest) Resolve(value string) (Tier, bool) {
	t, ok := m.byValue[value]
	return t, ok
}

// Size returns the number of winning values in the manifest.
func (m *TierManifest) Size() int { return len(m.byValue) }
