package eventmodels

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type ScreenPresetYAML struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description,omitempty"`
	ExpirationDays  *int     `yaml:"expirationDays,omitempty"`
	MinOtmPct       *float64 `yaml:"minOtmPct,omitempty"`
	MaxOtmPct       *float64 `yaml:"maxOtmPct,omitempty"`
	DeltaLo         *float64 `yaml:"deltaLo,omitempty"`
	DeltaHi         *float64 `yaml:"deltaHi,omitempty"`
	MinBid          *float64 `yaml:"minBid,omitempty"`
	MinOpenInterest *int64   `yaml:"minOpenInterest,omitempty"`
	MinVolume       *int64   `yaml:"minVolume,omitempty"`
	MaxSpreadToMid  *float64 `yaml:"maxSpreadToMid,omitempty"`
	MinPremiumYield *float64 `yaml:"minPremiumYield,omitempty"`
	OptionType      string   `yaml:"optionType,omitempty"`
	RankMetric      string   `yaml:"rankMetric,omitempty"`
	Limit           int      `yaml:"limit,omitempty"`
}

type ScreenPresetsConfigYAML struct {
	Presets []ScreenPresetYAML `yaml:"presets"`
}

func ParseScreenPresets(r io.Reader) (*ScreenPresetsConfigYAML, error) {
	var cfg ScreenPresetsConfigYAML
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		if err == io.EOF {
			return &cfg, nil
		}

		return nil, fmt.Errorf("ParseScreenPresets: failed to decode yaml: %w", err)
	}

	seen := make(map[string]struct{}, len(cfg.Presets))
	for _, p := range cfg.Presets {
		key := strings.ToLower(p.Name)
		if key == "" {
			return nil, fmt.Errorf("ParseScreenPresets: preset without a name")
		}

		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("ParseScreenPresets: duplicate preset %q", p.Name)
		}
		seen[key] = struct{}{}
	}

	return &cfg, nil
}

func (c *ScreenPresetsConfigYAML) GetPreset(name string) (*ScreenPresetYAML, error) {
	n1 := strings.ToLower(name)
	for _, preset := range c.Presets {
		if n1 == strings.ToLower(preset.Name) {
			return &preset, nil
		}
	}

	return nil, fmt.Errorf("ScreenPresetsConfigYAML: preset %q not found", name)
}

func (c *ScreenPresetsConfigYAML) Names() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}

	return names
}

func (p *ScreenPresetYAML) ToCriteria() (ScreenCriteria, error) {
	criteria := ScreenCriteria{
		ExpirationDays:  p.ExpirationDays,
		MinOtmPct:       p.MinOtmPct,
		MaxOtmPct:       p.MaxOtmPct,
		DeltaLo:         p.DeltaLo,
		DeltaHi:         p.DeltaHi,
		MinBid:          p.MinBid,
		MinOpenInterest: p.MinOpenInterest,
		MinVolume:       p.MinVolume,
		MaxSpreadToMid:  p.MaxSpreadToMid,
		MinPremiumYield: p.MinPremiumYield,
		RankMetric:      RankMetric(p.RankMetric),
		Limit:           p.Limit,
	}

	if p.OptionType != "" {
		optionType, err := NewOptionType(p.OptionType)
		if err != nil {
			return ScreenCriteria{}, fmt.Errorf("ScreenPresetYAML.ToCriteria: %s: %v: %w", p.Name, err, ErrInvalidCriteria)
		}
		criteria.OptionType = &optionType
	}

	if err := criteria.Validate(); err != nil {
		return ScreenCriteria{}, fmt.Errorf("ScreenPresetYAML.ToCriteria: %s: %w", p.Name, err)
	}

	return criteria, nil
}
