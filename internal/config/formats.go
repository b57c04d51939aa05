package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/draftdex/draftdex/internal/models"
)

// Format describes one draft format: its budget and the tier sheet mapping
// Pokemon to costs.
type Format struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	BudgetPerTeam int         `yaml:"budget_per_team"`
	Tiers         []TierEntry `yaml:"tiers"`
}

// TierEntry is one row of a format's tier sheet.
type TierEntry struct {
	Pokemon string `yaml:"pokemon"`
	Name    string `yaml:"name"`
	Tier    string `yaml:"tier"`
	Cost    int    `yaml:"cost"`
}

type formatsFile struct {
	Formats []Format `yaml:"formats"`
}

// LoadFormats parses the format sheet file and indexes formats by ID.
func LoadFormats(path string) (map[string]Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formats file: %w", err)
	}

	var file formatsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse formats file: %w", err)
	}

	formats := make(map[string]Format, len(file.Formats))
	for _, f := range file.Formats {
		if f.ID == "" {
			return nil, fmt.Errorf("format %q has no id", f.Name)
		}
		if _, dup := formats[f.ID]; dup {
			return nil, fmt.Errorf("duplicate format id %q", f.ID)
		}
		formats[f.ID] = f
	}
	return formats, nil
}

// PokemonTiers converts a format's tier sheet to store rows.
func (f Format) PokemonTiers() []models.PokemonTier {
	tiers := make([]models.PokemonTier, 0, len(f.Tiers))
	for _, entry := range f.Tiers {
		name := entry.Name
		if name == "" {
			name = entry.Pokemon
		}
		tiers = append(tiers, models.PokemonTier{
			PokemonID: entry.Pokemon,
			Name:      name,
			Tier:      entry.Tier,
			Cost:      entry.Cost,
		})
	}
	return tiers
}
