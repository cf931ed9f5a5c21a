package finance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named, operator-maintained column mapping. Billing
// spreadsheets from the same administrator keep their layout month to
// month, so a saved preset spares re-entering the mapping every import.
type Preset struct {
	Name           string   `yaml:"name"`
	UnitColumn     string   `yaml:"unit_column"`
	ConceptColumns []string `yaml:"concept_columns"`
	TotalColumn    string   `yaml:"total_column"`
}

// Mapping converts the preset into an importer mapping.
func (p Preset) Mapping() Mapping {
	return Mapping{
		UnitColumn:     p.UnitColumn,
		ConceptColumns: p.ConceptColumns,
		TotalColumn:    p.TotalColumn,
	}
}

type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads the presets yaml file. An empty path or missing file
// yields no presets, not an error.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	seen := map[string]bool{}
	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset name %q", p.Name)
		}
		seen[p.Name] = true
		if p.UnitColumn == "" {
			return nil, fmt.Errorf("preset %q: unit_column is required", p.Name)
		}
		if len(p.ConceptColumns) == 0 {
			return nil, fmt.Errorf("preset %q: at least one concept column is required", p.Name)
		}
	}
	return file.Presets, nil
}

// FindPreset returns the preset with the given name, if any.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
