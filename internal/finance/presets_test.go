package finance

import (
	"os"
	"path/filepath"
	"testing"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	return path
}

func TestLoadPresets_Valid(t *testing.T) {
	path := writePresets(t, `
presets:
  - name: aguas-admin
    unit_column: Depto
    concept_columns: [Gas, Agua, Mantenimiento]
    total_column: Total
  - name: simple
    unit_column: Unit
    concept_columns: [Fee]
`)
	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("loaded %d presets, want 2", len(presets))
	}

	p, ok := FindPreset(presets, "aguas-admin")
	if !ok {
		t.Fatal("preset aguas-admin not found")
	}
	m := p.Mapping()
	if m.UnitColumn != "Depto" || len(m.ConceptColumns) != 3 || m.TotalColumn != "Total" {
		t.Errorf("unexpected mapping: %+v", m)
	}

	if _, ok := FindPreset(presets, "nope"); ok {
		t.Error("found nonexistent preset")
	}
}

func TestLoadPresets_MissingFileIsEmpty(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || presets != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", presets, err)
	}
	presets, err = LoadPresets("")
	if err != nil || presets != nil {
		t.Fatalf("empty path: got (%v, %v), want (nil, nil)", presets, err)
	}
}

func TestLoadPresets_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "presets:\n  - unit_column: U\n    concept_columns: [A]\n"},
		{"missing unit column", "presets:\n  - name: p\n    concept_columns: [A]\n"},
		{"no concepts", "presets:\n  - name: p\n    unit_column: U\n"},
		{"duplicate names", "presets:\n  - name: p\n    unit_column: U\n    concept_columns: [A]\n  - name: p\n    unit_column: V\n    concept_columns: [B]\n"},
		{"bad yaml", "presets: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadPresets(writePresets(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
