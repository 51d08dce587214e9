package engineopts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	opts, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(opts) == 0 {
		t.Fatalf("no embedded defaults")
	}
	if opts[0].Name != "USI_Hash" || opts[0].Value != "256" {
		t.Fatalf("unexpected first default: %+v", opts[0])
	}
}

func TestLoadWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	override := `options:
  - name: USI_Hash
    value: "1024"
  - name: MultiPV
    value: "4"
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	byName := make(map[string]string, len(opts))
	for _, opt := range opts {
		byName[opt.Name] = opt.Value
	}
	if byName["USI_Hash"] != "1024" {
		t.Fatalf("override not applied: %v", byName)
	}
	if byName["MultiPV"] != "4" {
		t.Fatalf("new option not appended: %v", byName)
	}
	// Overriding must not reorder: USI_Hash stays first, the new name last.
	if opts[0].Name != "USI_Hash" || opts[len(opts)-1].Name != "MultiPV" {
		t.Fatalf("order not preserved: %+v", opts)
	}
}

func TestLoadMissingOverrideFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing override file")
	}
}
