// Package engineopts loads the setoption presets sent to an engine right
// after the handshake. Embedded defaults can be overridden by an external
// YAML file; order is preserved because some engines care about it
// (USI_Hash before ponder settings, for example).
package engineopts

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultFiles embed.FS

// Option is a single "setoption name <Name> value <Value>" entry.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type optionsFile struct {
	Options []Option `yaml:"options"`
}

// Load returns the embedded defaults merged with overridePath, when given.
// An override entry with a name already present replaces the default in
// place; new names append in file order.
func Load(overridePath string) ([]Option, error) {
	raw, err := fs.ReadFile(defaultFiles, "defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	opts, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}

	if strings.TrimSpace(overridePath) == "" {
		return opts, nil
	}

	raw, err = os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read option overrides: %w", err)
	}
	overrides, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("option overrides %s: %w", overridePath, err)
	}

	return merge(opts, overrides), nil
}

func parse(raw []byte) ([]Option, error) {
	var file optionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(file.Options))
	for _, opt := range file.Options {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			continue
		}
		out = append(out, Option{Name: name, Value: strings.TrimSpace(opt.Value)})
	}
	return out, nil
}

func merge(base, overrides []Option) []Option {
	index := make(map[string]int, len(base))
	for i, opt := range base {
		index[opt.Name] = i
	}
	for _, opt := range overrides {
		if i, ok := index[opt.Name]; ok {
			base[i] = opt
			continue
		}
		index[opt.Name] = len(base)
		base = append(base, opt)
	}
	return base
}
