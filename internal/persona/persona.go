package persona

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/ysbot.yaml
var builtinFS embed.FS

// Persona defines the bot's identity as shown in the transcript and the
// system prompt sent with every request.
type Persona struct {
	Name        string `yaml:"name"`
	Welcome     string `yaml:"welcome"`
	Placeholder string `yaml:"placeholder"`
	System      string `yaml:"system"`
}

// Default returns the embedded persona.
func Default() *Persona {
	data, err := builtinFS.ReadFile("builtin/ysbot.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded persona missing: %v", err))
	}
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		panic(fmt.Sprintf("embedded persona invalid: %v", err))
	}
	return &p
}

// Load reads a persona file. Fields the file omits keep the embedded
// defaults, so a file can override just the system prompt.
func Load(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse persona file %s: %w", path, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("persona file %s: name must not be empty", path)
	}
	return p, nil
}

// Resolve loads the persona at path, or the embedded default when path is
// empty.
func Resolve(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
