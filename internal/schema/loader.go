package schema

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tables embed.FS

// tableDef mirrors the YAML layout of a language table.
type tableDef struct {
	Language      string     `yaml:"language"`
	Script        string     `yaml:"script"`
	Institutional []string   `yaml:"institutional"`
	Fields        []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Key       string   `yaml:"key"`
	Kind      string   `yaml:"kind"`
	MinLength int      `yaml:"min_length"`
	Synonyms  []string `yaml:"synonyms"`
	Patterns  []string `yaml:"patterns"`
}

// Load returns the built-in schema for the given language code.
func Load(lang string) (*Schema, error) {
	data, err := tables.ReadFile("tables/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("schema: no built-in table for language %q: %w", lang, err)
	}
	return parse(data)
}

// LoadFile loads a schema from a user-supplied YAML table.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided schema path is expected
	if err != nil {
		return nil, fmt.Errorf("schema: reading table: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Schema, error) {
	var def tableDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("schema: parsing table: %w", err)
	}
	if def.Language == "" {
		return nil, fmt.Errorf("schema: table missing language")
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("schema: table for %q defines no fields", def.Language)
	}
	s, err := buildSchema(&def)
	if err != nil {
		return nil, fmt.Errorf("schema: building table for %q: %w", def.Language, err)
	}
	return s, nil
}

// Registry holds the active schema and supports runtime language switches.
// The schema value is swapped by reference, never mutated in place; cached
// regions stay valid across a switch while derived field maps must be
// recomputed by callers.
type Registry struct {
	mu     sync.RWMutex
	active *Schema
}

// NewRegistry creates a registry with the given initial schema.
func NewRegistry(s *Schema) *Registry {
	return &Registry{active: s}
}

// Active returns the current schema.
func (r *Registry) Active() *Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetLanguage loads the built-in table for lang and swaps it in.
func (r *Registry) SetLanguage(lang string) error {
	s, err := Load(lang)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.active = s
	r.mu.Unlock()
	return nil
}

// Set swaps in an explicit schema (e.g. loaded from a user file).
func (r *Registry) Set(s *Schema) {
	r.mu.Lock()
	r.active = s
	r.mu.Unlock()
}
