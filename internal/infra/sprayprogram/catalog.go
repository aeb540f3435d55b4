package sprayprogram

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

//go:embed default.yaml
var defaultProgram []byte

type document struct {
	Program string                     `yaml:"program"`
	Season  int                        `yaml:"season"`
	Entries []forecast.ActionCandidate `yaml:"entries"`
}

// Catalog is a spray program loaded once at startup.
type Catalog struct {
	Program string
	Season  int
	entries []forecast.ActionCandidate
}

// Default returns the built in program.
func Default() (*Catalog, error) {
	return Parse(defaultProgram)
}

// Load reads a program from disk. An empty path falls back to the built in program.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spray program: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML program. Entries without a name are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode spray program: %w", err)
	}
	for i, e := range doc.Entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("spray program entry %d: name is required", i+1)
		}
	}
	return &Catalog{Program: doc.Program, Season: doc.Season, entries: doc.Entries}, nil
}

// Candidates implements forecast.ActionCatalog and preserves file order.
func (c *Catalog) Candidates(context.Context) ([]forecast.ActionCandidate, error) {
	out := make([]forecast.ActionCandidate, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

var _ forecast.ActionCatalog = (*Catalog)(nil)
