package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Loader reads the catalog from a YAML file, or from the built-in catalog
// when no file is configured.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Source describes where the catalog comes from, for logs.
func (l *Loader) Source() string {
	if l.filePath == "" {
		return "builtin"
	}
	return l.filePath
}

// Load reads, parses and validates the catalog.
func (l *Loader) Load() (*Catalog, error) {
	data := defaultCatalog
	if l.filePath != "" {
		raw, err := os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Default returns the built-in catalog. It panics if the embedded document
// is broken, which only a bad build can cause.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}
