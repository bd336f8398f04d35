package catalog

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/domain"
)

// Catalog describes what the generated listings may contain: the closed set
// of marketplaces with their badge styling, plausible cities, the
// placeholder image service and how many results to ask for.
type Catalog struct {
	ImageURL   string        `yaml:"image_url"`
	MinResults int           `yaml:"min_results"`
	MaxResults int           `yaml:"max_results"`
	Sources    []SourceStyle `yaml:"sources"`
	Cities     []string      `yaml:"cities"`
	Examples   []string      `yaml:"examples"`
}

// SourceStyle binds a marketplace to its badge classes.
type SourceStyle struct {
	Name  domain.Source `yaml:"name"`
	Badge Badge         `yaml:"badge"`
}

// Badge holds the CSS classes of a source badge.
type Badge struct {
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Border     string `yaml:"border"`
}

// Validate checks bounds and that every source is a known marketplace.
func (c *Catalog) Validate() error {
	if c.ImageURL == "" {
		return fmt.Errorf("image_url is required")
	}
	if c.MinResults < 1 || c.MaxResults < c.MinResults {
		return fmt.Errorf("invalid result bounds %d..%d", c.MinResults, c.MaxResults)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[domain.Source]bool, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Name.Valid() {
			return fmt.Errorf("unknown source %q", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source %q", s.Name)
		}
		seen[s.Name] = true
	}
	if len(c.Cities) == 0 {
		return fmt.Errorf("at least one city is required")
	}
	return nil
}

// SourceNames returns the configured marketplaces in order.
func (c *Catalog) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		names = append(names, s.Name.String())
	}
	return names
}

// BadgeFor returns the badge of src, falling back to the default source's
// badge for anything unknown.
func (c *Catalog) BadgeFor(src domain.Source) Badge {
	var fallback Badge
	for _, s := range c.Sources {
		if s.Name == src {
			return s.Badge
		}
		if s.Name == domain.DefaultSource {
			fallback = s.Badge
		}
	}
	return fallback
}

// Holder publishes the current catalog to concurrent readers and lets the
// reloader swap it.
type Holder struct {
	current    atomic.Pointer[Catalog]
	lastReload atomic.Int64
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.Store(c)
	return h
}

func (h *Holder) Get() *Catalog {
	return h.current.Load()
}

func (h *Holder) Store(c *Catalog) {
	h.current.Store(c)
	h.lastReload.Store(time.Now().UnixNano())
}

// LastReload returns when the catalog was last replaced.
func (h *Holder) LastReload() time.Time {
	ns := h.lastReload.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
