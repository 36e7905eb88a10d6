package theme

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var embeddedCatalog []byte

// Template is an immutable catalog entry.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Intent      Intent `json:"intent"`
	Tokens      Tokens `json:"tokens"`
}

type fileCatalog struct {
	Default   string         `toml:"default"`
	Templates []fileTemplate `toml:"template"`
}

type fileTemplate struct {
	ID          string     `toml:"id"`
	Name        string     `toml:"name"`
	Description string     `toml:"description"`
	Intent      string     `toml:"intent"`
	Colors      Colors     `toml:"colors"`
	Spacing     Spacing    `toml:"spacing"`
	Typography  Typography `toml:"typography"`
}

// Catalog is the static set of template definitions.
type Catalog struct {
	defaultID string
	templates map[string]Template
	order     []string
}

// LoadCatalog decodes and validates a TOML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw fileCatalog
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("decode template catalog: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("template catalog has unknown keys: %s", strings.Join(keys, ", "))
	}

	c := &Catalog{
		defaultID: strings.TrimSpace(raw.Default),
		templates: make(map[string]Template, len(raw.Templates)),
	}
	for _, ft := range raw.Templates {
		tpl := Template{
			ID:          strings.TrimSpace(ft.ID),
			Name:        ft.Name,
			Description: ft.Description,
			Intent:      Intent(strings.TrimSpace(ft.Intent)),
			Tokens: Tokens{
				Colors:     ft.Colors,
				Spacing:    ft.Spacing,
				Typography: ft.Typography,
			},
		}
		if err := validateTemplate(tpl); err != nil {
			return nil, err
		}
		if _, dup := c.templates[tpl.ID]; dup {
			return nil, fmt.Errorf("template %q defined twice", tpl.ID)
		}
		c.templates[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
	}
	if c.defaultID == "" {
		return nil, fmt.Errorf("template catalog has no default")
	}
	if _, ok := c.templates[c.defaultID]; !ok {
		return nil, fmt.Errorf("default template %q is not defined", c.defaultID)
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded catalog. The embedded file is validated
// by tests, so a decode failure here is a build defect.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(embeddedCatalog)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// DefaultID is the fallback template id.
func (c *Catalog) DefaultID() string { return c.defaultID }

// Lookup returns the template for id, or the default template with
// found=false when id is unknown.
func (c *Catalog) Lookup(id string) (Template, bool) {
	if tpl, ok := c.templates[strings.TrimSpace(id)]; ok {
		return tpl, true
	}
	return c.templates[c.defaultID], false
}

// Has reports whether id names a catalog template.
func (c *Catalog) Has(id string) bool {
	_, ok := c.templates[strings.TrimSpace(id)]
	return ok
}

// List returns templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// IDs returns the sorted template ids.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}

func validateTemplate(t Template) error {
	if t.ID == "" {
		return fmt.Errorf("template without id")
	}
	if _, ok := intentRules[t.Intent]; !ok {
		return fmt.Errorf("template %q: unknown intent %q", t.ID, t.Intent)
	}
	colors := map[string]string{
		"primary": t.Tokens.Colors.Primary, "secondary": t.Tokens.Colors.Secondary,
		"accent": t.Tokens.Colors.Accent, "background": t.Tokens.Colors.Background,
		"surface": t.Tokens.Colors.Surface, "text": t.Tokens.Colors.Text,
	}
	for role, v := range colors {
		if _, err := ParseHex(v); err != nil {
			return fmt.Errorf("template %q color %s: %w", t.ID, role, err)
		}
	}
	for name, v := range map[string]string{
		"xs": t.Tokens.Spacing.XS, "sm": t.Tokens.Spacing.SM, "md": t.Tokens.Spacing.MD,
		"lg": t.Tokens.Spacing.LG, "xl": t.Tokens.Spacing.XL,
	} {
		if !isLength(v) {
			return fmt.Errorf("template %q spacing %s: invalid length %q", t.ID, name, v)
		}
	}
	for role, ts := range map[string]TextStyle{
		"heading": t.Tokens.Typography.Heading, "body": t.Tokens.Typography.Body, "caption": t.Tokens.Typography.Caption,
	} {
		if !isFontFamily(ts.Family) || !isLength(ts.Size) || !isWeight(ts.Weight) || !isLineHeight(ts.LineHeight) {
			return fmt.Errorf("template %q typography %s is incomplete or invalid", t.ID, role)
		}
	}
	return nil
}
