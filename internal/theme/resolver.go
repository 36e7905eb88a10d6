// Package theme resolves a template's design tokens and a tenant's overrides
// into the complete style set used to render a page.
package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// AlphaSteps are the transparency variants derived for the brand colors, in percent.
var AlphaSteps = []int{5, 10, 20, 50, 80}

// ColorVariant is a translucent version of a brand color.
type ColorVariant struct {
	Role  string `json:"role"`
	Alpha int    `json:"alpha"`
	RGB   RGB    `json:"rgb"`
}

// CSS renders the variant as an rgba() value.
func (v ColorVariant) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v.RGB.R, v.RGB.G, v.RGB.B, strconv.FormatFloat(float64(v.Alpha)/100, 'f', -1, 64))
}

// StyleSet is the resolved, complete style for one render. It is derived on
// every render and never persisted.
type StyleSet struct {
	TemplateID string         `json:"templateId"`
	Fallback   bool           `json:"fallback"`
	Intent     Intent         `json:"intent"`
	Colors     Colors         `json:"colors"`
	Spacing    Spacing        `json:"spacing"`
	Typography Typography     `json:"typography"`
	Header     Header         `json:"header"`
	Variants   []ColorVariant `json:"variants"`
	Rules      IntentRules    `json:"rules"`
}

// Variant looks up a derived color.
func (s StyleSet) Variant(role string, alpha int) (ColorVariant, bool) {
	for _, v := range s.Variants {
		if v.Role == role && v.Alpha == alpha {
			return v, true
		}
	}
	return ColorVariant{}, false
}

// Resolver merges overrides onto catalog templates.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over catalog; nil means the embedded catalog.
func NewResolver(catalog *Catalog) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Resolver{catalog: catalog}
}

// Catalog exposes the underlying catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve is total: an unknown template id uses the default template, and an
// override is applied only when it is non-empty and well formed.
func (r *Resolver) Resolve(templateID string, o Overrides) StyleSet {
	tpl, found := r.catalog.Lookup(templateID)
	d := tpl.Tokens

	s := StyleSet{
		TemplateID: tpl.ID,
		Fallback:   !found,
		Intent:     tpl.Intent,
		Colors: Colors{
			Primary:    pick(o.Colors.Primary, d.Colors.Primary, isColor),
			Secondary:  pick(o.Colors.Secondary, d.Colors.Secondary, isColor),
			Accent:     pick(o.Colors.Accent, d.Colors.Accent, isColor),
			Background: pick(o.Colors.Background, d.Colors.Background, isColor),
			Surface:    pick(o.Colors.Surface, d.Colors.Surface, isColor),
			Text:       pick(o.Colors.Text, d.Colors.Text, isColor),
		},
		Spacing: Spacing{
			XS: pick(o.Spacing.XS, d.Spacing.XS, isLength),
			SM: pick(o.Spacing.SM, d.Spacing.SM, isLength),
			MD: pick(o.Spacing.MD, d.Spacing.MD, isLength),
			LG: pick(o.Spacing.LG, d.Spacing.LG, isLength),
			XL: pick(o.Spacing.XL, d.Spacing.XL, isLength),
		},
		Typography: Typography{
			Heading: mergeText(o.Typography.Heading, d.Typography.Heading),
			Body:    mergeText(o.Typography.Body, d.Typography.Body),
			Caption: mergeText(o.Typography.Caption, d.Typography.Caption),
		},
	}
	s.Header = Header{
		FontColor:       pick(o.Header.FontColor, s.Colors.Text, isColor),
		FontSize:        pick(o.Header.FontSize, s.Typography.Heading.Size, isLength),
		BackgroundColor: pick(o.Header.BackgroundColor, s.Colors.Background, isColor),
	}

	for _, role := range []struct {
		name string
		hex  string
	}{{"primary", s.Colors.Primary}, {"secondary", s.Colors.Secondary}, {"accent", s.Colors.Accent}} {
		rgb, _ := ParseHex(role.hex) // validated by pick or by the catalog
		for _, a := range AlphaSteps {
			s.Variants = append(s.Variants, ColorVariant{Role: role.name, Alpha: a, RGB: rgb})
		}
	}

	s.Rules, _ = RulesFor(tpl.Intent)
	return s
}

func pick(override, def string, valid func(string) bool) string {
	override = strings.TrimSpace(override)
	if override != "" && valid(override) {
		return override
	}
	return def
}

func mergeText(o, d TextStyle) TextStyle {
	return TextStyle{
		Family:     pick(o.Family, d.Family, isFontFamily),
		Size:       pick(o.Size, d.Size, isLength),
		Weight:     pick(o.Weight, d.Weight, isWeight),
		LineHeight: pick(o.LineHeight, d.LineHeight, isLineHeight),
	}
}

var fontSizePresets = map[string]string{
	"small":  "14px",
	"medium": "16px",
	"large":  "18px",
}

var bareNumberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// OverridesFromConfiguration maps a configuration's design fields onto token
// overrides. The price color drives the accent role; the font family applies
// to every text role.
func OverridesFromConfiguration(cfg *domain.Configuration) Overrides {
	if cfg == nil {
		return Overrides{}
	}
	var o Overrides
	o.Colors.Primary = cfg.PrimaryColor
	o.Colors.Secondary = cfg.SecondaryColor
	o.Colors.Background = cfg.BackgroundColor
	o.Colors.Text = cfg.TextColor
	o.Colors.Accent = cfg.PriceColor

	if family := strings.TrimSpace(cfg.FontFamily); family != "" {
		o.Typography.Heading.Family = family
		o.Typography.Body.Family = family
		o.Typography.Caption.Family = family
	}
	o.Typography.Body.Size = fontSize(cfg.FontSize)

	o.Header = Header{
		FontColor:       cfg.Header.FontColor,
		FontSize:        fontSize(cfg.Header.FontSize),
		BackgroundColor: cfg.Header.BackgroundColor,
	}
	return o
}

func fontSize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if preset, ok := fontSizePresets[v]; ok {
		return preset
	}
	if bareNumberRe.MatchString(v) {
		return v + "px"
	}
	return v
}
