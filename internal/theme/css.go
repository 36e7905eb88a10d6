package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// CSSVar is one custom property handed to the rendering surface.
type CSSVar struct {
	Name  string
	Value string
}

// CSSVariables flattens the style set into ordered custom properties. Values
// come from validated tokens only.
func (s StyleSet) CSSVariables() []CSSVar {
	vars := []CSSVar{
		{"--color-primary", s.Colors.Primary},
		{"--color-secondary", s.Colors.Secondary},
		{"--color-accent", s.Colors.Accent},
		{"--color-background", s.Colors.Background},
		{"--color-surface", s.Colors.Surface},
		{"--color-text", s.Colors.Text},
	}
	for _, v := range s.Variants {
		vars = append(vars, CSSVar{fmt.Sprintf("--color-%s-%d", v.Role, v.Alpha), v.CSS()})
	}
	vars = append(vars,
		CSSVar{"--space-xs", s.Spacing.XS},
		CSSVar{"--space-sm", s.Spacing.SM},
		CSSVar{"--space-md", s.Spacing.MD},
		CSSVar{"--space-lg", s.Spacing.LG},
		CSSVar{"--space-xl", s.Spacing.XL},
	)
	for _, role := range []struct {
		name string
		ts   TextStyle
	}{{"heading", s.Typography.Heading}, {"body", s.Typography.Body}, {"caption", s.Typography.Caption}} {
		vars = append(vars,
			CSSVar{"--font-" + role.name + "-family", role.ts.Family},
			CSSVar{"--font-" + role.name + "-size", role.ts.Size},
			CSSVar{"--font-" + role.name + "-weight", role.ts.Weight},
			CSSVar{"--font-" + role.name + "-line-height", role.ts.LineHeight},
		)
	}
	vars = append(vars,
		CSSVar{"--header-color", s.Header.FontColor},
		CSSVar{"--header-size", s.Header.FontSize},
		CSSVar{"--header-background", s.Header.BackgroundColor},
		CSSVar{"--surface-opacity", strconv.FormatFloat(s.Rules.SurfaceOpacity, 'f', -1, 64)},
		CSSVar{"--surface-blur", s.Rules.BackdropBlur},
		CSSVar{"--surface-border-width", s.Rules.BorderWidth},
		CSSVar{"--surface-radius", s.Rules.BorderRadius},
		CSSVar{"--surface-shadow", s.Rules.Shadow},
		CSSVar{"--motion-duration", s.Rules.TransitionDuration},
	)
	return vars
}

// RootCSS renders the variables as a :root block.
func (s StyleSet) RootCSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range s.CSSVariables() {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")
	return b.String()
}
