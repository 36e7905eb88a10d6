package theme

// Intent classifies a template and selects its decorative rule set.
type Intent string

const (
	IntentVisual     Intent = "visual"
	IntentNarrative  Intent = "narrative"
	IntentCommercial Intent = "commercial"
)

// Colors holds the six color roles.
type Colors struct {
	Primary    string `toml:"primary" json:"primary"`
	Secondary  string `toml:"secondary" json:"secondary"`
	Accent     string `toml:"accent" json:"accent"`
	Background string `toml:"background" json:"background"`
	Surface    string `toml:"surface" json:"surface"`
	Text       string `toml:"text" json:"text"`
}

// Spacing holds the five spacing sizes.
type Spacing struct {
	XS string `toml:"xs" json:"xs"`
	SM string `toml:"sm" json:"sm"`
	MD string `toml:"md" json:"md"`
	LG string `toml:"lg" json:"lg"`
	XL string `toml:"xl" json:"xl"`
}

// TextStyle is the typography of one text role.
type TextStyle struct {
	Family     string `toml:"family" json:"family"`
	Size       string `toml:"size" json:"size"`
	Weight     string `toml:"weight" json:"weight"`
	LineHeight string `toml:"line_height" json:"lineHeight"`
}

// Typography holds the three text roles.
type Typography struct {
	Heading TextStyle `toml:"heading" json:"heading"`
	Body    TextStyle `toml:"body" json:"body"`
	Caption TextStyle `toml:"caption" json:"caption"`
}

// Tokens is a complete design token set.
type Tokens struct {
	Colors     Colors     `toml:"colors" json:"colors"`
	Spacing    Spacing    `toml:"spacing" json:"spacing"`
	Typography Typography `toml:"typography" json:"typography"`
}

// Header styles the site header.
type Header struct {
	FontColor       string `json:"fontColor"`
	FontSize        string `json:"fontSize"`
	BackgroundColor string `json:"backgroundColor"`
}

// Overrides are tenant-specific token values. Empty fields keep the template
// default.
type Overrides struct {
	Tokens
	Header Header
}
