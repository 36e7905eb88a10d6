package theme

// IntentRules is the decorative treatment for one intent. Each entry in
// intentRules is self-contained; adding an intent means adding one entry.
type IntentRules struct {
	Surface            string  `json:"surface"` // glass | bordered | flat
	SurfaceOpacity     float64 `json:"surfaceOpacity"`
	BackdropBlur       string  `json:"backdropBlur"`
	BorderWidth        string  `json:"borderWidth"`
	BorderRadius       string  `json:"borderRadius"`
	Shadow             string  `json:"shadow"`
	Motion             string  `json:"motion"` // entrance | moderate | none
	TransitionDuration string  `json:"transitionDuration"`
	EntranceAnimation  string  `json:"entranceAnimation"`
	HoverLift          bool    `json:"hoverLift"`
}

var intentRules = map[Intent]IntentRules{
	IntentVisual: {
		Surface:            "glass",
		SurfaceOpacity:     0.7,
		BackdropBlur:       "12px",
		BorderWidth:        "1px",
		BorderRadius:       "20px",
		Shadow:             "0 8px 32px rgba(0, 0, 0, 0.12)",
		Motion:             "entrance",
		TransitionDuration: "600ms",
		EntranceAnimation:  "fade-up",
		HoverLift:          true,
	},
	IntentCommercial: {
		Surface:            "bordered",
		SurfaceOpacity:     1,
		BackdropBlur:       "0px",
		BorderWidth:        "2px",
		BorderRadius:       "12px",
		Shadow:             "0 2px 6px rgba(0, 0, 0, 0.08)",
		Motion:             "moderate",
		TransitionDuration: "250ms",
		EntranceAnimation:  "none",
		HoverLift:          true,
	},
	IntentNarrative: {
		Surface:            "flat",
		SurfaceOpacity:     1,
		BackdropBlur:       "0px",
		BorderWidth:        "0px",
		BorderRadius:       "4px",
		Shadow:             "none",
		Motion:             "none",
		TransitionDuration: "0ms",
		EntranceAnimation:  "none",
		HoverLift:          false,
	},
}

// RulesFor returns the rule set for an intent.
func RulesFor(intent Intent) (IntentRules, bool) {
	r, ok := intentRules[intent]
	return r, ok
}
