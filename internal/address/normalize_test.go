package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Bella Vista":          "bella-vista",
		"  bella--vista  ":     "bella-vista",
		"BELLA_VISTA!!":        "bella-vista",
		"Café Müller":          "cafe-muller",
		"Straße 12":            "strasse-12",
		"Smørrebrød & Co.":     "smorrebrod-co",
		"---":                  "",
		"ab":                   "ab",
		"über.größe/pizza":     "uber-grosse-pizza",
		"ﬁne dining":           "fine-dining",
		"Łódź Pierogi":         "lodz-pierogi",
		"already-normalized-1": "already-normalized-1",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Bella Vista", "  --Zur Alten Mühle--  ", "ÆØÅ", "İstanbul Kebap", "a_b_c",
		"日本料理", "🍕 pizza 🍕", "", "x", "Crème Brûlée & Thé", "ALL CAPS 99",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestCheckFormat(t *testing.T) {
	assert.Error(t, CheckFormat("ab"))
	assert.Error(t, CheckFormat("-abc"))
	assert.Error(t, CheckFormat("abc-"))
	assert.Error(t, CheckFormat("ab c"))
	assert.Error(t, CheckFormat("ABC"))
	assert.NoError(t, CheckFormat("abc"))
	assert.NoError(t, CheckFormat("bella-vista-2"))

	err := CheckFormat("x")
	fe, ok := err.(*FormatError)
	if assert.True(t, ok) {
		assert.Equal(t, "x", fe.Name)
	}
}
