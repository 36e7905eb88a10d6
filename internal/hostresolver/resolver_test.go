package hostresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestResolver() *Resolver {
	return New(Options{
		BaseDomain:     "maitr.de",
		PrimaryAliases: []string{"app.maitr.de"},
		Reserved:       []string{"www", "admin", "api", "blog"},
	})
}

func TestClassify(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		host string
		want Resolution
	}{
		{"maitr.de", Resolution{Kind: KindPrimary}},
		{"MAITR.DE", Resolution{Kind: KindPrimary}},
		{"maitr.de:443", Resolution{Kind: KindPrimary}},
		{"www.maitr.de", Resolution{Kind: KindPrimary}},
		{"app.maitr.de", Resolution{Kind: KindPrimary}},
		{"localhost:8080", Resolution{Kind: KindPrimary}},
		{"127.0.0.1:8080", Resolution{Kind: KindPrimary}},
		{"[::1]:8080", Resolution{Kind: KindPrimary}},
		{"10.0.0.12", Resolution{Kind: KindPrimary}},
		{"preview-123.netlify.app", Resolution{Kind: KindPrimary}},
		{"my-branch.vercel.app", Resolution{Kind: KindPrimary}},
		{"intranet", Resolution{Kind: KindPrimary}},
		{"", Resolution{Kind: KindPrimary}},
		{"blog.maitr.de", Resolution{Kind: KindReserved, Name: "blog"}},
		{"admin.maitr.de", Resolution{Kind: KindReserved, Name: "admin"}},
		{"bella-vista.maitr.de", Resolution{Kind: KindTenant, Slug: "bella-vista"}},
		{"Bella-Vista.Maitr.de.", Resolution{Kind: KindTenant, Slug: "bella-vista"}},
		{"bella-vista.localhost:8080", Resolution{Kind: KindTenant, Slug: "bella-vista"}},
		{"www.cafe-example.com", Resolution{Kind: KindCustom, Hostname: "www.cafe-example.com"}},
		{"cafe-example.com", Resolution{Kind: KindCustom, Hostname: "cafe-example.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Classify(tc.host))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	r := newTestResolver()
	first := r.Classify("bella-vista.maitr.de")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Classify("bella-vista.maitr.de"))
	}
}

func TestNew_CustomPreviewSuffixes(t *testing.T) {
	r := New(Options{BaseDomain: "maitr.de", PreviewSuffixes: []string{"staging.example.net"}})

	assert.Equal(t, KindPrimary, r.Classify("pr-1.staging.example.net").Kind)
	// defaults are replaced, not extended
	assert.Equal(t, KindCustom, r.Classify("x.netlify.app").Kind)
	assert.Equal(t, "maitr.de", r.BaseDomain())
}
