package render

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

// 1x1 transparent PNG
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func sampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		ID:           "cfg-1",
		OwnerID:      "owner-1",
		BusinessName: "Bella Vista",
		BusinessType: "restaurant",
		Location:     "Berlin",
		Description:  "# Our story\n\nFamily run since **1987**. <script>alert(1)</script>",
		Template:     "cozy",
		Categories:   domain.NewCategories("Pizza", "Pasta", "Drinks"),
		MenuItems: []domain.MenuItem{
			{Name: "Tiramisu", Price: "6.50"},
			{Name: "Carbonara", Category: "pasta", Price: "12.00"},
			{Name: "Margherita", Category: "Pizza", Price: "9.00", Image: &domain.Image{Source: tinyPNG, Alt: "pizza"}},
			{Name: "Espresso", Category: "Coffee", Price: "2.20"},
			{Name: "Diavola", Category: "Pizza", Price: "11.00"},
		},
		OpeningHours: domain.OpeningHours{
			"Monday": {Closed: true},
			"friday": {Open: "11:00", Close: "23:00"},
		},
		SelectedPages: []string{"contact", "catalog", "gallery", "about"},
		Contact: domain.ContactMethods{
			{Type: domain.ContactPhone, Value: "+49 30 1234 567"},
			{Type: domain.ContactEmail, Value: "hello@bella.example"},
			{Type: domain.ContactInstagram, Value: "@bellavista"},
		},
	}
}

func styles(templateID string) theme.StyleSet {
	return theme.NewResolver(nil).Resolve(templateID, theme.Overrides{})
}

func TestSupportedPages_TableOrderWithHome(t *testing.T) {
	cfg := sampleConfiguration()
	assert.Equal(t, []PageID{PageHome, PageMenu, PageGallery, PageAbout, PageContact}, SupportedPages(cfg))

	cfg.SelectedPages = nil
	assert.Equal(t, []PageID{PageHome}, SupportedPages(cfg))

	cfg.SelectedPages = []string{"blog", "about"}
	assert.Equal(t, []PageID{PageHome, PageAbout}, SupportedPages(cfg))
}

func TestRender_Home(t *testing.T) {
	pc := NewRenderer(0).Render(sampleConfiguration(), styles("cozy"), "")
	require.False(t, pc.NotFound)
	assert.Equal(t, PageHome, pc.PageID)
	require.NotNil(t, pc.Hero)
	assert.Equal(t, "Bella Vista", pc.Hero.Name)
	assert.Len(t, pc.Preview, DefaultPreviewSize)
	assert.True(t, pc.MoreItems)
	assert.Equal(t, "Tiramisu", pc.Preview[0].Name)

	require.NotNil(t, pc.Hours)
	assert.True(t, pc.Hours.Collapsed)
	require.Len(t, pc.Hours.Days, 2)
	assert.Equal(t, "monday", pc.Hours.Days[0].Day)
	assert.True(t, pc.Hours.Days[0].Closed)

	require.Len(t, pc.Nav, 5)
	assert.True(t, pc.Nav[0].Active)
	assert.Equal(t, "grid", pc.Layout.Gallery)
}

func TestRender_HomeWithoutHours(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.OpeningHours = nil
	cfg.MenuItems = cfg.MenuItems[:2]
	pc := NewRenderer(0).Render(cfg, styles("cozy"), "home")
	assert.Nil(t, pc.Hours)
	assert.Len(t, pc.Preview, 2)
	assert.False(t, pc.MoreItems)
}

func TestRender_MenuGroupsByCategoryOrder(t *testing.T) {
	pc := NewRenderer(0).Render(sampleConfiguration(), styles("cozy"), "catalog")
	require.Equal(t, PageMenu, pc.PageID)
	require.Len(t, pc.Sections, 4)
	assert.Equal(t, "Pizza", pc.Sections[0].Category)
	assert.Len(t, pc.Sections[0].Items, 2)
	assert.Equal(t, "Pasta", pc.Sections[1].Category)
	assert.Equal(t, "Coffee", pc.Sections[2].Category)
	assert.Equal(t, "", pc.Sections[3].Category)
	assert.Equal(t, "Tiramisu", pc.Sections[3].Items[0].Name)

	img := pc.Sections[0].Items[0].Image
	require.NotNil(t, img)
	assert.True(t, img.Embedded)
	assert.Equal(t, "data:image/png;base64,"+tinyPNG, img.Src)
	assert.Equal(t, "pizza", img.Alt)
}

func TestRender_EmptyGallery(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.Gallery = nil
	pc := NewRenderer(0).Render(cfg, styles("modern"), "gallery")
	assert.False(t, pc.NotFound)
	assert.True(t, pc.Empty)
	assert.Equal(t, PageGallery, pc.PageID)
	assert.NotNil(t, pc.Images)
	assert.Empty(t, pc.Images)
	assert.Equal(t, "masonry", pc.Layout.Gallery)
}

func TestRender_GalleryMixedSources(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.Gallery = []domain.Image{
		{Source: "https://cdn.example.com/a.jpg", Alt: "a"},
		{Source: "data:image/jpeg;base64,/9j/4AAQ"},
		{Source: tinyPNG},
		{Source: "javascript:alert(1)"},
		{Source: ""},
	}
	pc := NewRenderer(0).Render(cfg, styles("modern"), "gallery")
	require.Len(t, pc.Images, 3)
	assert.False(t, pc.Empty)
	assert.Equal(t, "https://cdn.example.com/a.jpg", pc.Images[0].Src)
	assert.True(t, pc.Images[1].Embedded)
	assert.True(t, strings.HasPrefix(pc.Images[2].Src, "data:image/png;base64,"))
}

func TestRender_AboutMarkdownIsSanitized(t *testing.T) {
	pc := NewRenderer(0).Render(sampleConfiguration(), styles("minimalist"), "about")
	assert.Contains(t, pc.AboutHTML, "<h1>Our story</h1>")
	assert.Contains(t, pc.AboutHTML, "<strong>1987</strong>")
	assert.NotContains(t, pc.AboutHTML, "<script>")
	assert.False(t, pc.Empty)
	assert.Equal(t, "list", pc.Layout.Gallery)
}

func TestRender_Contact(t *testing.T) {
	pc := NewRenderer(0).Render(sampleConfiguration(), styles("cozy"), "contact")
	require.Len(t, pc.Contacts, 3)
	assert.Equal(t, "tel:+49301234567", pc.Contacts[0].Href)
	assert.Equal(t, "mailto:hello@bella.example", pc.Contacts[1].Href)
	assert.Equal(t, "https://instagram.com/bellavista", pc.Contacts[2].Href)
	require.NotNil(t, pc.Hours)
	assert.False(t, pc.Hours.Collapsed)
}

func TestRender_NotFound(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.SelectedPages = []string{"menu"}
	r := NewRenderer(0)

	for _, page := range []string{"blog", "gallery", "../etc/passwd"} {
		pc := r.Render(cfg, styles("cozy"), page)
		assert.True(t, pc.NotFound, page)
		assert.Equal(t, "Bella Vista", pc.SiteName)
		assert.Len(t, pc.Nav, 2)
	}

	pc := r.Render(nil, styles("cozy"), "menu")
	assert.True(t, pc.NotFound)
}

func TestRender_ConcurrentIsDeterministic(t *testing.T) {
	r := NewRenderer(0)
	cfg := sampleConfiguration()
	st := styles("cozy")
	want := r.Render(cfg, st, "about")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, r.Render(cfg, st, "about"))
		}()
	}
	wg.Wait()
}

func TestNormalizeImage(t *testing.T) {
	cases := []struct {
		in       string
		ok       bool
		embedded bool
	}{
		{"https://example.com/x.png", true, false},
		{"http://example.com/x.png", true, false},
		{"//cdn.example.com/x.png", true, false},
		{"/uploads/x.png", true, false},
		{"images/x.webp", true, false},
		{"data:image/png;base64," + tinyPNG, true, true},
		{"data:text/html;base64,PHNjcmlwdD4=", false, false},
		{tinyPNG, true, true},
		{base64.StdEncoding.EncodeToString([]byte("<svg xmlns='http://www.w3.org/2000/svg'></svg>")), true, true},
		{base64.StdEncoding.EncodeToString([]byte("plain text")), false, false},
		{"javascript:alert(1)", false, false},
		{"   ", false, false},
	}
	for _, c := range cases {
		img, ok := NormalizeImage(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.embedded, img.Embedded, c.in)
	}
}

func TestContactEntries_LabelForUnknownType(t *testing.T) {
	entries := contactEntries(domain.ContactMethods{
		{Type: "über", Value: "x"},
		{Type: "ñandú", Value: "y"},
		{Type: "telegram", Value: "@bella"},
		{Type: domain.ContactWhatsApp, Value: "+49 151"},
	})
	require.Len(t, entries, 4)
	assert.Equal(t, "Über", entries[0].Label)
	assert.Equal(t, "Ñandú", entries[1].Label)
	assert.Equal(t, "Telegram", entries[2].Label)
	assert.Equal(t, "WhatsApp", entries[3].Label)
	for _, e := range entries {
		assert.True(t, utf8.ValidString(e.Label), e.Label)
	}
}

func TestContactHref(t *testing.T) {
	assert.Equal(t, "https://example.com", contactHref(domain.ContactWebsite, "example.com"))
	assert.Equal(t, "", contactHref(domain.ContactWebsite, "javascript:alert(1)"))
	assert.Equal(t, "https://wa.me/4915112345", contactHref(domain.ContactWhatsApp, "+49 151 12345"))
	assert.Equal(t, "https://maps.google.com/?q=Main+St+1", contactHref(domain.ContactAddress, "Main St 1"))
	assert.Equal(t, "", contactHref(domain.ContactText, "call us"))
}
