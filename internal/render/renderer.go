// Package render composes page content for a tenant site from a stored
// configuration and a resolved style set. Rendering is pure: the same inputs
// always yield the same PageContent.
package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

// DefaultPreviewSize bounds the home page item preview.
const DefaultPreviewSize = 3

// NavItem is one entry of the site navigation.
type NavItem struct {
	ID     PageID `json:"id"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Active bool   `json:"active,omitempty"`
}

// Hero is the home page header block.
type Hero struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
}

// Item is a rendered menu/catalog item.
type Item struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       string        `json:"price,omitempty"`
	Category    string        `json:"category,omitempty"`
	Image       *DisplayImage `json:"image,omitempty"`
}

// Section groups items of one category. Category is empty for uncategorized
// items.
type Section struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// DayLine is one day of the opening hours block.
type DayLine struct {
	Day    string `json:"day"`
	Label  string `json:"label"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// HoursBlock is the opening hours block; Collapsed blocks start folded.
type HoursBlock struct {
	Collapsed bool      `json:"collapsed"`
	Days      []DayLine `json:"days"`
}

// Layout carries intent-driven presentation hints.
type Layout struct {
	Intent  theme.Intent `json:"intent"`
	Gallery string       `json:"gallery"` // masonry | grid | list
	Animate bool         `json:"animate"`
}

// PageContent is the renderer output. NotFound marks an unsupported page id;
// Empty marks a supported page with nothing to show.
type PageContent struct {
	PageID   PageID    `json:"pageId"`
	Title    string    `json:"title"`
	SiteName string    `json:"siteName"`
	NotFound bool      `json:"notFound,omitempty"`
	Empty    bool      `json:"empty,omitempty"`
	Nav      []NavItem `json:"nav"`
	Layout   Layout    `json:"layout"`

	Hero      *Hero          `json:"hero,omitempty"`
	Preview   []Item         `json:"preview,omitempty"`
	MoreItems bool           `json:"moreItems,omitempty"`
	Hours     *HoursBlock    `json:"hours,omitempty"`
	Sections  []Section      `json:"sections,omitempty"`
	Images    []DisplayImage `json:"images,omitempty"`
	AboutHTML string         `json:"aboutHtml,omitempty"`
	Contacts  []ContactEntry `json:"contacts,omitempty"`
}

var layoutByIntent = map[theme.Intent]Layout{
	theme.IntentVisual:     {Intent: theme.IntentVisual, Gallery: "masonry", Animate: true},
	theme.IntentCommercial: {Intent: theme.IntentCommercial, Gallery: "grid", Animate: true},
	theme.IntentNarrative:  {Intent: theme.IntentNarrative, Gallery: "list", Animate: false},
}

var dayLabels = map[string]string{
	"monday": "Monday", "tuesday": "Tuesday", "wednesday": "Wednesday", "thursday": "Thursday",
	"friday": "Friday", "saturday": "Saturday", "sunday": "Sunday",
}

// Renderer builds PageContent. It holds no per-request state and is safe for
// concurrent use.
type Renderer struct {
	md          goldmark.Markdown
	previewSize int
}

// NewRenderer creates a renderer. previewSize <= 0 uses DefaultPreviewSize.
func NewRenderer(previewSize int) *Renderer {
	if previewSize <= 0 {
		previewSize = DefaultPreviewSize
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		previewSize: previewSize,
	}
}

// Render produces the content for pageID. It never fails: an unsupported page
// yields NotFound and the caller decides how to present it.
func (r *Renderer) Render(cfg *domain.Configuration, styles theme.StyleSet, pageID string) PageContent {
	if cfg == nil {
		cfg = &domain.Configuration{}
	}
	pages := SupportedPages(cfg)

	pc := PageContent{
		SiteName: cfg.BusinessName,
		Layout:   layoutFor(styles.Intent),
	}

	id, known := ResolvePageID(pageID)
	if !known || !contains(pages, id) {
		pc.PageID = PageID(strings.ToLower(strings.TrimSpace(pageID)))
		pc.NotFound = true
		pc.Title = "Page not found"
		pc.Nav = navFor(pages, "")
		return pc
	}

	pc.PageID = id
	pc.Title = pageDefFor(id).Title
	pc.Nav = navFor(pages, id)

	switch id {
	case PageHome:
		r.composeHome(&pc, cfg)
	case PageMenu:
		pc.Sections = groupItems(cfg)
		pc.Empty = len(pc.Sections) == 0
	case PageGallery:
		pc.Images = galleryImages(cfg.Gallery)
		pc.Empty = len(pc.Images) == 0
	case PageAbout:
		pc.AboutHTML = r.markdown(cfg.Description)
		pc.Empty = pc.AboutHTML == ""
	case PageContact:
		pc.Contacts = contactEntries(cfg.Contact)
		pc.Hours = hoursBlock(cfg.OpeningHours, false)
		pc.Empty = len(pc.Contacts) == 0 && pc.Hours == nil
	}
	return pc
}

func (r *Renderer) composeHome(pc *PageContent, cfg *domain.Configuration) {
	pc.Hero = &Hero{Name: cfg.BusinessName, Type: cfg.BusinessType, Location: cfg.Location}
	n := min(r.previewSize, len(cfg.MenuItems))
	for _, it := range cfg.MenuItems[:n] {
		pc.Preview = append(pc.Preview, toItem(it))
	}
	pc.MoreItems = len(cfg.MenuItems) > n
	pc.Hours = hoursBlock(cfg.OpeningHours, true)
}

func (r *Renderer) markdown(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func layoutFor(intent theme.Intent) Layout {
	if l, ok := layoutByIntent[intent]; ok {
		return l
	}
	return layoutByIntent[theme.IntentNarrative]
}

func navFor(pages []PageID, active PageID) []NavItem {
	nav := make([]NavItem, 0, len(pages))
	for _, id := range pages {
		def := pageDefFor(id)
		nav = append(nav, NavItem{ID: id, Title: def.Title, Path: def.Path, Active: id == active})
	}
	return nav
}

func toItem(it domain.MenuItem) Item {
	return Item{
		Name:        it.Name,
		Description: it.Description,
		Price:       string(it.Price),
		Category:    it.Category,
		Image:       displayImage(it.Image),
	}
}

// groupItems orders sections by the configured categories, then categories
// only seen on items, then uncategorized items.
func groupItems(cfg *domain.Configuration) []Section {
	var order []string
	index := map[string]int{}
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := index[key]; ok {
			return
		}
		index[key] = len(order)
		order = append(order, name)
	}
	for _, c := range cfg.Categories {
		add(c)
	}
	for _, it := range cfg.MenuItems {
		if c := strings.TrimSpace(it.Category); c != "" {
			add(c)
		}
	}

	buckets := make([][]Item, len(order))
	var uncategorized []Item
	for _, it := range cfg.MenuItems {
		c := strings.TrimSpace(it.Category)
		if c == "" {
			uncategorized = append(uncategorized, toItem(it))
			continue
		}
		i := index[strings.ToLower(c)]
		buckets[i] = append(buckets[i], toItem(it))
	}

	var out []Section
	for i, name := range order {
		if len(buckets[i]) > 0 {
			out = append(out, Section{Category: name, Items: buckets[i]})
		}
	}
	if len(uncategorized) > 0 {
		out = append(out, Section{Items: uncategorized})
	}
	return out
}

func galleryImages(images []domain.Image) []DisplayImage {
	out := make([]DisplayImage, 0, len(images))
	for i := range images {
		if d := displayImage(&images[i]); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func hoursBlock(hours domain.OpeningHours, collapsed bool) *HoursBlock {
	if len(hours) == 0 {
		return nil
	}
	byDay := make(map[string]domain.DayHours, len(hours))
	for k, v := range hours {
		byDay[strings.ToLower(strings.TrimSpace(k))] = v
	}
	var days []DayLine
	for _, d := range domain.Weekdays {
		h, ok := byDay[d]
		if !ok {
			continue
		}
		days = append(days, DayLine{Day: d, Label: dayLabels[d], Open: h.Open, Close: h.Close, Closed: h.Closed})
	}
	if len(days) == 0 {
		return nil
	}
	return &HoursBlock{Collapsed: collapsed, Days: days}
}

func contains(ids []PageID, id PageID) bool {
	for _, p := range ids {
		if p == id {
			return true
		}
	}
	return false
}
