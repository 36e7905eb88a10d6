package render

import (
	"strings"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// PageID identifies a page of a tenant site.
type PageID string

const (
	PageHome    PageID = "home"
	PageMenu    PageID = "menu"
	PageGallery PageID = "gallery"
	PageAbout   PageID = "about"
	PageContact PageID = "contact"
)

type pageDef struct {
	ID    PageID
	Title string
	Path  string
}

// pageTable is the fixed page order; navigation follows it regardless of how
// the operator ordered the selection.
var pageTable = []pageDef{
	{PageHome, "Home", "/"},
	{PageMenu, "Menu", "/menu"},
	{PageGallery, "Gallery", "/gallery"},
	{PageAbout, "About", "/about"},
	{PageContact, "Contact", "/contact"},
}

var pageAliases = map[string]PageID{
	"":         PageHome,
	"index":    PageHome,
	"catalog":  PageMenu,
	"products": PageMenu,
	"photos":   PageGallery,
}

// ResolvePageID maps a requested page identifier onto the page table. ok is
// false for identifiers the table does not know.
func ResolvePageID(raw string) (PageID, bool) {
	key := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "/"))
	if id, ok := pageAliases[key]; ok {
		return id, true
	}
	for _, p := range pageTable {
		if string(p.ID) == key {
			return p.ID, true
		}
	}
	return "", false
}

// SupportedPages returns the configuration's selected pages in table order.
// Home is always present.
func SupportedPages(cfg *domain.Configuration) []PageID {
	selected := map[PageID]bool{PageHome: true}
	if cfg != nil {
		for _, raw := range cfg.SelectedPages {
			if id, ok := ResolvePageID(raw); ok {
				selected[id] = true
			}
		}
	}
	out := make([]PageID, 0, len(selected))
	for _, p := range pageTable {
		if selected[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func pageDefFor(id PageID) pageDef {
	for _, p := range pageTable {
		if p.ID == id {
			return p
		}
	}
	return pageDef{ID: id}
}
