package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/hostresolver"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/render"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var sitePages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"href": func(base, path string) string {
		if base == "" {
			return path
		}
		if path == "/" {
			return base + "/"
		}
		return base + path
	},
	// sources were normalized by the renderer; data: URIs must survive escaping
	"imgsrc":  func(src string) template.URL { return template.URL(src) },
	"safeurl": func(href string) template.URL { return template.URL(href) },
}).ParseFS(templateFS, "templates/*.tmpl"))

type pageView struct {
	Content render.PageContent
	Styles  theme.StyleSet
	CSS     template.CSS
	About   template.HTML
	Base    string
}

// SitePage 租户子域名与自定义域名的页面
func (h *Handlers) SitePage(w http.ResponseWriter, r *http.Request) {
	res, _ := ResolutionFrom(r.Context())
	var (
		cfg   *domain.Configuration
		err   error
		label string
	)
	switch res.Kind {
	case hostresolver.KindTenant:
		label = res.Slug
		cfg, err = h.sites.TenantBySlug(r.Context(), res.Slug)
	case hostresolver.KindCustom:
		label = res.Hostname
		cfg, err = h.sites.TenantByDomain(r.Context(), res.Hostname)
	default:
		err = repository.ErrNotFound
	}
	h.servePage(w, r, cfg, err, label, "")
}

// PreviewPage 主域名下的 /s/{slug}/{page} 预览路径
func (h *Handlers) PreviewPage(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(chi.URLParam(r, "slug"))
	cfg, err := h.sites.TenantBySlug(r.Context(), slug)
	h.servePage(w, r, cfg, err, slug, "/s/"+slug)
}

func (h *Handlers) servePage(w http.ResponseWriter, r *http.Request, cfg *domain.Configuration, err error, label, base string) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeMissing(w, r, label)
			return
		}
		h.logger.Error("Failed to load site", zap.String("site", label), zap.Error(err))
		http.Error(w, "site temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	page := h.sites.RenderPage(cfg, chi.URLParam(r, "page"))
	status := http.StatusOK
	if page.Content.NotFound {
		status = http.StatusNotFound
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, status, page)
		return
	}
	h.writePage(w, status, page, base)
}

func (h *Handlers) writePage(w http.ResponseWriter, status int, page *service.RenderPageResponse, base string) {
	view := pageView{
		Content: page.Content,
		Styles:  page.Styles,
		CSS:     template.CSS(page.Styles.RootCSS()),
		About:   template.HTML(page.Content.AboutHTML),
		Base:    base,
	}
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, "site", view); err != nil {
		h.logger.Error("Failed to execute page template", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) writeMissing(w http.ResponseWriter, r *http.Request, label string) {
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "site not found"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = h.pages.ExecuteTemplate(w, "missing", label)
}

// Landing 主域名根路径；构建器前端不在本服务内
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "sited",
		"templates": len(h.sites.ListTemplates()),
	})
}
