package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/hostresolver"
)

// NewPrimaryRouter 主域名（及保留子域名）：API、预览路径
func NewPrimaryRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Get("/", h.Landing)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/addresses/validate", h.ValidateAddress)
		r.Post("/addresses/validate", h.ValidateAddress)

		r.Post("/publish", h.StartPublish)
		r.Get("/publish/{attemptId}", h.PublishStatus)
		r.Delete("/publish/{attemptId}", h.AbandonPublish)
		r.Get("/publish/{attemptId}/stream", h.StreamPublish)

		r.Get("/tenants/{slug}", h.GetTenant)
		r.Get("/templates", h.ListTemplates)

		r.Get("/configurations", h.ListConfigurations)
		r.Post("/configurations", h.CreateConfiguration)
		r.Get("/configurations/{id}", h.GetConfiguration)
		r.Put("/configurations/{id}", h.UpdateConfiguration)
		r.Get("/configurations/{id}/render", h.RenderConfiguration)
		r.Get("/configurations/{id}/menu.xlsx", h.ExportMenu)
		r.Post("/configurations/{id}/menu.xlsx", h.ImportMenu)
	})

	r.Get("/s/{slug}", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, req.URL.Path+"/", http.StatusMovedPermanently)
	})
	r.Get("/s/{slug}/", h.PreviewPage)
	r.Get("/s/{slug}/{page}", h.PreviewPage)
	return r
}

// NewSiteRouter 租户子域名与自定义域名
func NewSiteRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Get("/", h.SitePage)
	r.Get("/{page}", h.SitePage)
	return r
}

// NewRouter 组装完整的 HTTP 入口：中间件 + 按主机分派
func NewRouter(h *Handlers, resolver *hostresolver.Resolver, logger *zap.Logger) http.Handler {
	primary := NewPrimaryRouter(h)
	site := NewSiteRouter(h)

	dispatcher := NewHostDispatcher(resolver, map[hostresolver.Kind]http.Handler{
		hostresolver.KindPrimary:  primary,
		hostresolver.KindReserved: primary,
		hostresolver.KindTenant:   site,
		hostresolver.KindCustom:   site,
	}, logger)
	return middleware.RequestID(recoverer(logger)(accessLog(logger)(dispatcher)))
}
