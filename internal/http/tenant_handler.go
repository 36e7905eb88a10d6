package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
)

type tenantResponse struct {
	Success bool                  `json:"success"`
	Data    *domain.Configuration `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// GetTenant GET /tenants/{slug}：只返回已发布且路由已激活的配置
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cfg, err := h.sites.TenantBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, tenantResponse{Error: "tenant not found"})
			return
		}
		h.logger.Error("Failed to fetch tenant", zap.String("slug", slug), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, tenantResponse{Error: "tenant lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, tenantResponse{Success: true, Data: cfg})
}
