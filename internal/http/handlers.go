package httpapi

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/address"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
)

// AddressChecker is the read-only address rule set.
type AddressChecker interface {
	Validate(ctx context.Context, raw, ownerID string) (address.Result, error)
}

// Handlers 聚合所有 HTTP handler 依赖
type Handlers struct {
	sites     service.SiteService
	publish   service.PublishService
	addresses AddressChecker
	tokens    service.TokenVerifier
	logger    *zap.Logger

	pages    *template.Template
	upgrader websocket.Upgrader
}

func NewHandlers(sites service.SiteService, publish service.PublishService, addresses AddressChecker, tokens service.TokenVerifier, logger *zap.Logger) *Handlers {
	return &Handlers{
		sites:     sites,
		publish:   publish,
		addresses: addresses,
		tokens:    tokens,
		logger:    logger,
		pages:     sitePages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// progress carries no credentials; the attempt id is unguessable
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// owner 校验 owner token；失败时已写出 401
func (h *Handlers) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("owner token required"))
		return "", false
	}
	ownerID, err := h.tokens.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid owner token"))
			return "", false
		}
		h.logger.Error("Failed to verify owner token", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, Fail("could not verify owner token"))
		return "", false
	}
	return ownerID, true
}
