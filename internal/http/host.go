package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/hostresolver"
)

type resolutionKey struct{}

// ResolutionFrom returns the host classification stored by HostDispatcher.
func ResolutionFrom(ctx context.Context) (hostresolver.Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(hostresolver.Resolution)
	return res, ok
}

// HostDispatcher classifies the Host header and hands the request to the
// handler registered for that kind. Kinds without a handler go to primary.
type HostDispatcher struct {
	resolver *hostresolver.Resolver
	handlers map[hostresolver.Kind]http.Handler
	logger   *zap.Logger
}

func NewHostDispatcher(resolver *hostresolver.Resolver, handlers map[hostresolver.Kind]http.Handler, logger *zap.Logger) *HostDispatcher {
	table := make(map[hostresolver.Kind]http.Handler, len(handlers))
	for k, h := range handlers {
		table[k] = h
	}
	return &HostDispatcher{resolver: resolver, handlers: table, logger: logger}
}

func (d *HostDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := d.resolver.Classify(r.Host)
	h, ok := d.handlers[res.Kind]
	if !ok {
		h, ok = d.handlers[hostresolver.KindPrimary]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resolutionKey{}, res)))
}
