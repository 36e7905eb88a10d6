package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	routeSlugPrefix   = "site:route:slug:"
	routeDomainPrefix = "site:route:domain:"
)

// Route kinds.
const (
	RouteKindSlug   = "slug"
	RouteKindDomain = "domain"
)

// Route is one active entry of the route table.
type Route struct {
	Kind            string `json:"kind"`
	Host            string `json:"host"`
	ConfigurationID string `json:"configurationId"`
}

// RouteTable maps tenant slugs and custom domains to configurations. Only
// hosts present here are served.
type RouteTable struct {
	kv     KV
	events RouteEvents
	logger *zap.Logger
	now    func() time.Time
}

// NewRouteTable creates a route table. events may be nil.
func NewRouteTable(kv KV, events RouteEvents, logger *zap.Logger) *RouteTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteTable{kv: kv, events: events, logger: logger, now: time.Now}
}

func routeKey(kind, host string) string {
	if kind == RouteKindDomain {
		return routeDomainPrefix + host
	}
	return routeSlugPrefix + host
}

// Activate points host at configID. Re-activating an identical route is a
// no-op and reports changed=false.
func (t *RouteTable) Activate(ctx context.Context, kind, host, configID string) (bool, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || configID == "" {
		return false, fmt.Errorf("route host and configuration id are required")
	}
	key := routeKey(kind, host)

	cur, err := t.kv.Get(ctx, key)
	switch {
	case err == nil && cur == configID:
		return false, nil
	case err != nil && !errors.Is(err, ErrMiss):
		return false, fmt.Errorf("failed to read route %s: %w", host, err)
	}

	if err := t.kv.Set(ctx, key, configID, 0); err != nil {
		return false, fmt.Errorf("failed to activate route %s: %w", host, err)
	}
	t.logger.Info("Route activated",
		zap.String("kind", kind),
		zap.String("host", host),
		zap.String("configuration_id", configID),
	)
	t.emit(ctx, RouteEvent{Action: RouteActivated, Kind: kind, Host: host, ConfigurationID: configID})
	return true, nil
}

// Deactivate removes host if it still points at configID.
func (t *RouteTable) Deactivate(ctx context.Context, kind, host, configID string) error {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil
	}
	removed, err := t.kv.CompareAndDelete(ctx, routeKey(kind, host), configID)
	if err != nil {
		return fmt.Errorf("failed to deactivate route %s: %w", host, err)
	}
	if removed {
		t.emit(ctx, RouteEvent{Action: RouteDeactivated, Kind: kind, Host: host, ConfigurationID: configID})
	}
	return nil
}

// Lookup returns the configuration routed at host, or ErrMiss.
func (t *RouteTable) Lookup(ctx context.Context, kind, host string) (string, error) {
	return t.kv.Get(ctx, routeKey(kind, strings.ToLower(strings.TrimSpace(host))))
}

// List returns all active routes sorted by kind and host.
func (t *RouteTable) List(ctx context.Context) ([]Route, error) {
	var out []Route
	for _, kind := range []string{RouteKindSlug, RouteKindDomain} {
		prefix := routeKey(kind, "")
		keys, err := t.kv.ScanKeys(ctx, prefix+"*")
		if err != nil {
			return nil, fmt.Errorf("failed to scan routes: %w", err)
		}
		for _, k := range keys {
			id, err := t.kv.Get(ctx, k)
			if err != nil {
				continue
			}
			out = append(out, Route{Kind: kind, Host: strings.TrimPrefix(k, prefix), ConfigurationID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind > out[j].Kind // slug before domain
		}
		return out[i].Host < out[j].Host
	})
	return out, nil
}

func (t *RouteTable) emit(ctx context.Context, ev RouteEvent) {
	if t.events == nil {
		return
	}
	ev.At = t.now().UTC()
	if err := t.events.PublishRoute(ctx, ev); err != nil {
		t.logger.Warn("failed to publish route event", zap.String("host", ev.Host), zap.Error(err))
	}
}
