// Package hostresolver classifies inbound hostnames into the four request
// kinds the service dispatches on. Classification is pure so it can run on
// every request without shared state.
package hostresolver

import (
	"net"
	"strings"
)

// Kind of an inbound host.
type Kind string

const (
	KindPrimary  Kind = "primary"
	KindReserved Kind = "reserved"
	KindTenant   Kind = "tenant"
	KindCustom   Kind = "custom"
)

// Kinds lists every kind in dispatch-table order.
var Kinds = []Kind{KindPrimary, KindReserved, KindTenant, KindCustom}

// Resolution is the classification result. Name is set for reserved hosts,
// Slug for tenant hosts and Hostname for custom domains.
type Resolution struct {
	Kind     Kind   `json:"kind"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

// DefaultPreviewSuffixes are generic preview-hosting domains that always serve
// the primary experience.
var DefaultPreviewSuffixes = []string{".netlify.app", ".vercel.app", ".fly.dev", ".onrender.com", ".pages.dev"}

// Resolver holds the host sets used for classification. It is immutable after
// construction.
type Resolver struct {
	baseDomain      string
	aliases         map[string]struct{}
	previewSuffixes []string
	reserved        map[string]struct{}
	devSuffixes     []string
}

// Options configures a Resolver.
type Options struct {
	BaseDomain      string
	PrimaryAliases  []string
	PreviewSuffixes []string
	Reserved        []string
}

// New builds a resolver. The base domain, www.<base>, localhost and the
// loopback addresses are always primary aliases.
func New(opts Options) *Resolver {
	base := normalizeHost(opts.BaseDomain)
	r := &Resolver{
		baseDomain: base,
		aliases:    make(map[string]struct{}),
		reserved:   make(map[string]struct{}),
		// <slug>.localhost resolves to 127.0.0.1 in modern browsers
		devSuffixes: []string{".localhost"},
	}
	for _, a := range append([]string{base, "www." + base, "localhost", "127.0.0.1", "::1", "0.0.0.0"}, opts.PrimaryAliases...) {
		if a = normalizeHost(a); a != "" {
			r.aliases[a] = struct{}{}
		}
	}
	suffixes := opts.PreviewSuffixes
	if suffixes == nil {
		suffixes = DefaultPreviewSuffixes
	}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		r.previewSuffixes = append(r.previewSuffixes, s)
	}
	for _, n := range opts.Reserved {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			r.reserved[n] = struct{}{}
		}
	}
	return r
}

// BaseDomain returns the normalized base domain.
func (r *Resolver) BaseDomain() string { return r.baseDomain }

// Classify maps a raw Host header value to a Resolution. It never fails:
// anything it cannot place falls open to primary.
func (r *Resolver) Classify(host string) Resolution {
	h := normalizeHost(host)
	if h == "" {
		return Resolution{Kind: KindPrimary}
	}
	if _, ok := r.aliases[h]; ok {
		return Resolution{Kind: KindPrimary}
	}
	for _, s := range r.previewSuffixes {
		if strings.HasSuffix(h, s) {
			return Resolution{Kind: KindPrimary}
		}
	}
	if net.ParseIP(h) != nil {
		return Resolution{Kind: KindPrimary}
	}

	labels := strings.Split(h, ".")
	if len(labels) < 2 {
		return Resolution{Kind: KindPrimary}
	}

	if r.isUnderBase(h) {
		leftmost := labels[0]
		if leftmost == "" {
			return Resolution{Kind: KindPrimary}
		}
		if _, ok := r.reserved[leftmost]; ok {
			return Resolution{Kind: KindReserved, Name: leftmost}
		}
		return Resolution{Kind: KindTenant, Slug: leftmost}
	}

	return Resolution{Kind: KindCustom, Hostname: h}
}

func (r *Resolver) isUnderBase(h string) bool {
	if r.baseDomain != "" && strings.HasSuffix(h, "."+r.baseDomain) {
		return true
	}
	for _, s := range r.devSuffixes {
		if strings.HasSuffix(h, s) {
			return true
		}
	}
	return false
}

// normalizeHost lowercases, strips the port and any trailing dot.
func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "[") {
		if hh, _, err := net.SplitHostPort(h); err == nil {
			return hh
		}
		return strings.Trim(h, "[]")
	}
	if i := strings.LastIndexByte(h, ':'); i >= 0 && strings.Count(h, ":") == 1 {
		h = h[:i]
	}
	return strings.TrimSuffix(h, ".")
}
