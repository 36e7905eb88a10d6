package address

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"

	"go.uber.org/zap"
)

// Reason explains a validation outcome.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonInvalid  Reason = "invalid"
	ReasonReserved Reason = "reserved"
	ReasonTaken    Reason = "taken"
	ReasonPending  Reason = "pending"
	ReasonOwned    Reason = "owned"
)

// DefaultReserved are names with system significance.
var DefaultReserved = []string{
	"www", "admin", "api", "app", "dashboard", "mail", "email", "smtp", "ftp",
	"blog", "help", "support", "status", "docs", "static", "assets", "cdn",
	"login", "signup", "auth", "account", "billing", "checkout", "pay",
	"dev", "staging", "preview", "test", "demo", "root", "system", "maitr",
}

const (
	defaultMaxSuggestions = 3
	defaultMaxAttempts    = 5
)

// Namespace is the read side of the shared address namespace.
type Namespace interface {
	LookupAddress(ctx context.Context, name string) (*domain.AddressRecord, bool, error)
}

// PendingClaims reports names with a claim in flight.
type PendingClaims interface {
	PendingOwner(ctx context.Context, name string) (owner string, held bool, err error)
}

// Result is the outcome of Validate.
type Result struct {
	Name        string   `json:"name"`
	Available   bool     `json:"available"`
	Reason      Reason   `json:"reason,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	FullAddress string   `json:"fullAddress,omitempty"`
}

// Validator checks candidate names against format rules, the reserved list
// and the namespace.
type Validator struct {
	baseDomain     string
	reserved       map[string]struct{}
	namespace      Namespace
	claims         PendingClaims
	maxSuggestions int
	maxAttempts    int
	logger         *zap.Logger
}

// NewValidator creates a validator. claims may be nil.
func NewValidator(baseDomain string, reserved []string, namespace Namespace, claims PendingClaims, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := make(map[string]struct{}, len(reserved))
	for _, n := range reserved {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			set[n] = struct{}{}
		}
	}
	return &Validator{
		baseDomain:     strings.ToLower(strings.TrimSpace(baseDomain)),
		reserved:       set,
		namespace:      namespace,
		claims:         claims,
		maxSuggestions: defaultMaxSuggestions,
		maxAttempts:    defaultMaxAttempts,
		logger:         logger,
	}
}

// BaseDomain returns the domain tenant addresses are composed under.
func (v *Validator) BaseDomain() string { return v.baseDomain }

// FullAddress composes the host for a normalized name.
func (v *Validator) FullAddress(name string) string {
	if v.baseDomain == "" {
		return name
	}
	return name + "." + v.baseDomain
}

// IsReserved reports membership in the fixed reserved list.
func (v *Validator) IsReserved(name string) bool {
	_, ok := v.reserved[name]
	return ok
}

// Validate normalizes raw and applies the rules in order: format, reserved
// list, namespace records, pending claims. The error is non-nil only when the
// namespace could not be read.
func (v *Validator) Validate(ctx context.Context, raw, ownerID string) (Result, error) {
	name := Normalize(raw)
	res := Result{Name: name}

	if err := CheckFormat(name); err != nil {
		res.Reason = ReasonInvalid
		if fe, ok := err.(*FormatError); ok {
			res.Detail = fe.Detail
		}
		return res, nil
	}
	res.FullAddress = v.FullAddress(name)

	if v.IsReserved(name) {
		res.Reason = ReasonReserved
		res.Suggestions = v.Suggest(ctx, name, ownerID)
		return res, nil
	}

	rec, found, err := v.namespace.LookupAddress(ctx, name)
	if err != nil {
		return res, fmt.Errorf("failed to look up address %s: %w", name, err)
	}
	if found {
		switch {
		case rec.Status == domain.AddressReserved:
			res.Reason = ReasonReserved
			res.Suggestions = v.Suggest(ctx, name, ownerID)
		case ownerID != "" && rec.OwnerID == ownerID:
			res.Available = true
			res.Reason = ReasonOwned
		default:
			res.Reason = ReasonTaken
			res.Suggestions = v.Suggest(ctx, name, ownerID)
		}
		return res, nil
	}

	if v.claims != nil {
		owner, held, err := v.claims.PendingOwner(ctx, name)
		if err != nil {
			// claims are advisory; an unreadable claim never blocks
			v.logger.Warn("failed to read pending claim", zap.String("name", name), zap.Error(err))
		} else if held && owner != ownerID {
			res.Reason = ReasonPending
			return res, nil
		}
	}

	res.Available = true
	return res, nil
}

// Suggest returns up to maxSuggestions alternatives of the form name-2,
// name-3, ... that pass the format, reserved, namespace and pending claim
// rules. At most
// maxAttempts candidates are examined.
func (v *Validator) Suggest(ctx context.Context, name, ownerID string) []string {
	var out []string
	for i := 0; i < v.maxAttempts && len(out) < v.maxSuggestions; i++ {
		suffix := "-" + strconv.Itoa(i+2)
		base := name
		if len(base)+len(suffix) > MaxLength {
			base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
		}
		candidate := base + suffix
		if CheckFormat(candidate) != nil || v.IsReserved(candidate) {
			continue
		}
		rec, found, err := v.namespace.LookupAddress(ctx, candidate)
		if err != nil {
			v.logger.Warn("suggestion lookup failed", zap.String("candidate", candidate), zap.Error(err))
			continue
		}
		if found && (rec.Status == domain.AddressReserved || rec.OwnerID != ownerID || ownerID == "") {
			continue
		}
		if !found && v.pendingForOther(ctx, candidate, ownerID) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// pendingForOther reports a claim in flight on name by someone other than
// ownerID. Unreadable claims count as free, same as in Validate.
func (v *Validator) pendingForOther(ctx context.Context, name, ownerID string) bool {
	if v.claims == nil {
		return false
	}
	owner, held, err := v.claims.PendingOwner(ctx, name)
	if err != nil {
		v.logger.Warn("failed to read pending claim", zap.String("name", name), zap.Error(err))
		return false
	}
	return held && owner != ownerID
}
