// Package deploy runs the publish state machine:
// validating → checking_subdomain → persisting → routing → complete,
// with error as the terminal failure state.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/address"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
)

// Configurations loads the configuration being published.
type Configurations interface {
	GetConfiguration(ctx context.Context, id string) (*domain.Configuration, error)
}

// Publisher commits a publish atomically.
type Publisher interface {
	Publish(ctx context.Context, cmd domain.PublishCommand) error
}

// AddressValidator is the address rule set, re-run at deploy time.
type AddressValidator interface {
	Validate(ctx context.Context, raw, ownerID string) (address.Result, error)
	Suggest(ctx context.Context, name, ownerID string) []string
	FullAddress(name string) string
}

// Claims marks names with a publish in flight.
type Claims interface {
	Mark(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, owner string) error
}

// Router activates request dispatch for published hosts.
type Router interface {
	Activate(ctx context.Context, kind, host, configID string) (bool, error)
	Deactivate(ctx context.Context, kind, host, configID string) error
}

// Locker serializes attempts per configuration.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

// Request starts one attempt.
type Request struct {
	ConfigurationID string `json:"configurationId"`
	OwnerID         string `json:"ownerId"`
	Candidate       string `json:"candidateAddress"`
}

// Result is the outcome of a completed attempt.
type Result struct {
	AttemptID    string    `json:"attemptId"`
	Address      string    `json:"address"`
	PublishedURL string    `json:"publishedUrl"`
	PreviewURL   string    `json:"previewUrl"`
	PublishedAt  time.Time `json:"publishedAt"`
	Republished  bool      `json:"republished,omitempty"`
}

// Options configures an Orchestrator.
type Options struct {
	// Scheme of the published URLs, "https" unless set.
	Scheme string
	// PreviewHost serves /s/<slug>/ previews; defaults to the base domain.
	PreviewHost string
	ClaimTTL    time.Duration
	LockTTL     time.Duration
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Configurations Configurations
	Publisher      Publisher
	Validator      AddressValidator
	Claims         Claims // optional
	Router         Router
	Locker         Locker
}

// Orchestrator runs publish attempts.
type Orchestrator struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// New creates an orchestrator.
func New(deps Deps, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = 2 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	return &Orchestrator{deps: deps, opts: opts, logger: logger, now: time.Now}
}

// attempt is the in-flight state of one Run.
type attempt struct {
	id     string
	req    Request
	name   string
	cfg    *domain.Configuration
	events *dispatcher
	logger *zap.Logger
	now    func() time.Time
}

func (a *attempt) enter(stage Stage, msg string) {
	a.logger.Debug("Publish stage", zap.String("stage", string(stage)))
	a.events.emit(Event{AttemptID: a.id, Stage: stage, Message: msg, At: a.now().UTC()})
}

func (a *attempt) fail(e *Error) (*Result, error) {
	a.logger.Info("Publish failed",
		zap.String("stage", string(e.Stage)),
		zap.String("kind", string(e.Kind)),
		zap.String("reason", e.Reason),
		zap.Error(e.Err),
	)
	a.events.emit(Event{AttemptID: a.id, Stage: StageError, Message: e.Message, At: a.now().UTC(), Err: e})
	return nil, e
}

// Run executes one attempt. Stages run strictly in order. ctx cancellation
// is honoured only between stages and only before persisting; a running
// stage always completes. The returned error is always a *Error.
func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	return o.RunAttempt(ctx, uuid.NewString(), req, progress)
}

// RunAttempt is Run with a caller-chosen attempt id.
func (o *Orchestrator) RunAttempt(ctx context.Context, attemptID string, req Request, progress ProgressFunc) (*Result, error) {
	a := &attempt{
		id:     attemptID,
		req:    req,
		events: newDispatcher(progress, o.logger),
		now:    o.now,
		logger: o.logger.With(
			zap.String("attempt_id", attemptID),
			zap.String("configuration_id", req.ConfigurationID),
		),
	}
	defer a.events.close()

	work := context.WithoutCancel(ctx)

	a.enter(StageValidating, "")
	token, err := o.deps.Locker.Lock(work, lockKey(req.ConfigurationID), o.opts.LockTTL)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return a.fail(&Error{Stage: StageValidating, Kind: KindBusy, Reason: ReasonBusy,
				Message: "another publish for this configuration is in progress"})
		}
		return a.fail(transientError(StageValidating, ReasonStorage, "could not acquire publish lock", err))
	}
	defer func() {
		if err := o.deps.Locker.Unlock(work, lockKey(req.ConfigurationID), token); err != nil {
			a.logger.Warn("failed to release publish lock", zap.Error(err))
		}
	}()

	if e := o.validate(work, a); e != nil {
		return a.fail(e)
	}
	if ctx.Err() != nil {
		return a.fail(abandonedError(StageCheckingSubdomain))
	}

	a.enter(StageCheckingSubdomain, a.name)
	if e := o.checkSubdomain(work, a); e != nil {
		return a.fail(e)
	}
	if o.deps.Claims != nil {
		defer func() {
			if err := o.deps.Claims.Release(work, a.name, req.OwnerID); err != nil {
				a.logger.Warn("failed to release pending claim", zap.Error(err))
			}
		}()
	}
	if ctx.Err() != nil {
		return a.fail(abandonedError(StagePersisting))
	}

	a.enter(StagePersisting, "")
	publishedAt := o.now().UTC().Truncate(time.Microsecond)
	if e := o.persist(work, a, publishedAt); e != nil {
		return a.fail(e)
	}

	// committed: routing runs even if the caller has gone
	a.enter(StageRouting, "")
	if e := o.route(work, a); e != nil {
		return a.fail(e)
	}

	res := &Result{
		AttemptID:    a.id,
		Address:      a.name,
		PublishedURL: o.opts.Scheme + "://" + o.deps.Validator.FullAddress(a.name),
		PreviewURL:   o.previewURL(a.name),
		PublishedAt:  publishedAt,
		Republished:  a.cfg.PublishedAddress == a.name,
	}
	a.logger.Info("Publish complete", zap.String("address", a.name), zap.String("url", res.PublishedURL))
	a.events.emit(Event{AttemptID: a.id, Stage: StageComplete, Message: res.PublishedURL, At: a.now().UTC(), Result: res})
	return res, nil
}

func lockKey(configID string) string { return "deploy:" + configID }

func abandonedError(next Stage) *Error {
	return &Error{Stage: next, Kind: KindAbandoned, Reason: ReasonAbandoned,
		Message: "publish abandoned by the caller before " + string(next)}
}

func (o *Orchestrator) previewURL(name string) string {
	host := o.opts.PreviewHost
	if host == "" {
		full := o.deps.Validator.FullAddress(name)
		host = strings.TrimPrefix(full, name+".")
	}
	return o.opts.Scheme + "://" + host + "/s/" + name + "/"
}

// validate checks the configuration is publishable. Nothing is written.
func (o *Orchestrator) validate(ctx context.Context, a *attempt) *Error {
	cfg, err := o.deps.Configurations.GetConfiguration(ctx, a.req.ConfigurationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return inputError(StageValidating, ReasonNotFound, "configuration does not exist")
		}
		return transientError(StageValidating, ReasonStorage, "could not load configuration", err)
	}
	if cfg.OwnerID != a.req.OwnerID {
		return inputError(StageValidating, ReasonOwnerMismatch, "configuration belongs to another owner")
	}
	if strings.TrimSpace(cfg.BusinessName) == "" {
		return inputError(StageValidating, ReasonMissingName, "business name is required")
	}
	if strings.TrimSpace(cfg.Template) == "" {
		return inputError(StageValidating, ReasonMissingTemplate, "a template must be selected")
	}

	candidate := a.req.Candidate
	if strings.TrimSpace(candidate) == "" {
		candidate = cfg.BusinessName
	}
	name := address.Normalize(candidate)
	if err := address.CheckFormat(name); err != nil {
		var fe *address.FormatError
		msg := err.Error()
		if errors.As(err, &fe) {
			msg = "address " + fe.Detail
		}
		return inputError(StageValidating, ReasonInvalid, msg)
	}
	a.cfg = cfg
	a.name = name
	return nil
}

// checkSubdomain re-runs the validator against the namespace as it is now.
// A pending claim by someone else does not fail: the compare-and-set in
// persisting picks the winner.
func (o *Orchestrator) checkSubdomain(ctx context.Context, a *attempt) *Error {
	res, err := o.deps.Validator.Validate(ctx, a.name, a.req.OwnerID)
	if err != nil {
		return transientError(StageCheckingSubdomain, ReasonStorage, "could not read the address namespace", err)
	}
	switch res.Reason {
	case address.ReasonInvalid:
		return inputError(StageCheckingSubdomain, ReasonInvalid, "address "+res.Detail)
	case address.ReasonReserved:
		return conflictError(StageCheckingSubdomain, ReasonReserved,
			fmt.Sprintf("%s is reserved", a.name), res.Suggestions)
	case address.ReasonTaken:
		return conflictError(StageCheckingSubdomain, ReasonTaken,
			fmt.Sprintf("%s is already taken", a.name), res.Suggestions)
	}

	if o.deps.Claims != nil {
		if _, err := o.deps.Claims.Mark(ctx, a.name, a.req.OwnerID, o.opts.ClaimTTL); err != nil {
			a.logger.Warn("failed to mark pending claim", zap.String("address", a.name), zap.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, a *attempt, at time.Time) *Error {
	err := o.deps.Publisher.Publish(ctx, domain.PublishCommand{
		ConfigurationID: a.req.ConfigurationID,
		OwnerID:         a.req.OwnerID,
		Address:         a.name,
		PublishedAt:     at,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrAddressTaken):
		return conflictError(StagePersisting, ReasonTaken,
			fmt.Sprintf("%s was claimed by someone else", a.name),
			o.deps.Validator.Suggest(ctx, a.name, a.req.OwnerID))
	case errors.Is(err, repository.ErrOwnerMismatch):
		return inputError(StagePersisting, ReasonOwnerMismatch, "configuration belongs to another owner")
	case errors.Is(err, repository.ErrNotFound):
		return inputError(StagePersisting, ReasonNotFound, "configuration does not exist")
	}
	return transientError(StagePersisting, ReasonStorage, "could not save the published configuration", err)
}

// route activates the new hosts and retires the previous address. Every step
// is idempotent so a retried attempt converges.
func (o *Orchestrator) route(ctx context.Context, a *attempt) *Error {
	id := a.req.ConfigurationID
	if _, err := o.deps.Router.Activate(ctx, store.RouteKindSlug, a.name, id); err != nil {
		return transientError(StageRouting, ReasonRouting, "could not activate the address", err)
	}
	if prev := a.cfg.PublishedAddress; prev != "" && prev != a.name {
		if err := o.deps.Router.Deactivate(ctx, store.RouteKindSlug, prev, id); err != nil {
			a.logger.Warn("failed to retire previous route", zap.String("address", prev), zap.Error(err))
		}
	}
	if d := a.cfg.CustomDomain; d != "" {
		if _, err := o.deps.Router.Activate(ctx, store.RouteKindDomain, d, id); err != nil {
			return transientError(StageRouting, ReasonRouting, "could not activate the custom domain", err)
		}
	}
	return nil
}
