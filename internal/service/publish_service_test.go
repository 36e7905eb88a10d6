package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/address"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
)

type publishFixture struct {
	svc   PublishService
	repo  *repository.MemoryConfigurationsRepo
	token string
}

func newPublishFixture(t *testing.T, runner func(deploy.Deps) Runner) *publishFixture {
	t.Helper()
	repo := repository.NewMemoryConfigurationsRepo()
	kv := store.NewMemoryKV()
	claims := store.NewClaims(kv)
	deps := deploy.Deps{
		Configurations: repo,
		Publisher:      repo,
		Validator:      address.NewValidator("maitr.de", address.DefaultReserved, repo, claims, zap.NewNop()),
		Claims:         claims,
		Router:         store.NewRouteTable(kv, nil, zap.NewNop()),
		Locker:         store.NewLocker(kv),
	}
	var r Runner = deploy.New(deps, deploy.Options{}, zap.NewNop())
	if runner != nil {
		r = runner(deps)
	}
	tokens := auth.NewTokens(repository.NewMemoryOwnersRepo(), bcrypt.MinCost, zap.NewNop())
	token, err := tokens.Issue(context.Background(), "o1", "Owner One")
	require.NoError(t, err)
	return &publishFixture{
		svc:   NewPublishService(r, tokens, time.Minute, zap.NewNop()),
		repo:  repo,
		token: token,
	}
}

func (f *publishFixture) draft(t *testing.T) string {
	t.Helper()
	id, err := f.repo.CreateConfiguration(context.Background(), &domain.Configuration{
		OwnerID: "o1", BusinessName: "Bella Vista", Template: "cozy",
	})
	require.NoError(t, err)
	return id
}

func TestPublish_StartWaitStatus(t *testing.T) {
	f := newPublishFixture(t, nil)
	id := f.draft(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx, StartPublishRequest{CandidateAddress: "Bella Vista", ConfigurationID: id, OwnerToken: f.token})
	require.NoError(t, err)
	assert.Equal(t, deploy.StageValidating, st.Stage)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	final, err := f.svc.Wait(waitCtx, st.AttemptID)
	require.NoError(t, err)
	assert.True(t, final.Done)
	assert.Equal(t, deploy.StageComplete, final.Stage)
	require.NotNil(t, final.Result)
	assert.Equal(t, "https://bella-vista.maitr.de", final.Result.PublishedURL)
	assert.NotNil(t, final.FinishedAt)

	polled, err := f.svc.Status(st.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, final.Stage, polled.Stage)

	assert.ErrorIs(t, f.svc.Abandon(st.AttemptID), ErrJobFinished)
}

func TestPublish_BadToken(t *testing.T) {
	f := newPublishFixture(t, nil)
	_, err := f.svc.Start(context.Background(), StartPublishRequest{ConfigurationID: f.draft(t), OwnerToken: "o1.nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPublish_SubscribeReplaysAndCloses(t *testing.T) {
	f := newPublishFixture(t, nil)
	st, err := f.svc.Start(context.Background(), StartPublishRequest{CandidateAddress: "bella", ConfigurationID: f.draft(t), OwnerToken: f.token})
	require.NoError(t, err)

	events, unsubscribe, err := f.svc.Subscribe(st.AttemptID)
	require.NoError(t, err)
	defer unsubscribe()

	var stages []deploy.Stage
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case ev, ok := <-events:
			if !ok {
				done = true
				continue
			}
			stages = append(stages, ev.Stage)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
	assert.Equal(t, []deploy.Stage{deploy.StageValidating, deploy.StageCheckingSubdomain, deploy.StagePersisting,
		deploy.StageRouting, deploy.StageComplete}, stages)

	// late subscribers get the full history on a closed channel
	late, _, err := f.svc.Subscribe(st.AttemptID)
	require.NoError(t, err)
	n := 0
	for range late {
		n++
	}
	assert.Equal(t, 5, n)
}

// gatedRunner blocks inside validating until released, so the test can
// abandon the attempt at a known point.
type gatedRunner struct {
	inner   Runner
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRunner) RunAttempt(ctx context.Context, id string, req deploy.Request, progress deploy.ProgressFunc) (*deploy.Result, error) {
	close(g.entered)
	<-g.release
	return g.inner.RunAttempt(ctx, id, req, progress)
}

func TestPublish_Abandon(t *testing.T) {
	gate := &gatedRunner{entered: make(chan struct{}), release: make(chan struct{})}
	f := newPublishFixture(t, func(deps deploy.Deps) Runner {
		gate.inner = deploy.New(deps, deploy.Options{}, zap.NewNop())
		return gate
	})
	id := f.draft(t)

	st, err := f.svc.Start(context.Background(), StartPublishRequest{CandidateAddress: "bella", ConfigurationID: id, OwnerToken: f.token})
	require.NoError(t, err)
	<-gate.entered
	require.NoError(t, f.svc.Abandon(st.AttemptID))
	close(gate.release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	final, err := f.svc.Wait(ctx, st.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, deploy.StageError, final.Stage)
	require.NotNil(t, final.Error)
	assert.Equal(t, deploy.KindAbandoned, final.Error.Kind)

	cfg, err := f.repo.GetConfiguration(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, cfg.Status)
}

func TestPublish_SweepAndUnknown(t *testing.T) {
	f := newPublishFixture(t, nil)
	st, err := f.svc.Start(context.Background(), StartPublishRequest{CandidateAddress: "bella", ConfigurationID: f.draft(t), OwnerToken: f.token})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = f.svc.Wait(ctx, st.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.svc.Sweep(time.Now()))
	assert.Equal(t, 1, f.svc.Sweep(time.Now().Add(2*time.Minute)))

	_, err = f.svc.Status(st.AttemptID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, f.svc.Abandon("nope"), ErrJobNotFound)
}
