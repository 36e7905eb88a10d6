package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
)

// PublishService 发布任务：每次尝试在独立 goroutine 中运行，调用方轮询、订阅或等待结果
type PublishService interface {
	Start(ctx context.Context, req StartPublishRequest) (*PublishStatus, error)
	Status(attemptID string) (*PublishStatus, error)
	// Subscribe 先回放已发生的事件，再推送后续事件；终止事件之后关闭 channel
	Subscribe(attemptID string) (<-chan deploy.Event, func(), error)
	// Wait 阻塞到尝试结束或 ctx 结束
	Wait(ctx context.Context, attemptID string) (*PublishStatus, error)
	// Abandon 请求在下一个阶段边界放弃；persisting 之后不再生效
	Abandon(attemptID string) error
	// Sweep 清理已结束且超过保留时间的记录
	Sweep(now time.Time) int
	// Run 周期性 Sweep，直到 ctx 结束
	Run(ctx context.Context) error
}

// Runner runs one publish attempt.
type Runner interface {
	RunAttempt(ctx context.Context, attemptID string, req deploy.Request, progress deploy.ProgressFunc) (*deploy.Result, error)
}

// TokenVerifier maps an owner token to its owner.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StartPublishRequest 发布请求
type StartPublishRequest struct {
	CandidateAddress string `json:"candidateAddress"`
	ConfigurationID  string `json:"configurationId"`
	OwnerToken       string `json:"ownerToken"`
}

// PublishStatus 发布尝试当前状态
type PublishStatus struct {
	AttemptID       string         `json:"attemptId"`
	ConfigurationID string         `json:"configurationId"`
	Stage           deploy.Stage   `json:"stage"`
	Message         string         `json:"message,omitempty"`
	Done            bool           `json:"done"`
	Result          *deploy.Result `json:"result,omitempty"`
	Error           *deploy.Error  `json:"error,omitempty"`
	StartedAt       time.Time      `json:"startedAt"`
	FinishedAt      *time.Time     `json:"finishedAt,omitempty"`
}

type publishJob struct {
	id        string
	configID  string
	cancel    context.CancelFunc
	startedAt time.Time
	done      chan struct{}

	mu         sync.Mutex
	events     []deploy.Event
	subs       map[int]chan deploy.Event
	nextSub    int
	finishedAt time.Time
}

// record runs on the orchestrator's progress goroutine, one event at a time.
func (j *publishJob) record(ev deploy.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	for _, ch := range j.subs {
		ch <- ev
	}
	if ev.Stage.Terminal() {
		j.finishedAt = ev.At
		for id, ch := range j.subs {
			close(ch)
			delete(j.subs, id)
		}
		j.cancel()
		close(j.done)
	}
}

func (j *publishJob) status() *PublishStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := &PublishStatus{AttemptID: j.id, ConfigurationID: j.configID, StartedAt: j.startedAt}
	if n := len(j.events); n > 0 {
		last := j.events[n-1]
		st.Stage = last.Stage
		st.Message = last.Message
		st.Result = last.Result
		st.Error = last.Err
		st.Done = last.Stage.Terminal()
	}
	if st.Done {
		at := j.finishedAt
		st.FinishedAt = &at
	}
	return st
}

// subscriber buffers can hold every event an attempt can emit, so record
// never blocks on a slow reader.
const subscriberBuffer = 8

type publishService struct {
	runner Runner
	tokens TokenVerifier
	jobTTL time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*publishJob
	wg   sync.WaitGroup
}

// NewPublishService 创建 PublishService 实例
func NewPublishService(runner Runner, tokens TokenVerifier, jobTTL time.Duration, logger *zap.Logger) PublishService {
	if jobTTL <= 0 {
		jobTTL = 15 * time.Minute
	}
	return &publishService{
		runner: runner,
		tokens: tokens,
		jobTTL: jobTTL,
		logger: logger,
		now:    time.Now,
		jobs:   map[string]*publishJob{},
	}
}

func (s *publishService) Start(ctx context.Context, req StartPublishRequest) (*PublishStatus, error) {
	ownerID, err := s.tokens.Verify(ctx, req.OwnerToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	// the attempt outlives the HTTP request that started it
	runCtx, cancel := context.WithCancel(context.Background())
	j := &publishJob{
		id:        uuid.NewString(),
		configID:  req.ConfigurationID,
		cancel:    cancel,
		startedAt: s.now().UTC(),
		done:      make(chan struct{}),
		subs:      map[int]chan deploy.Event{},
	}
	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	s.logger.Info("Publish attempt started",
		zap.String("attempt_id", j.id),
		zap.String("configuration_id", req.ConfigurationID),
		zap.String("owner_id", ownerID),
	)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.runner.RunAttempt(runCtx, j.id, deploy.Request{
			ConfigurationID: req.ConfigurationID,
			OwnerID:         ownerID,
			Candidate:       req.CandidateAddress,
		}, j.record)
	}()
	return &PublishStatus{AttemptID: j.id, ConfigurationID: j.configID, Stage: deploy.StageValidating, StartedAt: j.startedAt}, nil
}

func (s *publishService) job(id string) (*publishJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j, nil
}

func (s *publishService) Status(attemptID string) (*PublishStatus, error) {
	j, err := s.job(attemptID)
	if err != nil {
		return nil, err
	}
	st := j.status()
	if st.Stage == "" {
		st.Stage = deploy.StageValidating
	}
	return st, nil
}

func (s *publishService) Subscribe(attemptID string) (<-chan deploy.Event, func(), error) {
	j, err := s.job(attemptID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan deploy.Event, subscriberBuffer)
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ev := range j.events {
		ch <- ev
	}
	if n := len(j.events); n > 0 && j.events[n-1].Stage.Terminal() {
		close(ch)
		return ch, func() {}, nil
	}
	id := j.nextSub
	j.nextSub++
	j.subs[id] = ch
	unsubscribe := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if c, ok := j.subs[id]; ok {
			close(c)
			delete(j.subs, id)
		}
	}
	return ch, unsubscribe, nil
}

func (s *publishService) Wait(ctx context.Context, attemptID string) (*PublishStatus, error) {
	j, err := s.job(attemptID)
	if err != nil {
		return nil, err
	}
	select {
	case <-j.done:
		return j.status(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *publishService) Abandon(attemptID string) error {
	j, err := s.job(attemptID)
	if err != nil {
		return err
	}
	select {
	case <-j.done:
		return ErrJobFinished
	default:
	}
	s.logger.Info("Publish attempt abandoned by caller", zap.String("attempt_id", attemptID))
	j.cancel()
	return nil
}

func (s *publishService) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for id, j := range s.jobs {
		select {
		case <-j.done:
		default:
			continue
		}
		j.mu.Lock()
		finished := j.finishedAt
		j.mu.Unlock()
		if now.Sub(finished) >= s.jobTTL {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.jobs, id)
	}
	if len(expired) > 0 {
		s.logger.Debug("Swept publish attempts", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *publishService) Run(ctx context.Context) error {
	interval := s.jobTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// let running attempts reach a terminal state
			s.wg.Wait()
			return nil
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}
