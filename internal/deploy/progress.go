package deploy

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage is a state of the publish state machine.
type Stage string

const (
	StageValidating        Stage = "validating"
	StageCheckingSubdomain Stage = "checking_subdomain"
	StagePersisting        Stage = "persisting"
	StageRouting           Stage = "routing"
	StageComplete          Stage = "complete"
	StageError             Stage = "error"
)

// Stages lists the non-terminal stages in execution order.
var Stages = []Stage{StageValidating, StageCheckingSubdomain, StagePersisting, StageRouting}

// Terminal reports whether s ends an attempt.
func (s Stage) Terminal() bool { return s == StageComplete || s == StageError }

// Event is a progress report. Err and Result are set on terminal events only.
type Event struct {
	AttemptID string    `json:"attemptId"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
	Err       *Error    `json:"error,omitempty"`
	Result    *Result   `json:"result,omitempty"`
}

// ProgressFunc receives events in order on a dedicated goroutine.
type ProgressFunc func(Event)

// dispatcher decouples the state machine from the progress callback: emit
// never blocks, events are delivered in order, and a panicking callback is
// recovered and muted.
type dispatcher struct {
	fn     ProgressFunc
	logger *zap.Logger

	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newDispatcher(fn ProgressFunc, logger *zap.Logger) *dispatcher {
	d := &dispatcher{
		fn:     fn,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	if fn == nil {
		close(d.done)
		return d
	}
	go d.loop()
	return d
}

func (d *dispatcher) emit(ev Event) {
	if d.fn == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// close stops accepting events; queued events are still delivered.
func (d *dispatcher) close() {
	if d.fn == nil {
		return
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) loop() {
	defer close(d.done)
	muted := false
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, ev := range batch {
			if !muted {
				muted = !d.deliver(ev)
			}
		}
		if closed && len(batch) == 0 {
			return
		}
		if len(batch) == 0 {
			<-d.wake
		}
	}
}

func (d *dispatcher) deliver(ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("progress callback panicked; further events dropped",
				zap.String("attempt_id", ev.AttemptID),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()
	d.fn(ev)
	return true
}
