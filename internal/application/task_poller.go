package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/ports"
	"go.uber.org/zap"
)

// DefaultPollInterval is the pause between the end of one status query and the start of the
// next.
const DefaultPollInterval = 1200 * time.Millisecond

const (
	uploadingMessage    = "Uploading image..."
	analyzingMessage    = "Analyzing image... this runs asynchronously in the backend queue."
	unknownErrorMessage = "Unknown error"
)

type PollerState string

const (
	PollerIdle       PollerState = "idle"
	PollerSubmitting PollerState = "submitting"
	PollerPolling    PollerState = "polling"
	PollerCompleted  PollerState = "completed"
	PollerFailed     PollerState = "failed"
	PollerAbandoned  PollerState = "abandoned"
)

// DashboardRefresher is what the poller calls after a task completes.
type DashboardRefresher interface {
	Refresh(ctx context.Context, credential string) (domain.DashboardSnapshot, error)
}

// TaskUpdate is published to the listener on every observable transition of a tracked task.
type TaskUpdate struct {
	TaskID     domain.TaskID
	State      PollerState
	Status     domain.TaskStatus
	Message    string
	Result     *domain.TaskResult
	Err        error
	RefreshErr error
}

type TaskOutcome struct {
	TaskID     domain.TaskID
	State      PollerState
	Message    string
	Result     *domain.TaskResult
	Err        error
	RefreshErr error
}

type PollerStatus struct {
	State   PollerState
	TaskID  domain.TaskID
	Message string
	Result  *domain.TaskResult
}

type TaskPollerOptions struct {
	Interval time.Duration
	Logger   *zap.Logger
	// OnUpdate runs on the polling goroutine. It must not call Submit or Abandon.
	OnUpdate func(TaskUpdate)
}

// TaskPoller tracks at most one food analysis task from submission to its terminal state.
//
// Every submission gets a generation number. Abandon bumps the generation, so any effect
// computed for an older generation is discarded when it is applied.
type TaskPoller struct {
	api       ports.FoodAnalysisAPI
	refresher DashboardRefresher
	interval  time.Duration
	logger    *zap.Logger
	onUpdate  func(TaskUpdate)

	// emitMu orders publication against Abandon: once Abandon returns, no update for the
	// abandoned generation can reach the listener.
	emitMu sync.Mutex

	mu         sync.Mutex
	state      PollerState
	generation uint64
	taskID     domain.TaskID
	cancel     context.CancelFunc
	message    string
	result     *domain.TaskResult
}

func NewTaskPoller(api ports.FoodAnalysisAPI, refresher DashboardRefresher, opts TaskPollerOptions) *TaskPoller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TaskPoller{
		api:       api,
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		onUpdate:  opts.OnUpdate,
		state:     PollerIdle,
	}
}

// SetListener replaces the update listener. Intended for wiring before the first Submit.
func (p *TaskPoller) SetListener(fn func(TaskUpdate)) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.onUpdate = fn
}

func (p *TaskPoller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PollerStatus{
		State:   p.state,
		TaskID:  p.taskID,
		Message: p.message,
		Result:  p.result,
	}
}

// Submit uploads image and starts polling the returned task. It fails fast, without any
// network call, while another task is being submitted or polled.
func (p *TaskPoller) Submit(ctx context.Context, credential string, image domain.ImageUpload) (*TaskHandle, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.ErrNotAuthenticated
	}

	p.mu.Lock()
	if p.state != PollerIdle {
		state := p.state
		p.mu.Unlock()
		p.logger.Debug("rejected submission", zap.String("state", string(state)))
		return nil, &domain.SubmissionError{Err: domain.ErrTaskInFlight}
	}
	p.generation++
	generation := p.generation
	taskCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = PollerSubmitting
	p.taskID = ""
	p.message = uploadingMessage
	p.result = nil
	p.mu.Unlock()

	id, err := p.api.AnalyzeFood(taskCtx, credential, image)

	p.mu.Lock()
	if generation != p.generation {
		p.mu.Unlock()
		cancel()
		return nil, domain.ErrTaskAbandoned
	}
	if err != nil {
		p.state = PollerIdle
		p.cancel = nil
		p.message = err.Error()
		p.mu.Unlock()
		cancel()
		return nil, &domain.SubmissionError{Err: err}
	}
	p.state = PollerPolling
	p.taskID = id
	p.message = analyzingMessage
	p.mu.Unlock()

	p.logger.Debug("task submitted", zap.String("task_id", string(id)), zap.Uint64("generation", generation))

	handle := newTaskHandle(id)
	go p.run(taskCtx, generation, credential, handle)

	return handle, nil
}

// Abandon stops tracking the current task without reporting an outcome. It is safe to call
// in any state.
func (p *TaskPoller) Abandon() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PollerIdle {
		p.logger.Debug("task abandoned", zap.String("task_id", string(p.taskID)), zap.String("state", string(p.state)))
	}

	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = PollerIdle
	p.taskID = ""
	p.message = ""
	p.result = nil
}

func (p *TaskPoller) run(ctx context.Context, generation uint64, credential string, handle *TaskHandle) {
	outcome := TaskOutcome{TaskID: handle.ID, State: PollerAbandoned, Err: domain.ErrTaskAbandoned}
	defer func() {
		if outcome.State == PollerAbandoned {
			p.release(generation, handle.ID)
		}
		handle.finish(outcome)
	}()

	for {
		task, err := p.api.Task(ctx, credential, handle.ID)
		if ctx.Err() != nil {
			return
		}

		switch {
		case err != nil:
			pollErr := &domain.PollError{TaskID: handle.ID, Err: err}
			if final, ok := p.fail(generation, handle.ID, "Task polling failed: "+err.Error(), pollErr); ok {
				outcome = final
			}
			return
		case task.Status == domain.TaskStatusCompleted:
			if final, ok := p.complete(ctx, generation, credential, handle.ID, task); ok {
				outcome = final
			}
			return
		case task.Status == domain.TaskStatusFailed:
			message := task.Error
			if message == "" {
				message = unknownErrorMessage
			}
			if final, ok := p.fail(generation, handle.ID, message, errors.New(message)); ok {
				outcome = final
			}
			return
		default:
			if !p.progress(generation, handle.ID, task.Status) {
				return
			}
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

// apply runs mutate under both locks when generation and id still identify the tracked
// task, then publishes the returned update. It reports whether the effect was applied.
func (p *TaskPoller) apply(generation uint64, id domain.TaskID, mutate func() TaskUpdate) bool {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if generation != p.generation || id != p.taskID {
		p.mu.Unlock()
		p.logger.Debug("discarded stale task response", zap.String("task_id", string(id)))
		return false
	}
	update := mutate()
	listener := p.onUpdate
	p.mu.Unlock()

	if listener != nil {
		listener(update)
	}
	return true
}

func (p *TaskPoller) progress(generation uint64, id domain.TaskID, status domain.TaskStatus) bool {
	return p.apply(generation, id, func() TaskUpdate {
		p.message = analyzingMessage
		return TaskUpdate{TaskID: id, State: PollerPolling, Status: status, Message: p.message}
	})
}

func (p *TaskPoller) fail(generation uint64, id domain.TaskID, message string, cause error) (TaskOutcome, bool) {
	applied := p.apply(generation, id, func() TaskUpdate {
		p.state = PollerFailed
		p.message = message
		return TaskUpdate{TaskID: id, State: PollerFailed, Status: domain.TaskStatusFailed, Message: message, Err: cause}
	})
	if !applied {
		return TaskOutcome{}, false
	}

	p.logger.Debug("task failed", zap.String("task_id", string(id)), zap.Error(cause))
	p.settle(generation, id)

	return TaskOutcome{TaskID: id, State: PollerFailed, Message: message, Err: cause}, true
}

func (p *TaskPoller) complete(ctx context.Context, generation uint64, credential string, id domain.TaskID, task domain.AnalysisTask) (TaskOutcome, bool) {
	result := task.Result
	if result == nil {
		result = &domain.TaskResult{}
	}
	message := fmt.Sprintf("Recognized %s (%d%% confidence).", result.Label, result.ConfidencePercent())

	applied := p.apply(generation, id, func() TaskUpdate {
		p.state = PollerCompleted
		p.message = message
		p.result = result
		return TaskUpdate{TaskID: id, State: PollerCompleted, Status: domain.TaskStatusCompleted, Message: message, Result: result}
	})
	if !applied {
		return TaskOutcome{}, false
	}

	p.logger.Debug("task completed", zap.String("task_id", string(id)), zap.String("label", result.Label))

	outcome := TaskOutcome{TaskID: id, State: PollerCompleted, Message: message, Result: result}
	if p.refresher != nil {
		if _, err := p.refresher.Refresh(ctx, credential); err != nil {
			p.logger.Debug("post-completion refresh failed", zap.String("task_id", string(id)), zap.Error(err))
			outcome.RefreshErr = err
		}
	}

	p.settleWith(generation, id, outcome.RefreshErr)

	return outcome, true
}

func (p *TaskPoller) settle(generation uint64, id domain.TaskID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation || id != p.taskID {
		return
	}
	p.toIdleLocked()
}

// release drops a task whose context ended without Abandon, e.g. when the caller's context
// was cancelled.
func (p *TaskPoller) release(generation uint64, id domain.TaskID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation || id != p.taskID {
		return
	}
	p.generation++
	p.toIdleLocked()
	p.message = ""
	p.result = nil
}

// settleWith returns to idle after a completion and publishes the refresh notice, if any.
func (p *TaskPoller) settleWith(generation uint64, id domain.TaskID, refreshErr error) {
	p.apply(generation, id, func() TaskUpdate {
		p.toIdleLocked()
		return TaskUpdate{TaskID: id, State: PollerIdle, Message: p.message, Result: p.result, RefreshErr: refreshErr}
	})
}

// toIdleLocked keeps the last message and result visible for the caller.
func (p *TaskPoller) toIdleLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = PollerIdle
	p.taskID = ""
}

// TaskHandle identifies one submission. Its outcome is available once Done is closed.
type TaskHandle struct {
	ID domain.TaskID

	done    chan struct{}
	once    sync.Once
	outcome TaskOutcome
}

func newTaskHandle(id domain.TaskID) *TaskHandle {
	return &TaskHandle{ID: id, done: make(chan struct{})}
}

func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the terminal outcome. Before Done is closed it returns the zero value.
func (h *TaskHandle) Outcome() TaskOutcome {
	select {
	case <-h.done:
		return h.outcome
	default:
		return TaskOutcome{}
	}
}

func (h *TaskHandle) Wait(ctx context.Context) (TaskOutcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return TaskOutcome{}, ctx.Err()
	}
}

func (h *TaskHandle) finish(outcome TaskOutcome) {
	h.once.Do(func() {
		h.outcome = outcome
		close(h.done)
	})
}
