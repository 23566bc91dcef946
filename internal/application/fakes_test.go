package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type taskReply struct {
	task domain.AnalysisTask
	err  error
}

// fakeFoodAPI scripts the analyze and task endpoints. Gates, when set, hold a call until the
// test releases them and deliberately ignore ctx so a late response can be simulated.
type fakeFoodAPI struct {
	ids        []domain.TaskID
	analyzeErr error
	replies    map[domain.TaskID][]taskReply

	analyzeEntered chan struct{}
	analyzeGate    chan struct{}
	taskEntered    chan struct{}
	taskGate       chan struct{}

	analyzeCalls atomic.Int32
	taskCalls    atomic.Int32

	mu     sync.Mutex
	cursor map[domain.TaskID]int
}

func (f *fakeFoodAPI) AnalyzeFood(_ context.Context, credential string, _ domain.ImageUpload) (domain.TaskID, error) {
	n := int(f.analyzeCalls.Add(1))
	signal(f.analyzeEntered)
	if f.analyzeGate != nil {
		<-f.analyzeGate
	}
	if credential == "" {
		return "", errors.New("missing credential")
	}
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	return f.ids[(n-1)%len(f.ids)], nil
}

func (f *fakeFoodAPI) Task(_ context.Context, _ string, id domain.TaskID) (domain.AnalysisTask, error) {
	f.taskCalls.Add(1)
	signal(f.taskEntered)
	if f.taskGate != nil {
		<-f.taskGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursor == nil {
		f.cursor = map[domain.TaskID]int{}
	}
	script := f.replies[id]
	if len(script) == 0 {
		return domain.AnalysisTask{ID: id, Status: domain.TaskStatusQueued}, nil
	}
	i := f.cursor[id]
	if i >= len(script) {
		i = len(script) - 1
	}
	f.cursor[id] = i + 1

	reply := script[i]
	if reply.err != nil {
		return domain.AnalysisTask{}, reply.err
	}
	reply.task.ID = id
	return reply.task, nil
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context, string) (domain.DashboardSnapshot, error) {
	r.calls.Add(1)
	if r.err != nil {
		return domain.DashboardSnapshot{}, &domain.RefreshError{Err: r.err}
	}
	return domain.DashboardSnapshot{}, nil
}

type updateRecorder struct {
	mu      sync.Mutex
	updates []TaskUpdate
}

func (r *updateRecorder) record(update TaskUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *updateRecorder) all() []TaskUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TaskUpdate(nil), r.updates...)
}

type fakeDashboardAPI struct {
	totals      domain.Totals
	workouts    []domain.Workout
	foodLogs    []domain.FoodLog
	totalsErr   error
	workoutsErr error
	foodLogsErr error

	totalsEntered chan struct{}
	totalsGate    chan struct{}

	calls atomic.Int32
}

func (f *fakeDashboardAPI) Totals(context.Context, string) (domain.Totals, error) {
	f.calls.Add(1)
	signal(f.totalsEntered)
	if f.totalsGate != nil {
		<-f.totalsGate
	}
	return f.totals, f.totalsErr
}

func (f *fakeDashboardAPI) Workouts(context.Context, string) ([]domain.Workout, error) {
	f.calls.Add(1)
	if f.workoutsErr != nil {
		return nil, f.workoutsErr
	}
	return f.workouts, nil
}

func (f *fakeDashboardAPI) FoodLogs(context.Context, string) ([]domain.FoodLog, error) {
	f.calls.Add(1)
	if f.foodLogsErr != nil {
		return nil, f.foodLogsErr
	}
	return f.foodLogs, nil
}

type fakeAuthAPI struct {
	session  domain.Session
	identity domain.Identity
	err      error
	logins   atomic.Int32
}

func (f *fakeAuthAPI) Login(_ context.Context, _ domain.Credentials) (domain.Session, error) {
	f.logins.Add(1)
	if f.err != nil {
		return domain.Session{}, f.err
	}
	return f.session, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, _ domain.Profile) (domain.Session, error) {
	if f.err != nil {
		return domain.Session{}, f.err
	}
	return f.session, nil
}

func (f *fakeAuthAPI) Me(_ context.Context, credential string) (domain.Identity, error) {
	if f.err != nil {
		return domain.Identity{}, f.err
	}
	if credential != f.session.Credential {
		return domain.Identity{}, &domain.RequestError{StatusCode: 401, Message: "Unauthorized"}
	}
	return f.identity, nil
}

type inMemorySessionRepo struct {
	mu      sync.Mutex
	record  *domain.SessionRecord
	saveErr error
}

func (r *inMemorySessionRepo) Load(context.Context) (domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return *r.record, nil
}

func (r *inMemorySessionRepo) Save(_ context.Context, record domain.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.record = &record
	return nil
}

func (r *inMemorySessionRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = nil
	return nil
}

type inMemoryCredentialStore struct {
	mu        sync.Mutex
	values    map[string]string
	deleteErr error
}

func (s *inMemoryCredentialStore) Get(_ context.Context, ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[ref]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	return value, nil
}

func (s *inMemoryCredentialStore) Put(_ context.Context, ref string, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[ref] = credential
	return nil
}

func (s *inMemoryCredentialStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.values, ref)
	return nil
}

func signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for call")
	}
}

func waitOutcome(t *testing.T, handle *TaskHandle) TaskOutcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	outcome, err := handle.Wait(ctx)
	if err != nil {
		t.Fatalf("wait for task %s: %v", handle.ID, err)
	}
	return outcome
}
