package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 2 * time.Millisecond

var testImage = domain.ImageUpload{FileName: "meal.jpg", Content: strings.NewReader("jpeg")}

func TestTaskPollerCompletedTaskReportsResultAndRefreshesOnce(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {
				{task: domain.AnalysisTask{Status: domain.TaskStatusProcessing}},
				{task: domain.AnalysisTask{Status: domain.TaskStatusProcessing}},
				{task: domain.AnalysisTask{Status: domain.TaskStatusCompleted, Result: &domain.TaskResult{Label: "apple", Confidence: 0.92}}},
			},
		},
	}
	refresher := &countingRefresher{}
	recorder := &updateRecorder{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval, OnUpdate: recorder.record})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID("task-1"), handle.ID)

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerCompleted, outcome.State)
	assert.Contains(t, outcome.Message, "apple")
	assert.Contains(t, outcome.Message, "92%")
	require.NotNil(t, outcome.Result)
	assert.Equal(t, "apple", outcome.Result.Label)
	assert.NoError(t, outcome.RefreshErr)

	status := poller.Status()
	assert.Equal(t, PollerIdle, status.State)
	assert.Empty(t, status.TaskID)
	assert.Equal(t, outcome.Message, status.Message)

	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, int32(3), api.taskCalls.Load())

	updates := recorder.all()
	require.NotEmpty(t, updates)
	assert.Equal(t, PollerIdle, updates[len(updates)-1].State)

	var completed int
	for _, update := range updates {
		if update.State == PollerCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestTaskPollerFailedTaskReportsServerError(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{task: domain.AnalysisTask{Status: domain.TaskStatusFailed, Error: "corrupt image"}}},
		},
	}
	refresher := &countingRefresher{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerFailed, outcome.State)
	assert.Equal(t, "corrupt image", outcome.Message)
	assert.EqualError(t, outcome.Err, "corrupt image")

	status := poller.Status()
	assert.Equal(t, PollerIdle, status.State)
	assert.Equal(t, "corrupt image", status.Message)
	assert.Zero(t, refresher.calls.Load())
}

func TestTaskPollerFailedTaskWithoutErrorUsesFallback(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{task: domain.AnalysisTask{Status: domain.TaskStatusFailed}}},
		},
	}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: testInterval})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)

	outcome := waitOutcome(t, handle)
	assert.Equal(t, "Unknown error", outcome.Message)
}

func TestTaskPollerPollFailureIsTerminal(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{err: &domain.RequestError{StatusCode: 504, Message: "gateway timeout"}}},
		},
	}
	refresher := &countingRefresher{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerFailed, outcome.State)
	assert.Equal(t, "Task polling failed: gateway timeout", outcome.Message)

	var pollErr *domain.PollError
	require.ErrorAs(t, outcome.Err, &pollErr)
	assert.Equal(t, domain.TaskID("task-1"), pollErr.TaskID)

	assert.Equal(t, int32(1), api.taskCalls.Load())
	assert.Zero(t, refresher.calls.Load())
	assert.Equal(t, PollerIdle, poller.Status().State)
}

func TestTaskPollerRejectsSubmitWhilePolling(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids:         []domain.TaskID{"task-1"},
		taskEntered: make(chan struct{}, 1),
		taskGate:    make(chan struct{}),
	}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: testInterval})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	waitSignal(t, api.taskEntered)

	_, err = poller.Submit(context.Background(), "token-1", testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTaskInFlight)

	var submitErr *domain.SubmissionError
	assert.ErrorAs(t, err, &submitErr)
	assert.Equal(t, int32(1), api.analyzeCalls.Load())
	assert.Equal(t, PollerPolling, poller.Status().State)

	poller.Abandon()
	close(api.taskGate)
	waitOutcome(t, handle)
}

func TestTaskPollerRejectsSubmitWhileSubmitting(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids:            []domain.TaskID{"task-1"},
		analyzeEntered: make(chan struct{}, 1),
		analyzeGate:    make(chan struct{}),
	}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: testInterval})

	firstErr := make(chan error, 1)
	go func() {
		_, err := poller.Submit(context.Background(), "token-1", testImage)
		firstErr <- err
	}()
	waitSignal(t, api.analyzeEntered)
	assert.Equal(t, PollerSubmitting, poller.Status().State)

	_, err := poller.Submit(context.Background(), "token-1", testImage)
	assert.ErrorIs(t, err, domain.ErrTaskInFlight)
	assert.Equal(t, int32(1), api.analyzeCalls.Load())

	poller.Abandon()
	close(api.analyzeGate)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, domain.ErrTaskAbandoned)
	case <-time.After(2 * time.Second):
		t.Fatal("first submit did not return")
	}
	assert.Equal(t, PollerIdle, poller.Status().State)
	assert.Zero(t, api.taskCalls.Load())
}

func TestTaskPollerAbandonDiscardsLateResponse(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{task: domain.AnalysisTask{Status: domain.TaskStatusCompleted, Result: &domain.TaskResult{Label: "apple", Confidence: 0.92}}}},
		},
		taskEntered: make(chan struct{}, 1),
		taskGate:    make(chan struct{}),
	}
	refresher := &countingRefresher{}
	recorder := &updateRecorder{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval, OnUpdate: recorder.record})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	waitSignal(t, api.taskEntered)

	poller.Abandon()

	status := poller.Status()
	assert.Equal(t, PollerIdle, status.State)
	assert.Empty(t, status.TaskID)

	close(api.taskGate)
	outcome := waitOutcome(t, handle)

	assert.Equal(t, PollerAbandoned, outcome.State)
	assert.ErrorIs(t, outcome.Err, domain.ErrTaskAbandoned)
	assert.Nil(t, outcome.Result)
	assert.Zero(t, refresher.calls.Load())
	assert.Empty(t, recorder.all())
	assert.Equal(t, status, poller.Status())
}

func TestTaskPollerAbandonWhileWaitingStopsPolling(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids:         []domain.TaskID{"task-1"},
		taskEntered: make(chan struct{}, 1),
	}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: time.Hour})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	waitSignal(t, api.taskEntered)

	poller.Abandon()

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerAbandoned, outcome.State)
	assert.Equal(t, int32(1), api.taskCalls.Load())
}

func TestTaskPollerResubmitAfterFailureIgnoresPreviousTask(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1", "task-2"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{task: domain.AnalysisTask{Status: domain.TaskStatusFailed, Error: "corrupt image"}}},
			"task-2": {
				{task: domain.AnalysisTask{Status: domain.TaskStatusRunning}},
				{task: domain.AnalysisTask{Status: domain.TaskStatusCompleted, Result: &domain.TaskResult{Label: "banana", Confidence: 0.81}}},
			},
		},
	}
	refresher := &countingRefresher{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval})

	first, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	assert.Equal(t, PollerFailed, waitOutcome(t, first).State)

	second, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID("task-2"), second.ID)

	outcome := waitOutcome(t, second)
	assert.Equal(t, PollerCompleted, outcome.State)
	assert.Equal(t, "Recognized banana (81% confidence).", outcome.Message)
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestTaskPollerSubmissionFailureReturnsToIdle(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{analyzeErr: &domain.RequestError{StatusCode: 400, Message: "Unsupported file type"}}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: testInterval})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.Error(t, err)
	assert.Nil(t, handle)
	assert.Equal(t, "Unsupported file type", err.Error())

	var submitErr *domain.SubmissionError
	require.ErrorAs(t, err, &submitErr)

	status := poller.Status()
	assert.Equal(t, PollerIdle, status.State)
	assert.Equal(t, "Unsupported file type", status.Message)
	assert.Zero(t, api.taskCalls.Load())
}

func TestTaskPollerSubmitRequiresCredential(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{ids: []domain.TaskID{"task-1"}}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{})

	_, err := poller.Submit(context.Background(), "  ", testImage)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Zero(t, api.analyzeCalls.Load())
}

func TestTaskPollerRefreshFailureIsSecondary(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids: []domain.TaskID{"task-1"},
		replies: map[domain.TaskID][]taskReply{
			"task-1": {{task: domain.AnalysisTask{Status: domain.TaskStatusCompleted, Result: &domain.TaskResult{Label: "apple", Confidence: 0.5}}}},
		},
	}
	refresher := &countingRefresher{err: errors.New("dashboard down")}
	recorder := &updateRecorder{}
	poller := NewTaskPoller(api, refresher, TaskPollerOptions{Interval: testInterval, OnUpdate: recorder.record})

	handle, err := poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerCompleted, outcome.State)
	assert.NoError(t, outcome.Err)

	var refreshErr *domain.RefreshError
	require.ErrorAs(t, outcome.RefreshErr, &refreshErr)

	updates := recorder.all()
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, PollerIdle, last.State)
	assert.Error(t, last.RefreshErr)
	assert.Equal(t, "Recognized apple (50% confidence).", last.Message)
}

func TestTaskPollerCallerCancellationReleasesPoller(t *testing.T) {
	t.Parallel()

	api := &fakeFoodAPI{
		ids:         []domain.TaskID{"task-1"},
		taskEntered: make(chan struct{}, 1),
	}
	poller := NewTaskPoller(api, nil, TaskPollerOptions{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	handle, err := poller.Submit(ctx, "token-1", testImage)
	require.NoError(t, err)
	waitSignal(t, api.taskEntered)

	cancel()

	outcome := waitOutcome(t, handle)
	assert.Equal(t, PollerAbandoned, outcome.State)
	assert.Equal(t, PollerIdle, poller.Status().State)

	_, err = poller.Submit(context.Background(), "token-1", testImage)
	require.NoError(t, err)
	poller.Abandon()
}
