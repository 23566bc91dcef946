package domain

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrTaskInFlight       = errors.New("an image analysis is already in progress")
	ErrTaskAbandoned      = errors.New("image analysis abandoned")
	ErrRefreshDiscarded   = errors.New("dashboard refresh discarded")
	ErrInvalidWorkout     = errors.New("invalid workout")
)

// DefaultRequestFailedMessage is used when a failed response carries no readable message.
const DefaultRequestFailedMessage = "Request failed."

// RequestError is the single failure shape produced by the API gateway. StatusCode is zero
// for transport failures.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultRequestFailedMessage
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type PollError struct {
	TaskID TaskID
	Err    error
}

func (e *PollError) Error() string {
	return "task polling failed: " + e.Err.Error()
}

func (e *PollError) Unwrap() error {
	return e.Err
}

type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "dashboard refresh failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
