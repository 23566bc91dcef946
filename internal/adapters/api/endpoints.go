package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/ports"
)

const (
	loginPath     = "/api/auth/login"
	registerPath  = "/api/auth/register"
	mePath        = "/api/auth/me"
	dashboardPath = "/api/dashboard"
	workoutsPath  = "/api/workouts"
	foodLogsPath  = "/api/food/logs"
	analyzePath   = "/api/food/analyze"
	tasksPath     = "/api/food/tasks/"
)

var (
	_ ports.AuthAPI         = Client{}
	_ ports.DashboardAPI    = Client{}
	_ ports.WorkoutAPI      = Client{}
	_ ports.FoodAnalysisAPI = Client{}
)

func (c Client) Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error) {
	return c.authenticate(ctx, loginPath, loginPayload{
		Email:    credentials.Email,
		Password: credentials.Password,
	})
}

func (c Client) Register(ctx context.Context, profile domain.Profile) (domain.Session, error) {
	return c.authenticate(ctx, registerPath, registerPayload{
		Name:     profile.Name,
		Email:    profile.Email,
		Password: profile.Password,
	})
}

func (c Client) authenticate(ctx context.Context, path string, payload any) (domain.Session, error) {
	var resp authResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Payload: payload}, &resp); err != nil {
		return domain.Session{}, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		err := errors.New("auth response missing token")
		return domain.Session{}, &domain.RequestError{StatusCode: http.StatusOK, Message: err.Error(), Err: err}
	}

	return domain.Session{Credential: resp.Token, Identity: resp.User.toDomain()}, nil
}

func (c Client) Me(ctx context.Context, credential string) (domain.Identity, error) {
	var resp userPayload
	if err := c.Do(ctx, Request{Path: mePath, Credential: credential}, &resp); err != nil {
		return domain.Identity{}, err
	}
	return resp.toDomain(), nil
}

func (c Client) Totals(ctx context.Context, credential string) (domain.Totals, error) {
	var resp dashboardResponse
	if err := c.Do(ctx, Request{Path: dashboardPath, Credential: credential}, &resp); err != nil {
		return domain.Totals{}, err
	}
	return resp.Totals.toDomain(), nil
}

func (c Client) Workouts(ctx context.Context, credential string) ([]domain.Workout, error) {
	var resp []workoutPayload
	if err := c.Do(ctx, Request{Path: workoutsPath, Credential: credential}, &resp); err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, len(resp))
	for _, entry := range resp {
		workouts = append(workouts, entry.toDomain())
	}
	return workouts, nil
}

func (c Client) CreateWorkout(ctx context.Context, credential string, workout domain.NewWorkout) (domain.Workout, error) {
	var resp workoutPayload
	err := c.Do(ctx, Request{
		Method:     http.MethodPost,
		Path:       workoutsPath,
		Credential: credential,
		Payload: createWorkoutPayload{
			WorkoutType:     workout.Type,
			DurationMinutes: workout.DurationMinutes,
			CaloriesBurned:  workout.CaloriesBurned,
			Notes:           workout.Notes,
		},
	}, &resp)
	if err != nil {
		return domain.Workout{}, err
	}
	return resp.toDomain(), nil
}

func (c Client) FoodLogs(ctx context.Context, credential string) ([]domain.FoodLog, error) {
	var resp []foodLogPayload
	if err := c.Do(ctx, Request{Path: foodLogsPath, Credential: credential}, &resp); err != nil {
		return nil, err
	}

	logs := make([]domain.FoodLog, 0, len(resp))
	for _, entry := range resp {
		logs = append(logs, entry.toDomain())
	}
	return logs, nil
}

func (c Client) AnalyzeFood(ctx context.Context, credential string, image domain.ImageUpload) (domain.TaskID, error) {
	var resp analyzeResponse
	err := c.Do(ctx, Request{
		Method:     http.MethodPost,
		Path:       analyzePath,
		Credential: credential,
		Upload:     &image,
	}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.TaskID) == "" {
		err := errors.New("analyze response missing task id")
		return "", &domain.RequestError{StatusCode: http.StatusAccepted, Message: err.Error(), Err: err}
	}
	return domain.TaskID(resp.TaskID), nil
}

func (c Client) Task(ctx context.Context, credential string, id domain.TaskID) (domain.AnalysisTask, error) {
	var resp taskResponse
	path := tasksPath + url.PathEscape(string(id))
	if err := c.Do(ctx, Request{Path: path, Credential: credential}, &resp); err != nil {
		return domain.AnalysisTask{}, err
	}
	return resp.toDomain(id), nil
}
