package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/ports"
	"go.uber.org/zap"
)

// SessionCredentialRef is the credential store key of the bearer token.
const SessionCredentialRef = "fittrack/session/token"

// SessionService owns the current session. It is the only writer of the session and of its
// persisted copy.
type SessionService struct {
	api    ports.AuthAPI
	repo   ports.SessionRepository
	store  ports.CredentialStore
	clock  ports.Clock
	logger *zap.Logger

	mu          sync.RWMutex
	current     *domain.Session
	logoutHooks []func()
}

func NewSessionService(api ports.AuthAPI, repo ports.SessionRepository, store ports.CredentialStore, clock ports.Clock, logger *zap.Logger) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionService{
		api:    api,
		repo:   repo,
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// OnLogout registers fn to run, in registration order, before the session is cleared.
func (s *SessionService) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutHooks = append(s.logoutHooks, fn)
}

func (s *SessionService) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// Require returns the current session or domain.ErrNotAuthenticated.
func (s *SessionService) Require() (domain.Session, error) {
	session, ok := s.Current()
	if !ok {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	return session, nil
}

func (s *SessionService) Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)

	session, err := s.api.Login(ctx, credentials)
	if err != nil {
		return domain.Session{}, &domain.AuthError{Err: err}
	}

	if err := s.establish(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) Register(ctx context.Context, profile domain.Profile) (domain.Session, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)

	session, err := s.api.Register(ctx, profile)
	if err != nil {
		return domain.Session{}, &domain.AuthError{Err: err}
	}

	if err := s.establish(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// establish persists session and makes it current. The credential is written first and
// rolled back when the session record cannot be saved.
func (s *SessionService) establish(ctx context.Context, session domain.Session) error {
	if s.store != nil && s.repo != nil {
		if err := s.store.Put(ctx, SessionCredentialRef, session.Credential); err != nil {
			return fmt.Errorf("store session credential: %w", err)
		}

		record := domain.SessionRecord{
			Identity:      session.Identity,
			CredentialRef: SessionCredentialRef,
			SavedAt:       s.clock.Now(),
		}
		if err := s.repo.Save(ctx, record); err != nil {
			if rollbackErr := s.store.Delete(ctx, SessionCredentialRef); rollbackErr != nil {
				return fmt.Errorf("save session and rollback stored credential: %w", errors.Join(err, rollbackErr))
			}
			return fmt.Errorf("save session: %w", err)
		}
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()

	s.logger.Debug("session established", zap.Int64("user_id", session.Identity.ID))
	return nil
}

// Restore loads a previously persisted session. A missing session is not an error.
func (s *SessionService) Restore(ctx context.Context) (domain.Session, bool, error) {
	if s.repo == nil || s.store == nil {
		return domain.Session{}, false, nil
	}

	record, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}

	credential, err := s.store.Get(ctx, record.CredentialRef)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, fmt.Errorf("load session credential: %w", err)
	}

	session := domain.Session{Credential: strings.TrimSpace(credential), Identity: record.Identity}
	if !session.Valid() {
		return domain.Session{}, false, nil
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()

	return session, true, nil
}

// Whoami asks the backend who the current credential belongs to.
func (s *SessionService) Whoami(ctx context.Context) (domain.Identity, error) {
	session, err := s.Require()
	if err != nil {
		return domain.Identity{}, err
	}

	identity, err := s.api.Me(ctx, session.Credential)
	if err != nil {
		return domain.Identity{}, &domain.AuthError{Err: err}
	}
	return identity, nil
}

// Logout runs the logout hooks before clearing the session, so work bound to the old
// credential is stopped before the credential disappears.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.RLock()
	hooks := append([]func(){}, s.logoutHooks...)
	s.mu.RUnlock()

	for _, hook := range hooks {
		hook()
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.repo == nil || s.store == nil {
		return nil
	}

	var errs error
	if err := s.repo.Clear(ctx); err != nil {
		errs = errors.Join(errs, fmt.Errorf("clear session: %w", err))
	}
	if err := s.store.Delete(ctx, SessionCredentialRef); err != nil {
		errs = errors.Join(errs, fmt.Errorf("delete session credential: %w", err))
	}
	return errs
}
