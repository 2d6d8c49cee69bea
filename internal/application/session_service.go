package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type SessionService struct {
	api        ports.AuthAPI
	session    *SessionStore
	references ReferenceStores
	realtime   ports.Realtime
	cookies    ports.CookieStore
	logger     *zap.Logger
}

type SessionOptions struct {
	References ReferenceStores
	// Realtime is connected after sign-in and disconnected on logout when set.
	Realtime ports.Realtime
	// Cookies is cleared on logout when set.
	Cookies ports.CookieStore
	Logger  *zap.Logger
}

func NewSessionService(api ports.AuthAPI, session *SessionStore, opts SessionOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionService{
		api:        api,
		session:    session,
		references: opts.References,
		realtime:   opts.Realtime,
		cookies:    opts.Cookies,
		logger:     logger,
	}
}

// AuthResult reports a sign-in. RealtimeErr is set when the user signed in
// but the live connection could not be opened.
type AuthResult struct {
	User        domain.User
	RealtimeErr error
}

// InitAuth probes the backend for an existing session. Loading is false on
// return whatever the outcome.
func (s *SessionService) InitAuth(ctx context.Context) (domain.Session, error) {
	s.session.SetLoading(true)
	defer s.session.SetLoading(false)

	user, err := s.api.Session(ctx)
	if err != nil {
		s.session.Clear()
		if domain.IsUnauthorized(err) || domain.IsForbidden(err) {
			return domain.Session{}, nil
		}
		return domain.Session{}, fmt.Errorf("probe session: %w", err)
	}

	s.session.Set(user)
	if err := s.connect(ctx, user); err != nil {
		s.logger.Warn("realtime connect after session probe", zap.String("user_id", user.UserID), zap.Error(err))
	}
	return s.session.Get(), nil
}

func (s *SessionService) Authenticate(ctx context.Context, data domain.LoginData) (AuthResult, error) {
	data.Email = strings.TrimSpace(data.Email)
	if err := validateCredentials(data.Email, data.Password, false); err != nil {
		return AuthResult{}, err
	}

	user, err := s.api.Login(ctx, data)
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}

	s.session.Set(user)
	s.session.SetLoading(false)
	s.logger.Info("signed in", zap.String("user_id", user.UserID))

	result := AuthResult{User: user}
	if err := s.connect(ctx, user); err != nil {
		s.logger.Warn("realtime connect after login", zap.String("user_id", user.UserID), zap.Error(err))
		result.RealtimeErr = err
	}
	return result, nil
}

// Register creates an account. It does not sign the user in.
func (s *SessionService) Register(ctx context.Context, registration domain.Registration) (string, error) {
	registration.FirstName = strings.TrimSpace(registration.FirstName)
	registration.LastName = strings.TrimSpace(registration.LastName)
	registration.Email = strings.TrimSpace(registration.Email)

	if registration.FirstName == "" {
		return "", &domain.ValidationError{Field: "firstName", Message: "first name is required"}
	}
	if registration.LastName == "" {
		return "", &domain.ValidationError{Field: "lastName", Message: "last name is required"}
	}
	if err := validateCredentials(registration.Email, registration.Password, true); err != nil {
		return "", err
	}

	token, err := s.api.Register(ctx, registration)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return token, nil
}

// Logout tells the backend to drop the session and then clears every local
// trace of it. The backend call is best effort: local state is always
// cleared.
func (s *SessionService) Logout(ctx context.Context) error {
	var errs []error
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
		if !domain.IsUnauthorized(err) {
			errs = append(errs, fmt.Errorf("logout: %w", err))
		}
	}

	if s.realtime != nil {
		if err := s.realtime.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("disconnect realtime: %w", err))
		}
	}
	s.session.Clear()
	s.references.Clear()
	if s.cookies != nil {
		if err := s.cookies.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear cookies: %w", err))
		}
	}

	return errors.Join(errs...)
}

// CurrentUser returns the signed-in user or ErrNotAuthenticated.
func (s *SessionService) CurrentUser() (domain.User, error) {
	user, ok := s.session.User()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return user, nil
}

// RequireUser returns the cached user, probing the backend once when the
// store is empty.
func (s *SessionService) RequireUser(ctx context.Context) (domain.User, error) {
	if user, ok := s.session.User(); ok {
		return user, nil
	}

	session, err := s.InitAuth(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !session.Authenticated || session.User == nil {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return *session.User, nil
}

func (s *SessionService) connect(ctx context.Context, user domain.User) error {
	if s.realtime == nil || user.UserID == "" {
		return nil
	}
	return s.realtime.Connect(ctx, user.UserID)
}

func validateCredentials(email, password string, registering bool) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &domain.ValidationError{Field: "email", Message: "email is invalid"}
	}
	if password == "" {
		return &domain.ValidationError{Field: "password", Message: "password is required"}
	}
	if registering && len(password) < minPasswordLength {
		return &domain.ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}
