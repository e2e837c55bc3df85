package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/auth"
	"github.com/diakonovmakar/yatube-final/internal/pkg/validation"
)

// ReservedUsernames would shadow top-level routes if used as profile names.
var ReservedUsernames = map[string]bool{
	"new": true, "follow": true, "group": true, "auth": true,
	"about": true, "static": true, "media": true,
}

const invalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AuthResult is a form result that may also start a session.
type AuthResult[P any] struct {
	Result[P]
	User  *models.User
	Token string
}

// AuthService handles signup, login and session resolution.
type AuthService struct {
	users    UserRepository
	sessions *auth.SessionManager
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, sessions *auth.SessionManager, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, logger: logger}
}

// Signup creates a user and starts a session for them.
func (s *AuthService) Signup(ctx context.Context, form dto.SignupForm) (*AuthResult[dto.SignupPage], error) {
	form.Normalize()
	rerender := func(errs dto.FieldErrors) *AuthResult[dto.SignupPage] {
		form.Password1, form.Password2 = "", ""
		page := &dto.SignupPage{Base: dto.Base{Title: "Sign up"}, Form: form, Errors: errs}
		return &AuthResult[dto.SignupPage]{Result: *render(page)}
	}

	if errs := validation.Struct(&form); errs.HasErrors() {
		return rerender(errs), nil
	}
	if ReservedUsernames[strings.ToLower(form.Username)] {
		return rerender(dto.NewFieldErrors().Add("username", "This username is not available.")), nil
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: form.Username, Password: hash, FirstName: form.FirstName, LastName: form.LastName}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return rerender(dto.NewFieldErrors().Add("username", apperrors.ErrUsernameTaken.Error())), nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("username", user.Username).Msg("User signed up")
	return &AuthResult[dto.SignupPage]{Result: *saved[dto.SignupPage](urls.Index), User: user, Token: token}, nil
}

// Login checks credentials and redirects to form.Next when it is a local path.
func (s *AuthService) Login(ctx context.Context, form dto.LoginForm) (*AuthResult[dto.LoginPage], error) {
	form.Normalize()
	rerender := func(errs dto.FieldErrors) *AuthResult[dto.LoginPage] {
		form.Password = ""
		page := &dto.LoginPage{Base: dto.Base{Title: "Log in"}, Form: form, Errors: errs}
		return &AuthResult[dto.LoginPage]{Result: *render(page)}
	}

	if errs := validation.Struct(&form); errs.HasErrors() {
		return rerender(errs), nil
	}

	user, err := s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return rerender(dto.NewFieldErrors().Add(dto.NonFieldKey, invalidLoginMessage)), nil
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, form.Password) {
		s.logger.Debug().Str("username", form.Username).Msg("Login rejected")
		return rerender(dto.NewFieldErrors().Add(dto.NonFieldKey, invalidLoginMessage)), nil
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	next := urls.Index
	if urls.IsLocal(form.Next) {
		next = form.Next
	}
	s.logger.Info().Int64("userId", user.ID).Msg("User logged in")
	return &AuthResult[dto.LoginPage]{Result: *saved[dto.LoginPage](next), User: user, Token: token}, nil
}

// LoginForm returns the empty login page.
func (s *AuthService) LoginForm(next string) *dto.LoginPage {
	if !urls.IsLocal(next) {
		next = ""
	}
	return &dto.LoginPage{Base: dto.Base{Title: "Log in"}, Form: dto.LoginForm{Next: next}}
}

// SignupForm returns the empty signup page.
func (s *AuthService) SignupForm() *dto.SignupPage {
	return &dto.SignupPage{Base: dto.Base{Title: "Sign up"}}
}

// ResolveSession maps a session token to its user.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
