package service

import (
	"context"
	"fmt"

	"github.com/mkrasnov/contactbook/internal/cache"
	"github.com/mkrasnov/contactbook/internal/hash"
	"github.com/mkrasnov/contactbook/internal/logging"
	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/mykafka"
	"github.com/mkrasnov/contactbook/internal/repo"
	"github.com/mkrasnov/contactbook/internal/tokens"
)

const userEventsTopic = "user_events"

type AuthService struct {
	Users    *repo.UserRepo
	Cache    cache.UserCache
	Tokens   *tokens.Manager
	Producer *mykafka.Producer
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates the account and immediately performs the login flow, so
// registration answers with the same token pair login would.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	if existing, err := s.Users.ByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		l.Warn("registration rejected", "reason", "email taken")
		return nil, ErrConflict
	}

	if existing, err := s.Users.ByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		l.Warn("registration rejected", "reason", "username taken")
		return nil, ErrConflict
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           models.RoleUser,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		return nil, err
	}

	s.publish(ctx, "user_registered", &user)

	return s.Login(ctx, username, password)
}

// Login verifies credentials, mints the token pair, stores the refresh token
// on the user row (invalidating any previously issued one) and writes the
// user snapshot to the cache.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !hash.CheckPassword(user.HashedPassword, password) {
		l.Warn("login failed", "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.Tokens.CreateAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.Tokens.CreateRefreshToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	if err := s.Users.SaveRefreshToken(ctx, user, &refreshToken); err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, "user_logged_in", user)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh mints a new access token against a presented refresh token. The
// token must verify, carry token_type "refresh" and match the value stored
// on the user row; the same refresh token is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Tokens.Parse(refreshToken)
	if err != nil || claims.TokenType != tokens.TypeRefresh || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.Users.ByUsernameAndToken(ctx, claims.Subject, refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.Tokens.CreateAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout clears the stored refresh token and drops the cache entry.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	if err := s.Users.SaveRefreshToken(ctx, user, nil); err != nil {
		return err
	}
	return s.Cache.Delete(ctx, user.Username)
}

// RequestPasswordReset issues a reset token when the email belongs to an
// account, and reports nothing either way so callers cannot probe for
// account existence. Delivery is a log line standing in for email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.Tokens.CreatePasswordResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("signing reset token: %w", err)
	}

	l.Info("password reset token issued", "email", user.Email, "token", token)
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, rawToken, password string) error {
	claims, err := s.Tokens.Parse(rawToken)
	if err != nil || claims.TokenType != tokens.TypePasswordReset || claims.Email == "" {
		return ErrInvalidToken
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.Users.UpdatePassword(ctx, claims.Email, hashed)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	s.publish(ctx, "password_reset", user)

	return s.Cache.Delete(ctx, user.Username)
}

// CurrentUser resolves a bearer access token to a user record, cache first.
// A database hit on a cache miss repopulates the cache so the TTL window
// starts from the last read, not only from login.
func (s *AuthService) CurrentUser(ctx context.Context, rawToken string) (*models.User, error) {
	claims, err := s.Tokens.Parse(rawToken)
	if err != nil || claims.TokenType != tokens.TypeAccess || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}

	cached, err := s.Cache.Get(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.Users.ByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.Cache.Set(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	event := map[string]interface{}{
		"type":     eventType,
		"user_id":  user.ID,
		"username": user.Username,
	}
	if err := s.Producer.PublishEvent(ctx, userEventsTopic, fmt.Sprint(user.ID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "type", eventType, "error", err)
	}
}
