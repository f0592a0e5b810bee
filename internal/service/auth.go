package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/session"
)

const (
	PathProfile = "/auth/perfil"
	PathLogout  = "/auth/logout"
)

type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type Registration struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type userPayload struct {
	Usuario *model.User `json:"usuario"`
}

// Auth drives the authentication endpoints and keeps the cached profile in
// step with them.
type Auth struct {
	client *session.Client
	logger *logger.Logger
}

func NewAuth(client *session.Client, logger *logger.Logger) *Auth {
	return &Auth{
		client: client,
		logger: logger,
	}
}

// Login authenticates and caches the returned profile. The session cookie
// lands in the client's jar.
func (a *Auth) Login(ctx context.Context, email, senha string) (model.User, error) {
	a.logger.Debug("Auth service: logging in",
		"email", email)

	res := a.client.Post(ctx, session.PathLogin, Credentials{Email: email, Senha: senha})
	if err := resultError(res); err != nil {
		a.logger.Info("Auth service: login rejected",
			"email", email,
			"error", err.Error())
		return model.User{}, err
	}

	user, err := decodeUser(res)
	if err != nil {
		a.logger.Error("Auth service: failed to decode login response",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to decode user: %w", err)
	}

	if err := a.client.SetUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to cache user: %w", err)
	}
	if a.client.CancelRedirect() {
		a.logger.Debug("Auth service: cancelled pending login redirect")
	}

	a.logger.Info("Auth service: logged in",
		"email", email,
		"user_id", user.ID)
	return user, nil
}

// Register creates an account and returns the backend's message.
func (a *Auth) Register(ctx context.Context, reg Registration) (string, error) {
	a.logger.Debug("Auth service: registering",
		"email", reg.Email)

	res := a.client.Post(ctx, session.PathRegister, reg)
	if err := resultError(res); err != nil {
		return "", err
	}
	return message(res), nil
}

// VerifyEmail confirms an address with the token sent by mail.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (string, error) {
	res := a.client.Post(ctx, session.PathVerifyEmail, map[string]string{"token": token})
	if err := resultError(res); err != nil {
		return "", err
	}
	return message(res), nil
}

// RefreshProfile reloads the profile from the backend and caches it.
func (a *Auth) RefreshProfile(ctx context.Context) (model.User, error) {
	res := a.client.Get(ctx, PathProfile)
	if err := resultError(res); err != nil {
		return model.User{}, err
	}

	user, err := decodeUser(res)
	if err != nil {
		a.logger.Error("Auth service: failed to decode profile",
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to decode user: %w", err)
	}

	if err := a.client.SetUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to cache user: %w", err)
	}
	return user, nil
}

// Logout tells the backend to drop the session, then clears the local
// state whatever the answer was.
func (a *Auth) Logout(ctx context.Context) error {
	res := a.client.Post(ctx, PathLogout, nil)
	serverErr := resultError(res)
	if serverErr != nil && !errors.Is(serverErr, ErrSessionEnded) {
		a.logger.Info("Auth service: backend logout failed",
			"error", serverErr.Error())
	}

	a.EndSession(ctx)

	if errors.Is(serverErr, ErrSessionEnded) {
		return nil
	}
	return serverErr
}

// EndSession clears the cached profile and token without calling the
// backend. It is the client's logout hook for the user-not-found signal.
func (a *Auth) EndSession(ctx context.Context) {
	if err := a.client.DeleteUser(ctx); err != nil {
		a.logger.Error("Auth service: failed to clear user",
			"error", err.Error())
	}
	if err := a.client.DeleteCSRFToken(ctx); err != nil {
		a.logger.Error("Auth service: failed to clear csrf token",
			"error", err.Error())
	}
	a.logger.Info("Auth service: session ended")
}

// decodeUser accepts both {"usuario": {...}} and a bare profile in dados.
func decodeUser(res session.Result) (model.User, error) {
	var wrapped userPayload
	if err := res.DecodeData(&wrapped); err != nil {
		return model.User{}, err
	}
	if wrapped.Usuario != nil {
		return *wrapped.Usuario, nil
	}

	var user model.User
	if err := res.DecodeData(&user); err != nil {
		return model.User{}, err
	}
	if user.ID == 0 && user.Email == "" {
		return model.User{}, model.ErrEmptyData
	}
	return user, nil
}

func message(res session.Result) string {
	if res.Envelope == nil {
		return ""
	}
	return res.Envelope.Mensagem
}
