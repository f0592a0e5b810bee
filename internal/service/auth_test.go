package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/session"
)

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(session.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@empresa.com", creds.Email)
		assert.Equal(t, "segredo", creds.Senha)
		assert.Empty(t, r.Header.Get(session.HeaderCSRFToken))

		w.Header().Set(session.HeaderNewCSRFToken, "tok-login")
		writeJSON(w, http.StatusOK, map[string]any{
			"sucesso": true,
			"dados": map[string]any{
				"usuario": map[string]any{"id": 7, "nome": "Ana", "email": "ana@empresa.com", "idioma": "pt-BR"},
			},
		})
	})

	user, err := f.auth.Login(ctx, "ana@empresa.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Zero(t, f.fetches.Load())

	cached, err := f.profiles.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, cached)

	token, err := f.tokens.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-login", token)
	assert.True(t, f.client.IsAuthenticated(ctx))
}

func TestAuth_Login_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(session.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"sucesso": false, "erro": "Credenciais inválidas"})
	})

	_, err := f.auth.Login(ctx, "ana@empresa.com", "errada")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.False(t, f.client.IsAuthenticated(ctx))
}

func TestAuth_Login_WrongPasswordKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(session.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"sucesso": false, "erro": "Credenciais inválidas"})
	})
	require.NoError(t, f.client.SetCSRFToken(ctx, "tok-0"))

	_, err := f.auth.Login(ctx, "ana@empresa.com", "errada")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, []string{"Credenciais inválidas"}, f.notifier.Errors())
	assert.False(t, f.client.RedirectPending())
	assert.Equal(t, int32(0), f.scheduler.scheduled.Load())
	assert.Equal(t, "/dashboard.html", f.navigator.Location())
	assert.Empty(t, f.navigator.History())

	token, err := f.client.CSRFToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-0", token)
}

func TestAuth_Login_MissingProfile(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc(session.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "dados": map[string]any{}})
	})

	_, err := f.auth.Login(context.Background(), "a@b.c", "x")
	require.ErrorIs(t, err, model.ErrEmptyData)
}

func TestAuth_RegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(session.PathRegister, func(w http.ResponseWriter, r *http.Request) {
		var reg Registration
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, "Ana", reg.Nome)
		writeJSON(w, http.StatusCreated, map[string]any{"sucesso": true, "mensagem": "Verifique seu e-mail"})
	})
	f.mux.HandleFunc(session.PathVerifyEmail, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc123", body["token"])
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "mensagem": "E-mail verificado"})
	})

	msg, err := f.auth.Register(ctx, Registration{Nome: "Ana", Email: "ana@empresa.com", Senha: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, "Verifique seu e-mail", msg)

	msg, err = f.auth.VerifyEmail(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "E-mail verificado", msg)
	assert.Zero(t, f.fetches.Load())
}

func TestAuth_RefreshProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(PathProfile, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"sucesso": true,
			"dados":   map[string]any{"id": 3, "nome": "Bruno", "email": "b@empresa.com"},
		})
	})

	user, err := f.auth.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bruno", user.Nome)
	assert.True(t, f.client.IsAuthenticated(ctx))
}

func TestAuth_RefreshProfile_UserGone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.client.SetUser(ctx, model.User{ID: 3, Nome: "Bruno"}))
	require.NoError(t, f.client.SetCSRFToken(ctx, "tok-old"))
	f.mux.HandleFunc(PathProfile, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"sucesso": false, "erro": "Usuário não encontrado"})
	})

	_, err := f.auth.RefreshProfile(ctx)
	require.ErrorIs(t, err, ErrSessionEnded)
	assert.False(t, f.client.IsAuthenticated(ctx))

	token, err := f.client.CSRFToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.client.SetUser(ctx, model.User{ID: 3, Nome: "Bruno"}))
	f.mux.HandleFunc(PathLogout, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok-1", r.Header.Get(session.HeaderCSRFToken))
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": true})
	})

	require.NoError(t, f.auth.Logout(ctx))
	assert.Equal(t, int32(1), f.fetches.Load())
	assert.False(t, f.client.IsAuthenticated(ctx))

	token, err := f.client.CSRFToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuth_Logout_BackendFailureStillClears(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.client.SetUser(ctx, model.User{ID: 3}))
	f.mux.HandleFunc(PathLogout, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"sucesso": false})
	})

	err := f.auth.Logout(ctx)
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.False(t, f.client.IsAuthenticated(ctx))
}

func TestAuth_Logout_ExpiredSessionSchedulesRedirect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc(PathLogout, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"sucesso": false, "erro": "Sessão expirada"})
	})

	err := f.auth.Logout(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), f.scheduler.scheduled.Load())
}

func TestAuth_Login_CancelsPendingRedirect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"sucesso": false, "erro": "Não autenticado"})
	})
	f.mux.HandleFunc(session.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"sucesso": true,
			"dados":   map[string]any{"usuario": map[string]any{"id": 7, "nome": "Ana"}},
		})
	})

	f.client.Get(ctx, "/dashboard")
	require.True(t, f.client.RedirectPending())

	_, err := f.auth.Login(ctx, "ana@empresa.com", "segredo")
	require.NoError(t, err)
	assert.False(t, f.client.RedirectPending())
}
