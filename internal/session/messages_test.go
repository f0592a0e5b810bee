package session

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/painel-admin/internal/mocks"
	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/storage/memory"
	"github.com/dtroode/painel-admin/internal/testutil"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want string
	}{
		{
			name: "erro wins",
			in:   &model.APIError{Status: 400, Data: &model.Envelope{Erro: "X", Mensagem: "Y"}},
			want: "X",
		},
		{
			name: "mensagem when no erro",
			in:   &model.APIError{Status: 400, Data: &model.Envelope{Mensagem: "Y"}},
			want: "Y",
		},
		{
			name: "404 without data",
			in:   &model.APIError{Status: http.StatusNotFound},
			want: statusMessages[http.StatusNotFound],
		},
		{
			name: "400 default",
			in:   &model.APIError{Status: http.StatusBadRequest, Data: &model.Envelope{}},
			want: statusMessages[http.StatusBadRequest],
		},
		{
			name: "401 default",
			in:   &model.APIError{Status: http.StatusUnauthorized},
			want: statusMessages[http.StatusUnauthorized],
		},
		{
			name: "403 default",
			in:   &model.APIError{Status: http.StatusForbidden},
			want: statusMessages[http.StatusForbidden],
		},
		{
			name: "500 default",
			in:   &model.APIError{Status: http.StatusInternalServerError},
			want: statusMessages[http.StatusInternalServerError],
		},
		{
			name: "unknown status",
			in:   &model.APIError{Status: http.StatusTeapot},
			want: defaultErrorMessage,
		},
		{
			name: "transport error",
			in:   &model.TransportError{Op: "failed to send request", Err: errors.New("refused")},
			want: defaultErrorMessage,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HandleError(tt.in))
		})
	}
}

func TestClient_ShowMessages(t *testing.T) {
	notifier := &mocks.Notifier{}
	notifier.On("Success", "Cliente salvo").Return()
	notifier.On("Error", "Falhou").Return()

	c, err := New("http://unused", nil, memory.NewTokenStore(), memory.NewProfileStore(), testutil.MakeNoopLogger(),
		WithNotifier(notifier))
	require.NoError(t, err)

	c.ShowSuccess("Cliente salvo")
	c.ShowError("Falhou")
	notifier.AssertExpectations(t)
}

func TestClient_ShowMessages_NotifierPanics(t *testing.T) {
	notifier := &mocks.Notifier{}
	notifier.On("Success", mock.Anything).Panic("display gone")
	notifier.On("Error", mock.Anything).Panic("display gone")

	c, err := New("http://unused", nil, memory.NewTokenStore(), memory.NewProfileStore(), testutil.MakeNoopLogger(),
		WithNotifier(notifier))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.ShowSuccess("ok")
		c.ShowError("nok")
	})
}
