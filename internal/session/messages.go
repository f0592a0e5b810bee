package session

import (
	"errors"
	"net/http"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
)

const (
	defaultErrorMessage   = "Ocorreu um erro inesperado. Tente novamente."
	sessionExpiredMessage = "Sua sessão expirou. Faça login novamente."
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Dados inválidos. Verifique as informações enviadas.",
	http.StatusUnauthorized:        "Não autorizado. Faça login novamente.",
	http.StatusForbidden:           "Você não tem permissão para realizar esta ação.",
	http.StatusNotFound:            "Recurso não encontrado.",
	http.StatusInternalServerError: "Erro interno do servidor. Tente novamente mais tarde.",
}

// HandleError maps an error to the message shown to the user: the
// backend's erro, then its mensagem, then a default keyed by status.
func HandleError(err error) string {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return defaultErrorMessage
	}
	if apiErr.Data != nil {
		if apiErr.Data.Erro != "" {
			return apiErr.Data.Erro
		}
		if apiErr.Data.Mensagem != "" {
			return apiErr.Data.Mensagem
		}
	}
	if msg, ok := statusMessages[apiErr.Status]; ok {
		return msg
	}
	return defaultErrorMessage
}

// ShowSuccess displays a success message.
func (c *Client) ShowSuccess(message string) {
	defer c.recoverNotifier()
	c.notifier.Success(message)
}

// ShowError displays an error message.
func (c *Client) ShowError(message string) {
	defer c.recoverNotifier()
	c.notifier.Error(message)
}

func (c *Client) recoverNotifier() {
	if r := recover(); r != nil {
		c.logger.Error("SessionClient: notifier panicked", "panic", r)
	}
}

type logNotifier struct {
	logger *logger.Logger
}

func (n logNotifier) Success(message string) {
	n.logger.Info(message)
}

func (n logNotifier) Error(message string) {
	n.logger.Warn(message)
}
