package model

import (
	"encoding/json"
	"fmt"
)

// Envelope is the response shape shared by every backend endpoint.
type Envelope struct {
	Sucesso  bool                       `json:"sucesso"`
	Mensagem string                     `json:"mensagem,omitempty"`
	Erro     string                     `json:"erro,omitempty"`
	Dados    json.RawMessage            `json:"dados,omitempty"`
	Codigo   int                        `json:"codigo,omitempty"`
	Erros    map[string]json.RawMessage `json:"erros,omitempty"`
}

// DecodeData unmarshals the dados field into v.
func (e *Envelope) DecodeData(v any) error {
	if e == nil || len(e.Dados) == 0 {
		return ErrEmptyData
	}
	if err := json.Unmarshal(e.Dados, v); err != nil {
		return fmt.Errorf("failed to decode envelope data: %w", err)
	}
	return nil
}

// FieldErrors normalizes the erros map. Each field may carry a single
// message or a list of messages on the wire.
func (e *Envelope) FieldErrors() map[string][]string {
	if e == nil || len(e.Erros) == 0 {
		return nil
	}

	out := make(map[string][]string, len(e.Erros))
	for field, raw := range e.Erros {
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			out[field] = []string{one}
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			out[field] = many
			continue
		}
		out[field] = []string{string(raw)}
	}
	return out
}

// CSRFTokenPayload is the dados payload of the token endpoint.
type CSRFTokenPayload struct {
	CSRFToken string `json:"csrf_token"`
}
