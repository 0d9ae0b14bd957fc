// Package web provides HTTP request and response types for the contract API.
package web

import (
	"encoding/json"

	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/persistence"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// ChatRequest represents one interactive turn. An empty session_id starts a
// new session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"    validate:"required,min=1"`
}

// GenerateRequest represents a one-shot generation call: either a free-text
// project description or a blocks document, not both.
type GenerateRequest struct {
	Text   string          `json:"text,omitempty"`
	Blocks json.RawMessage `json:"blocks,omitempty"`
}

// GenerateResponse is the full result of the one-shot pipeline.
type GenerateResponse struct {
	ContractText string                 `json:"contract_text"`
	Summary      string                 `json:"summary"`
	Spec         *spec.ContractSpec     `json:"contract_spec"`
	Validation   *spec.ValidationResult `json:"validation"`
	Notes        []string               `json:"notes,omitempty"`
	Visited      []string               `json:"visited_steps,omitempty"`
}

// SessionStateResponse exposes a session's stored state to the client.
type SessionStateResponse struct {
	ID          string                    `json:"id"`
	State       *flow.State               `json:"state"`
	ChatHistory []persistence.ChatMessage `json:"chat_history"`
	CreatedAt   string                    `json:"created_at"`
	UpdatedAt   string                    `json:"updated_at"`
}

// TransformSessionResponse builds the state response from a stored session.
func TransformSessionResponse(session *persistence.Session) SessionStateResponse {
	return SessionStateResponse{
		ID:          session.ID,
		State:       session.State,
		ChatHistory: session.ChatHistory,
		CreatedAt:   session.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   session.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
