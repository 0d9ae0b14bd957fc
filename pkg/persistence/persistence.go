// Package persistence provides the storage abstraction for drafting
// sessions.
package persistence

import (
	"context"
	"time"

	"github.com/pebblepay/scrivener/pkg/flow"
)

// ChatMessage is one turn of the session transcript.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the stored record for one drafting conversation: the workflow
// state (spec, contract text, control fields) plus the transcript.
type Session struct {
	ID          string        `json:"id"`
	State       *flow.State   `json:"state"`
	ChatHistory []ChatMessage `json:"chat_history"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Summary is the listing view of a session: enough to render a picker
// without loading full state.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	HasContract bool      `json:"has_contract"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summarize derives the listing view from a full session record.
func Summarize(s *Session) Summary {
	out := Summary{
		ID:        s.ID,
		UpdatedAt: s.UpdatedAt,
	}

	if s.State != nil {
		out.HasContract = s.State.ContractText != ""

		if s.State.Spec != nil {
			out.Title = s.State.Spec.Title
			out.ClientName = s.State.Spec.Client.Name
		}
	}

	if out.Title == "" {
		out.Title = "Untitled contract"
	}

	return out
}

type Persistence interface {
	Sessions(ctx context.Context) ([]Summary, error)
	SaveSession(ctx context.Context, session *Session) error
	SessionByID(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
