// Package session manages drafting session lifecycle: creation, chat turns,
// reset, and write-through persistence. Turns against the same session are
// serialized; the graph state is not safe for concurrent runs.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pebblepay/scrivener/pkg/agent"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/persistence"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// TurnResult is what one chat turn hands back to the transport layer.
type TurnResult struct {
	SessionID     string                 `json:"session_id"`
	Message       string                 `json:"message"`
	Done          bool                   `json:"done"`
	Suggestions   []string               `json:"suggestions,omitempty"`
	MissingFields []spec.Field           `json:"missing_fields,omitempty"`
	ContractText  string                 `json:"contract_text,omitempty"`
	Summary       string                 `json:"summary,omitempty"`
	Validation    *spec.ValidationResult `json:"validation,omitempty"`
}

// Manager coordinates sessions between the agent and the store.
type Manager struct {
	store  persistence.Persistence
	agent  *agent.Agent
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store persistence.Persistence, ag *agent.Agent, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:  store,
		agent:  ag,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for one session.
func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}

	return lock
}

// dropSessionLock discards the lock entry for an id that turned out to have
// no session behind it, so unknown-id traffic cannot grow the map.
func (m *Manager) dropSessionLock(id string) {
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
}

// Create starts a fresh session seeded with the opening message.
func (m *Manager) Create(ctx context.Context) (*persistence.Session, error) {
	now := m.now()
	session := &persistence.Session{
		ID:    uuid.NewString(),
		State: flow.NewState(),
		ChatHistory: []persistence.ChatMessage{
			{Role: "assistant", Content: agent.OpeningMessage, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	m.logger.Info("session created", "session_id", session.ID)

	return session, nil
}

// Chat runs one interactive turn. An empty sessionID creates a new session
// first, so the first message of a conversation needs no separate call.
func (m *Manager) Chat(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	var session *persistence.Session

	if sessionID == "" {
		created, err := m.Create(ctx)
		if err != nil {
			return nil, err
		}

		session = created
		sessionID = session.ID
	}

	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if session == nil {
		loaded, err := m.store.SessionByID(ctx, sessionID)
		if err != nil {
			if persistence.IsSessionNotFound(err) {
				m.dropSessionLock(sessionID)
			}

			return nil, err
		}

		session = loaded
	}

	now := m.now()
	session.ChatHistory = append(session.ChatHistory, persistence.ChatMessage{
		Role: "user", Content: message, Timestamp: now,
	})

	if err := m.agent.RunTurn(ctx, session.State, message); err != nil {
		return nil, err
	}

	st := session.State
	session.ChatHistory = append(session.ChatHistory, persistence.ChatMessage{
		Role: "assistant", Content: st.AssistantMessage, Timestamp: m.now(),
	})
	session.UpdatedAt = m.now()

	if err := m.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	result := &TurnResult{
		SessionID:     sessionID,
		Message:       st.AssistantMessage,
		Done:          st.ContractText != "",
		MissingFields: st.MissingFields,
		ContractText:  st.ContractText,
		Summary:       st.Summary,
		Validation:    st.Validation,
	}

	if !result.Done && st.CurrentQuestionField != "" {
		result.Suggestions = spec.Suggestions(st.CurrentQuestionField)
	}

	return result, nil
}

// Get loads a session by id.
func (m *Manager) Get(ctx context.Context, id string) (*persistence.Session, error) {
	return m.store.SessionByID(ctx, id)
}

// List returns summaries of all sessions, most recently updated first.
func (m *Manager) List(ctx context.Context) ([]persistence.Summary, error) {
	return m.store.Sessions(ctx)
}

// Reset wipes a session's state back to a fresh conversation while keeping
// its id.
func (m *Manager) Reset(ctx context.Context, id string) (*persistence.Session, error) {
	lock := m.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.SessionByID(ctx, id)
	if err != nil {
		if persistence.IsSessionNotFound(err) {
			m.dropSessionLock(id)
		}

		return nil, err
	}

	now := m.now()
	session.State = flow.NewState()
	session.ChatHistory = []persistence.ChatMessage{
		{Role: "assistant", Content: agent.OpeningMessage, Timestamp: now},
	}
	session.UpdatedAt = now

	if err := m.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	m.logger.Info("session reset", "session_id", id)

	return session, nil
}

// Delete removes a session and its lock.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()

	return nil
}
