package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebblepay/scrivener/pkg/agent"
	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/persistence/file"
	"github.com/pebblepay/scrivener/pkg/session"
	"github.com/pebblepay/scrivener/pkg/web"
)

func setupTestApp(t *testing.T, provider completion.Provider) (*fiber.App, *session.Manager, *file.Persistence) {
	t.Helper()

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	ag, err := agent.New(provider, nil)
	require.NoError(t, err)

	sessions := session.NewManager(store, ag, nil)
	handlers := web.NewAPIHandlers(sessions, ag, store, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	api := app.Group("/api")
	api.Post("/chat", handlers.Chat)
	api.Get("/opening-message", handlers.OpeningMessage)
	api.Post("/generate", handlers.Generate)

	s := api.Group("/sessions")
	s.Get("/", handlers.GetSessions)
	s.Get("/:id/state", handlers.GetSessionState)
	s.Post("/:id/reset", handlers.ResetSession)
	s.Delete("/:id", handlers.DeleteSession)
	s.Get("/:id/contract.pdf", handlers.ContractPDF)
	s.Get("/:id/explanation", handlers.Explanation)

	app.Get("/health", handlers.HealthCheck)

	return app, sessions, store
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestChat_StartsSessionAndAsksQuestion(t *testing.T) {
	fake := &completion.Fake{
		JSONResponses: []string{`{"updated_spec": {"freelancer": {"name": "Sarah Chen"}}, "notes": ""}`},
	}
	app, _, _ := setupTestApp(t, fake)

	resp := postJSON(t, app, "/api/chat", web.ChatRequest{Message: "Hi, I'm Sarah Chen"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result session.TurnResult
	decodeBody(t, resp, &result)

	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.Message)
	assert.False(t, result.Done)
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	resp := postJSON(t, app, "/api/chat", web.ChatRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_UnknownSessionIs404(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	resp := postJSON(t, app, "/api/chat", web.ChatRequest{SessionID: "missing", Message: "hello"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpeningMessage(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/opening-message", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, agent.OpeningMessage, body["message"])
}

func TestGenerate_FromBlocks(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	blocksDoc := json.RawMessage(`{
		"nodes": [
			{"id": "n1", "type": "party", "data": {"role": "freelancer", "name": "Sarah Chen"}},
			{"id": "n2", "type": "party", "data": {"role": "client", "name": "Bean & Brew"}},
			{"id": "n3", "type": "deliverable", "data": {"item": "Logo design"}},
			{"id": "n4", "type": "payment", "data": {"amount": 800, "currency": "GBP"}},
			{"id": "n5", "type": "timeline", "data": {"deadline": "September 20, 2026"}}
		]
	}`)

	resp := postJSON(t, app, "/api/generate", web.GenerateRequest{Blocks: blocksDoc})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.GenerateResponse
	decodeBody(t, resp, &result)

	assert.Contains(t, result.ContractText, "Sarah Chen")
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.IsValid)
}

func TestGenerate_RejectsMalformedBlocks(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	resp := postJSON(t, app, "/api/generate", web.GenerateRequest{Blocks: json.RawMessage(`{"edges": []}`)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessions_ListStateResetDelete(t *testing.T) {
	fake := &completion.Fake{
		JSONResponses: []string{`{"updated_spec": {"freelancer": {"name": "Sarah Chen"}}, "notes": ""}`},
	}
	app, _, _ := setupTestApp(t, fake)

	resp := postJSON(t, app, "/api/chat", web.ChatRequest{Message: "Hi, I'm Sarah Chen"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var turn session.TurnResult
	decodeBody(t, resp, &turn)

	// List shows the session.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Sessions   []json.RawMessage `json:"sessions"`
		TotalCount int               `json:"total_count"`
	}
	decodeBody(t, resp, &listing)
	assert.Equal(t, 1, listing.TotalCount)

	// State carries the transcript.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+turn.SessionID+"/state", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state web.SessionStateResponse
	decodeBody(t, resp, &state)
	assert.Equal(t, turn.SessionID, state.ID)
	assert.Len(t, state.ChatHistory, 3)

	// Reset wipes it back to the opening message.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/sessions/"+turn.SessionID+"/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	decodeBody(t, resp, &state)
	assert.Len(t, state.ChatHistory, 1)

	// Delete removes it.
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+turn.SessionID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+turn.SessionID+"/state", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContractPDF_RequiresGeneratedContract(t *testing.T) {
	app, sessions, _ := setupTestApp(t, &completion.Fake{})

	created, err := sessions.Create(t.Context())
	require.NoError(t, err)

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/contract.pdf", nil))
	require.NoError(t, testErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContractPDF_DownloadsRenderedContract(t *testing.T) {
	app, sessions, store := setupTestApp(t, &completion.Fake{})

	created, err := sessions.Create(t.Context())
	require.NoError(t, err)

	created.State.ContractText = "1. PARTIES\n\nThis agreement is between Sarah Chen and Bean & Brew."
	created.State.Spec.Title = "Logo design Agreement"
	require.NoError(t, store.SaveSession(t.Context(), created))

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/contract.pdf", nil))
	require.NoError(t, testErr)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Logo_design_Agreement.pdf"`, resp.Header.Get("Content-Disposition"))

	data, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExplanation_NotFoundWithoutSummary(t *testing.T) {
	app, sessions, _ := setupTestApp(t, &completion.Fake{})

	created, err := sessions.Create(t.Context())
	require.NoError(t, err)

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/explanation", nil))
	require.NoError(t, testErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := setupTestApp(t, &completion.Fake{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
