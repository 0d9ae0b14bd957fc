// Package web provides HTTP handlers for the contract drafting API.
package web

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/pebblepay/scrivener/pkg/agent"
	"github.com/pebblepay/scrivener/pkg/blocks"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/pdf"
	"github.com/pebblepay/scrivener/pkg/persistence"
	"github.com/pebblepay/scrivener/pkg/session"
)

type APIHandlers struct {
	sessions  *session.Manager
	agent     *agent.Agent
	store     persistence.Persistence
	validator *validator.Validate
}

func NewAPIHandlers(
	sessions *session.Manager,
	ag *agent.Agent,
	store persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		sessions:  sessions,
		agent:     ag,
		store:     store,
		validator: validate,
	}
}

// Chat runs one interactive turn against a session.
func (h *APIHandlers) Chat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result, err := h.sessions.Chat(c.Context(), req.SessionID, req.Message)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(result)
}

// OpeningMessage returns the greeting a client shows before the first turn.
func (h *APIHandlers) OpeningMessage(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": agent.OpeningMessage})
}

// Generate runs the one-shot pipeline on a full description or a blocks
// document.
func (h *APIHandlers) Generate(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	st := flow.NewState()

	if len(req.Blocks) > 0 {
		doc, err := blocks.Parse(req.Blocks)
		if err != nil {
			return badRequest(c, "Invalid blocks document: "+err.Error())
		}

		st.BlocksInput = doc
	} else {
		st.ChatInput = req.Text
	}

	if err := h.agent.RunPipeline(c.Context(), st); err != nil {
		return internalError(c, err)
	}

	return c.JSON(GenerateResponse{
		ContractText: st.ContractText,
		Summary:      st.Summary,
		Spec:         st.Spec,
		Validation:   st.Validation,
		Notes:        append(st.ParseNotes, st.NormalizationNotes...),
		Visited:      st.Visited,
	})
}

// GetSessions lists stored sessions, most recently updated first.
func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	summaries, err := h.sessions.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions":    summaries,
		"total_count": len(summaries),
	})
}

// GetSessionState returns the full stored state of one session.
func (h *APIHandlers) GetSessionState(c fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

// ResetSession wipes a session back to a fresh conversation.
func (h *APIHandlers) ResetSession(c fiber.Ctx) error {
	sess, err := h.sessions.Reset(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

// DeleteSession removes a session.
func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	if err := h.sessions.Delete(c.Context(), c.Params("id")); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ContractPDF renders the session's generated contract as a PDF download.
func (h *APIHandlers) ContractPDF(c fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	if sess.State == nil || sess.State.ContractText == "" {
		return notFound(c, "no contract has been generated for this session")
	}

	title := ""
	if sess.State.Spec != nil {
		title = sess.State.Spec.Title
	}

	data, err := pdf.Render(title, sess.State.ContractText)
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+pdfFilename(title)+`"`)

	return c.Send(data)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func pdfFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		name = "contract"
	}

	return name + ".pdf"
}

// Explanation returns the plain-English summary of the generated contract.
func (h *APIHandlers) Explanation(c fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	if sess.State == nil || sess.State.Summary == "" {
		return notFound(c, "no explanation is available for this session")
	}

	return c.JSON(fiber.Map{
		"session_id":  sess.ID,
		"explanation": sess.State.Summary,
	})
}

// HealthCheck reports store connectivity.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeErr := h.store.HealthCheck(c.Context())

	status := "healthy"
	message := "Scrivener API is healthy"
	httpStatus := http.StatusOK
	storeCheck := "ok"

	if storeErr != nil {
		status = "unhealthy"
		message = "Scrivener API is unhealthy"
		httpStatus = http.StatusInternalServerError
		storeCheck = storeErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
