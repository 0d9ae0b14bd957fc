// Package main provides the Scrivener API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/pebblepay/scrivener/pkg/agent"
	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/persistence"
	"github.com/pebblepay/scrivener/pkg/session"
	"github.com/pebblepay/scrivener/pkg/web"
)

type API struct {
	logger   *slog.Logger
	store    persistence.Persistence
	agent    *agent.Agent
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	provider completion.Provider,
) (*API, error) {
	ag, err := agent.New(provider, logger)
	if err != nil {
		return nil, err
	}

	return &API{
		logger:   logger,
		store:    store,
		agent:    ag,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	sessions := session.NewManager(a.store, a.agent, a.logger)
	handlers := web.NewAPIHandlers(sessions, a.agent, a.store, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Scrivener API")
	})

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

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
