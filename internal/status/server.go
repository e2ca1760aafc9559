package status

import (
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// Server exposes the daemon's latest cycle over HTTP. It is read-only.
type Server struct {
	app      *fiber.App
	metrics  metrics.Collector
	instance string
	started  time.Time
}

// NewServer creates the status server for one daemon instance.
func NewServer(collector metrics.Collector, instance string) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
		ServerHeader:          "ryzenctl",
		AppName:               "ryzenctl",
	})

	s := &Server{
		app:      app,
		metrics:  collector,
		instance: instance,
		started:  time.Now(),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", s.healthCheck)
	api.Get("/status", s.getStatus)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on address until Shutdown.
func (s *Server) Start(address string) error {
	logger.Info().Str("address", address).Msg("Status server listening")

	if err := s.app.Listen(address); err != nil {
		return errors.New().Wrap(errors.ErrStatusServe, err).WithData(address)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"instance": s.instance,
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) getStatus(c *fiber.Ctx) error {
	latest, ok := s.metrics.Latest()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":    "no cycle completed yet",
			"instance": s.instance,
		})
	}

	return c.JSON(fiber.Map{
		"instance": s.instance,
		"latest":   latest,
		"totals":   s.metrics.Totals(),
	})
}
