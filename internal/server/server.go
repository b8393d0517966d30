package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/matching"
	"github.com/adambasile/jobmatcher/internal/skills"
)

const (
	defaultBodyLimit = 32 << 20
	requestIDHeader  = "X-Request-ID"
)

type Config struct {
	Address string
	// Token enables bearer authentication on the API routes when set.
	Token     string
	Format    string
	Skills    skills.Options
	BodyLimit int
}

type Server struct {
	app    *fiber.App
	cfg    Config
	logger *zap.Logger
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}

	s := &Server{cfg: cfg, logger: logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "jobmatcher",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.accessLog)

	v1 := s.app.Group("/api/v1")
	v1.Get("/health", s.health)
	v1.Post("/matches", s.authorize, s.matches)

	return s
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	s.logger.Info("listening", zap.String("address", s.cfg.Address), zap.Bool("auth", s.cfg.Token != ""))
	return s.app.Listen(s.cfg.Address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func (s *Server) authorize(c *fiber.Ctx) error {
	if s.cfg.Token == "" {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cfg.Token)) != 1 {
		return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid bearer token")
	}
	return c.Next()
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	rid := c.Get(requestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(requestIDHeader, rid)

	err := c.Next()
	if err != nil {
		// run the error handler now so the logged status is the final one
		if herr := s.handleError(c, err); herr != nil {
			s.logger.Error("writing error response", zap.Error(herr))
		}
	}

	s.logger.Info("http request",
		zap.String("request_id", rid),
		zap.String("method", c.Method()),
		zap.String("path", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	return c.Status(status).JSON(ErrorResponse{Message: err.Error()})
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var schemaErr *matching.SchemaError
	if errors.As(err, &schemaErr) {
		return fiber.StatusBadRequest
	}

	var inputErr *inputError
	if errors.As(err, &inputErr) {
		return fiber.StatusBadRequest
	}

	return fiber.StatusInternalServerError
}
