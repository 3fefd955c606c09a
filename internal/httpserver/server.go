// Package httpserver exposes the JSON API, the Twilio webhook and the
// operational endpoints over echo.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pathakanu/mindwell/internal/assessment"
	"github.com/pathakanu/mindwell/internal/auth"
	"github.com/pathakanu/mindwell/internal/chat"
	"github.com/pathakanu/mindwell/internal/config"
	"github.com/pathakanu/mindwell/internal/metrics"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/pathakanu/mindwell/internal/prediction"
	"github.com/pathakanu/mindwell/internal/reminder"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"github.com/prometheus/client_golang/prometheus"
)

type assessmentService interface {
	Analyze(ctx context.Context, content string) (sentiment.Analysis, error)
	Submit(ctx context.Context, userID, content string) (*model.Assessment, error)
	Recent(ctx context.Context, userID string, limit int) ([]model.Assessment, error)
	PersonalAnalytics(ctx context.Context, userID string) (*assessment.PersonalAnalytics, error)
}

type referenceStore interface {
	Global(ctx context.Context) ([]model.GlobalMentalHealthData, error)
	Regional(ctx context.Context) ([]model.RegionalMentalHealthData, error)
}

type reminderService interface {
	Create(ctx context.Context, userID, userEmail string, in reminder.CreateInput) (*model.Reminder, error)
	List(ctx context.Context, userID string) ([]model.Reminder, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type predictor interface {
	Predict(ctx context.Context, in prediction.Input, bearerToken string) (prediction.Result, error)
}

type tokenVerifier interface {
	Verify(token string) (*auth.User, error)
}

type chatObserver interface {
	ChatReplied(category string)
}

// Dependencies are the collaborators served over HTTP.
type Dependencies struct {
	Assessments  assessmentService
	References   referenceStore
	Reminders    reminderService
	Predictor    predictor
	Responder    *chat.Responder
	Verifier     tokenVerifier
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	ChatObserver chatObserver
	HealthChecks []HealthCheck
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	assessments assessmentService
	references  referenceStore
	reminders   reminderService
	predictor   predictor
	responder   *chat.Responder
	verifier    tokenVerifier
	chatEvents  chatObserver

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = cfg.AITimeout + 30*time.Second
	e.Server.IdleTimeout = 120 * time.Second

	chatEvents := deps.ChatObserver
	if chatEvents == nil {
		chatEvents = noopChatObserver{}
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		assessments:  deps.Assessments,
		references:   deps.References,
		reminders:    deps.Reminders,
		predictor:    deps.Predictor,
		responder:    deps.Responder,
		verifier:     deps.Verifier,
		chatEvents:   chatEvents,
		registry:     deps.Registry,
		httpMetrics:  deps.HTTPMetrics,
		healthChecks: deps.HealthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) getBaseURL(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if fwdProto := c.Request().Header.Get("X-Forwarded-Proto"); fwdProto == "http" || fwdProto == "https" {
		scheme = fwdProto
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request().Host)
}

type noopChatObserver struct{}

func (noopChatObserver) ChatReplied(string) {}
