package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pathakanu/mindwell/internal/assessment"
	"github.com/pathakanu/mindwell/internal/auth"
	"github.com/pathakanu/mindwell/internal/chat"
	"github.com/pathakanu/mindwell/internal/config"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/pathakanu/mindwell/internal/prediction"
	"github.com/pathakanu/mindwell/internal/reminder"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mockAssessments struct {
	analyzeFn   func(ctx context.Context, content string) (sentiment.Analysis, error)
	submitFn    func(ctx context.Context, userID, content string) (*model.Assessment, error)
	recentFn    func(ctx context.Context, userID string, limit int) ([]model.Assessment, error)
	analyticsFn func(ctx context.Context, userID string) (*assessment.PersonalAnalytics, error)
}

func (m *mockAssessments) Analyze(ctx context.Context, content string) (sentiment.Analysis, error) {
	return m.analyzeFn(ctx, content)
}

func (m *mockAssessments) Submit(ctx context.Context, userID, content string) (*model.Assessment, error) {
	return m.submitFn(ctx, userID, content)
}

func (m *mockAssessments) Recent(ctx context.Context, userID string, limit int) ([]model.Assessment, error) {
	return m.recentFn(ctx, userID, limit)
}

func (m *mockAssessments) PersonalAnalytics(ctx context.Context, userID string) (*assessment.PersonalAnalytics, error) {
	return m.analyticsFn(ctx, userID)
}

type mockReferences struct {
	global   []model.GlobalMentalHealthData
	regional []model.RegionalMentalHealthData
	err      error
}

func (m *mockReferences) Global(context.Context) ([]model.GlobalMentalHealthData, error) {
	return m.global, m.err
}

func (m *mockReferences) Regional(context.Context) ([]model.RegionalMentalHealthData, error) {
	return m.regional, m.err
}

type mockReminders struct {
	createFn func(ctx context.Context, userID, userEmail string, in reminder.CreateInput) (*model.Reminder, error)
	listFn   func(ctx context.Context, userID string) ([]model.Reminder, error)
	deleteFn func(ctx context.Context, userID string, id uuid.UUID) error
}

func (m *mockReminders) Create(ctx context.Context, userID, userEmail string, in reminder.CreateInput) (*model.Reminder, error) {
	return m.createFn(ctx, userID, userEmail, in)
}

func (m *mockReminders) List(ctx context.Context, userID string) ([]model.Reminder, error) {
	return m.listFn(ctx, userID)
}

func (m *mockReminders) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.deleteFn(ctx, userID, id)
}

type mockPredictor struct {
	predictFn func(ctx context.Context, in prediction.Input, token string) (prediction.Result, error)
}

func (m *mockPredictor) Predict(ctx context.Context, in prediction.Input, token string) (prediction.Result, error) {
	return m.predictFn(ctx, in, token)
}

type testDeps struct {
	assessments *mockAssessments
	references  *mockReferences
	reminders   *mockReminders
	predictor   *mockPredictor
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		JWTSecret:          testSecret,
		AITimeout:          time.Second,
		RateLimitPerSecond: 100,
		RateLimitBurst:     100,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, deps testDeps) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	if deps.assessments == nil {
		deps.assessments = &mockAssessments{}
	}
	if deps.references == nil {
		deps.references = &mockReferences{}
	}
	if deps.reminders == nil {
		deps.reminders = &mockReminders{}
	}
	if deps.predictor == nil {
		deps.predictor = &mockPredictor{}
	}

	return NewServer(cfg, Dependencies{
		Assessments: deps.assessments,
		References:  deps.references,
		Reminders:   deps.reminders,
		Predictor:   deps.predictor,
		Responder:   chat.DefaultResponder(),
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
	})
}

func testToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.Sign(testSecret, auth.Claims{
		Email:        userID + "@example.com",
		UserMetadata: auth.UserMetadata{FullName: "Ana"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

// do sends a request through the full middleware chain.
func do(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
