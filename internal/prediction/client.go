// Package prediction calls the clinical outcome model that scores a
// patient's treatment profile.
package prediction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var (
	// ErrNotConfigured is returned when no model URL is set.
	ErrNotConfigured = errors.New("prediction service not configured")
	// ErrSessionExpired maps an upstream HTTP 401.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidInput wraps every validation failure of Input.
	ErrInvalidInput = errors.New("invalid prediction input")
	// ErrUpstream is returned for non-2xx replies and unparsable bodies.
	ErrUpstream = errors.New("prediction service error")
)

// maxResponseBytes caps the body read from the model service.
const maxResponseBytes = 1 << 20

// Result is the model verdict relayed to the client.
type Result struct {
	Outcome    string  `json:"outcome"`
	Confidence float64 `json:"confidence"`
}

// ErrorResult is returned alongside every error so callers always have a
// renderable verdict.
var ErrorResult = Result{Outcome: "Error", Confidence: 0}

// Input is the treatment profile submitted for prediction.
type Input struct {
	Age               int    `json:"age"`
	Gender            string `json:"gender"`
	Diagnosis         string `json:"diagnosis"`
	SymptomSeverity   int    `json:"symptom_severity"`
	MoodScore         int    `json:"mood_score"`
	SleepQuality      int    `json:"sleep_quality"`
	PhysicalActivity  int    `json:"physical_activity"`
	Medication        string `json:"medication"`
	TherapyType       string `json:"therapy_type"`
	TreatmentDuration int    `json:"treatment_duration"`
	StressLevel       int    `json:"stress_level"`
	TreatmentProgress int    `json:"treatment_progress"`
	EmotionalState    string `json:"emotional_state"`
	Adherence         int    `json:"adherence"`
}

// Validate checks ranges the model was trained on.
func (in Input) Validate() error {
	if in.Age < 1 || in.Age > 120 {
		return fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidInput)
	}
	for name, v := range map[string]string{
		"gender":          in.Gender,
		"diagnosis":       in.Diagnosis,
		"medication":      in.Medication,
		"therapy_type":    in.TherapyType,
		"emotional_state": in.EmotionalState,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
		}
	}
	for name, v := range map[string]int{
		"symptom_severity":   in.SymptomSeverity,
		"mood_score":         in.MoodScore,
		"sleep_quality":      in.SleepQuality,
		"stress_level":       in.StressLevel,
		"treatment_progress": in.TreatmentProgress,
	} {
		if v < 1 || v > 10 {
			return fmt.Errorf("%w: %s must be between 1 and 10", ErrInvalidInput, name)
		}
	}
	if in.PhysicalActivity < 0 || in.TreatmentDuration < 0 {
		return fmt.Errorf("%w: physical_activity and treatment_duration must not be negative", ErrInvalidInput)
	}
	if in.Adherence < 0 || in.Adherence > 100 {
		return fmt.Errorf("%w: adherence must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// upstreamRequest is the field naming of the model service.
type upstreamRequest struct {
	Age               int    `json:"Age"`
	Gender            string `json:"Gender"`
	Diagnosis         string `json:"Diagnosis"`
	SymptomSeverity   int    `json:"Symptom_Severity"`
	MoodScore         int    `json:"Mood_Score"`
	SleepQuality      int    `json:"Sleep_Quality"`
	PhysicalActivity  int    `json:"Physical_Activity"`
	Medication        string `json:"Medication"`
	TherapyType       string `json:"Therapy_Type"`
	TreatmentDuration int    `json:"Treatment_Duration"`
	StressLevel       int    `json:"Stress_Level"`
	TreatmentProgress int    `json:"Treatment_Progress"`
	EmotionalState    string `json:"Emotional_State"`
	Adherence         int    `json:"Adherence"`
}

type upstreamResponse struct {
	PredictedOutcome string   `json:"predicted_outcome"`
	Confidence       *float64 `json:"confidence"`
}

// Client posts profiles to the model service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for url with a per-request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Predict scores in. bearerToken, when set, is forwarded so the model service
// can authorize the caller's session. Failures return ErrorResult with the error.
func (c *Client) Predict(ctx context.Context, in Input, bearerToken string) (Result, error) {
	if c.url == "" {
		return ErrorResult, ErrNotConfigured
	}
	if err := in.Validate(); err != nil {
		return ErrorResult, err
	}

	body, err := sonic.Marshal(upstreamRequest(in))
	if err != nil {
		return ErrorResult, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return ErrorResult, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrorResult, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ErrorResult, fmt.Errorf("read prediction response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrorResult, ErrSessionExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return ErrorResult, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out upstreamResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return ErrorResult, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if out.PredictedOutcome == "" || out.Confidence == nil {
		return ErrorResult, fmt.Errorf("%w: response missing predicted_outcome or confidence", ErrUpstream)
	}
	return Result{Outcome: out.PredictedOutcome, Confidence: *out.Confidence}, nil
}
