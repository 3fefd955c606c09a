package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pathakanu/mindwell/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionWithArguments(arguments string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role":    "assistant",
					"content": nil,
					"tool_calls": []any{
						map[string]any{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "analyze_sentiment",
								"arguments": arguments,
							},
						},
					},
				},
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func newGateway(t *testing.T, status int, body any) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.NotNil(t, req["tool_choice"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return New(Options{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Model: "test-model"}), &calls
}

func TestAnalyze_Success(t *testing.T) {
	args := `{"sentiment_label":"negative","sentiment_score":0.15,"severity_level":"high","summary":"You sound exhausted.","recommendations":["Rest","Reach out"]}`
	client, calls := newGateway(t, http.StatusOK, completionWithArguments(args))

	analysis, err := client.Analyze(context.Background(), "I am exhausted and scared")
	require.NoError(t, err)

	assert.Equal(t, int32(1), *calls)
	assert.Equal(t, sentiment.LabelNegative, analysis.Label)
	assert.Equal(t, sentiment.SeverityHigh, analysis.Severity)
	assert.InDelta(t, 0.15, analysis.Score, 1e-9)
	assert.Equal(t, "You sound exhausted.", analysis.Summary)
	assert.Equal(t, []string{"Rest", "Reach out"}, analysis.Recommendations)
	assert.Equal(t, sentiment.SourceRemote, analysis.Source)
}

func TestAnalyze_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"quota exhausted", http.StatusPaymentRequired, ErrQuotaExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newGateway(t, tt.status, map[string]any{"error": map[string]any{"message": "nope"}})

			_, err := client.Analyze(context.Background(), "hello")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(1), *calls, "must not retry")
		})
	}
}

func TestAnalyze_GenericUpstreamFailure(t *testing.T) {
	client, calls := newGateway(t, http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom"}})

	_, err := client.Analyze(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, int32(1), *calls)
}

func TestAnalyze_MissingToolCall(t *testing.T) {
	body := completionWithArguments("")
	client, _ := newGateway(t, http.StatusOK, body)

	_, err := client.Analyze(context.Background(), "hello")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAnalyze_WithoutAPIKey(t *testing.T) {
	_, err := New(Options{}).Analyze(context.Background(), "hello")
	require.ErrorIs(t, err, ErrClientNotInitialised)
}

func TestAnalyze_BlankContent(t *testing.T) {
	_, err := New(Options{APIKey: "key"}).Analyze(context.Background(), "   ")
	require.ErrorIs(t, err, sentiment.ErrEmptyContent)
}

func TestParseArguments_Validation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"sentiment_label":`},
		{"unknown label", `{"sentiment_label":"ecstatic","sentiment_score":0.9,"severity_level":"low"}`},
		{"unknown severity", `{"sentiment_label":"positive","sentiment_score":0.9,"severity_level":"none"}`},
		{"missing score", `{"sentiment_label":"positive","severity_level":"low"}`},
		{"score out of range", `{"sentiment_label":"positive","sentiment_score":1.5,"severity_level":"low"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArguments(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseArguments_OptionalFields(t *testing.T) {
	analysis, err := ParseArguments(`{"sentiment_label":"Neutral","sentiment_score":0.5,"severity_level":"MODERATE"}`)
	require.NoError(t, err)
	assert.Equal(t, sentiment.LabelNeutral, analysis.Label)
	assert.Equal(t, sentiment.SeverityModerate, analysis.Severity)
	assert.Empty(t, analysis.Summary)
	assert.Nil(t, analysis.Recommendations)
}

func TestAnalyze_SendsContentVerbatim(t *testing.T) {
	content := "Rough week.\nMy boss said \"try harder\" again."
	args := `{"sentiment_label":"negative","sentiment_score":0.3,"severity_level":"moderate"}`

	var got any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []map[string]any `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			got = req.Messages[1]["content"]
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionWithArguments(args))
	}))
	t.Cleanup(srv.Close)

	client := New(Options{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Model: "test-model"})
	_, err := client.Analyze(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, userPrompt(content), got)
	assert.Contains(t, got, "Rough week.\nMy boss said \"try harder\" again.")
	assert.NotContains(t, got, `\n`)
}
