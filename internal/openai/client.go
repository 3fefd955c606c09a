package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/pathakanu/mindwell/internal/sentiment"
)

var (
	// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
	ErrClientNotInitialised = errors.New("openai client not initialised")
	// ErrRateLimited maps an upstream HTTP 429.
	ErrRateLimited = errors.New("ai gateway rate limit exceeded")
	// ErrQuotaExhausted maps an upstream HTTP 402.
	ErrQuotaExhausted = errors.New("ai gateway credits exhausted")
	// ErrMalformedResponse is returned when the model reply lacks the expected function call.
	ErrMalformedResponse = errors.New("invalid ai response format")
)

const analyzeFunctionName = "analyze_sentiment"

const systemPrompt = `You are a mental health assessment AI. Analyze the user's text for emotional sentiment and mental health indicators.

Your task is to return a JSON analysis with these fields:
- sentiment_label: "positive", "neutral", or "negative"
- sentiment_score: a number from 0 to 1 (0 = very negative, 0.5 = neutral, 1 = very positive)
- severity_level: "low", "moderate", or "high" (indicating level of concern)
- summary: a brief, compassionate 1-2 sentence summary of the emotional state
- recommendations: an array of 2-3 supportive suggestions

Be compassionate and supportive in your analysis. Focus on understanding the person's emotional state and providing helpful guidance.`

// Options configures the gateway client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client wraps the OpenAI SDK against an OpenAI-compatible AI gateway and
// implements sentiment.Analyzer.
type Client struct {
	client  *openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

// New returns a gateway client. Without an API key the client is inert and
// every call fails with ErrClientNotInitialised.
func New(opts Options) *Client {
	if opts.APIKey == "" {
		return &Client{}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// pass-through: upstream failures are surfaced, never retried
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := openai.ChatModel(opts.Model)
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := openai.NewClient(reqOpts...)
	return &Client{
		client:  &client,
		model:   model,
		timeout: timeout,
	}
}

type analysisArguments struct {
	SentimentLabel  string   `json:"sentiment_label"`
	SentimentScore  *float64 `json:"sentiment_score"`
	SeverityLevel   string   `json:"severity_level"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// userPrompt quotes content verbatim so line breaks reach the model unchanged.
func userPrompt(content string) string {
	return "Please analyze this text for mental health sentiment:\n\n\"" + content + "\""
}

// Analyze forwards content to the gateway and relays its classification.
func (c *Client) Analyze(ctx context.Context, content string) (sentiment.Analysis, error) {
	if strings.TrimSpace(content) == "" {
		return sentiment.Analysis{}, sentiment.ErrEmptyContent
	}
	if c.client == nil {
		return sentiment.Analysis{}, ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(content)),
		},
		Tools: []openai.ChatCompletionToolUnionParam{
			openai.ChatCompletionFunctionTool(analyzeFunction()),
		},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfFunctionToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: analyzeFunctionName},
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return sentiment.Analysis{}, classifyError(err)
	}
	slog.DebugContext(ctx, "ai gateway analysis completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return sentiment.Analysis{}, ErrMalformedResponse
	}
	call := resp.Choices[0].Message.ToolCalls[0]
	if call.Function.Arguments == "" {
		return sentiment.Analysis{}, ErrMalformedResponse
	}
	return ParseArguments(call.Function.Arguments)
}

// ParseArguments decodes and validates the analyze_sentiment call arguments.
func ParseArguments(raw string) (sentiment.Analysis, error) {
	var args analysisArguments
	if err := sonic.UnmarshalString(raw, &args); err != nil {
		return sentiment.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	label := sentiment.Label(strings.ToLower(args.SentimentLabel))
	severity := sentiment.Severity(strings.ToLower(args.SeverityLevel))
	switch {
	case !label.Valid():
		return sentiment.Analysis{}, fmt.Errorf("%w: sentiment_label %q", ErrMalformedResponse, args.SentimentLabel)
	case !severity.Valid():
		return sentiment.Analysis{}, fmt.Errorf("%w: severity_level %q", ErrMalformedResponse, args.SeverityLevel)
	case args.SentimentScore == nil:
		return sentiment.Analysis{}, fmt.Errorf("%w: sentiment_score missing", ErrMalformedResponse)
	case *args.SentimentScore < 0 || *args.SentimentScore > 1:
		return sentiment.Analysis{}, fmt.Errorf("%w: sentiment_score %v out of range", ErrMalformedResponse, *args.SentimentScore)
	}

	return sentiment.Analysis{
		Result: sentiment.Result{
			Score:    *args.SentimentScore,
			Label:    label,
			Severity: severity,
		},
		Summary:         args.Summary,
		Recommendations: args.Recommendations,
		Source:          sentiment.SourceRemote,
	}, nil
}

func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
		return fmt.Errorf("ai gateway error: status %d: %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("ai gateway request: %w", err)
}

func analyzeFunction() shared.FunctionDefinitionParam {
	return shared.FunctionDefinitionParam{
		Name:        analyzeFunctionName,
		Description: openai.String("Analyze mental health sentiment from user text"),
		Parameters: shared.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"sentiment_label": map[string]any{
					"type":        "string",
					"enum":        []string{"positive", "neutral", "negative"},
					"description": "The overall emotional sentiment",
				},
				"sentiment_score": map[string]any{
					"type":        "number",
					"description": "Score from 0 (very negative) to 1 (very positive)",
				},
				"severity_level": map[string]any{
					"type":        "string",
					"enum":        []string{"low", "moderate", "high"},
					"description": "Level of mental health concern",
				},
				"summary": map[string]any{
					"type":        "string",
					"description": "Brief compassionate summary of emotional state",
				},
				"recommendations": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "2-3 supportive suggestions",
				},
			},
			"required":             []string{"sentiment_label", "sentiment_score", "severity_level", "summary", "recommendations"},
			"additionalProperties": false,
		},
	}
}
