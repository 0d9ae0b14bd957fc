package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultModel    = "gemini-2.5-flash"
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	maxRetries = 3
	retryDelay = time.Second
)

// Gemini implements Provider against the Google Gemini REST API with
// bounded retries and linear backoff.
type Gemini struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

type GeminiOption func(*Gemini)

func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

func WithEndpoint(endpoint string) GeminiOption {
	return func(g *Gemini) {
		if endpoint != "" {
			g.endpoint = endpoint
		}
	}
}

func WithHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) {
		if client != nil {
			g.client = client
		}
	}
}

func NewGemini(apiKey string, logger *slog.Logger, opts ...GeminiOption) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gemini{
		apiKey:   apiKey,
		model:    defaultModel,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Gemini API wire structures.

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

// CompleteText sends one prompt and returns the model's text. Transient
// failures are retried with linear backoff; exhaustion returns
// ErrEmptyCompletion wrapped around the last error.
func (g *Gemini) CompleteText(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		text, err := g.generate(ctx, req)
		if err == nil && text != "" {
			return text, nil
		}

		if err != nil {
			lastErr = err
			g.logger.Warn("completion attempt failed", "attempt", attempt, "error", err)
		}

		if attempt < maxRetries {
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %w", ErrEmptyCompletion, lastErr)
	}

	return "", ErrEmptyCompletion
}

// CompleteJSON asks for structured output and decodes it into out. On a
// parse failure it retries once with a stricter instruction, then reports
// ErrMalformedOutput.
func (g *Gemini) CompleteJSON(ctx context.Context, req Request, out any) error {
	const jsonInstruction = "IMPORTANT: Your response must be valid JSON only. No markdown, no explanations, just the JSON object."

	if req.System != "" {
		req.System += "\n\n" + jsonInstruction
	} else {
		req.System = jsonInstruction
	}

	if req.Temperature == 0 {
		req.Temperature = 0.5
	}

	prompt := req.Prompt

	for attempt := 1; attempt <= 2; attempt++ {
		req.Prompt = prompt

		text, err := g.CompleteText(ctx, req)
		if err != nil {
			return err
		}

		cleaned := ExtractJSON(text)
		if err := json.Unmarshal([]byte(cleaned), out); err == nil {
			return nil
		}

		g.logger.Warn("structured output did not parse", "attempt", attempt)
		prompt += "\n\nIMPORTANT: Return ONLY valid JSON, no other text."
	}

	return ErrMalformedOutput
}

func (g *Gemini) generate(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
	}

	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	if req.Temperature > 0 {
		body.GenerationConfig = &geminiGenerationConfig{Temperature: req.Temperature}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling completion service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion service returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
