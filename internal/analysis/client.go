// Package analysis calls an OpenAI-compatible vision API to extract a
// structured character sheet from an uploaded image.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/config"
	"github.com/gwan-project/landing-auth/internal/domain"
)

// Analyzer produces a character analysis for an image URL.
type Analyzer interface {
	// Analyze returns the structured analysis and the raw provider
	// response body (kept for the history record).
	Analyze(ctx context.Context, imageURL string) (*domain.CharacterAnalysis, string, error)
}

// Client is an Analyzer backed by an OpenAI-compatible chat completions
// endpoint with vision support.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an analysis client from config.
func NewClient(cfg config.AnalysisConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "analysis").Logger(),
	}
}

// analysisPrompt instructs the model to return the character sheet as
// strict JSON matching domain.CharacterAnalysis.
const analysisPrompt = `Analyze the character in this image and return a JSON object with these keys:
identity (name, age, gender, occupation, personality, background),
body (height, weight, body_type, characteristics, marks),
face (shape, characteristics, expression, details),
eyes (color, shape, size, characteristics, expression),
hair (color, style, length, texture, characteristics),
clothing (type, color, style, details, accessories),
footwear (type, color, style, characteristics),
accessories (types, details, positioning),
photo_style (lighting, angle, composition, environment, quality),
metadata (confidence between 0 and 1, processed_at, model).
Use "not visible" for anything you cannot determine. Return only JSON.`

// Request/response shapes for the chat completions API.

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Analyze submits the image for analysis and parses the result.
func (c *Client) Analyze(ctx context.Context, imageURL string) (*domain.CharacterAnalysis, string, error) {
	start := time.Now()

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: analysisPrompt},
					{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
				},
			},
		},
		MaxTokens:      2048,
		ResponseFormat: &formatSpec{Type: "json_object"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read analysis response: %w", err)
	}
	raw := string(body)

	if resp.StatusCode != http.StatusOK {
		return nil, raw, fmt.Errorf("analysis provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, raw, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if parsed.Error != nil {
		return nil, raw, fmt.Errorf("analysis provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, raw, fmt.Errorf("analysis response contained no choices")
	}

	result := &domain.CharacterAnalysis{}
	content := stripCodeFence(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return nil, raw, fmt.Errorf("failed to parse analysis content: %w", err)
	}

	if result.Metadata.Model == "" {
		result.Metadata.Model = c.model
	}
	if result.Metadata.ProcessedAt == "" {
		result.Metadata.ProcessedAt = time.Now().UTC().Format(time.RFC3339)
	}

	c.logger.Debug().
		Dur("duration", time.Since(start)).
		Float64("confidence", result.Metadata.Confidence).
		Msg("image analysis completed")

	return result, raw, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models emit even
// when asked for plain JSON.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// Ensure Client implements Analyzer.
var _ Analyzer = (*Client)(nil)
