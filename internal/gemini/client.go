// Package gemini wraps the Google GenAI SDK behind the narrow surface the
// rest of docent needs: one request/response call plus helpers for pulling
// text, audio and grounding data out of responses.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"docent/internal/logging"
)

// Generator is the request/response interface to the remote model. It
// mirrors genai Models.GenerateContent so the real client satisfies it
// directly and tests can substitute a fake.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is the production Generator backed by the Gemini API.
type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client}, nil
}

// GenerateContent issues a single request to the remote model.
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()
	logging.APIDebug("GenerateContent: model=%s contents=%d", model, len(contents))

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		logging.APIError("GenerateContent: failed after %v: %v", time.Since(start), err)
		return nil, err
	}

	logging.API("GenerateContent: completed in %v candidates=%d", time.Since(start), len(resp.Candidates))
	return resp, nil
}

// ResponseText concatenates the text parts of the first candidate.
// Returns "" when the response carries no usable text payload.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// ResponseInlineData returns the first inline binary payload of the first
// candidate, or nil if the response carries none.
func ResponseInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}

// GroundingChunks returns the grounding chunks of the first candidate in
// backend order, or nil when the response was not grounded.
func GroundingChunks(resp *genai.GenerateContentResponse) []*genai.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return resp.Candidates[0].GroundingMetadata.GroundingChunks
}
