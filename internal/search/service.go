// Package search answers free-text queries grounded with live web evidence.
// Search is best-effort: it never raises, it degrades.
package search

import (
	"context"

	"google.golang.org/genai"

	"docent/internal/gemini"
	"docent/internal/logging"
	"docent/internal/retry"
)

// UnavailableText is the degraded result text returned on any failure.
const UnavailableText = "Search currently unavailable."

// Source attributes one piece of web evidence. Lifetime is bound to a single
// query result.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Result is the answer to one grounded query.
type Result struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Service issues grounded search requests.
type Service struct {
	gen    gemini.Generator
	model  string
	policy retry.Policy
}

// NewService creates a search service.
func NewService(gen gemini.Generator, model string, policy retry.Policy) *Service {
	return &Service{gen: gen, model: model, policy: policy}
}

// Search runs one query with the web-search tool enabled. On any failure it
// returns the fixed unavailable placeholder instead of an error, so a broken
// search never blocks the rest of the application.
func (s *Service) Search(ctx context.Context, query string) Result {
	contents := []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return s.gen.GenerateContent(ctx, s.model, contents, config)
	})
	if err != nil {
		logging.SearchWarn("Search: degraded, query_len=%d: %v", len(query), err)
		return Result{Text: UnavailableText, Sources: []Source{}}
	}

	result := Result{
		Text:    gemini.ResponseText(resp),
		Sources: extractSources(resp),
	}
	if result.Text == "" {
		logging.SearchWarn("Search: degraded, response carried no text")
		return Result{Text: UnavailableText, Sources: []Source{}}
	}

	logging.Search("Search: query_len=%d sources=%d", len(query), len(result.Sources))
	return result
}

// extractSources pulls attributed sources from the grounding metadata,
// preserving backend order. Entries missing a title or URI are dropped.
func extractSources(resp *genai.GenerateContentResponse) []Source {
	sources := []Source{}
	for _, chunk := range gemini.GroundingChunks(resp) {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		if chunk.Web.Title == "" || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
