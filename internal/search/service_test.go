package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"docent/internal/retry"
)

type generatorFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f generatorFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond, Multiplier: 2.0}
}

func groundedResponse(text string, chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:           &genai.Content{Parts: []*genai.Part{{Text: text}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
		}},
	}
}

func webChunk(title, uri string) *genai.GroundingChunk {
	return &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: title, URI: uri}}
}

func TestSearch_Success(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotConfig = config
		return groundedResponse("Latest findings...",
			webChunk("Nature", "https://nature.example/a"),
			webChunk("Science", "https://science.example/b"),
		), nil
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "recent photosynthesis research")

	assert.Equal(t, "Latest findings...", result.Text)
	want := []Source{
		{Title: "Nature", URI: "https://nature.example/a"},
		{Title: "Science", URI: "https://science.example/b"},
	}
	if diff := cmp.Diff(want, result.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	// The web-search tool must be attached to the request.
	require.NotNil(t, gotConfig)
	require.Len(t, gotConfig.Tools, 1)
	assert.NotNil(t, gotConfig.Tools[0].GoogleSearch)
}

func TestSearch_DropsIncompleteSources(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return groundedResponse("text",
			webChunk("", "https://no-title.example"),
			webChunk("No URI", ""),
			&genai.GroundingChunk{}, // no web payload at all
			webChunk("Kept", "https://kept.example"),
		), nil
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "q")
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Kept", result.Sources[0].Title)
}

func TestSearch_TransportFailureDegrades(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("connection refused")
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "q")
	assert.Equal(t, UnavailableText, result.Text)
	assert.Empty(t, result.Sources)
	assert.NotNil(t, result.Sources)
}

func TestSearch_TransientRetriedBeforeDegrading(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: 503}
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "q")
	assert.Equal(t, UnavailableText, result.Text)
	assert.Equal(t, 4, calls, "search still honors the retry budget before degrading")
}

func TestSearch_EmptyTextDegrades(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return groundedResponse(""), nil
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "q")
	assert.Equal(t, UnavailableText, result.Text)
}

func TestSearch_NoGroundingMetadata(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "ungrounded answer"}}},
			}},
		}, nil
	})

	result := NewService(gen, "m", fastPolicy()).Search(context.Background(), "q")
	assert.Equal(t, "ungrounded answer", result.Text)
	assert.Empty(t, result.Sources)
}
