// Package analysis produces the one-shot structured breakdown of a document:
// summary, glossary and key insights, at a chosen comprehension level.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"docent/internal/docctx"
	"docent/internal/gemini"
	"docent/internal/logging"
	"docent/internal/retry"
)

// ErrEmptyResponse is returned when the model reply carries no usable
// structured payload. It is terminal: the retry policy never retries it.
var ErrEmptyResponse = errors.New("model returned no analysis payload")

// ComprehensionLevel selects the register the analysis is written in.
type ComprehensionLevel string

const (
	LevelGradeSchool   ComprehensionLevel = "grade-school"
	LevelUndergraduate ComprehensionLevel = "undergraduate"
	LevelGraduate      ComprehensionLevel = "graduate"
)

// ParseLevel maps a level flag to a ComprehensionLevel.
func ParseLevel(s string) (ComprehensionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grade-school", "gradeschool", "school":
		return LevelGradeSchool, nil
	case "undergraduate", "undergrad":
		return LevelUndergraduate, nil
	case "graduate", "grad":
		return LevelGraduate, nil
	}
	return "", fmt.Errorf("unknown comprehension level %q", s)
}

func (l ComprehensionLevel) audience() string {
	switch l {
	case LevelGradeSchool:
		return "a curious grade-school student; use simple words and short sentences"
	case LevelGraduate:
		return "a graduate researcher in the field; keep full technical depth"
	default:
		return "an undergraduate student; assume general scientific literacy"
	}
}

// GlossaryEntry is one term/definition pair.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Result is the structured analysis of one document context. It is produced
// once and never mutated; multiple views may consume it concurrently.
type Result struct {
	Summary     string          `json:"summary"`
	Glossary    []GlossaryEntry `json:"glossary"`
	KeyInsights []string        `json:"keyInsights"`
}

// Service issues analysis requests. All remote calls pass through the retry
// policy; concurrent requests for the same context and level share a single
// in-flight call.
type Service struct {
	gen    gemini.Generator
	model  string
	policy retry.Policy
	group  singleflight.Group
}

// NewService creates an analysis service.
func NewService(gen gemini.Generator, model string, policy retry.Policy) *Service {
	return &Service{gen: gen, model: model, policy: policy}
}

// Analyze runs the single-shot structured extraction for a document context.
// No streaming, no partial results: either a complete Result or an error.
func (s *Service) Analyze(ctx context.Context, dc docctx.DocumentContext, level ComprehensionLevel) (*Result, error) {
	key := flightKey(dc, level)

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.analyze(ctx, dc, level)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.AnalysisDebug("Analyze: shared in-flight result for key=%s", key[:12])
	}
	return v.(*Result), nil
}

func (s *Service) analyze(ctx context.Context, dc docctx.DocumentContext, level ComprehensionLevel) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryAnalysis, "Analyze")
	defer timer.StopWithInfo()

	docParts, err := gemini.DocumentParts(dc)
	if err != nil {
		return nil, err
	}

	parts := append(docParts, genai.NewPartFromText(instructionFor(level)))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return s.gen.GenerateContent(ctx, s.model, contents, config)
	})
	if err != nil {
		logging.AnalysisError("Analyze: request failed: %v", err)
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	text := stripCodeFence(gemini.ResponseText(resp))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
	}
	if result.Summary == "" {
		return nil, ErrEmptyResponse
	}

	logging.Analysis("Analyze: kind=%s level=%s glossary=%d insights=%d",
		dc.Kind(), level, len(result.Glossary), len(result.KeyInsights))
	return &result, nil
}

func instructionFor(level ComprehensionLevel) string {
	return fmt.Sprintf(`Analyze the document above for %s.

Produce:
1. A summary of the document.
2. A glossary of 5 to 10 important terms with definitions.
3. A list of 3 to 5 key insights.

Respond with the JSON object only.`, level.audience())
}

// flightKey dedupes concurrent analyses of the same context and level.
func flightKey(dc docctx.DocumentContext, level ComprehensionLevel) string {
	h := sha256.New()
	h.Write([]byte(dc.Kind().String()))
	h.Write([]byte{0})
	h.Write([]byte(dc.Content()))
	h.Write([]byte{0})
	h.Write([]byte(level))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON despite the response MIME type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
