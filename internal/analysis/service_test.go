package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"docent/internal/docctx"
	"docent/internal/retry"
)

type generatorFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f generatorFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond, Multiplier: 2.0}
}

const validPayload = `{
	"summary": "Photosynthesis turns light into chemical energy.",
	"glossary": [
		{"term": "chlorophyll", "definition": "green pigment"},
		{"term": "ATP", "definition": "energy currency"},
		{"term": "stroma", "definition": "fluid of the chloroplast"},
		{"term": "thylakoid", "definition": "membrane sacs"},
		{"term": "carbon fixation", "definition": "CO2 to sugar"}
	],
	"keyInsights": ["Light reactions make ATP", "Dark reactions fix carbon", "Both run in chloroplasts"]
}`

func textContext(t *testing.T) docctx.DocumentContext {
	t.Helper()
	dc, err := docctx.NewText("Photosynthesis converts light to chemical energy.")
	require.NoError(t, err)
	return dc
}

func TestAnalyze_EndToEnd(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content

	gen := generatorFunc(func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotContents, gotConfig = model, contents, config
		return textResponse(validPayload), nil
	})

	svc := NewService(gen, "gemini-2.5-flash", fastPolicy())
	result, err := svc.Analyze(context.Background(), textContext(t), LevelUndergraduate)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Summary)
	assert.GreaterOrEqual(t, len(result.Glossary), 5)
	assert.LessOrEqual(t, len(result.Glossary), 10)
	assert.GreaterOrEqual(t, len(result.KeyInsights), 3)
	assert.LessOrEqual(t, len(result.KeyInsights), 5)

	// Request shape: one user content with document + instruction parts,
	// structured output constrained by the fixed schema.
	assert.Equal(t, "gemini-2.5-flash", gotModel)
	require.Len(t, gotContents, 1)
	require.Len(t, gotContents[0].Parts, 2)
	assert.Contains(t, gotContents[0].Parts[0].Text, "Photosynthesis")
	assert.Contains(t, gotContents[0].Parts[1].Text, "undergraduate")
	require.NotNil(t, gotConfig)
	assert.Equal(t, "application/json", gotConfig.ResponseMIMEType)
	require.NotNil(t, gotConfig.ResponseSchema)
	assert.ElementsMatch(t, []string{"summary", "glossary", "keyInsights"}, gotConfig.ResponseSchema.Required)
}

func TestAnalyze_PDFFramedInline(t *testing.T) {
	dc, err := docctx.NewPDF([]byte("%PDF-1.5 body"))
	require.NoError(t, err)

	var gotContents []*genai.Content
	gen := generatorFunc(func(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotContents = contents
		return textResponse(validPayload), nil
	})

	_, err = NewService(gen, "m", fastPolicy()).Analyze(context.Background(), dc, LevelGraduate)
	require.NoError(t, err)

	require.Len(t, gotContents, 1)
	require.NotNil(t, gotContents[0].Parts[0].InlineData)
	assert.Equal(t, "application/pdf", gotContents[0].Parts[0].InlineData.MIMEType)
}

func TestAnalyze_EmptyResponseIsTerminal(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return textResponse(""), nil
	})

	_, err := NewService(gen, "m", fastPolicy()).Analyze(context.Background(), textContext(t), LevelUndergraduate)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, calls, "an empty payload must not be retried")
}

func TestAnalyze_TransientRetried(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, genai.APIError{Code: 503, Message: "overloaded"}
		}
		return textResponse(validPayload), nil
	})

	result, err := NewService(gen, "m", fastPolicy()).Analyze(context.Background(), textContext(t), LevelGradeSchool)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.Equal(t, 3, calls)
}

func TestAnalyze_TerminalNotRetried(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: 400, Message: "bad request"}
	})

	_, err := NewService(gen, "m", fastPolicy()).Analyze(context.Background(), textContext(t), LevelUndergraduate)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAnalyze_MalformedPayload(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("{not json"), nil
	})

	_, err := NewService(gen, "m", fastPolicy()).Analyze(context.Background(), textContext(t), LevelUndergraduate)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyResponse))
}

func TestAnalyze_FencedPayloadAccepted(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("```json\n" + validPayload + "\n```"), nil
	})

	result, err := NewService(gen, "m", fastPolicy()).Analyze(context.Background(), textContext(t), LevelUndergraduate)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
}

func TestAnalyze_ConcurrentCallsShareFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		mu.Lock()
		calls++
		if calls == 1 {
			close(started)
		}
		mu.Unlock()
		<-release
		return textResponse(validPayload), nil
	})

	svc := NewService(gen, "m", fastPolicy())
	dc := textContext(t)

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	run := func(i int) {
		defer wg.Done()
		r, err := svc.Analyze(context.Background(), dc, LevelUndergraduate)
		require.NoError(t, err)
		results[i] = r
	}

	wg.Add(1)
	go run(0)
	<-started // first call is in flight before the second starts
	wg.Add(1)
	go run(1)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "identical concurrent analyses share one remote call")
	assert.Equal(t, results[0], results[1])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]ComprehensionLevel{
		"grade-school": LevelGradeSchool,
		"Undergrad":    LevelUndergraduate,
		" graduate ":   LevelGraduate,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("phd")
	assert.Error(t, err)
}

func TestFlightKey(t *testing.T) {
	a := textContext(t)
	b, err := docctx.NewText("different text")
	require.NoError(t, err)

	assert.Equal(t, flightKey(a, LevelUndergraduate), flightKey(a, LevelUndergraduate))
	assert.NotEqual(t, flightKey(a, LevelUndergraduate), flightKey(a, LevelGraduate))
	assert.NotEqual(t, flightKey(a, LevelUndergraduate), flightKey(b, LevelUndergraduate))
}
