package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"docent/internal/docctx"
)

type generatorFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f generatorFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

func reply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func textContext(t *testing.T) docctx.DocumentContext {
	t.Helper()
	dc, err := docctx.NewText("A paper about tardigrades.")
	require.NoError(t, err)
	return dc
}

func TestSendTurn_FirstTurnRequestShape(t *testing.T) {
	var gotContents []*genai.Content
	var gotConfig *genai.GenerateContentConfig

	gen := generatorFunc(func(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotContents, gotConfig = contents, config
		return reply("The main finding is that tardigrades survive vacuum."), nil
	})

	session, err := NewSession(gen, "gemini-2.5-flash", textContext(t))
	require.NoError(t, err)

	text, ok := session.SendTurn(context.Background(), nil, "What is the main finding?")
	require.True(t, ok)
	assert.NotEmpty(t, text)

	// Empty history: 2 seed turns + 1 new message.
	require.Len(t, gotContents, 3)
	assert.Equal(t, "user", string(gotContents[0].Role))
	assert.Equal(t, "model", string(gotContents[1].Role))
	assert.Contains(t, gotContents[1].Parts[0].Text, "Understood")
	assert.Equal(t, "What is the main finding?", gotContents[2].Parts[0].Text)

	// Plain-prose instruction rides on the session, not in the turns.
	require.NotNil(t, gotConfig)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Contains(t, gotConfig.SystemInstruction.Parts[0].Text, "plain")
}

func TestSendTurn_SeedAlwaysFirst(t *testing.T) {
	var gotContents []*genai.Content
	gen := generatorFunc(func(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotContents = contents
		return reply("ok"), nil
	})

	session, err := NewSession(gen, "m", textContext(t))
	require.NoError(t, err)

	history := []Message{
		NewUserMessage("first question"),
		NewModelMessage("first answer"),
		NewUserMessage("second question"),
		NewModelMessage("second answer"),
	}
	_, ok := session.SendTurn(context.Background(), history, "third question")
	require.True(t, ok)

	// 2 seed + 4 history + 1 new
	require.Len(t, gotContents, 7)
	assert.Contains(t, gotContents[0].Parts[0].Text, "document")
	assert.Contains(t, gotContents[1].Parts[0].Text, "Understood")
	assert.Equal(t, "first question", gotContents[2].Parts[0].Text)
	assert.Equal(t, "model", string(gotContents[3].Role))
	assert.Equal(t, "third question", gotContents[6].Parts[0].Text)
}

func TestSendTurn_PDFContextSeededInline(t *testing.T) {
	dc, err := docctx.NewPDF([]byte("%PDF-1.4"))
	require.NoError(t, err)

	var gotContents []*genai.Content
	gen := generatorFunc(func(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotContents = contents
		return reply("ok"), nil
	})

	session, err := NewSession(gen, "m", dc)
	require.NoError(t, err)
	_, ok := session.SendTurn(context.Background(), nil, "hi")
	require.True(t, ok)

	// Seed user turn carries the framing text plus the inline attachment.
	require.Len(t, gotContents[0].Parts, 2)
	require.NotNil(t, gotContents[0].Parts[1].InlineData)
	assert.Equal(t, "application/pdf", gotContents[0].Parts[1].InlineData.MIMEType)
}

func TestSendTurn_TransportFailureYieldsApology(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, errors.New("boom")
	})

	session, err := NewSession(gen, "m", textContext(t))
	require.NoError(t, err)

	text, ok := session.SendTurn(context.Background(), nil, "hello?")
	assert.False(t, ok)
	assert.Equal(t, Apology, text)
	assert.Equal(t, 1, calls, "chat turns are never retried")
}

func TestSendTurn_TransientFailureStillNotRetried(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: 503}
	})

	session, err := NewSession(gen, "m", textContext(t))
	require.NoError(t, err)

	text, ok := session.SendTurn(context.Background(), nil, "hello?")
	assert.False(t, ok)
	assert.Equal(t, Apology, text)
	assert.Equal(t, 1, calls)
}

func TestSendTurn_EmptyReplyYieldsApology(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return reply(""), nil
	})

	session, err := NewSession(gen, "m", textContext(t))
	require.NoError(t, err)

	text, ok := session.SendTurn(context.Background(), nil, "hello?")
	assert.False(t, ok)
	assert.Equal(t, Apology, text)
}

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hi")
	m := NewModelMessage("hello")
	e := NewErrorMessage(Apology)

	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, RoleModel, m.Role)
	assert.True(t, e.IsError)
	assert.False(t, u.IsError)

	// IDs are unique
	assert.NotEqual(t, u.ID, m.ID)
	assert.NotEmpty(t, u.ID)
}
