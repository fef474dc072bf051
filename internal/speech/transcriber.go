package speech

import (
	"context"

	"google.golang.org/genai"

	"docent/internal/gemini"
	"docent/internal/logging"
	"docent/internal/retry"
)

// transcribeInstruction asks for a bare transcript with no framing text.
const transcribeInstruction = "Transcribe this audio verbatim. Return only the transcribed text with no additional commentary."

// Transcriber converts captured audio into text.
type Transcriber struct {
	gen    gemini.Generator
	model  string
	policy retry.Policy
}

// NewTranscriber creates a transcriber bound to a model.
func NewTranscriber(gen gemini.Generator, model string, policy retry.Policy) *Transcriber {
	return &Transcriber{gen: gen, model: model, policy: policy}
}

// Transcribe sends the captured audio in its native format and returns the
// transcript. An empty transcript is not an error here; the caller decides
// how to treat "could not understand".
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	logging.Speech("Transcribe: %d bytes (%s)", len(audio), mimeType)

	parts := []*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := retry.DoValue(ctx, t.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return t.gen.GenerateContent(ctx, t.model, contents, nil)
	})
	if err != nil {
		return "", err
	}

	transcript := gemini.ResponseText(resp)
	logging.SpeechDebug("Transcribe: transcript %d chars", len(transcript))
	return transcript, nil
}
