// Package speech turns text into spoken audio and captured audio back into
// text through the Gemini speech models.
package speech

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"docent/internal/gemini"
	"docent/internal/logging"
	"docent/internal/retry"
)

// ErrNoAudioData indicates the speech model answered without an audio payload.
var ErrNoAudioData = errors.New("no audio data in response")

// MaxSynthesisChars bounds the text sent to the speech model in one call.
// Longer input is truncated, not rejected.
const MaxSynthesisChars = 400

// Synthesizer converts text into raw PCM audio.
type Synthesizer struct {
	gen    gemini.Generator
	model  string
	voice  string
	policy retry.Policy
}

// NewSynthesizer creates a synthesizer bound to a speech model and voice.
func NewSynthesizer(gen gemini.Generator, model, voice string, policy retry.Policy) *Synthesizer {
	return &Synthesizer{gen: gen, model: model, voice: voice, policy: policy}
}

// Synthesize speaks the given text and returns the raw PCM bytes
// (signed 16-bit little-endian, mono, 24 kHz). Input longer than
// MaxSynthesisChars is truncated before transmission.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	spoken := truncate(text, MaxSynthesisChars)
	if len(spoken) != len(text) {
		logging.SpeechDebug("Synthesize: input truncated from %d to %d chars", len([]rune(text)), len([]rune(spoken)))
	}

	contents := []*genai.Content{
		genai.NewContentFromText(spoken, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}

	resp, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return s.gen.GenerateContent(ctx, s.model, contents, config)
	})
	if err != nil {
		return nil, err
	}

	blob := gemini.ResponseInlineData(resp)
	if blob == nil {
		logging.SpeechError("Synthesize: response carried no audio payload")
		return nil, ErrNoAudioData
	}

	logging.Speech("Synthesize: received %d bytes (%s)", len(blob.Data), blob.MIMEType)
	return blob.Data, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
