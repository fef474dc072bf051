package main

import (
	"context"

	"github.com/spf13/cobra"

	"docent/cmd/docent/tui"
	"docent/internal/audio"
	"docent/internal/chat"
	"docent/internal/logging"
	"docent/internal/speech"
)

var chatNoSpeech bool

var chatCmd = &cobra.Command{
	Use:   "chat [document]",
	Short: "Chat with a document interactively",
	Long: `Starts an interactive chat session seeded with the given document. The
model answers questions about the document; replies can be spoken aloud
with ctrl+s.

The document may be a PDF file, a plain-text file, a URL, or "-" to read
pasted text from stdin.

Example:
  docent chat paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoSpeech, "no-speech", false, "Disable speech playback of replies")
}

func runChat(cmd *cobra.Command, args []string) error {
	dc, err := resolveDocument(args[0])
	if err != nil {
		return err
	}

	client, err := newGeminiClient(context.Background())
	if err != nil {
		return err
	}

	session, err := chat.NewSession(client, cfg.Gemini.TextModel, dc)
	if err != nil {
		return err
	}

	var speaker *tui.Speaker
	if !chatNoSpeech {
		player, err := audio.NewPlayer(cfg.Audio.SampleRate)
		if err != nil {
			// No audio device is not fatal for a chat session.
			logging.Audio("chat: speech playback disabled: %v", err)
		} else {
			speaker = &tui.Speaker{
				Synthesizer: speech.NewSynthesizer(client, cfg.Gemini.SpeechModel, cfg.Gemini.Voice, retryPolicy()),
				Player:      player,
			}
		}
	}

	return tui.Run(session, speaker)
}
