package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docent/internal/speech"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio-file]",
	Short: "Transcribe a recorded audio file",
	Long: `Sends a recorded audio file to the model and prints the verbatim
transcript. An empty transcript means the audio could not be understood.

Example:
  docent transcribe question.webm`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx, cancel := requestContext()
	defer cancel()

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}

	tr := speech.NewTranscriber(client, cfg.Gemini.TextModel, retryPolicy())
	transcript, err := tr.Transcribe(ctx, data, audioMIMEType(args[0]))
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if strings.TrimSpace(transcript) == "" {
		fmt.Println("(could not understand the audio)")
		return nil
	}
	fmt.Println(transcript)
	return nil
}

// audioMIMEType guesses the MIME type from the file extension, defaulting
// to audio/webm, the browser capture container. Common extensions are
// mapped explicitly; the host mime database varies (.wav can resolve to
// audio/x-wav) and is consulted only for the rest.
func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(t, "audio/") {
		return t
	}
	return "audio/webm"
}
