package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docent/internal/audio"
	"docent/internal/speech"
)

var (
	speakOut  string
	speakPlay bool
)

var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Synthesize text to speech",
	Long: `Synthesizes the given text to spoken audio. Input longer than 400
characters is truncated. The audio is written as a WAV file and can
optionally be played through the default audio device.

Examples:
  docent speak "The mitochondria is the powerhouse of the cell."
  docent speak --out reply.wav --play "Done."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVar(&speakOut, "out", "speech.wav", "Output WAV file path")
	speakCmd.Flags().BoolVar(&speakPlay, "play", false, "Play the audio after synthesis")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	ctx, cancel := requestContext()
	defer cancel()

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}

	syn := speech.NewSynthesizer(client, cfg.Gemini.SpeechModel, cfg.Gemini.Voice, retryPolicy())
	pcm, err := syn.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	if err := audio.WriteWAV(speakOut, pcm, cfg.Audio.SampleRate); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", speakOut)

	if speakPlay {
		player, err := audio.NewPlayer(cfg.Audio.SampleRate)
		if err != nil {
			return err
		}
		if err := player.Play(pcm); err != nil {
			return err
		}
		player.Wait()
	}
	return nil
}
