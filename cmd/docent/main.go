package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docent/internal/config"
	"docent/internal/gemini"
	"docent/internal/logging"
	"docent/internal/retry"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string
	workspace  string

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "docent - AI research-document companion",
	Long: `docent turns a research document (PDF, pasted text, or URL) into a
structured analysis, a context-seeded chat, grounded web search, and
spoken audio.

Run "docent chat <document>" to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFilePath())
		if err != nil {
			return err
		}
		if apiKey != "" {
			cfg.Gemini.APIKey = apiKey
		}

		if err := logging.Initialize(workspace, logging.Options{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logging.Boot("docent %s starting: cmd=%s", cfg.Version, cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return ".docent/config.yaml"
}

// retryPolicy builds the retry policy from loaded configuration.
func retryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if cfg.Retry.MaxRetries > 0 {
		p.MaxRetries = cfg.Retry.MaxRetries
	}
	p.InitialDelay = cfg.RetryInitialDelay()
	if cfg.Retry.Multiplier > 1 {
		p.Multiplier = cfg.Retry.Multiplier
	}
	return p
}

// newGeminiClient creates the remote client from loaded configuration.
func newGeminiClient(ctx context.Context) (*gemini.Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("no API key: set GEMINI_API_KEY or pass --api-key")
	}
	return gemini.NewClient(ctx, cfg.Gemini.APIKey)
}

// requestContext returns a context bounded by the configured request timeout.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.RequestTimeout())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: .docent/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory for logs (default: current)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(transcribeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
