package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"docent/internal/analysis"
)

var analyzeLevel string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [document]",
	Short: "Produce a structured analysis of a document",
	Long: `Analyzes a document and prints a summary, a glossary of key terms, and
a list of key insights, pitched at the chosen comprehension level.

The document may be a PDF file, a plain-text file, a URL, or "-" to read
pasted text from stdin.

Examples:
  docent analyze paper.pdf --level grade-school
  docent analyze https://example.org/study
  cat abstract.txt | docent analyze -`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLevel, "level", string(analysis.LevelUndergraduate), "Comprehension level: grade-school, undergraduate, graduate")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	level, err := analysis.ParseLevel(analyzeLevel)
	if err != nil {
		return err
	}

	dc, err := resolveDocument(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}

	svc := analysis.NewService(client, cfg.Gemini.TextModel, retryPolicy())
	result, err := svc.Analyze(ctx, dc, level)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Println(renderMarkdown(formatAnalysis(result)))
	return nil
}

func formatAnalysis(r *analysis.Result) string {
	var sb strings.Builder
	sb.WriteString("# Summary\n\n")
	sb.WriteString(r.Summary)
	sb.WriteString("\n\n# Glossary\n\n")
	for _, entry := range r.Glossary {
		fmt.Fprintf(&sb, "- **%s**: %s\n", entry.Term, entry.Definition)
	}
	sb.WriteString("\n# Key Insights\n\n")
	for _, insight := range r.KeyInsights {
		fmt.Fprintf(&sb, "- %s\n", insight)
	}
	return sb.String()
}

// renderMarkdown renders content for the terminal, falling back to plain
// text if rendering fails or panics.
func renderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
