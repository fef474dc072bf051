package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docent/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Run a web-grounded search",
	Long: `Searches the web through the grounded model and prints the answer with
its sources. If search is unavailable, prints a placeholder instead of
failing.

Example:
  docent search recent CRISPR delivery mechanisms`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx, cancel := requestContext()
	defer cancel()

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}

	result := search.NewService(client, cfg.Gemini.TextModel, retryPolicy()).Search(ctx, query)

	fmt.Println(renderMarkdown(result.Text))
	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, src := range result.Sources {
			fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
		}
	}
	return nil
}
