package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docent/internal/docctx"
)

// resolveDocument turns a command-line document argument into a canonical
// document context. "-" reads pasted text from stdin; http(s) arguments are
// treated as URLs; .pdf files are loaded as binary; anything else is read
// as plain text from the named file.
func resolveDocument(arg string) (docctx.DocumentContext, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return docctx.DocumentContext{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return docctx.NewText(string(data))

	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return docctx.NewURL(arg)

	case strings.EqualFold(filepath.Ext(arg), ".pdf"):
		data, err := os.ReadFile(arg)
		if err != nil {
			return docctx.DocumentContext{}, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return docctx.NewPDF(data)

	default:
		data, err := os.ReadFile(arg)
		if err != nil {
			return docctx.DocumentContext{}, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return docctx.NewText(string(data))
	}
}
