package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docent/internal/analysis"
	"docent/internal/docctx"
)

func TestResolveDocument_URL(t *testing.T) {
	dc, err := resolveDocument("https://example.org/paper")
	require.NoError(t, err)
	assert.Equal(t, docctx.KindURL, dc.Kind())
	assert.Equal(t, "https://example.org/paper", dc.Content())
}

func TestResolveDocument_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some findings"), 0o644))

	dc, err := resolveDocument(path)
	require.NoError(t, err)
	assert.Equal(t, docctx.KindText, dc.Kind())
	assert.Equal(t, "some findings", dc.Content())
}

func TestResolveDocument_PDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	dc, err := resolveDocument(path)
	require.NoError(t, err)
	assert.Equal(t, docctx.KindPDF, dc.Kind())

	data, err := dc.PDFBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestResolveDocument_MissingFile(t *testing.T) {
	_, err := resolveDocument(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestAudioMIMEType(t *testing.T) {
	// Explicit mappings must win over the host mime database, which may
	// resolve .wav to audio/x-wav.
	assert.Equal(t, "audio/wav", audioMIMEType("clip.wav"))
	assert.Equal(t, "audio/wav", audioMIMEType("CLIP.WAV"))
	assert.Equal(t, "audio/mpeg", audioMIMEType("clip.mp3"))
	assert.Equal(t, "audio/ogg", audioMIMEType("clip.ogg"))
	assert.Equal(t, "audio/webm", audioMIMEType("clip.webm"))
	assert.Equal(t, "audio/webm", audioMIMEType("clip.unknownext"))
}

func TestFormatAnalysis(t *testing.T) {
	out := formatAnalysis(&analysis.Result{
		Summary: "A short summary.",
		Glossary: []analysis.GlossaryEntry{
			{Term: "osmosis", Definition: "movement of water across a membrane"},
		},
		KeyInsights: []string{"Water moves toward higher solute concentration."},
	})

	assert.Contains(t, out, "# Summary")
	assert.Contains(t, out, "A short summary.")
	assert.Contains(t, out, "**osmosis**: movement of water across a membrane")
	assert.Contains(t, out, "- Water moves toward higher solute concentration.")
}
