package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"docent/internal/docctx"
)

// DocumentParts frames a document context as request content parts. The
// variant determines the framing: pdf becomes an inline binary attachment,
// url becomes a textual reference the backend retrieves itself, text is
// passed through as-is. Analysis and chat both use this framing so the model
// sees the document identically on every surface.
func DocumentParts(dc docctx.DocumentContext) ([]*genai.Part, error) {
	switch dc.Kind() {
	case docctx.KindText:
		return []*genai.Part{genai.NewPartFromText(dc.Content())}, nil

	case docctx.KindPDF:
		data, err := dc.PDFBytes()
		if err != nil {
			return nil, fmt.Errorf("failed to frame pdf context: %w", err)
		}
		return []*genai.Part{genai.NewPartFromBytes(data, "application/pdf")}, nil

	case docctx.KindURL:
		return []*genai.Part{genai.NewPartFromText(
			"Use the document at the following URL as the subject of this conversation: " + dc.Content(),
		)}, nil
	}

	return nil, fmt.Errorf("%w: cannot frame context of kind %v", docctx.ErrInvalidInput, dc.Kind())
}
