// Package docctx defines the canonical representation of the document under
// discussion. A DocumentContext is built once from raw user input and is
// immutable afterwards; every downstream request derives its framing from the
// active variant.
package docctx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidInput is returned when the discriminator and the payload's
// runtime type disagree. It is surfaced immediately and never sent remotely.
var ErrInvalidInput = errors.New("invalid document input")

// Kind discriminates the document context variants.
type Kind int

const (
	KindText Kind = iota
	KindPDF
	KindURL
)

// String returns the discriminator name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindURL:
		return "url"
	}
	return "unknown"
}

// ParseKind maps a discriminator string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, nil
	case "pdf":
		return KindPDF, nil
	case "url":
		return KindURL, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, s)
}

// DocumentContext is the closed sum over text, pdf and url documents.
// Exactly one variant is active; the zero value is invalid. Fields are
// unexported so a constructed context cannot be mutated.
type DocumentContext struct {
	kind    Kind
	content string
	valid   bool
}

// Kind returns the active variant.
func (c DocumentContext) Kind() Kind { return c.kind }

// Content returns the variant payload: raw text for KindText, base64 bytes
// for KindPDF, the URI string for KindURL.
func (c DocumentContext) Content() string { return c.content }

// IsZero reports whether the context was never constructed.
func (c DocumentContext) IsZero() bool { return !c.valid }

// New builds a DocumentContext from a discriminator and a raw payload.
// Accepted payload types per kind:
//
//	KindText: string
//	KindPDF:  []byte or io.Reader (the binary PDF payload)
//	KindURL:  string
//
// Any other combination fails with ErrInvalidInput.
func New(kind Kind, payload any) (DocumentContext, error) {
	switch kind {
	case KindText:
		s, ok := payload.(string)
		if !ok {
			return DocumentContext{}, fmt.Errorf("%w: text context requires a string payload, got %T", ErrInvalidInput, payload)
		}
		return NewText(s)

	case KindPDF:
		switch p := payload.(type) {
		case []byte:
			return NewPDF(p)
		case io.Reader:
			data, err := io.ReadAll(p)
			if err != nil {
				return DocumentContext{}, fmt.Errorf("failed to read pdf payload: %w", err)
			}
			return NewPDF(data)
		default:
			return DocumentContext{}, fmt.Errorf("%w: pdf context requires a file payload, got %T", ErrInvalidInput, payload)
		}

	case KindURL:
		s, ok := payload.(string)
		if !ok {
			return DocumentContext{}, fmt.Errorf("%w: url context requires a string payload, got %T", ErrInvalidInput, payload)
		}
		return NewURL(s)
	}

	return DocumentContext{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidInput, kind)
}

// NewText builds a text context from pasted text, unmodified.
func NewText(text string) (DocumentContext, error) {
	if text == "" {
		return DocumentContext{}, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	return DocumentContext{kind: KindText, content: text, valid: true}, nil
}

// NewPDF builds a pdf context from a binary payload. The payload is base64
// encoded; the encoding is total for any byte sequence.
func NewPDF(data []byte) (DocumentContext, error) {
	if len(data) == 0 {
		return DocumentContext{}, fmt.Errorf("%w: empty pdf payload", ErrInvalidInput)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return DocumentContext{kind: KindPDF, content: encoded, valid: true}, nil
}

// NewPDFFromBase64 builds a pdf context from an already-encoded payload,
// stripping any data-URI metadata prefix so only the encoded bytes remain.
func NewPDFFromBase64(encoded string) (DocumentContext, error) {
	encoded = StripDataURIPrefix(encoded)
	if encoded == "" {
		return DocumentContext{}, fmt.Errorf("%w: empty pdf payload", ErrInvalidInput)
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return DocumentContext{}, fmt.Errorf("%w: payload is not valid base64: %v", ErrInvalidInput, err)
	}
	return DocumentContext{kind: KindPDF, content: encoded, valid: true}, nil
}

// NewURL builds a url context. The URI is never fetched by this layer; it is
// forwarded to the remote capability for retrieval.
func NewURL(uri string) (DocumentContext, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return DocumentContext{}, fmt.Errorf("%w: empty url", ErrInvalidInput)
	}
	return DocumentContext{kind: KindURL, content: uri, valid: true}, nil
}

// PDFBytes decodes the base64 payload of a pdf context back into raw bytes.
func (c DocumentContext) PDFBytes() ([]byte, error) {
	if c.kind != KindPDF {
		return nil, fmt.Errorf("%w: not a pdf context", ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(c.content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pdf payload: %w", err)
	}
	return data, nil
}

// StripDataURIPrefix removes a "data:<mime>;base64," prefix if present,
// retaining only the encoded payload bytes.
func StripDataURIPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
