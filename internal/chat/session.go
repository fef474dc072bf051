// Package chat manages context-seeded, multi-turn conversation with the
// model about one document. The transport is stateless: every turn resends
// the full history, re-seeded with the document framing.
package chat

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"docent/internal/docctx"
	"docent/internal/gemini"
	"docent/internal/logging"
)

// Apology is the fixed user-facing reply when a turn fails in transit.
// Chat failures are absorbed, not raised: retrying a conversational turn
// risks duplicate side effects in a stateful dialogue.
const Apology = "I'm sorry, I ran into a problem answering that. Please ask again."

// seedAcknowledgment is the fixed model-role confirmation injected after the
// document framing turn. The seed turns are visible to the model but are
// never rendered as user-authored content.
const seedAcknowledgment = "Understood. I have read the document and I'm ready to answer questions about it."

// systemInstruction is attached once per session and constrains output to
// plain prose.
const systemInstruction = "You are a helpful research assistant discussing a document with the user. " +
	"Respond in plain, unformatted prose. Do not use markdown, lists, headings, " +
	"bullet points, emphasis markers, or any other markup."

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the transcript. The history is append-only;
// messages are never deleted or edited after creation.
type Message struct {
	ID      string
	Role    Role
	Text    string
	IsError bool
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Text: text}
}

// NewModelMessage creates a model-authored message.
func NewModelMessage(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleModel, Text: text}
}

// NewErrorMessage creates an error-flagged model message.
func NewErrorMessage(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleModel, Text: text, IsError: true}
}

// Session sends turns about one document context. The seed turns are built
// once at session start and prepended to every outbound request.
type Session struct {
	gen   gemini.Generator
	model string
	seed  []*genai.Content
}

// NewSession starts a chat session over a document context.
func NewSession(gen gemini.Generator, model string, dc docctx.DocumentContext) (*Session, error) {
	docParts, err := gemini.DocumentParts(dc)
	if err != nil {
		return nil, err
	}

	parts := append([]*genai.Part{genai.NewPartFromText(
		"This is the document our conversation is about:",
	)}, docParts...)

	seed := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
		genai.NewContentFromText(seedAcknowledgment, genai.RoleModel),
	}

	logging.Chat("NewSession: model=%s context=%s", model, dc.Kind())
	return &Session{gen: gen, model: model, seed: seed}, nil
}

// SendTurn sends one conversational turn. The outbound request is rebuilt
// from scratch: seed turns, then the caller-supplied history in order, then
// the new user message. The returned bool reports success; on failure the
// returned string is the fixed Apology and the caller is expected to flag
// the corresponding transcript message as an error.
//
// SendTurn is deliberately not wrapped by the retry policy.
func (s *Session) SendTurn(ctx context.Context, history []Message, newMessage string) (string, bool) {
	contents := make([]*genai.Content, 0, len(s.seed)+len(history)+1)
	contents = append(contents, s.seed...)
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Text, genai.Role(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(newMessage, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		logging.ChatWarn("SendTurn: transport failure, returning apology: %v", err)
		return Apology, false
	}

	text := gemini.ResponseText(resp)
	if text == "" {
		logging.ChatWarn("SendTurn: empty reply, returning apology")
		return Apology, false
	}

	logging.Chat("SendTurn: history=%d reply_len=%d", len(history), len(text))
	return text, true
}
