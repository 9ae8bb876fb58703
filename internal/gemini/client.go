// Package gemini wraps the generative-language API used for chat turns,
// title synthesis and credential validation.
//
// The boundary is two plain request/response calls: Chat takes the
// ordered turn history plus a system instruction, Generate takes a single
// prompt. Any non-success outcome is an error; Classify sorts errors into
// the user-facing taxonomy.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the model used for all calls unless configured.
const DefaultModel = "gemini-2.5-flash"

// Message roles as the API expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one prior exchange entry in the conversation history.
type Turn struct {
	Role string // RoleUser or RoleModel
	Text string
}

// Generator is the surface the conversation manager depends on.
type Generator interface {
	// Chat sends message with the given history and system instruction
	// and returns the model's text.
	Chat(ctx context.Context, history []Turn, system, message string) (string, error)
	// Generate is the stateless single-prompt variant.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is the Generator backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a client for the given credential. model may be empty
// to use DefaultModel.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{client: c, model: model, logger: logger}, nil
}

// Chat implements Generator.
func (c *Client) Chat(ctx context.Context, history []Turn, system, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}

	c.logger.Debug("chat turn completed", "history_len", len(history))
	return resp.Text(), nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return resp.Text(), nil
}

// ErrorKind is the user-facing failure classification.
type ErrorKind int

const (
	// KindTransient covers everything not otherwise classified; the turn
	// fails with a generic apology and the user may simply resend.
	KindTransient ErrorKind = iota
	// KindInvalidCredential marks a rejected API key.
	KindInvalidCredential
	// KindQuota marks quota exhaustion on an otherwise valid key.
	KindQuota
)

// Classify sorts an API error into the taxonomy. Pure function.
func Classify(err error) ErrorKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return KindQuota
		case 400, 401, 403:
			return KindInvalidCredential
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return KindQuota
	}
	return KindTransient
}
