package skills

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("no model API key configured")

// CompletionRequest is a single chat-style prompt.
type CompletionRequest struct {
	APIKey      string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
	// ListOutput asks the model for a JSON array of strings.
	ListOutput bool
}

// Completer submits a prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// GeminiCompleter talks to the Gemini API. Clients are created lazily per API key
// because each session may bring its own credential.
type GeminiCompleter struct {
	model      string
	defaultKey string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGeminiCompleter(model, defaultKey string) *GeminiCompleter {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiCompleter{
		model:      model,
		defaultKey: defaultKey,
		clients:    make(map[string]*genai.Client),
	}
}

func (g *GeminiCompleter) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = g.defaultKey
	}
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	client, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return "", errors.Wrapf(err, "generate content with %s", g.model)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

func generateConfig(req CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
		// thinking tokens count against MaxOutputTokens
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.ListOutput {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}
	return config
}
