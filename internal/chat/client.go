// Package chat proxies user messages to a generative model, keeping an
// in-memory conversation history per session id.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("chat client not initialised")

const systemPrompt = "You are a friendly health assistant. Answer general health " +
	"questions clearly and briefly, and remind users to consult a doctor for " +
	"anything serious."

// Client wraps the OpenAI SDK with per-session conversation state.
type Client struct {
	client *openai.Client
	model  openai.ChatModel

	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessageParamUnion
}

// New returns a chat client when apiKey is provided, otherwise an
// unconfigured client whose Send fails with ErrClientNotInitialised.
func New(apiKey string) *Client {
	c := &Client{sessions: make(map[string][]openai.ChatCompletionMessageParamUnion)}
	if apiKey == "" {
		return c
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c.client = &client
	c.model = openai.ChatModelGPT4oMini
	return c
}

// Configured reports whether the client can reach the model API.
func (c *Client) Configured() bool {
	return c.client != nil
}

// Send appends message to the session's history, requests a completion, and
// records the reply so follow-up messages keep their context.
func (c *Client) Send(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	if c.client == nil {
		return "", ErrClientNotInitialised
	}
	if sessionID == "" {
		sessionID = "default"
	}

	history := c.snapshot(sessionID)
	history = append(history, openai.UserMessage(message))

	req := openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            history,
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(400),
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.record(sessionID, append(history, openai.AssistantMessage(reply)))
	return reply, nil
}

// Reset drops a session's history.
func (c *Client) Reset(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

func (c *Client) snapshot(sessionID string) []openai.ChatCompletionMessageParamUnion {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.sessions[sessionID]
	if !ok {
		stored = []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}
	}
	history := make([]openai.ChatCompletionMessageParamUnion, len(stored))
	copy(history, stored)
	return history
}

func (c *Client) record(sessionID string, history []openai.ChatCompletionMessageParamUnion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = history
}
