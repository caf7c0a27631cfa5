// Package inferencetest provides scripted inference clients and systems for tests.
package inferencetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/labsight/labsight/internal/inference"
	"github.com/labsight/labsight/pkg/lifecycle"
)

// Call records one request made to a Client.
type Call struct {
	Prompt string
	Images []string
}

// Client answers prompts from a queue of responses and records every call.
// The call at index FailAt fails with Err. Once the queue is exhausted every
// call fails with Err, or with ErrEmptyResponse when Err is nil.
type Client struct {
	Name      string
	Responses []string
	Err       error
	FailAt    int

	mu    sync.Mutex
	calls []Call
}

// NewClient returns a Client that replies with responses in order.
func NewClient(responses ...string) *Client {
	return &Client{Name: "test-model", Responses: responses, FailAt: -1}
}

// Failing returns a Client whose call at index n fails with err.
func Failing(n int, err error, responses ...string) *Client {
	c := NewClient(responses...)
	c.FailAt = n
	c.Err = err
	return c
}

func (c *Client) Model() string {
	return c.Name
}

func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	return c.respond(ctx, Call{Prompt: prompt})
}

func (c *Client) Vision(ctx context.Context, prompt string, images ...string) (string, error) {
	return c.respond(ctx, Call{Prompt: prompt, Images: images})
}

// Calls returns a copy of the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Client) respond(ctx context.Context, call Call) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.calls)
	c.calls = append(c.calls, call)

	if c.Err != nil && n == c.FailAt {
		return "", fmt.Errorf("%w: %w", inference.ErrInference, c.Err)
	}
	if n >= len(c.Responses) {
		if c.Err != nil {
			return "", fmt.Errorf("%w: %w", inference.ErrInference, c.Err)
		}
		return "", fmt.Errorf("%w: %s", inference.ErrEmptyResponse, c.Name)
	}

	text := strings.TrimSpace(c.Responses[n])
	if text == "" {
		return "", fmt.Errorf("%w: %s", inference.ErrEmptyResponse, c.Name)
	}
	return text, nil
}

// System is an inference.System backed by two scripted clients.
type System struct {
	VisionClient *Client
	TextClient   *Client
	NotReady     bool
}

// NewSystem returns a ready System with the given clients.
func NewSystem(vision, text *Client) *System {
	return &System{VisionClient: vision, TextClient: text}
}

func (s *System) Vision() inference.Client { return s.VisionClient }
func (s *System) Text() inference.Client   { return s.TextClient }
func (s *System) Ready() bool              { return !s.NotReady }

func (s *System) Start(*lifecycle.Coordinator) error {
	return nil
}
