package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/skurihin/autograder/internal/llm"
)

type Client struct {
	Response  string
	Responses map[string]string
	Error     error
	Delay     time.Duration
	Usage     llm.Usage

	mu         sync.Mutex
	CallCount  int
	LastSystem string
	LastPrompt string
	AllCalls   []LLMCall
}

type LLMCall struct {
	System string
	Prompt string
}

func New() *Client {
	return &Client{
		Response: `{"score": 75, "evidence": [], "strengths": [], "weaknesses": [], "suggestions": [], "severity": "minor"}`,
		Usage:    llm.Usage{InputTokens: 100, OutputTokens: 50},
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

// WithResponseFor maps a prompt substring to a response, so different
// criteria in one run can get different evaluations.
func (c *Client) WithResponseFor(promptContains, response string) *Client {
	if c.Responses == nil {
		c.Responses = make(map[string]string)
	}
	c.Responses[promptContains] = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) WithUsage(usage llm.Usage) *Client {
	c.Usage = usage
	return c
}

func (c *Client) Provider() string { return "mock" }

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, llm.Usage, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastSystem = system
	c.LastPrompt = prompt
	c.AllCalls = append(c.AllCalls, LLMCall{System: system, Prompt: prompt})
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", llm.Usage{}, ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", llm.Usage{}, c.Error
	}

	for substr, resp := range c.Responses {
		if substr != "" && strings.Contains(strings.ToLower(prompt), strings.ToLower(substr)) {
			return resp, c.Usage, nil
		}
	}

	return c.Response, c.Usage, nil
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastSystem = ""
	c.LastPrompt = ""
	c.AllCalls = nil
}

func (c *Client) Calls() []LLMCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LLMCall, len(c.AllCalls))
	copy(out, c.AllCalls)
	return out
}

var _ llm.Client = (*Client)(nil)
