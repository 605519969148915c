// Package gpt implements exercise generation and grading against the OpenAI
// chat completion API. All calls run in JSON mode; model output is stripped
// of stray markdown fences and validated into the typed payload union before
// it reaches the session engine.
package gpt

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/drill"
)

// defaultModel is used when no model override is given.
const defaultModel = "gpt-5-mini"

// maxPromptWords caps how many sampled words are interpolated into a prompt.
const maxPromptWords = 5

// Client implements drill.Generator and drill.Grader using the OpenAI API.
type Client struct {
	client oai.Client
	model  string
}

var (
	_ drill.Generator = (*Client)(nil)
	_ drill.Grader    = (*Client)(nil)
)

// config holds optional configuration for the client.
type config struct {
	model   string
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Client.
type Option func(*config)

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI-backed Client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gpt: apiKey must not be empty")
	}

	cfg := &config{model: defaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Client{client: oai.NewClient(reqOpts...), model: cfg.model}, nil
}

// completeJSON runs one JSON-mode chat completion and returns the raw body
// with any markdown fences removed.
func (c *Client) completeJSON(ctx context.Context, system, user string) ([]byte, error) {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpt: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("gpt: empty choices in response")
	}
	return []byte(stripFences(resp.Choices[0].Message.Content)), nil
}

// fenceRe matches markdown code fences that some models wrap around JSON
// despite instructions not to.
var fenceRe = regexp.MustCompile("(?m)^```json\\s*|^```\\s*|```$")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// koreanTerms joins the Korean side of up to maxPromptWords sampled words
// for prompt interpolation.
func koreanTerms(words []anki.Word) string {
	n := min(len(words), maxPromptWords)
	terms := make([]string, 0, n)
	for _, w := range words[:n] {
		terms = append(terms, w.Korean)
	}
	return strings.Join(terms, ", ")
}
