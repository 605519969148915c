// Package tts synthesises Korean speech through the OpenAI audio API,
// producing MP3 attachments for the audio and dictation exercises.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spencerchil/spencerbot/internal/drill"
)

// defaultModel is fast enough that synthesis does not dominate turn latency.
const defaultModel = oai.SpeechModelGPT4oMiniTTS

// defaultVoice works well for Korean.
const defaultVoice = oai.AudioSpeechNewParamsVoice("nova")

// accentInstruction is prepended to every input. The TTS model follows
// bracketed spoken-style directions in the input text.
const accentInstruction = "[Speak very slowly with a Korean accent] "

// Client implements drill.Speech using the OpenAI audio API.
type Client struct {
	client oai.Client
	model  oai.SpeechModel
	voice  oai.AudioSpeechNewParamsVoice
}

var _ drill.Speech = (*Client)(nil)

// config holds optional configuration for the client.
type config struct {
	model   string
	voice   string
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Client.
type Option func(*config)

// WithModel overrides the default speech model.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithVoice overrides the default voice.
func WithVoice(voice string) Option {
	return func(c *config) {
		c.voice = voice
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

// New constructs a new OpenAI-backed speech client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tts: apiKey must not be empty")
	}

	cfg := &config{}
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

	c := &Client{
		client: oai.NewClient(reqOpts...),
		model:  defaultModel,
		voice:  defaultVoice,
	}
	if cfg.model != "" {
		c.model = oai.SpeechModel(cfg.model)
	}
	if cfg.voice != "" {
		c.voice = oai.AudioSpeechNewParamsVoice(cfg.voice)
	}
	return c, nil
}

// Synthesize implements drill.Speech. Returns raw MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("tts: text must not be empty")
	}

	resp, err := c.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          c.model,
		Voice:          c.voice,
		Input:          accentInstruction + text,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: speech request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio body: %w", err)
	}
	return audio, nil
}
