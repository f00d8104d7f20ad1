// Package openai provides an illustration provider backed by the OpenAI
// image generation API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/readling/readling/pkg/provider/art"
)

// stylePrefix is prepended to every page prompt so illustrations across a
// book stay visually consistent and age-appropriate.
const stylePrefix = "Children's picture-book illustration, soft colors, friendly style: "

// Provider implements art.Provider using the OpenAI image API.
type Provider struct {
	client oai.Client
	model  oai.ImageModel
	size   oai.ImageGenerateParamsSize
}

// Compile-time interface assertion.
var _ art.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
	size    oai.ImageGenerateParamsSize
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout. Image generation is slow;
// callers that set this should allow at least a minute.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithSize overrides the generated image size. Default: 1024x1024.
func WithSize(size oai.ImageGenerateParamsSize) Option {
	return func(c *config) {
		c.size = size
	}
}

// New constructs a new OpenAI illustration Provider. model is the image model
// name (e.g., "dall-e-3").
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai art: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai art: model must not be empty")
	}

	cfg := &config{size: oai.ImageGenerateParamsSize1024x1024}
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

	return &Provider{
		client: oai.NewClient(reqOpts...),
		model:  oai.ImageModel(model),
		size:   cfg.size,
	}, nil
}

// Illustrate implements art.Provider.
func (p *Provider) Illustrate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("openai art: prompt must not be empty")
	}

	resp, err := p.client.Images.Generate(ctx, oai.ImageGenerateParams{
		Prompt:         stylePrefix + prompt,
		Model:          p.model,
		Size:           p.size,
		ResponseFormat: oai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("openai art: generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("openai art: empty image response")
	}
	return resp.Data[0].URL, nil
}
