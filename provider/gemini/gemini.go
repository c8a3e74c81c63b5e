// Package gemini provides a GenerationClient backed by Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/dev-x-infinite/imagestudio"
)

const (
	opGenerateText  = "generate_text"
	opGenerateImage = "generate_image"
)

// GeminiClient implements imagestudio.GenerationClient using the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// Ensure GeminiClient implements GenerationClient.
var _ imagestudio.GenerationClient = (*GeminiClient)(nil)

// Config configures a GeminiClient.
type Config struct {
	// APIKey for the Gemini API. If empty, the SDK reads GOOGLE_API_KEY
	// or GEMINI_API_KEY.
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the transport used by the SDK.
	HTTPClient *http.Client
}

// New creates a new GeminiClient. No request is made, so an invalid key
// only surfaces on the first call.
func New(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config == nil {
		config = &Config{}
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.HTTPClient,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// NewWithAPIKey creates a client for the Gemini API with an API key.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiClient, error) {
	return New(ctx, &Config{APIKey: apiKey})
}

// GenerateText sends items to a text model and returns the first text
// part of the first candidate.
func (g *GeminiClient) GenerateText(ctx context.Context, model string, items []imagestudio.Item) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, toContents(items), nil)
	if err != nil {
		return "", classifyError(err, opGenerateText, model)
	}

	text, err := imagestudio.FirstText(fromResponse(result))
	if err != nil {
		return "", &imagestudio.UpstreamError{Op: opGenerateText, Model: model, Err: err}
	}
	return text, nil
}

// GenerateImage sends items to an image model with text and image output
// enabled and returns the response untouched.
func (g *GeminiClient) GenerateImage(ctx context.Context, model string, items []imagestudio.Item) (*imagestudio.RawResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	result, err := g.client.Models.GenerateContent(ctx, model, toContents(items), config)
	if err != nil {
		return nil, classifyError(err, opGenerateImage, model)
	}
	return fromResponse(result), nil
}

// Catalogue lists the Gemini models. The first text and first image
// entries are the defaults.
func Catalogue() []imagestudio.ModelInfo {
	return []imagestudio.ModelInfo{
		FlashInfo,
		NanoBananaInfo,
		NanoBananaProInfo,
	}
}

// toContents builds a single user turn, keeping item order.
func toContents(items []imagestudio.Item) []*genai.Content {
	parts := make([]*genai.Part, 0, len(items))
	for _, it := range items {
		if it.IsImage() {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					Data:     it.Image.Data,
					MIMEType: it.Image.MIMEType,
				},
			})
			continue
		}
		parts = append(parts, genai.NewPartFromText(it.Text))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// fromResponse converts the SDK response into the provider-neutral shape.
// Nil candidates, contents and parts are carried over as nil.
func fromResponse(result *genai.GenerateContentResponse) *imagestudio.RawResponse {
	if result == nil {
		return nil
	}

	raw := &imagestudio.RawResponse{
		Candidates: make([]*imagestudio.Candidate, 0, len(result.Candidates)),
	}
	if result.PromptFeedback != nil {
		raw.BlockReason = string(result.PromptFeedback.BlockReason)
	}

	for _, c := range result.Candidates {
		if c == nil {
			raw.Candidates = append(raw.Candidates, nil)
			continue
		}
		cand := &imagestudio.Candidate{FinishReason: string(c.FinishReason)}
		if c.Content != nil {
			cand.Content = &imagestudio.CandidateContent{
				Parts: make([]*imagestudio.ResponsePart, 0, len(c.Content.Parts)),
			}
			for _, p := range c.Content.Parts {
				cand.Content.Parts = append(cand.Content.Parts, fromPart(p))
			}
		}
		raw.Candidates = append(raw.Candidates, cand)
	}
	return raw
}

func fromPart(p *genai.Part) *imagestudio.ResponsePart {
	if p == nil {
		return nil
	}
	part := &imagestudio.ResponsePart{Text: p.Text, Thought: p.Thought}
	if p.InlineData != nil {
		part.InlineData = &imagestudio.Blob{
			Data:     p.InlineData.Data,
			MIMEType: p.InlineData.MIMEType,
		}
	}
	return part
}

// classifyError wraps an SDK error in an UpstreamError. Quota errors
// (HTTP 429 or RESOURCE_EXHAUSTED) additionally carry a RateLimitError.
func classifyError(err error, op, model string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return &imagestudio.UpstreamError{
			Op:    op,
			Model: model,
			Err: &imagestudio.RateLimitError{
				RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
				LimitType:  "requests",
				Model:      model,
				Err:        err,
			},
		}
	}
	return &imagestudio.UpstreamError{Op: op, Model: model, Err: err}
}
