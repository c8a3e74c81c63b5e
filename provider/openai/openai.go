// Package openai provides a text-only generator over any OpenAI-compatible
// chat completions endpoint. It can stand in for the Gemini text model
// during prompt enhancement and pose description.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dev-x-infinite/imagestudio"
)

const opGenerateText = "generate_text"

// TextClient implements imagestudio.TextGenerator.
type TextClient struct {
	client *openai.Client
}

var _ imagestudio.TextGenerator = (*TextClient)(nil)

// Config configures a TextClient.
type Config struct {
	APIKey string
	// BaseURL points at an OpenAI-compatible API, e.g. "https://api.openai.com/v1".
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a TextClient.
func New(config Config) *TextClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	return &TextClient{client: openai.NewClientWithConfig(clientConfig)}
}

// GenerateText sends items as one multi-part user message. Images are
// sent inline as base64 data URLs.
func (c *TextClient) GenerateText(ctx context.Context, model string, items []imagestudio.Item) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: toParts(items),
			},
		},
	})
	if err != nil {
		return "", classifyError(err, model)
	}

	if len(resp.Choices) == 0 {
		return "", &imagestudio.UpstreamError{
			Op:    opGenerateText,
			Model: model,
			Err:   fmt.Errorf("%w: no choices", imagestudio.ErrMalformedResponse),
		}
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &imagestudio.UpstreamError{
			Op:    opGenerateText,
			Model: model,
			Err:   fmt.Errorf("%w: empty message", imagestudio.ErrMalformedResponse),
		}
	}
	return text, nil
}

func toParts(items []imagestudio.Item) []openai.ChatMessagePart {
	parts := make([]openai.ChatMessagePart, 0, len(items))
	for _, it := range items {
		if it.IsImage() {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: dataURL(it.Image),
				},
			})
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: it.Text,
		})
	}
	return parts
}

func dataURL(img *imagestudio.InputImage) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func classifyError(err error, model string) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusTooManyRequests {
		err = &imagestudio.RateLimitError{
			RetryAfter: time.Minute,
			LimitType:  "requests",
			Model:      model,
			Err:        err,
		}
	}
	return &imagestudio.UpstreamError{Op: opGenerateText, Model: model, Err: err}
}
