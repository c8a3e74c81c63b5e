package imagestudio

import "context"

// TextGenerator produces text from mixed text and image input.
// It backs prompt enhancement and pose description.
type TextGenerator interface {
	// GenerateText returns the text of the first content part of the first
	// candidate. Failures are reported as *UpstreamError.
	GenerateText(ctx context.Context, model string, items []Item) (string, error)
}

// ImageGenerator sends a request to an image-capable model and returns the
// raw response for ExtractImages to parse.
type ImageGenerator interface {
	// GenerateImage does not retry. Failures are reported as *UpstreamError.
	GenerateImage(ctx context.Context, model string, items []Item) (*RawResponse, error)
}

// GenerationClient is the thin wrapper around the external generation API.
// Every flow talks to the API exclusively through it.
type GenerationClient interface {
	TextGenerator
	ImageGenerator
}

// composite joins two independent generators into one GenerationClient.
type composite struct {
	TextGenerator
	ImageGenerator
}

// Compose returns a GenerationClient that routes text requests to text and
// image requests to image. Used when enhancement runs on a different
// provider than image generation.
func Compose(text TextGenerator, image ImageGenerator) GenerationClient {
	return composite{TextGenerator: text, ImageGenerator: image}
}
