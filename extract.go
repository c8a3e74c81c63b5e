package imagestudio

import "fmt"

// Extraction is the result of scanning a response for images. When Found
// is false, Reason says which level of the structure was missing.
type Extraction struct {
	Images []ExtractedImage
	Reason string
}

// Found reports whether at least one image was extracted.
func (e Extraction) Found() bool {
	return len(e.Images) > 0
}

// ExtractImages returns one image per part of the first candidate that
// carries non-empty inline data, in part order. A missing or malformed
// structure at any level yields an empty Extraction, never an error:
// safety refusals and text-only answers are ordinary responses.
func ExtractImages(resp *RawResponse) Extraction {
	content, reason := firstContent(resp)
	if content == nil {
		return Extraction{Reason: reason}
	}

	var images []ExtractedImage
	for _, part := range content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		images = append(images, ExtractedImage{
			Data:     part.InlineData.Data,
			MIMEType: part.InlineData.MIMEType,
		})
	}

	if len(images) == 0 {
		return Extraction{Reason: "no inline image data in response parts"}
	}
	return Extraction{Images: images}
}

// FirstText returns the text of the first content part of the first
// candidate.
func FirstText(resp *RawResponse) (string, error) {
	content, reason := firstContent(resp)
	if content == nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, reason)
	}
	part := content.Parts[0]
	if part == nil || part.Text == "" {
		return "", fmt.Errorf("%w: first part carries no text", ErrMalformedResponse)
	}
	return part.Text, nil
}

func firstContent(resp *RawResponse) (*CandidateContent, string) {
	switch {
	case resp == nil:
		return nil, "nil response"
	case len(resp.Candidates) == 0:
		if resp.BlockReason != "" {
			return nil, "prompt blocked: " + resp.BlockReason
		}
		return nil, "no candidates"
	case resp.Candidates[0] == nil:
		return nil, "nil candidate"
	case resp.Candidates[0].Content == nil:
		if fr := resp.Candidates[0].FinishReason; fr != "" {
			return nil, "no content, finish reason " + fr
		}
		return nil, "no content"
	case len(resp.Candidates[0].Content.Parts) == 0:
		return nil, "no parts"
	}
	return resp.Candidates[0].Content, ""
}
