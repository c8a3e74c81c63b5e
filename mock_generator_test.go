package imagestudio

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of GenerationClient that records
// every call it receives.
type MockClient struct {
	GenerateTextFunc  func(ctx context.Context, model string, items []Item) (string, error)
	GenerateImageFunc func(ctx context.Context, model string, items []Item) (*RawResponse, error)

	mu         sync.Mutex
	textCalls  [][]Item
	imageCalls [][]Item
}

func (m *MockClient) GenerateText(ctx context.Context, model string, items []Item) (string, error) {
	m.mu.Lock()
	m.textCalls = append(m.textCalls, items)
	m.mu.Unlock()

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, model, items)
	}
	return "", nil
}

func (m *MockClient) GenerateImage(ctx context.Context, model string, items []Item) (*RawResponse, error) {
	m.mu.Lock()
	m.imageCalls = append(m.imageCalls, items)
	m.mu.Unlock()

	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, model, items)
	}
	return &RawResponse{}, nil
}

func (m *MockClient) TextCalls() [][]Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textCalls
}

func (m *MockClient) ImageCalls() [][]Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imageCalls
}

// imageResponse builds a single-candidate response whose parts are the
// given images, each preceded by a short text part.
func imageResponse(images ...ExtractedImage) *RawResponse {
	parts := make([]*ResponsePart, 0, 2*len(images))
	for _, img := range images {
		parts = append(parts,
			&ResponsePart{Text: "Here is your image."},
			&ResponsePart{InlineData: &Blob{Data: img.Data, MIMEType: img.MIMEType}},
		)
	}
	return &RawResponse{Candidates: []*Candidate{{Content: &CandidateContent{Parts: parts}}}}
}

// textOnlyResponse builds a response that carries no image data.
func textOnlyResponse(text string) *RawResponse {
	return &RawResponse{Candidates: []*Candidate{{
		Content: &CandidateContent{Parts: []*ResponsePart{{Text: text}}},
	}}}
}

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\nfake-png")
	jpegBytes = []byte("\xff\xd8\xff\xe0fake-jpeg")
)

func testPNG() *InputImage {
	return &InputImage{Data: pngBytes, MIMEType: "image/png"}
}

func testJPEG() *InputImage {
	return &InputImage{Data: jpegBytes, MIMEType: "image/jpeg"}
}
