package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-x-infinite/imagestudio"
)

type MockGenerationClient struct {
	mock.Mock
}

func (m *MockGenerationClient) GenerateText(ctx context.Context, model string, items []imagestudio.Item) (string, error) {
	args := m.Called(ctx, model, items)
	return args.String(0), args.Error(1)
}

func (m *MockGenerationClient) GenerateImage(ctx context.Context, model string, items []imagestudio.Item) (*imagestudio.RawResponse, error) {
	args := m.Called(ctx, model, items)
	resp, _ := args.Get(0).(*imagestudio.RawResponse)
	return resp, args.Error(1)
}

func pngResponse(data []byte) *imagestudio.RawResponse {
	return &imagestudio.RawResponse{Candidates: []*imagestudio.Candidate{{
		Content: &imagestudio.CandidateContent{Parts: []*imagestudio.ResponsePart{
			{Text: "Here you go."},
			{InlineData: &imagestudio.Blob{Data: data, MIMEType: "image/png"}},
		}},
	}}}
}
