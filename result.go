package imagestudio

// RawResponse is the provider-neutral shape of a generation response.
// Every level is optional: providers copy what the API returned without
// filling gaps, so ExtractImages can tell "absent" from "empty".
type RawResponse struct {
	Candidates []*Candidate

	// BlockReason is set when the prompt itself was rejected.
	BlockReason string
}

// Candidate is one response alternative.
type Candidate struct {
	Content      *CandidateContent
	FinishReason string
}

// CandidateContent holds the parts of a candidate.
type CandidateContent struct {
	Parts []*ResponsePart
}

// ResponsePart is a single content part. It may carry text, inline binary
// data, or both.
type ResponsePart struct {
	Text       string
	Thought    bool
	InlineData *Blob
}

// Blob is inline binary data with its MIME type.
type Blob struct {
	Data     []byte
	MIMEType string
}

// ExtractedImage is an image payload pulled out of a response.
type ExtractedImage struct {
	// Data contains the raw image bytes
	Data []byte

	// MIMEType of the image as reported by the API
	MIMEType string
}

// RenderedImage is an extracted image ready to display and download.
type RenderedImage struct {
	ExtractedImage

	// Filename is the suggested download name, e.g. "generated_image_1.png".
	Filename string
}

// Outcome is the success payload of a flow.
type Outcome struct {
	Kind Kind

	// Prompt is the text actually used: the enhanced prompt when
	// enhancement succeeded, the pose description for Pose Transfer.
	Prompt string

	// Enhanced is true when the prompt was rewritten by the text model.
	Enhanced bool

	// Warnings carries non-fatal notices such as a failed enhancement.
	Warnings []string

	Images []RenderedImage

	// Records are the history entries appended for this invocation.
	Records []HistoryRecord
}
