package imagestudio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedResponse is returned when a response lacks the expected
	// candidates/content/parts structure.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoImageData is the cause carried by EmptyResultError.
	ErrNoImageData = errors.New("no image data found in model response")

	// ErrStorageNotConfigured is returned when saving is attempted
	// without a storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")

	// ErrClientNotConfigured is returned by flows run without a client.
	ErrClientNotConfigured = errors.New("generation client not configured")
)

// ValidationError reports a missing or unusable input. It is returned
// before any API call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UpstreamError is any failure of a call to the external API: auth,
// quota, transport or a malformed response.
type UpstreamError struct {
	// Op is the logical operation, "generate_text" or "generate_image".
	Op    string
	Model string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EmptyResultError means the call succeeded but carried no image.
type EmptyResultError struct {
	Kind   Kind
	Reason string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Kind, ErrNoImageData, e.Reason)
}

func (e *EmptyResultError) Unwrap() error {
	return ErrNoImageData
}

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsUpstreamError checks if an error is an UpstreamError.
func IsUpstreamError(err error) bool {
	var uErr *UpstreamError
	return errors.As(err, &uErr)
}

// IsEmptyResultError checks if an error is an EmptyResultError.
func IsEmptyResultError(err error) bool {
	var eErr *EmptyResultError
	return errors.As(err, &eErr)
}

var emptyResultMessages = map[Kind]string{
	KindTextToImage:  "No image returned. Try a more specific prompt.",
	KindSimpleEdit:   "No edited image returned. Try more precise instructions.",
	KindPoseTransfer: "No result image returned. Try a clearer reference pose.",
}

var upstreamPrefixes = map[string]string{
	stageGenerate:       "Generation error",
	stageEdit:           "Edit error",
	stagePoseExtraction: "Pose extraction failed",
	stagePoseApply:      "Pose transfer error",
}

// StageError attaches the flow stage to an UpstreamError so the user
// message can name what failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// UserMessage renders err as the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.Message != "" {
		return vErr.Message
	}

	var eErr *EmptyResultError
	if errors.As(err, &eErr) {
		if msg, ok := emptyResultMessages[eErr.Kind]; ok {
			return msg
		}
		return "No image data found in model response. Try adjusting your prompt."
	}

	var sErr *StageError
	if errors.As(err, &sErr) {
		if prefix, ok := upstreamPrefixes[sErr.Stage]; ok {
			return fmt.Sprintf("%s: %v", prefix, detail(sErr.Err))
		}
	}

	return detail(err).Error()
}

// detail strips the UpstreamError envelope so the raw provider message
// is what the user sees.
func detail(err error) error {
	var uErr *UpstreamError
	if errors.As(err, &uErr) && uErr.Err != nil {
		return uErr.Err
	}
	return err
}
