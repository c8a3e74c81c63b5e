package imagestudio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Validation errors
var (
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
	ErrEmptyImageData  = errors.New("image data cannot be empty")
	ErrInvalidMIMEType = errors.New("invalid or unsupported MIME type")
	ErrImageTooLarge   = errors.New("image data exceeds maximum size")
)

// MaxImageSize is the maximum allowed upload size in bytes (20MB).
const MaxImageSize = 20 * 1024 * 1024

// ValidMIMETypes contains the supported image MIME types
var ValidMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ValidatePrompt rejects prompts that are empty after trimming whitespace.
// field names the input for the error; message is the user-facing text.
func ValidatePrompt(field, prompt, message string) error {
	if strings.TrimSpace(prompt) == "" {
		return &ValidationError{Field: field, Message: message, Err: ErrEmptyPrompt}
	}
	return nil
}

// ValidateInputImage validates an uploaded image. A nil image is reported
// as missing.
func ValidateInputImage(field string, img *InputImage, message string) error {
	if img == nil || len(img.Data) == 0 {
		return &ValidationError{Field: field, Message: message, Err: ErrEmptyImageData}
	}

	if len(img.Data) > MaxImageSize {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Image is too large (max %d MB).", MaxImageSize/(1024*1024)),
			Err:     fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(img.Data), MaxImageSize),
		}
	}

	if !ValidMIMETypes[img.MIMEType] {
		return &ValidationError{
			Field:   field,
			Message: "Unsupported image type. Upload a PNG, JPEG, WebP or GIF image.",
			Err:     fmt.Errorf("%w: %q", ErrInvalidMIMEType, img.MIMEType),
		}
	}

	return nil
}

// DetectMIMEType returns the MIME type of data, trusting declared only
// when it is a supported image type.
func DetectMIMEType(data []byte, declared string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if ValidMIMETypes[declared] {
		return declared
	}
	return mimetype.Detect(data).String()
}

// NewInputImage builds an InputImage from uploaded bytes, sniffing the
// MIME type when the declared one is missing or generic.
func NewInputImage(data []byte, declared string) *InputImage {
	if len(data) == 0 {
		return nil
	}
	return &InputImage{Data: data, MIMEType: DetectMIMEType(data, declared)}
}
