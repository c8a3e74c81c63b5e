package imagestudio

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies which flow produced a result.
type Kind string

const (
	KindTextToImage  Kind = "text_to_image"
	KindSimpleEdit   Kind = "simple_edit"
	KindPoseTransfer Kind = "pose_transfer"
)

var kindLabels = map[Kind]string{
	KindTextToImage:  "Text→Image",
	KindSimpleEdit:   "Simple Edit",
	KindPoseTransfer: "Pose Transfer",
}

// outputBases are the download basenames used for freshly rendered results.
var outputBases = map[Kind]string{
	KindTextToImage:  "generated_image",
	KindSimpleEdit:   "edited_image",
	KindPoseTransfer: "pose_transfer",
}

// Label returns the human readable name shown in captions.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Slug returns a lowercase, filesystem friendly form of the label,
// e.g. "Simple Edit" -> "simple_edit", "Text→Image" -> "text_to_image".
func (k Kind) Slug() string {
	s := cases.Lower(language.Und).String(k.Label())
	s = strings.ReplaceAll(s, "→", "_to_")
	return strings.ReplaceAll(s, " ", "_")
}

// OutputBase returns the basename for downloads of a flow's output.
func (k Kind) OutputBase() string {
	if b, ok := outputBases[k]; ok {
		return b
	}
	return k.Slug()
}

func (k Kind) String() string {
	return string(k)
}

// Models names the upstream models used by the flows. Identifiers are a
// deployment detail; see DefaultModels.
type Models struct {
	// Text is used for prompt enhancement and pose description.
	Text string

	// Image is used for generation and editing.
	Image string
}

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// DefaultModels returns the fast text model and the image preview model.
func DefaultModels() Models {
	return Models{Text: DefaultTextModel, Image: DefaultImageModel}
}

// withDefaults fills empty fields from DefaultModels.
func (m Models) withDefaults() Models {
	if m.Text == "" {
		m.Text = DefaultTextModel
	}
	if m.Image == "" {
		m.Image = DefaultImageModel
	}
	return m
}

// InputImage represents an uploaded image sent to the API.
type InputImage struct {
	// Data is the raw image bytes
	Data []byte

	// MIMEType of the image (e.g., "image/jpeg", "image/png")
	MIMEType string
}

// Item is one element of a request's contents: either plain text or an
// image blob. Exactly one of Text or Image is meaningful.
type Item struct {
	Text  string
	Image *InputImage
}

// IsImage reports whether the item carries an image.
func (i Item) IsImage() bool {
	return i.Image != nil
}

// Text wraps a string as an Item.
func Text(s string) Item {
	return Item{Text: s}
}

// Image wraps an uploaded image as an Item.
func Image(img *InputImage) Item {
	return Item{Image: img}
}
