package imagestudio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dev-x-infinite/imagestudio/ratelimiter"
)

const (
	opGenerateText  = "generate_text"
	opGenerateImage = "generate_image"
)

// Flow stages, used in logs and to prefix user-facing error messages.
const (
	stageEnhance        = "enhance"
	stageGenerate       = "generate"
	stageEdit           = "edit"
	stagePoseExtraction = "pose_extraction"
	stagePoseApply      = "pose_apply"
)

// tokenBuffer pads each estimate for the response side of a call.
const tokenBuffer = 100

const (
	msgMissingPrompt      = "Please enter a prompt."
	msgMissingEditImage   = "Please upload an image to edit."
	msgMissingInstruction = "Please enter edit instructions."
	msgMissingPoseImages  = "Please upload both the base image and the reference pose image."

	warnPromptEnhance = "Prompt enhancement failed. Using original prompt."
	warnEditEnhance   = "Enhancement failed. Using original instruction."
)

// Studio runs the three interaction flows against one GenerationClient
// and one session history. Flows are meant to run one at a time.
type Studio struct {
	client       GenerationClient
	history      *HistoryStore
	models       Models
	logger       logrus.FieldLogger
	now          func() time.Time
	rateLimiters map[string]ratelimiter.Limiter
	estimator    TokenEstimator
}

// NewStudio creates a Studio with the given client and options.
//
// Example:
//
//	client, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	studio := imagestudio.NewStudio(client,
//	    imagestudio.WithLogger(log),
//	    imagestudio.WithModels(imagestudio.DefaultModels()),
//	)
func NewStudio(client GenerationClient, opts ...StudioOption) *Studio {
	s := &Studio{
		client:       client,
		history:      NewHistoryStore(),
		models:       DefaultModels(),
		logger:       logrus.StandardLogger(),
		now:          time.Now,
		rateLimiters: make(map[string]ratelimiter.Limiter),
		estimator:    NewSimpleTokenEstimator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the session history the studio appends to.
func (s *Studio) History() *HistoryStore {
	return s.history
}

// Models returns the models in use.
func (s *Studio) Models() Models {
	return s.models
}

// ClearHistory removes all history records and returns how many there
// were.
func (s *Studio) ClearHistory() int {
	n := s.history.Len()
	s.history.Clear()
	s.logger.WithField("removed", n).Info("history cleared")
	return n
}

// RunTextToImage generates images from a prompt, optionally rewriting the
// prompt through the text model first. An enhancement failure is only a
// warning; the original prompt is used instead.
func (s *Studio) RunTextToImage(ctx context.Context, prompt string, enhance bool) (*Outcome, error) {
	if err := ValidatePrompt("prompt", prompt, msgMissingPrompt); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, ErrClientNotConfigured
	}

	outcome := &Outcome{Kind: KindTextToImage, Prompt: prompt}
	if enhance {
		s.enhance(ctx, outcome, EnhancePromptRequest(prompt), warnPromptEnhance)
	}

	return s.generate(ctx, outcome, stageGenerate, []Item{Text(outcome.Prompt)})
}

// RunSimpleEdit applies an edit instruction to an uploaded image. Both
// inputs are required and checked before any API call.
func (s *Studio) RunSimpleEdit(ctx context.Context, source *InputImage, instruction string, enhance bool) (*Outcome, error) {
	if err := ValidateInputImage("image", source, msgMissingEditImage); err != nil {
		return nil, err
	}
	if err := ValidatePrompt("instruction", instruction, msgMissingInstruction); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, ErrClientNotConfigured
	}

	outcome := &Outcome{Kind: KindSimpleEdit, Prompt: instruction}
	if enhance {
		s.enhance(ctx, outcome, EnhanceEditRequest(instruction), warnEditEnhance)
	}

	return s.generate(ctx, outcome, stageEdit, []Item{Text(outcome.Prompt), Image(source)})
}

// RunPoseTransfer describes the pose in reference and re-poses the person
// in base accordingly. It makes two API calls; if the description fails
// the image call is never attempted. The recorded prompt is the pose
// description itself.
func (s *Studio) RunPoseTransfer(ctx context.Context, base, reference *InputImage) (*Outcome, error) {
	if err := ValidateInputImage("base_image", base, msgMissingPoseImages); err != nil {
		return nil, err
	}
	if err := ValidateInputImage("reference_image", reference, msgMissingPoseImages); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, ErrClientNotConfigured
	}

	log := s.logger.WithFields(logrus.Fields{
		"kind":  KindPoseTransfer,
		"model": s.models.Text,
		"stage": stagePoseExtraction,
	})
	log.Debug("extracting pose from reference")

	start := time.Now()
	description, err := s.generateText(ctx, []Item{Text(PoseDescribeInstruction), Image(reference)})
	if err != nil {
		log.WithError(err).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Error("pose extraction failed")
		return nil, &StageError{Stage: stagePoseExtraction, Err: err}
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pose extracted")

	outcome := &Outcome{Kind: KindPoseTransfer, Prompt: description}
	return s.generate(ctx, outcome, stagePoseApply, []Item{Text(PoseApplyInstruction(description)), Image(base)})
}

// enhance rewrites outcome.Prompt through the text model. On failure the
// prompt is left untouched and a warning is recorded.
func (s *Studio) enhance(ctx context.Context, outcome *Outcome, request, warning string) {
	log := s.logger.WithFields(logrus.Fields{
		"kind":  outcome.Kind,
		"model": s.models.Text,
		"stage": stageEnhance,
	})

	start := time.Now()
	text, err := s.generateText(ctx, []Item{Text(request)})
	if err != nil {
		log.WithError(err).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Warn("enhancement failed, using original text")
		outcome.Warnings = append(outcome.Warnings, warning)
		return
	}

	outcome.Prompt = text
	outcome.Enhanced = true
	log.WithFields(logrus.Fields{
		"duration_ms":   time.Since(start).Milliseconds(),
		"prompt_length": len(text),
	}).Info("enhancement completed")
}

// generateText calls the text model and treats a blank answer as a
// malformed response. The text is returned as the model wrote it.
func (s *Studio) generateText(ctx context.Context, items []Item) (string, error) {
	if err := s.checkRateLimit(s.models.Text, items); err != nil {
		return "", err
	}
	text, err := s.client.GenerateText(ctx, s.models.Text, items)
	if err != nil {
		return "", asUpstream(opGenerateText, s.models.Text, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{
			Op:    opGenerateText,
			Model: s.models.Text,
			Err:   fmt.Errorf("%w: empty text", ErrMalformedResponse),
		}
	}
	return text, nil
}

// generate performs the image request, extracts images and, only if at
// least one was found, appends all of them to history in one step.
func (s *Studio) generate(ctx context.Context, outcome *Outcome, stage string, items []Item) (*Outcome, error) {
	log := s.logger.WithFields(logrus.Fields{
		"kind":  outcome.Kind,
		"model": s.models.Image,
		"stage": stage,
	})
	log.WithField("prompt_length", len(outcome.Prompt)).Debug("starting image request")

	if err := s.checkRateLimit(s.models.Image, items); err != nil {
		log.WithError(err).Warn("image request refused by rate limiter")
		return nil, &StageError{Stage: stage, Err: err}
	}

	start := time.Now()
	resp, err := s.client.GenerateImage(ctx, s.models.Image, items)
	duration := time.Since(start)
	if err != nil {
		err = asUpstream(opGenerateImage, s.models.Image, err)
		log.WithError(err).WithField("duration_ms", duration.Milliseconds()).Error("image request failed")
		return nil, &StageError{Stage: stage, Err: err}
	}

	extraction := ExtractImages(resp)
	if !extraction.Found() {
		log.WithFields(logrus.Fields{
			"duration_ms": duration.Milliseconds(),
			"reason":      extraction.Reason,
		}).Warn("no image data in response")
		return nil, &EmptyResultError{Kind: outcome.Kind, Reason: extraction.Reason}
	}

	createdAt := s.now()
	records := make([]HistoryRecord, 0, len(extraction.Images))
	for i, img := range extraction.Images {
		outcome.Images = append(outcome.Images, RenderedImage{
			ExtractedImage: img,
			Filename:       DownloadName(outcome.Kind, i+1, img.MIMEType),
		})
		records = append(records, NewHistoryRecord(img, outcome.Kind, outcome.Prompt, createdAt))
	}
	s.history.AppendAll(records...)
	outcome.Records = records

	log.WithFields(logrus.Fields{
		"duration_ms": duration.Milliseconds(),
		"image_count": len(outcome.Images),
		"enhanced":    outcome.Enhanced,
	}).Info("image request completed")

	return outcome, nil
}

// checkRateLimit charges the model's limiter, if any, for one request
// carrying items.
func (s *Studio) checkRateLimit(model string, items []Item) error {
	limiter := s.rateLimiters[model]
	if limiter == nil {
		return nil
	}

	estimatedTokens := EstimateItems(s.estimator, items) + tokenBuffer
	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  "session",
			Model:      model,
		}
	}
	return nil
}

// asUpstream wraps err in an UpstreamError unless it already is one.
func asUpstream(op, model string, err error) error {
	var uErr *UpstreamError
	if errors.As(err, &uErr) {
		return err
	}
	return &UpstreamError{Op: op, Model: model, Err: err}
}
