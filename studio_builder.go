package imagestudio

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dev-x-infinite/imagestudio/ratelimiter"
)

// StudioOption configures the Studio.
type StudioOption func(*Studio)

// WithLogger sets a structured logger for the studio.
func WithLogger(logger logrus.FieldLogger) StudioOption {
	return func(s *Studio) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory makes the studio append to an existing session history
// instead of a fresh one.
func WithHistory(history *HistoryStore) StudioOption {
	return func(s *Studio) {
		if history != nil {
			s.history = history
		}
	}
}

// WithModels sets the text and image models. Empty fields keep their
// defaults.
func WithModels(models Models) StudioOption {
	return func(s *Studio) {
		s.models = models.withDefaults()
	}
}

// WithClock overrides the time source used to stamp history records.
func WithClock(now func() time.Time) StudioOption {
	return func(s *Studio) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRateLimiter charges limiter before every call to model. Calls over
// budget fail with a RateLimitError instead of reaching the API.
func WithRateLimiter(model string, limiter ratelimiter.Limiter) StudioOption {
	return func(s *Studio) {
		if model != "" && limiter != nil {
			s.rateLimiters[model] = limiter
		}
	}
}
