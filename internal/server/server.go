// Package server exposes the image studio flows over HTTP with a small
// browser front end.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dev-x-infinite/imagestudio"
	"github.com/dev-x-infinite/imagestudio/internal/config"
	"github.com/dev-x-infinite/imagestudio/ratelimiter"
)

// Options configures a Server.
type Options struct {
	Config *config.Config
	Logger *logrus.Logger

	// NewClient builds the GenerationClient for an API key.
	NewClient ClientFactory

	// Catalogue lists the models offered by the configured providers.
	Catalogue []imagestudio.ModelInfo

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Server owns the HTTP router and all per-session state.
type Server struct {
	cfg       *config.Config
	log       *logrus.Logger
	sessions  *SessionStore
	clients   *ClientCache
	limiters  ratelimiter.RateLimiterRegistry
	catalogue []imagestudio.ModelInfo
	now       func() time.Time
	engine    *gin.Engine
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if opts.NewClient == nil {
		return nil, fmt.Errorf("server: client factory is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		cfg:       opts.Config,
		log:       opts.Logger,
		sessions:  NewSessionStore(opts.Config.Session.TTL, opts.Now),
		clients:   NewClientCache(opts.NewClient),
		limiters:  ratelimiter.NewRateLimiterRegistry(),
		catalogue: opts.Catalogue,
		now:       opts.Now,
	}
	s.sessions.OnEvict(func(id string) {
		models := s.cfg.StudioModels()
		for _, model := range []string{models.Text, models.Image} {
			s.limiters.Delete(limiterKey(id, model))
		}
		s.clients.Release(id)
		s.log.WithField("session", id).Debug("session expired")
	})

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HTTPServer wraps the handler in an http.Server using the configured
// address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

func (s *Server) routes() (*gin.Engine, error) {
	router := gin.New()
	router.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes

	router.Use(RequestID())
	router.Use(Logger(s.log))
	router.Use(gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", headerRequestID},
		ExposeHeaders:    []string{headerRequestID, "Content-Disposition"},
		AllowCredentials: s.cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(s.cfg.CORS.MaxAge) * time.Second,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	page, err := newIndexPage()
	if err != nil {
		return nil, err
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": s.now().Unix(),
		})
	})

	router.GET("/", s.Sessions(), s.index(page))

	api := router.Group("/api", s.Sessions())
	{
		api.GET("/models", s.listModels)
		api.POST("/session/key", s.setSessionKey)

		api.POST("/generate", s.generate)
		api.POST("/edit", s.edit)
		api.POST("/pose", s.pose)

		history := api.Group("/history")
		{
			history.GET("", s.listHistory)
			history.GET("/:id/download", s.downloadHistory)
			history.POST("/clear", s.clearHistory)
			history.DELETE("", s.clearHistory)
		}
	}

	return router, nil
}

// studioOptions binds a Studio to the session's history and logger.
func (s *Server) studioOptions(c *gin.Context, sess *Session) []imagestudio.StudioOption {
	return []imagestudio.StudioOption{
		imagestudio.WithHistory(sess.History),
		imagestudio.WithModels(s.cfg.StudioModels()),
		imagestudio.WithLogger(loggerFrom(c).WithField("session", sess.ID)),
		imagestudio.WithClock(s.now),
	}
}

// studioFor builds a Studio for the session using the client for its
// effective key and, if enabled, its rate limiters.
func (s *Server) studioFor(c *gin.Context, sess *Session) (*imagestudio.Studio, error) {
	key := sess.APIKey()
	if key == "" {
		key = s.cfg.Gemini.APIKey
	}
	client, err := s.clients.Get(c.Request.Context(), sess.ID, key)
	if err != nil {
		return nil, err
	}

	opts := s.studioOptions(c, sess)
	if s.cfg.RateLimit.Enabled {
		models := s.cfg.StudioModels()
		for _, model := range []string{models.Text, models.Image} {
			if limiter := s.limiterFor(sess, model); limiter != nil {
				opts = append(opts, imagestudio.WithRateLimiter(model, limiter))
			}
		}
	}
	return imagestudio.NewStudio(client, opts...), nil
}

// limiterFor returns the session's limiter for model. Configured budgets
// win; when both are zero the model's published limits apply. It returns
// nil when neither gives a budget.
func (s *Server) limiterFor(sess *Session, model string) ratelimiter.Limiter {
	tpm, rpm := s.cfg.RateLimit.TokensPerMinute, s.cfg.RateLimit.RequestsPerMinute
	if tpm == 0 && rpm == 0 {
		info, ok := imagestudio.FindModel(s.catalogue, model)
		if !ok {
			return nil
		}
		tpm, rpm = info.RateLimits.TokensPerMinute, info.RateLimits.RequestsPerMinute
	}
	if tpm == 0 && rpm == 0 {
		return nil
	}

	return s.limiters.GetOrCreate(limiterKey(sess.ID, model), func() ratelimiter.Limiter {
		return ratelimiter.New(tpm, rpm)
	})
}

func limiterKey(sessionID, model string) string {
	return sessionID + "/" + model
}

// requestContext bounds a flow by the configured timeout.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.Studio.RequestTimeout)
}
