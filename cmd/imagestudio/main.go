package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dev-x-infinite/imagestudio"
	"github.com/dev-x-infinite/imagestudio/internal/config"
	"github.com/dev-x-infinite/imagestudio/internal/server"
	"github.com/dev-x-infinite/imagestudio/pkg/logger"
	"github.com/dev-x-infinite/imagestudio/provider/gemini"
	"github.com/dev-x-infinite/imagestudio/provider/openai"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to the YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(server.Options{
		Config:    cfg,
		Logger:    l,
		NewClient: clientFactory(cfg),
		Catalogue: catalogue(cfg),
	})
	if err != nil {
		l.WithError(err).Fatal("failed to build server")
	}

	httpServer := srv.HTTPServer()
	go func() {
		l.WithFields(logrus.Fields{
			"addr":        httpServer.Addr,
			"text_model":  cfg.StudioModels().Text,
			"image_model": cfg.StudioModels().Image,
			"server_key":  cfg.Gemini.APIKey != "",
		}).Info("image studio listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		l.WithError(err).Error("graceful shutdown failed")
	}
	l.Info("server stopped")
}

// clientFactory builds a Gemini client per API key. When an
// OpenAI-compatible endpoint is configured, text calls are routed there.
func clientFactory(cfg *config.Config) server.ClientFactory {
	var text imagestudio.TextGenerator
	if cfg.OpenAI.Enabled {
		text = openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	}

	return func(ctx context.Context, apiKey string) (imagestudio.GenerationClient, error) {
		client, err := gemini.New(ctx, &gemini.Config{
			APIKey:  apiKey,
			BaseURL: cfg.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		if text != nil {
			return imagestudio.Compose(text, client), nil
		}
		return client, nil
	}
}

func catalogue(cfg *config.Config) []imagestudio.ModelInfo {
	models := gemini.Catalogue()
	if cfg.OpenAI.Enabled {
		models = append(models, imagestudio.ModelInfo{
			Name:         cfg.OpenAI.Model,
			Provider:     imagestudio.ProviderOpenAI,
			APIModelName: cfg.OpenAI.Model,
			Role:         imagestudio.RoleText,
			Capabilities: imagestudio.ModelCapabilities{SupportsImageInput: true},
		})
	}
	return models
}
