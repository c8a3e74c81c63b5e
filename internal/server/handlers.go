package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-x-infinite/imagestudio"
)

// Error types reported in JSON error bodies.
const (
	errTypeValidation  = "validation"
	errTypeMissingKey  = "missing_api_key"
	errTypeEmptyResult = "empty_result"
	errTypeRateLimited = "rate_limited"
	errTypeUpstream    = "upstream"
	errTypeBusy        = "busy"
	errTypeNotFound    = "not_found"
	errTypeInternal    = "internal"
)

const (
	msgBusy       = "Another request is already running for this session."
	msgMissingKey = "Enter a Gemini API key to continue."
	msgNotFound   = "History item not found."
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Enhance *bool  `json:"enhance"`
}

type sessionKeyRequest struct {
	APIKey string `json:"api_key"`
}

type imageResponse struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	DataURL  string `json:"data_url"`
}

type outcomeResponse struct {
	Kind         imagestudio.Kind `json:"kind"`
	Prompt       string           `json:"prompt"`
	Enhanced     bool             `json:"enhanced"`
	Warnings     []string         `json:"warnings"`
	Images       []imageResponse  `json:"images"`
	HistoryCount int              `json:"history_count"`
}

type historyItem struct {
	ID            string           `json:"id"`
	Kind          imagestudio.Kind `json:"kind"`
	Caption       string           `json:"caption"`
	Prompt        string           `json:"prompt"`
	PromptPreview string           `json:"prompt_preview"`
	CreatedAt     time.Time        `json:"created_at"`
	MIMEType      string           `json:"mime_type"`
	DataURL       string           `json:"data_url"`
	DownloadURL   string           `json:"download_url"`
	Filename      string           `json:"filename"`
}

const promptPreviewRunes = 80

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func abortError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"type":  errType,
	})
}

// writeFlowError maps a flow error onto an HTTP status.
func writeFlowError(c *gin.Context, err error) {
	switch {
	case imagestudio.IsValidationError(err):
		abortError(c, http.StatusBadRequest, errTypeValidation, imagestudio.UserMessage(err))
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, imagestudio.ErrClientNotConfigured):
		abortError(c, http.StatusUnauthorized, errTypeMissingKey, msgMissingKey)
	case imagestudio.IsEmptyResultError(err):
		abortError(c, http.StatusUnprocessableEntity, errTypeEmptyResult, imagestudio.UserMessage(err))
	case imagestudio.IsRateLimitError(err):
		var rlErr *imagestudio.RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rlErr.RetryAfter.Seconds()))))
		}
		abortError(c, http.StatusTooManyRequests, errTypeRateLimited, imagestudio.UserMessage(err))
	case imagestudio.IsUpstreamError(err):
		abortError(c, http.StatusBadGateway, errTypeUpstream, imagestudio.UserMessage(err))
	default:
		abortError(c, http.StatusInternalServerError, errTypeInternal, imagestudio.UserMessage(err))
	}
}

// runFlow enforces one flow per session, then renders the outcome. Rate
// limits are charged by the studio itself, after input validation.
func (s *Server) runFlow(c *gin.Context, run func(*imagestudio.Studio) (*imagestudio.Outcome, error)) {
	sess := sessionFrom(c)
	if !sess.TryBegin() {
		abortError(c, http.StatusConflict, errTypeBusy, msgBusy)
		return
	}
	defer sess.End()

	studio, err := s.studioFor(c, sess)
	if err != nil {
		loggerFrom(c).WithError(err).Warn("no generation client for session")
		writeFlowError(c, err)
		return
	}

	outcome, err := run(studio)
	if err != nil {
		writeFlowError(c, err)
		return
	}

	resp := outcomeResponse{
		Kind:         outcome.Kind,
		Prompt:       outcome.Prompt,
		Enhanced:     outcome.Enhanced,
		Warnings:     outcome.Warnings,
		Images:       make([]imageResponse, 0, len(outcome.Images)),
		HistoryCount: sess.History.Len(),
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for _, img := range outcome.Images {
		resp.Images = append(resp.Images, imageResponse{
			Filename: img.Filename,
			MIMEType: img.MIMEType,
			DataURL:  dataURL(img.MIMEType, img.Data),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) enhanceFlag(v *bool) bool {
	if v == nil {
		return s.cfg.Studio.EnhanceDefault
	}
	return *v
}

func (s *Server) formEnhance(c *gin.Context) bool {
	raw, ok := c.GetPostForm("enhance")
	if !ok {
		return s.cfg.Studio.EnhanceDefault
	}
	if raw == "on" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errTypeValidation, "Invalid request body.")
		return
	}
	enhance := s.enhanceFlag(req.Enhance)

	s.runFlow(c, func(st *imagestudio.Studio) (*imagestudio.Outcome, error) {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		return st.RunTextToImage(ctx, req.Prompt, enhance)
	})
}

func (s *Server) edit(c *gin.Context) {
	source, err := formImage(c, "image")
	if err != nil {
		writeFlowError(c, err)
		return
	}
	instruction := c.PostForm("instruction")
	enhance := s.formEnhance(c)

	s.runFlow(c, func(st *imagestudio.Studio) (*imagestudio.Outcome, error) {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		return st.RunSimpleEdit(ctx, source, instruction, enhance)
	})
}

func (s *Server) pose(c *gin.Context) {
	base, err := formImage(c, "base_image")
	if err != nil {
		writeFlowError(c, err)
		return
	}
	reference, err := formImage(c, "reference_image")
	if err != nil {
		writeFlowError(c, err)
		return
	}

	s.runFlow(c, func(st *imagestudio.Studio) (*imagestudio.Outcome, error) {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		return st.RunPoseTransfer(ctx, base, reference)
	})
}

// formImage reads an uploaded file. A missing field yields nil so the
// flow reports it with its own message.
func formImage(c *gin.Context, field string) (*imagestudio.InputImage, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, uploadError(field, err)
	}
	return readUpload(field, header)
}

func readUpload(field string, header *multipart.FileHeader) (*imagestudio.InputImage, error) {
	if header.Size > imagestudio.MaxImageSize {
		return nil, &imagestudio.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Image is too large (max %d MB).", imagestudio.MaxImageSize/(1024*1024)),
			Err:     imagestudio.ErrImageTooLarge,
		}
	}
	f, err := header.Open()
	if err != nil {
		return nil, uploadError(field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imagestudio.MaxImageSize+1))
	if err != nil {
		return nil, uploadError(field, err)
	}
	return imagestudio.NewInputImage(data, header.Header.Get("Content-Type")), nil
}

func uploadError(field string, err error) error {
	return &imagestudio.ValidationError{
		Field:   field,
		Message: "Could not read the uploaded image.",
		Err:     err,
	}
}

func (s *Server) setSessionKey(c *gin.Context) {
	var req sessionKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errTypeValidation, "Invalid request body.")
		return
	}
	sess := sessionFrom(c)
	sess.SetAPIKey(req.APIKey)
	loggerFrom(c).WithField("session", sess.ID).WithField("has_key", req.APIKey != "").Info("session key updated")

	c.JSON(http.StatusOK, gin.H{
		"has_key":        req.APIKey != "",
		"has_server_key": s.cfg.Gemini.APIKey != "",
	})
}

func (s *Server) listModels(c *gin.Context) {
	models := s.cfg.StudioModels()
	available := make([]gin.H, 0, len(s.catalogue))
	for _, m := range s.catalogue {
		available = append(available, gin.H{
			"name":           m.Name,
			"api_name":       m.APIModelName,
			"provider":       m.Provider,
			"role":           m.Role,
			"context_length": m.ContextLength,
			"capabilities": gin.H{
				"image_input":      m.Capabilities.SupportsImageInput,
				"image_output":     m.Capabilities.SupportsImageOutput,
				"max_input_images": m.Capabilities.MaxInputImages,
			},
			"rate_limits": gin.H{
				"tokens_per_minute":   m.RateLimits.TokensPerMinute,
				"requests_per_minute": m.RateLimits.RequestsPerMinute,
				"tokens_per_day":      m.RateLimits.TokensPerDay,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"text":      models.Text,
		"image":     models.Image,
		"available": available,
	})
}

func (s *Server) listHistory(c *gin.Context) {
	sess := sessionFrom(c)
	items := make([]historyItem, 0, sess.History.Len())
	for rec := range sess.History.MostRecentFirst() {
		items = append(items, historyItem{
			ID:            rec.ID,
			Kind:          rec.Kind,
			Caption:       rec.Caption(),
			Prompt:        rec.Prompt,
			PromptPreview: rec.PromptPreview(promptPreviewRunes),
			CreatedAt:     rec.CreatedAt,
			MIMEType:      rec.MIMEType,
			DataURL:       dataURL(rec.MIMEType, rec.Image),
			DownloadURL:   "/api/history/" + rec.ID + "/download",
			Filename:      imagestudio.HistoryDownloadName(rec),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (s *Server) downloadHistory(c *gin.Context) {
	rec, ok := sessionFrom(c).History.Get(c.Param("id"))
	if !ok {
		abortError(c, http.StatusNotFound, errTypeNotFound, msgNotFound)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imagestudio.HistoryDownloadName(rec)))
	c.Data(http.StatusOK, rec.MIMEType, rec.Image)
}

func (s *Server) clearHistory(c *gin.Context) {
	sess := sessionFrom(c)
	if !sess.TryBegin() {
		abortError(c, http.StatusConflict, errTypeBusy, msgBusy)
		return
	}
	defer sess.End()

	removed := imagestudio.NewStudio(nil, s.studioOptions(c, sess)...).ClearHistory()
	c.JSON(http.StatusOK, gin.H{"removed": removed, "count": 0})
}
