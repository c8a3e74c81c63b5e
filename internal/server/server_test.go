package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dev-x-infinite/imagestudio"
	"github.com/dev-x-infinite/imagestudio/internal/config"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRfake")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00fake")
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second, MaxUploadBytes: 64 << 20},
		Gemini: config.GeminiConfig{APIKey: "server-key"},
		Models: config.ModelsConfig{Text: imagestudio.DefaultTextModel, Image: imagestudio.DefaultImageModel},
		Studio: config.StudioConfig{RequestTimeout: 5 * time.Second},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Log:    config.LogConfig{Level: "info", Format: "text"},
		Session: config.SessionConfig{
			TTL:        time.Hour,
			CookieName: "imagestudio_session",
		},
	}
}

type harness struct {
	t      *testing.T
	server *Server
	client *MockGenerationClient

	mu   sync.Mutex
	keys []string

	cookie *http.Cookie
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &harness{t: t, client: &MockGenerationClient{}}
	srv, err := New(Options{
		Config: cfg,
		Logger: log,
		NewClient: func(ctx context.Context, apiKey string) (imagestudio.GenerationClient, error) {
			h.mu.Lock()
			h.keys = append(h.keys, apiKey)
			h.mu.Unlock()
			return h.client, nil
		},
		Catalogue: []imagestudio.ModelInfo{
			{Name: "nano-banana", APIModelName: imagestudio.DefaultImageModel, Role: imagestudio.RoleImage},
		},
		Now: func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) },
	})
	require.NoError(t, err)
	h.server = srv
	return h
}

// do sends req with the harness session cookie, remembering any new one.
func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "imagestudio_session" {
			h.cookie = c
		}
	}
	return rec
}

func (h *harness) postJSON(path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(h.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

type upload struct {
	field, filename, contentType string
	data                         []byte
}

func (h *harness) postMultipart(path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		if f.contentType != "" {
			hdr.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(hdr)
		require.NoError(h.t, err)
		_, err = part.Write(f.data)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return h.do(req)
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) session() *Session {
	h.t.Helper()
	require.NotNil(h.t, h.cookie, "no session cookie yet")
	sess, created := h.server.sessions.Lookup(h.cookie.Value)
	require.False(h.t, created)
	return sess
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestIndex(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Text → Image")
	assert.Contains(t, body, "Simple Edit")
	assert.Contains(t, body, "Pose Transfer")
	assert.Contains(t, body, "History")
	assert.Contains(t, body, imagestudio.DefaultImageModel)
	require.NotNil(t, h.cookie, "index should start a session")
	assert.True(t, h.cookie.HttpOnly)
}

func TestGenerate_Success(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateImage", mock.Anything, imagestudio.DefaultImageModel, mock.MatchedBy(func(items []imagestudio.Item) bool {
		return len(items) == 1 && items[0].Text == "a red bicycle"
	})).Return(pngResponse(pngData), nil).Once()

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "a red bicycle", "enhance": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, imagestudio.KindTextToImage, out.Kind)
	require.Len(t, out.Images, 1)
	assert.Equal(t, "generated_image_1.png", out.Images[0].Filename)
	assert.True(t, strings.HasPrefix(out.Images[0].DataURL, "data:image/png;base64,"))
	assert.Equal(t, 1, out.HistoryCount)
	assert.Empty(t, out.Warnings)

	h.client.AssertExpectations(t)
	assert.Equal(t, []string{"server-key"}, h.keys)

	rec = h.get("/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Items []historyItem `json:"items"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Equal(t, 1, hist.Count)
	item := hist.Items[0]
	assert.Equal(t, "Text→Image • 2026-05-06 07:08:09", item.Caption)
	assert.Equal(t, "text_to_image_2026-05-06 07-08-09.png", item.Filename)

	rec = h.get(item.DownloadURL)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngData, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "text_to_image_2026-05-06 07-08-09.png")
}

func TestGenerate_EnhanceFallbackWarning(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateText", mock.Anything, imagestudio.DefaultTextModel, mock.Anything).
		Return("", errors.New("unavailable")).Once()
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
		Return(pngResponse(pngData), nil).Once()

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "a cat", "enhance": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var out outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Prompt enhancement failed. Using original prompt."}, out.Warnings)
	assert.Equal(t, "a cat", out.Prompt)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *MockGenerationClient)
		status   int
		errType  string
		contains string
	}{
		{
			name: "empty result",
			setup: func(m *MockGenerationClient) {
				m.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
					Return(&imagestudio.RawResponse{}, nil)
			},
			status:   http.StatusUnprocessableEntity,
			errType:  errTypeEmptyResult,
			contains: "No image returned. Try a more specific prompt.",
		},
		{
			name: "upstream failure",
			setup: func(m *MockGenerationClient) {
				m.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("API key not valid"))
			},
			status:   http.StatusBadGateway,
			errType:  errTypeUpstream,
			contains: "Generation error: API key not valid",
		},
		{
			name: "quota exhausted",
			setup: func(m *MockGenerationClient) {
				m.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &imagestudio.UpstreamError{
						Op:  "generate_image",
						Err: &imagestudio.RateLimitError{LimitType: "requests", Err: errors.New("429")},
					})
			},
			status:  http.StatusTooManyRequests,
			errType: errTypeRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			tt.setup(h.client)

			rec := h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tt.errType, body["type"])
			if tt.contains != "" {
				assert.Contains(t, body["error"], tt.contains)
			}

			rec = h.get("/api/history")
			assert.EqualValues(t, 0, decode(t, rec)["count"])
		})
	}
}

func TestGenerate_ValidationMakesNoCalls(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, errTypeValidation, body["type"])
	assert.Equal(t, "Please enter a prompt.", body["error"])
	h.client.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything, mock.Anything)
	h.client.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_MissingKey(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Gemini.APIKey = "" })

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errTypeMissingKey, decode(t, rec)["type"])
	assert.Empty(t, h.keys)
}

func TestSessionKey(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Gemini.APIKey = "" })
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)

	rec := h.postJSON("/api/session/key", map[string]any{"api_key": "user-key"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["has_key"])
	assert.NotContains(t, rec.Body.String(), "user-key")

	for range 2 {
		rec = h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []string{"user-key"}, h.keys, "client should be built once per key")
}

func TestEdit(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.MatchedBy(func(items []imagestudio.Item) bool {
		return len(items) == 2 &&
			items[0].Text == "make it blue" &&
			items[1].IsImage() && items[1].Image.MIMEType == "image/jpeg"
	})).Return(pngResponse(pngData), nil).Once()

	rec := h.postMultipart("/api/edit",
		map[string]string{"instruction": "make it blue", "enhance": "false"},
		upload{field: "image", filename: "photo.jpg", contentType: "application/octet-stream", data: jpegData},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "edited_image_1.png", out.Images[0].Filename)
	h.client.AssertExpectations(t)
}

func TestEdit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		files   []upload
		message string
	}{
		{"no image", map[string]string{"instruction": "make it blue"}, nil, "Please upload an image to edit."},
		{"no instruction", map[string]string{"instruction": " "},
			[]upload{{field: "image", filename: "a.png", contentType: "image/png", data: pngData}},
			"Please enter edit instructions."},
		{"not an image", map[string]string{"instruction": "make it blue"},
			[]upload{{field: "image", filename: "a.txt", contentType: "text/plain", data: []byte("hello world")}},
			"Unsupported image type. Upload a PNG, JPEG, WebP or GIF image."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			rec := h.postMultipart("/api/edit", tt.fields, tt.files...)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.message, decode(t, rec)["error"])
			h.client.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPose(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateText", mock.Anything, imagestudio.DefaultTextModel, mock.Anything).
		Return("arms folded, head tilted left", nil).Once()
	h.client.On("GenerateImage", mock.Anything, imagestudio.DefaultImageModel, mock.MatchedBy(func(items []imagestudio.Item) bool {
		return len(items) == 2 &&
			items[0].Text == imagestudio.PoseApplyInstruction("arms folded, head tilted left") &&
			items[1].Image.MIMEType == "image/png"
	})).Return(pngResponse(pngData), nil).Once()

	rec := h.postMultipart("/api/pose", nil,
		upload{field: "base_image", filename: "base.png", contentType: "image/png", data: pngData},
		upload{field: "reference_image", filename: "ref.jpg", contentType: "image/jpeg", data: jpegData},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "pose_transfer_1.png", out.Images[0].Filename)
	assert.Equal(t, "arms folded, head tilted left", out.Prompt)
	h.client.AssertExpectations(t)
}

func TestPose_ExtractionFailureStops(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("model overloaded")).Once()

	rec := h.postMultipart("/api/pose", nil,
		upload{field: "base_image", filename: "base.png", contentType: "image/png", data: pngData},
		upload{field: "reference_image", filename: "ref.png", contentType: "image/png", data: pngData},
	)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Pose extraction failed: model overloaded", decode(t, rec)["error"])
	h.client.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything, mock.Anything)
}

func TestPose_MissingImage(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.postMultipart("/api/pose", nil,
		upload{field: "base_image", filename: "base.png", contentType: "image/png", data: pngData},
	)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload both the base image and the reference pose image.", decode(t, rec)["error"])
}

func TestBusySession(t *testing.T) {
	h := newHarness(t, nil)
	h.get("/")
	sess := h.session()
	require.True(t, sess.TryBegin())

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errTypeBusy, decode(t, rec)["type"])

	rec = h.do(httptest.NewRequest(http.MethodDelete, "/api/history", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	sess.End()
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	})
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)

	rec := h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.postJSON("/api/generate", map[string]any{"prompt": "a dog"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, errTypeRateLimited, decode(t, rec)["type"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	h.client.AssertNumberOfCalls(t, "GenerateImage", 1)
	assert.EqualValues(t, 1, decode(t, h.get("/api/history"))["count"])
}

func TestRateLimit_ValidationFailuresAreFree(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	})
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)

	for range 2 {
		rec := h.postJSON("/api/generate", map[string]any{"prompt": "   "})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errTypeValidation, decode(t, rec)["type"])
	}
	rec := h.postMultipart("/api/edit", map[string]string{"instruction": "make it blue"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.postJSON("/api/generate", map[string]any{"prompt": "a cat"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	h.client.AssertNumberOfCalls(t, "GenerateImage", 1)
}

func TestRateLimit_SeededFromCatalogue(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{Enabled: true}
	})
	h.server.catalogue = []imagestudio.ModelInfo{{
		Name:         "nano-banana",
		APIModelName: imagestudio.DefaultImageModel,
		Role:         imagestudio.RoleImage,
		RateLimits:   imagestudio.RateLimits{RequestsPerMinute: 1},
	}}
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)

	require.Equal(t, http.StatusOK, h.postJSON("/api/generate", map[string]any{"prompt": "a cat"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, h.postJSON("/api/generate", map[string]any{"prompt": "a dog"}).Code)

	h.cookie = nil
	assert.Equal(t, http.StatusOK, h.postJSON("/api/generate", map[string]any{"prompt": "a fox"}).Code,
		"budgets are per session")
}

func TestSessionCookieRenewed(t *testing.T) {
	h := newHarness(t, nil)
	h.get("/")
	require.NotNil(t, h.cookie)
	id := h.cookie.Value

	rec := h.get("/api/history")
	var renewed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "imagestudio_session" {
			renewed = c
		}
	}
	require.NotNil(t, renewed, "cookie should be re-issued on every request")
	assert.Equal(t, id, renewed.Value)
	assert.Equal(t, int(time.Hour.Seconds()), renewed.MaxAge)
	assert.True(t, renewed.HttpOnly)
}

func TestSessionExpiryReleasesClient(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv, err := New(Options{
		Config: testConfig(),
		Logger: log,
		NewClient: func(ctx context.Context, apiKey string) (imagestudio.GenerationClient, error) {
			return &MockGenerationClient{}, nil
		},
		Now: clock.Now,
	})
	require.NoError(t, err)

	sess, _ := srv.sessions.Lookup("")
	_, err = srv.clients.Get(context.Background(), sess.ID, "user-key")
	require.NoError(t, err)
	require.Equal(t, 1, srv.clients.Len())

	clock.Advance(2 * time.Hour)
	srv.sessions.Lookup("")
	assert.Equal(t, 0, srv.clients.Len())
}

func TestHistory_ClearAndNotFound(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)

	for _, p := range []string{"one", "two"} {
		require.Equal(t, http.StatusOK, h.postJSON("/api/generate", map[string]any{"prompt": p}).Code)
	}

	var hist struct {
		Items []historyItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(h.get("/api/history").Body.Bytes(), &hist))
	require.Len(t, hist.Items, 2)
	assert.Equal(t, "two", hist.Items[0].Prompt)
	assert.Equal(t, "one", hist.Items[1].Prompt)

	rec := h.postJSON("/api/history/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["removed"])

	assert.EqualValues(t, 0, decode(t, h.get("/api/history"))["count"])
	assert.Equal(t, http.StatusNotFound, h.get("/api/history/"+hist.Items[0].ID+"/download").Code)
}

func TestHistory_IsolatedPerSession(t *testing.T) {
	h := newHarness(t, nil)
	h.client.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).Return(pngResponse(pngData), nil)
	require.Equal(t, http.StatusOK, h.postJSON("/api/generate", map[string]any{"prompt": "mine"}).Code)

	h.cookie = nil
	assert.EqualValues(t, 0, decode(t, h.get("/api/history"))["count"])
}

func TestModels(t *testing.T) {
	h := newHarness(t, nil)
	body := decode(t, h.get("/api/models"))
	assert.Equal(t, imagestudio.DefaultTextModel, body["text"])
	assert.Equal(t, imagestudio.DefaultImageModel, body["image"])
	require.Len(t, body["available"], 1)

	model := body["available"].([]any)[0].(map[string]any)
	assert.Equal(t, "nano-banana", model["name"])
	assert.Contains(t, model, "capabilities")
	assert.Contains(t, model, "rate_limits")
	assert.Contains(t, model, "context_length")
}

func TestModels_ReportsCatalogueDetails(t *testing.T) {
	h := newHarness(t, nil)
	h.server.catalogue = []imagestudio.ModelInfo{{
		Name:          "nano-banana",
		APIModelName:  imagestudio.DefaultImageModel,
		Role:          imagestudio.RoleImage,
		Capabilities:  imagestudio.ModelCapabilities{SupportsImageInput: true, SupportsImageOutput: true, MaxInputImages: 3},
		ContextLength: 32768,
		RateLimits:    imagestudio.RateLimits{TokensPerMinute: 4000, RequestsPerMinute: 500},
	}}

	model := decode(t, h.get("/api/models"))["available"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 32768, model["context_length"])
	assert.Equal(t, map[string]any{
		"image_input":      true,
		"image_output":     true,
		"max_input_images": float64(3),
	}, model["capabilities"])
	assert.Equal(t, map[string]any{
		"tokens_per_minute":   float64(4000),
		"requests_per_minute": float64(500),
		"tokens_per_day":      float64(0),
	}, model["rate_limits"])
}
