package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var webFS embed.FS

// indexTemplateData populates the page's initial state.
type indexTemplateData struct {
	HasServerKey   bool
	HasSessionKey  bool
	EnhanceDefault bool
	TextModel      string
	ImageModel     string
}

func newIndexPage() (*template.Template, error) {
	return template.ParseFS(webFS, "web/index.html")
}

func (s *Server) index(page *template.Template) gin.HandlerFunc {
	return func(c *gin.Context) {
		models := s.cfg.StudioModels()
		data := indexTemplateData{
			HasServerKey:   s.cfg.Gemini.APIKey != "",
			HasSessionKey:  sessionFrom(c).APIKey() != "",
			EnhanceDefault: s.cfg.Studio.EnhanceDefault,
			TextModel:      models.Text,
			ImageModel:     models.Image,
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := page.Execute(c.Writer, data); err != nil {
			loggerFrom(c).WithError(err).Error("rendering index")
		}
	}
}
