package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"pdfquery/internal/session"
)

//go:embed templates/*
var templatesFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// New builds the echo server with all routes registered.
func New(sess *session.Session) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		log.Error().Err(err).Int("status", code).Str("method", req.Method).Str("path", req.URL.Path).Msg("Request failed")
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Renderer = &templateRenderer{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}

	h := &Handler{sess: sess}
	e.GET("/", h.handleIndex)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	api := e.Group("/api")
	api.POST("/upload", h.handleUpload)
	api.POST("/process", h.handleProcess)
	api.POST("/ask", h.handleAsk)
	api.POST("/extract", h.handleExtract)
	api.GET("/status", h.handleStatus)

	return e
}
