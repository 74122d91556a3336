package server

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"pdfquery/internal/extract"
	"pdfquery/internal/session"
)

type Handler struct {
	sess *session.Session
}

func (h *Handler) handleIndex(c echo.Context) error {
	data := map[string]interface{}{
		"State":    h.sess.State().String(),
		"Variants": extract.Variants(),
		"Variant":  h.sess.Variant().String(),
	}
	return c.Render(http.StatusOK, "index.html", data)
}

func (h *Handler) handleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to parse multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files in upload")
	}

	staged := make([]session.StagedFile, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to open "+fh.Filename)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read "+fh.Filename)
		}
		staged = append(staged, session.StagedFile{Name: fh.Filename, Data: data})
	}

	if err := h.sess.Upload(staged); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"state": h.sess.State().String(),
		"files": len(staged),
	})
}

func (h *Handler) handleProcess(c echo.Context) error {
	pipeline := session.Pipeline(c.FormValue("pipeline"))
	if pipeline == "" {
		pipeline = session.PipelineRAG
	}
	if name := c.FormValue("schema"); name != "" {
		variant, err := extract.ParseSchemaVariant(name)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.sess.SetVariant(variant)
	}

	if err := h.sess.Process(c.Request().Context(), pipeline); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"state":  h.sess.State().String(),
		"run_id": h.sess.RunID(),
	})
}

func (h *Handler) handleAsk(c echo.Context) error {
	var req struct {
		Question string `json:"question"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	resp, err := h.sess.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":  resp.Query,
		"source": resp.Source,
		"answer": resp.Content,
	})
}

func (h *Handler) handleExtract(c echo.Context) error {
	results, err := h.sess.Extract(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"schema":  h.sess.Variant().String(),
		"results": results,
	})
}

func (h *Handler) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"state":  h.sess.State().String(),
		"run_id": h.sess.RunID(),
		"schema": h.sess.Variant().String(),
	})
}
