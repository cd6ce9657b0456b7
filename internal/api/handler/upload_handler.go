package handler

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/pkg/metrics"
)

// UploadHandler serves the recording upload form.
type UploadHandler struct {
	source   ports.DataSource
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadHandler(source ports.DataSource, maxBytes int64, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{source: source, maxBytes: maxBytes, log: log}
}

type uploadForm struct {
	Title         string `form:"title" validate:"required"`
	Agent         string `form:"agent" validate:"required,numeric"`
	CustomerPhone string `form:"customer_phone" validate:"required"`
}

type uploadView struct {
	Form     uploadForm
	Agents   []domain.Agent
	Errors   []string
	MaxBytes int64
}

func (h *UploadHandler) Form(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, uploadForm{}, nil)
}

// Submit validates the form and file locally and only then calls the backend.
func (h *UploadHandler) Submit(c echo.Context) error {
	var form uploadForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	var problems []string
	if err := c.Validate(&form); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		problems = append(problems, ve.Messages...)
	}

	fh, err := c.FormFile("file")
	switch {
	case err != nil:
		problems = append(problems, "file is required")
	case fh.Size == 0:
		problems = append(problems, "file is empty")
	case h.maxBytes > 0 && fh.Size > h.maxBytes:
		problems = append(problems, "file exceeds the "+humanize.IBytes(uint64(h.maxBytes))+" limit")
	}

	if len(problems) > 0 {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return h.renderForm(c, http.StatusUnprocessableEntity, form, problems)
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	rec, err := h.source.UploadRecording(c.Request().Context(), domain.UploadInput{
		Title:         form.Title,
		AgentID:       form.Agent,
		CustomerPhone: form.CustomerPhone,
		FileName:      fh.Filename,
		File:          f,
		Size:          fh.Size,
	})
	if err != nil {
		if isAuthError(err) {
			return err
		}
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		h.log.Error().Err(err).Str("title", form.Title).Msg("upload failed")
		return h.renderForm(c, http.StatusBadGateway, form, []string{err.Error()})
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	h.log.Info().Int("recording_id", rec.ID).Str("title", rec.Title).Msg("recording uploaded")
	return c.Redirect(http.StatusSeeOther, "/call-recordings")
}

func (h *UploadHandler) renderForm(c echo.Context, status int, form uploadForm, problems []string) error {
	agents, err := h.source.ListAgents(c.Request().Context())
	if err != nil {
		if isAuthError(err) {
			return err
		}
		h.log.Warn().Err(err).Msg("agent list unavailable for upload form")
	}
	p := newPage(c, "Upload recording", "recordings", uploadView{
		Form:     form,
		Agents:   agents,
		Errors:   problems,
		MaxBytes: h.maxBytes,
	})
	return c.Render(status, "upload", p)
}
