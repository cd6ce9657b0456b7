package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/internal/infrastructure/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	recordingStatuses = []string{
		string(domain.RecordingPending),
		string(domain.RecordingProcessing),
		string(domain.RecordingInProgress),
		string(domain.RecordingCompleted),
		string(domain.RecordingFailed),
	}
	sentimentOptions = []string{
		string(domain.SentimentPositive),
		string(domain.SentimentNeutral),
		string(domain.SentimentNegative),
		string(domain.SentimentPending),
	}
	analysisTabs = []string{"transcription", "sentiment", "compliance"}
)

// RecordingHandler serves the recording list, detail, export and transcript routes.
type RecordingHandler struct {
	source  ports.DataSource
	baseURL string
	log     zerolog.Logger
}

// NewRecordingHandler builds the handler. baseURL resolves relative audio file URLs;
// empty leaves them unchanged.
func NewRecordingHandler(source ports.DataSource, baseURL string, log zerolog.Logger) *RecordingHandler {
	return &RecordingHandler{source: source, baseURL: baseURL, log: log}
}

type recordingsView struct {
	Filter     domain.RecordingFilter
	Recordings []domain.CallRecording
	Total      int
	Statuses   []string
	Sentiments []string
	ExportURL  string
}

type recordingView struct {
	Recording     *domain.CallRecording
	Analysis      *domain.CallAnalysis
	Tab           string
	Tabs          []string
	AnalysisError string
	AudioURL      string
}

func recordingFilter(c echo.Context) domain.RecordingFilter {
	f := domain.RecordingFilter{
		Search:    c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		Sentiment: c.QueryParam("sentiment"),
	}
	if f.Status == "" {
		f.Status = domain.FilterAll
	}
	if f.Sentiment == "" {
		f.Sentiment = domain.FilterAll
	}
	return f
}

func (h *RecordingHandler) List(c echo.Context) error {
	f := recordingFilter(c)
	p := newPage(c, "Call Recordings", "recordings", nil)

	recs, err := h.source.ListRecordings(c.Request().Context(), 0)
	if err != nil {
		if p.Error, err = inlineError(err); err != nil {
			return err
		}
	}

	q := c.Request().URL.Query()
	p.Data = recordingsView{
		Filter:     f,
		Recordings: domain.FilterRecordings(recs, f),
		Total:      len(recs),
		Statuses:   recordingStatuses,
		Sentiments: sentimentOptions,
		ExportURL:  "/call-recordings/export.xlsx?" + q.Encode(),
	}
	return render(c, "recordings", p)
}

// Export streams the filtered recording list as a spreadsheet.
func (h *RecordingHandler) Export(c echo.Context) error {
	recs, err := h.source.ListRecordings(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	recs = domain.FilterRecordings(recs, recordingFilter(c))

	var buf bytes.Buffer
	if err := export.WriteRecordings(&buf, recs); err != nil {
		return err
	}
	name := fmt.Sprintf("call-recordings-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Show renders one recording. A missing analysis is the normal state of an
// unprocessed recording and is not treated as an error.
func (h *RecordingHandler) Show(c echo.Context) error {
	id, err := recordingID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	rec, err := h.source.GetRecording(ctx, id)
	if err != nil {
		return err
	}

	tab := c.QueryParam("tab")
	if !slices.Contains(analysisTabs, tab) {
		tab = analysisTabs[0]
	}
	view := recordingView{Recording: rec, Tab: tab, Tabs: analysisTabs, AudioURL: h.audioURL(rec.FileURL)}

	analysis, err := h.source.GetAnalysis(ctx, id)
	switch {
	case err == nil:
		view.Analysis = analysis
	case errors.Is(err, domain.ErrNotFound):
	case isAuthError(err):
		return err
	default:
		h.log.Warn().Err(err).Int("recording_id", id).Msg("analysis unavailable")
		view.AnalysisError = err.Error()
	}

	return render(c, "recording_detail", newPage(c, rec.Title, "recordings", view))
}

// Transcript downloads the transcription of a recording as plain text.
func (h *RecordingHandler) Transcript(c echo.Context) error {
	id, err := recordingID(c)
	if err != nil {
		return err
	}
	analysis, err := h.source.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=\"recording-%d-transcript.txt\"", id))
	return c.String(http.StatusOK, analysis.TranscriptionText)
}

func (h *RecordingHandler) audioURL(fileURL string) string {
	if fileURL == "" || h.baseURL == "" {
		return fileURL
	}
	ref, err := url.Parse(fileURL)
	if err != nil || ref.IsAbs() {
		return fileURL
	}
	base, err := url.Parse(h.baseURL)
	if err != nil {
		return fileURL
	}
	return base.ResolveReference(ref).String()
}

func recordingID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "recording not found")
	}
	return id, nil
}
