package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

func testRecordings() []domain.CallRecording {
	return []domain.CallRecording{
		{ID: 1, Title: "Billing Issue", Agent: domain.RecordingAgent{Name: "John Smith"}, Status: domain.RecordingCompleted, Sentiment: domain.SentimentNegative},
		{ID: 2, Title: "Policy Renewal", Agent: domain.RecordingAgent{Name: "Sarah Johnson"}, Status: domain.RecordingCompleted, Sentiment: domain.SentimentPositive},
		{ID: 3, Title: "Claim Status", Agent: domain.RecordingAgent{Name: "Michael Brown"}, Status: domain.RecordingInProgress, Sentiment: domain.SentimentPending},
	}
}

func withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func TestRecordings_ListAppliesFilters(t *testing.T) {
	e, r := newTestEcho()
	var gotLimit = -1
	h := NewRecordingHandler(&stubSource{
		listRecordingsFn: func(_ context.Context, limit int) ([]domain.CallRecording, error) {
			gotLimit = limit
			return testRecordings(), nil
		},
	}, "", zerolog.Nop())

	c, _ := newGetContext(e, "/call-recordings?status=completed&q=renewal")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	view := r.page.Data.(recordingsView)
	if gotLimit != 0 {
		t.Fatalf("expected the full list, limit=%d", gotLimit)
	}
	if view.Total != 3 || len(view.Recordings) != 1 || view.Recordings[0].ID != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Filter.Sentiment != domain.FilterAll {
		t.Fatalf("missing sentiment should default to all, got %q", view.Filter.Sentiment)
	}
	if !strings.HasPrefix(view.ExportURL, "/call-recordings/export.xlsx?") || !strings.Contains(view.ExportURL, "status=completed") {
		t.Fatalf("unexpected export url %q", view.ExportURL)
	}
}

func TestRecordings_Export(t *testing.T) {
	e, _ := newTestEcho()
	h := NewRecordingHandler(&stubSource{
		listRecordingsFn: func(context.Context, int) ([]domain.CallRecording, error) { return testRecordings(), nil },
	}, "", zerolog.Nop())

	c, rec := newGetContext(e, "/call-recordings/export.xlsx?sentiment=positive")
	if err := h.Export(c); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition, got %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Fatal("expected a zip container")
	}
}

func TestRecordings_ShowWithoutAnalysis(t *testing.T) {
	e, r := newTestEcho()
	h := NewRecordingHandler(&stubSource{
		getRecordingFn: func(_ context.Context, id int) (*domain.CallRecording, error) {
			return &domain.CallRecording{ID: id, Title: "Claim Status", FileURL: "/media/calls/3.mp3"}, nil
		},
	}, "http://backend:8000", zerolog.Nop())

	c, _ := newGetContext(e, "/call-recordings/3?tab=bogus")
	withID(c, "3")
	if err := h.Show(c); err != nil {
		t.Fatalf("Show: %v", err)
	}
	view := r.page.Data.(recordingView)
	if view.Analysis != nil || view.AnalysisError != "" {
		t.Fatalf("a missing analysis is not an error: %+v", view)
	}
	if view.Tab != "transcription" {
		t.Fatalf("expected default tab, got %q", view.Tab)
	}
	if view.AudioURL != "http://backend:8000/media/calls/3.mp3" {
		t.Fatalf("unexpected audio url %q", view.AudioURL)
	}
}

func TestRecordings_ShowWithAnalysis(t *testing.T) {
	e, r := newTestEcho()
	h := NewRecordingHandler(&stubSource{
		getRecordingFn: func(_ context.Context, id int) (*domain.CallRecording, error) {
			return &domain.CallRecording{ID: id, FileURL: "https://cdn.example.com/a.mp3"}, nil
		},
		getAnalysisFn: func(_ context.Context, id int) (*domain.CallAnalysis, error) {
			return &domain.CallAnalysis{CallRecordingID: id, Sentiment: domain.SentimentPositive}, nil
		},
	}, "http://backend:8000", zerolog.Nop())

	c, _ := newGetContext(e, "/call-recordings/2?tab=compliance")
	withID(c, "2")
	if err := h.Show(c); err != nil {
		t.Fatalf("Show: %v", err)
	}
	view := r.page.Data.(recordingView)
	if view.Analysis == nil || view.Tab != "compliance" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.AudioURL != "https://cdn.example.com/a.mp3" {
		t.Fatalf("absolute urls must be kept, got %q", view.AudioURL)
	}
}

func TestRecordings_ShowNotFound(t *testing.T) {
	e, _ := newTestEcho()
	h := NewRecordingHandler(&stubSource{}, "", zerolog.Nop())

	c, _ := newGetContext(e, "/call-recordings/42")
	withID(c, "42")
	if err := h.Show(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordings_Transcript(t *testing.T) {
	e, _ := newTestEcho()
	h := NewRecordingHandler(&stubSource{
		getAnalysisFn: func(context.Context, int) (*domain.CallAnalysis, error) {
			return &domain.CallAnalysis{TranscriptionText: "Agent: Hello"}, nil
		},
	}, "", zerolog.Nop())

	c, rec := newGetContext(e, "/call-recordings/1/transcript.txt")
	withID(c, "1")
	if err := h.Transcript(c); err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if rec.Body.String() != "Agent: Hello" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "recording-1-transcript.txt") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestRecordings_ListOffersEveryStatus(t *testing.T) {
	e, r := newTestEcho()
	recs := append(testRecordings(), domain.CallRecording{ID: 999, Title: "New upload", Status: domain.RecordingProcessing, Sentiment: domain.SentimentPending})
	h := NewRecordingHandler(&stubSource{
		listRecordingsFn: func(context.Context, int) ([]domain.CallRecording, error) { return recs, nil },
	}, "", zerolog.Nop())

	c, _ := newGetContext(e, "/call-recordings?status=processing")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	view := r.page.Data.(recordingsView)
	for _, want := range []domain.RecordingStatus{
		domain.RecordingPending, domain.RecordingProcessing, domain.RecordingInProgress,
		domain.RecordingCompleted, domain.RecordingFailed,
	} {
		if !slices.Contains(view.Statuses, string(want)) {
			t.Errorf("status %q not offered", want)
		}
	}
	if len(view.Recordings) != 1 || view.Recordings[0].ID != 999 {
		t.Fatalf("expected the processing upload, got %+v", view.Recordings)
	}
}
