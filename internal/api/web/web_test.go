package web

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRenderer_ParsesAllPages(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	for _, name := range []string{"landing", "login", "dashboard", "agents", "agent_detail", "recordings", "recording_detail", "upload", "error"} {
		if _, ok := r.pages[name]; !ok {
			t.Errorf("page %q not parsed", name)
		}
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := r.Render(&bytes.Buffer{}, "missing", nil, nil); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestLabelAndBadge(t *testing.T) {
	if got := label("in_progress"); got != "In progress" {
		t.Fatalf("label = %q", got)
	}
	if got := badge("negative"); got != "badge-bad" {
		t.Fatalf("badge = %q", got)
	}
	if got := Funcs()["signed"].(func(int) string)(12); !strings.HasPrefix(got, "+") {
		t.Fatalf("signed = %q", got)
	}
}
