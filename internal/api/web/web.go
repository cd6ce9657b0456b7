// Package web holds the embedded page templates and static assets and renders
// them for echo.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/layout.html"

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer executes one template set per page, each combined with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every page template. Page names are file names without .html.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New(name).Funcs(Funcs()).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"duration": domain.FormatDuration,
		"since":    humanize.Time,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"day": func(s string) string {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return s
			}
			return t.Format("January 2, 2006")
		},
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
		"pct":   func(f float64) string { return humanize.FtoaWithDigits(f, 1) + "%" },
		"score": func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"mulf":  func(a, b float64) float64 { return a * b },
		"width": func(f, max float64) string {
			if max <= 0 {
				return "0%"
			}
			return fmt.Sprintf("%.0f%%", f*100/max)
		},
		"label": label,
		"badge": badge,
		"signed": func(n int) string {
			if n > 0 {
				return fmt.Sprintf("+%d%%", n)
			}
			return fmt.Sprintf("%d%%", n)
		},
	}
}

// label turns an enum value such as "in_progress" into "In progress".
func label(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// badge maps a status or sentiment to its CSS modifier.
func badge(v any) string {
	switch fmt.Sprint(v) {
	case "completed", "positive", "up":
		return "badge-good"
	case "failed", "negative", "down":
		return "badge-bad"
	case "processing", "in_progress", "pending":
		return "badge-pending"
	default:
		return "badge-neutral"
	}
}
