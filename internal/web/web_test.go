package web

import (
	"bytes"
	"strings"
	"testing"

	tu "github.com/desertthunder/healthart/internal/testing"
)

func TestPages(t *testing.T) {
	pages, err := NewPages()
	if err != nil {
		t.Fatalf("expected templates to parse, got %v", err)
	}

	t.Run("Index", func(t *testing.T) {
		tc := []struct {
			name          string
			authenticated bool
			want          string
		}{
			{"Anonymous", false, `href="/login"`},
			{"Authenticated", true, `href="/art"`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var buf bytes.Buffer
				if err := pages.Render(&buf, "index.html", Page{Title: "Home", Authenticated: tt.authenticated, Body: tt.authenticated}); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("expected %s in output", tt.want)
				}
				if tt.authenticated != strings.Contains(buf.String(), `action="/logout"`) {
					t.Error("logout form should only appear when authenticated")
				}
			})
		}
	})

	t.Run("Art", func(t *testing.T) {
		var buf bytes.Buffer
		view := ArtView{
			RecoveryScore: 85,
			Metrics:       []string{"strain", "hrv"},
			Prompt:        "Dense <network>",
			ContentType:   "image/png",
			Image:         tu.PNG,
		}
		if err := pages.Render(&buf, "art.html", Page{Title: "Art", Authenticated: true, Body: view}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, `src="data:image/png;base64,`) {
			t.Error("expected inline data URI")
		}
		if !strings.Contains(out, "Recovery 85%") || !strings.Contains(out, "strain, hrv") {
			t.Errorf("expected score and metrics in output, got %s", out)
		}
		if strings.Contains(out, "<network>") {
			t.Error("prompt must be escaped")
		}
	})

	t.Run("Error", func(t *testing.T) {
		var buf bytes.Buffer
		if err := pages.Render(&buf, "error.html", Page{Title: "Error", Body: ErrorView{Status: 400, Message: "Login expired"}}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(buf.String(), "Login expired") {
			t.Error("expected message in output")
		}
	})

	t.Run("Unknown Page", func(t *testing.T) {
		var buf bytes.Buffer
		if err := pages.Render(&buf, "missing.html", Page{}); err == nil {
			t.Error("expected error for unknown page")
		}
		if buf.Len() != 0 {
			t.Error("expected nothing written")
		}
	})

	t.Run("Failing Writer", func(t *testing.T) {
		if err := pages.Render(&tu.FWriter{}, "callback.html", Page{Title: "Done"}); err == nil {
			t.Error("expected write error")
		}
	})
}
