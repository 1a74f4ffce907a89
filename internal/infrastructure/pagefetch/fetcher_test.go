package pagefetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

func TestFetchPageExtractsTitleAndVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title> Cake  Hub </title><style>.a{}</style></head>
<body><script>var x = "wa.me/000";</script><p>Located in Lekki.</p><div>WhatsApp: 0803 111 2222</div></body></html>`))
	}))
	defer server.Close()

	page, err := New(Options{}).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if page.Title != "Cake Hub" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if page.Text != "Cake Hub Located in Lekki. WhatsApp: 0803 111 2222" {
		t.Fatalf("unexpected text %q", page.Text)
	}
}

func TestFetchPageTextIncludesTitleOnlyPhrases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Cakes in Ibadan | Order now</title></head><body><p>Custom designs.</p></body></html>`))
	}))
	defer server.Close()

	page, err := New(Options{}).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if page.Title != "Cakes in Ibadan | Order now" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !strings.Contains(page.Text, "Ibadan") || !strings.Contains(page.Text, "Custom designs.") {
		t.Fatalf("expected title and body in text, got %q", page.Text)
	}
}

func TestFetchPageCapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 64) + "TAIL"))
	}))
	defer server.Close()

	page, err := New(Options{MaxBytes: 64}).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if strings.Contains(page.Text, "TAIL") || len(page.Text) != 64 {
		t.Fatalf("expected body to be capped, got %d bytes", len(page.Text))
	}
}

func TestFetchPageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(Options{}).FetchPage(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("404 must not be temporary")
	}
}

func TestFetchPageTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	started := time.Now()
	_, err := New(Options{Timeout: 30 * time.Millisecond}).FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(started) > 2*time.Second {
		t.Fatalf("timeout was not enforced")
	}
}

func TestFetchPageRejectsInvalidPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 truncated"))
	}))
	defer server.Close()

	if _, err := New(Options{}).FetchPage(context.Background(), server.URL); err == nil {
		t.Fatalf("expected pdf parse error")
	}
}

func TestMediaTypeSniffsMissingHeader(t *testing.T) {
	if got := mediaType("", []byte("%PDF-1.7\n")); got != "application/pdf" {
		t.Fatalf("expected pdf sniffing, got %q", got)
	}
	if got := mediaType("text/html; charset=utf-8", nil); got != "text/html" {
		t.Fatalf("unexpected media type %q", got)
	}
}
