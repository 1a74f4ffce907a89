package pagefetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; VendorFinderBot/1.0)"
	defaultTimeout  = 8 * time.Second
	defaultMaxBytes = 2 << 20
)

type Options struct {
	Timeout    time.Duration
	MaxBytes   int64
	HTTPClient *http.Client
	Executor   *resilience.Executor
}

// Fetcher downloads a candidate page and reduces it to title and visible text.
type Fetcher struct {
	timeout    time.Duration
	maxBytes   int64
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(options Options) *Fetcher {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Fetcher{
		timeout:    timeout,
		maxBytes:   maxBytes,
		httpClient: httpClient,
		executor:   options.Executor,
	}
}

func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*domain.PageContent, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := resilience.Call(ctx, f.executor, "page.fetch", func(callCtx context.Context) (*domain.PageContent, error) {
		return f.fetch(callCtx, pageURL)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return nil, resilience.WrapTemporaryIfNeeded("fetch page", err, resilience.ClassifyHTTPError)
	}
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (*domain.PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create page request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/pdf;q=0.9,text/plain;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, resilience.NewHTTPStatusError("page", "fetch", resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	switch mediaType(resp.Header.Get("Content-Type"), raw) {
	case "application/pdf":
		text, err := pdfText(raw)
		if err != nil {
			return nil, err
		}
		return &domain.PageContent{Text: text}, nil
	case "text/plain":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("unsupported binary page body")
		}
		return &domain.PageContent{Text: strings.TrimSpace(string(raw))}, nil
	default:
		return htmlContent(raw)
	}
}

// mediaType trusts the header and falls back to sniffing when it is missing.
func mediaType(header string, raw []byte) string {
	if strings.TrimSpace(header) == "" {
		header = http.DetectContentType(raw)
	}
	parsed, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "text/html"
	}
	return strings.ToLower(parsed)
}
