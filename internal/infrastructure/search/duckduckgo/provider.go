package duckduckgo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search"
)

const (
	providerName   = "duckduckgo"
	DefaultBaseURL = "https://html.duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (compatible; VendorFinderBot/1.0)"
	redirectPrefix = "//duckduckgo.com/l/?"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Provider scrapes the keyless DuckDuckGo HTML endpoint.
type Provider struct {
	enabled    bool
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func New(enabled bool, options Options) *Provider {
	baseURL := strings.TrimSpace(options.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = search.DefaultTimeout
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{
		enabled:    enabled,
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Configured() bool { return p.enabled }

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if !p.enabled {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "duckduckgo search", fmt.Errorf("DUCKDUCKGO_ENABLED is false"))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create duckduckgo search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	body, err := search.FetchBody(p.httpClient, req, providerName)
	if err != nil {
		return nil, err
	}
	return parseResults(body, limit)
}

func parseResults(body []byte, limit int) ([]domain.SearchResult, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}

	rows := make([]domain.SearchResult, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(rows) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			row := extractRow(n)
			if row.URL != "" && row.Title != "" {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows, nil
}

func extractRow(n *html.Node) domain.SearchResult {
	var row domain.SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				row.URL = unwrapRedirect(attr(n, "href"))
				row.Title = textContent(n)
			case hasClass(n, "result__snippet"):
				row.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return row
}

// unwrapRedirect resolves "//duckduckgo.com/l/?uddg=<target>" links to the target.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, redirectPrefix) {
		return href
	}
	values, err := url.ParseQuery(strings.TrimPrefix(href, redirectPrefix))
	if err != nil {
		return href
	}
	if target := values.Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
