package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search"
)

const (
	providerName = "google"
	// DefaultBaseURL is the Custom Search JSON API endpoint.
	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	maxPerRequest  = 10
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Provider queries the Google Custom Search JSON API.
type Provider struct {
	apiKey     string
	engineID   string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func New(apiKey, engineID string, options Options) *Provider {
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
		apiKey:     strings.TrimSpace(apiKey),
		engineID:   strings.TrimSpace(engineID),
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Configured() bool {
	return p.apiKey != "" && p.engineID != ""
}

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if !p.Configured() {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "google search",
			errors.New("GOOGLE_API_KEY and GOOGLE_SEARCH_ENGINE_ID are required"))
	}
	if limit <= 0 || limit > maxPerRequest {
		limit = maxPerRequest
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create google search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := search.FetchBody(p.httpClient, req, providerName)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode google search response: invalid json")
	}

	items := gjson.GetBytes(body, "items")
	rows := make([]domain.SearchResult, 0, len(items.Array()))
	items.ForEach(func(_, item gjson.Result) bool {
		rows = append(rows, domain.SearchResult{
			Title:   item.Get("title").String(),
			URL:     item.Get("link").String(),
			Snippet: item.Get("snippet").String(),
		})
		return true
	})
	return rows, nil
}
