package bing

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
	providerName    = "bing"
	DefaultEndpoint = "https://api.bing.microsoft.com/v7.0/search"
	maxPerRequest   = 50
	subscriptionKey = "Ocp-Apim-Subscription-Key"
)

type Options struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Provider queries the Bing Web Search v7 API.
type Provider struct {
	apiKey     string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

func New(apiKey string, options Options) *Provider {
	endpoint := strings.TrimSpace(options.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
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
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Configured() bool { return p.apiKey != "" }

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if !p.Configured() {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "bing search", errors.New("BING_API_KEY is required"))
	}
	if limit <= 0 || limit > maxPerRequest {
		limit = maxPerRequest
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))
	params.Set("textFormat", "Raw")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create bing search request: %w", err)
	}
	req.Header.Set(subscriptionKey, p.apiKey)
	req.Header.Set("Accept", "application/json")

	body, err := search.FetchBody(p.httpClient, req, providerName)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode bing search response: invalid json")
	}

	values := gjson.GetBytes(body, "webPages.value")
	rows := make([]domain.SearchResult, 0, len(values.Array()))
	for _, item := range values.Array() {
		rows = append(rows, domain.SearchResult{
			Title:   item.Get("name").String(),
			URL:     item.Get("url").String(),
			Snippet: item.Get("snippet").String(),
		})
	}
	return rows, nil
}
