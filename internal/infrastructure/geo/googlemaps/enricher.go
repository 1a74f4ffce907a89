package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const (
	defaultTimeout = 5 * time.Second
	zeroResults    = "ZERO_RESULTS"
)

var errMissingKey = errors.New("GOOGLE_MAPS_API_KEY is not set")

type Options struct {
	// BaseURL overrides https://maps.googleapis.com, used by tests.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Executor   *resilience.Executor
}

// Enricher resolves vendor names to Places records and coordinates to addresses.
// Without an API key every call returns domain.ErrCapabilityUnavailable.
type Enricher struct {
	client   *maps.Client
	timeout  time.Duration
	executor *resilience.Executor
}

func New(apiKey string, options Options) (*Enricher, error) {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	enricher := &Enricher{timeout: timeout, executor: options.Executor}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return enricher, nil
	}

	clientOptions := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if options.BaseURL != "" {
		clientOptions = append(clientOptions, maps.WithBaseURL(strings.TrimRight(options.BaseURL, "/")))
	}
	if options.HTTPClient != nil {
		clientOptions = append(clientOptions, maps.WithHTTPClient(options.HTTPClient))
	}
	client, err := maps.NewClient(clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	enricher.client = client
	return enricher, nil
}

func (e *Enricher) Available() bool { return e.client != nil }

// Enrich returns the first Places text-search match for "name location", or nil when nothing matches.
func (e *Enricher) Enrich(ctx context.Context, name, location string) (*domain.BusinessEnrichment, error) {
	if e.client == nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "enrich vendor", errMissingKey)
	}
	query := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(location))
	if query == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := resilience.Call(ctx, e.executor, "maps.text_search", func(callCtx context.Context) (maps.PlacesSearchResponse, error) {
		return e.client.TextSearch(callCtx, &maps.TextSearchRequest{Query: query})
	}, classifyMapsError)
	if err != nil {
		if isZeroResults(err) {
			return nil, nil
		}
		return nil, resilience.WrapTemporaryIfNeeded("enrich vendor", err, classifyMapsError)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	place := resp.Results[0]
	record := &domain.BusinessEnrichment{
		Address:    place.FormattedAddress,
		Latitude:   place.Geometry.Location.Lat,
		Longitude:  place.Geometry.Location.Lng,
		ExternalID: place.PlaceID,
	}
	if place.Rating > 0 {
		rating := float64(place.Rating)
		record.Rating = &rating
	}
	return record, nil
}

// ReverseGeocode returns the formatted address of the first geocoding result.
func (e *Enricher) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if e.client == nil {
		return "", domain.WrapError(domain.ErrCapabilityUnavailable, "reverse geocode", errMissingKey)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results, err := resilience.Call(ctx, e.executor, "maps.reverse_geocode", func(callCtx context.Context) ([]maps.GeocodingResult, error) {
		return e.client.ReverseGeocode(callCtx, &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: lat, Lng: lng}})
	}, classifyMapsError)
	if err != nil {
		if isZeroResults(err) {
			return "", nil
		}
		return "", resilience.WrapTemporaryIfNeeded("reverse geocode", err, classifyMapsError)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), zeroResults)
}

// classifyMapsError maps API status strings onto the shared HTTP classification.
func classifyMapsError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, zeroResults),
		strings.Contains(msg, "REQUEST_DENIED"),
		strings.Contains(msg, "INVALID_REQUEST"):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "UNKNOWN_ERROR"):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ClassifyHTTPError(err)
}
