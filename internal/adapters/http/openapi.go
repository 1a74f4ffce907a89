package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

const searchPath = "/v1/vendors/search"

//go:embed openapi.yaml
var openAPIDocument []byte

var loadSearchRoute = sync.OnceValues(func() (*routers.Route, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	pathItem := doc.Paths.Value(searchPath)
	if pathItem == nil || pathItem.Get == nil {
		return nil, fmt.Errorf("openapi document has no GET %s", searchPath)
	}
	return &routers.Route{
		Spec:      doc,
		Path:      searchPath,
		PathItem:  pathItem,
		Method:    http.MethodGet,
		Operation: pathItem.Get,
	}, nil
})

// validateSearchRequest checks the query string against the embedded OpenAPI operation.
// The legacy /search alias is validated against the same operation.
func validateSearchRequest(r *http.Request, route *routers.Route) error {
	err := openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
		Request: r,
		Route:   route,
		Options: &openapi3filter.Options{
			ExcludeRequestBody: true,
		},
	})
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate search request", err)
	}
	return nil
}

type searchParams struct {
	Service       string
	Location      string
	Platform      *string
	MaxResults    *int
	MinConfidence *float64
}

func bindSearchParams(query url.Values) (searchParams, error) {
	var params searchParams
	bindings := []struct {
		name     string
		required bool
		dest     any
	}{
		{"service", true, &params.Service},
		{"location", true, &params.Location},
		{"platform", false, &params.Platform},
		{"max_results", false, &params.MaxResults},
		{"min_confidence", false, &params.MinConfidence},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, query, b.dest); err != nil {
			return searchParams{}, domain.WrapError(domain.ErrInvalidInput, "bind search request", err)
		}
	}
	return params, nil
}

func (p searchParams) discoveryRequest() domain.DiscoveryRequest {
	req := domain.DiscoveryRequest{
		Service:       p.Service,
		Location:      p.Location,
		MaxResults:    p.MaxResults,
		MinConfidence: p.MinConfidence,
	}
	if p.Platform != nil {
		req.Platform = *p.Platform
	}
	return req
}
