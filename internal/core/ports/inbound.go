package ports

import (
	"context"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

// VendorDiscoveryService is the inbound contract for running a discovery request end to end.
type VendorDiscoveryService interface {
	FindVendors(ctx context.Context, req domain.DiscoveryRequest) (*domain.AgentResult, error)
}
