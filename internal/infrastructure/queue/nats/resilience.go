package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

// workerUnreachable lists errors that clear up once a worker subscribes or the connection recovers.
var workerUnreachable = []error{
	nats.ErrNoResponders,
	nats.ErrNoServers,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
}

// classifyNATSError retries only when no worker could take the request.
// A timed-out request may still be running on a worker and is never re-sent.
func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), isWorkerUnreachable(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

func isWorkerUnreachable(err error) bool {
	for _, target := range workerUnreachable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wrapTemporaryIfNeeded marks transport failures, timeouts included, as domain.ErrTemporary
// so the HTTP edge answers 503.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retryable ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
