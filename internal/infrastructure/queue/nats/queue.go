package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const (
	QueueGroup = "discovery-workers"

	kindInvalidInput = "invalid_input"
	kindInternal     = "internal"
)

// Queue carries discovery requests between the API and workers with NATS request-reply.
type Queue struct {
	conn           *nats.Conn
	subject        string
	requestTimeout time.Duration
	executor       *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	RequestTimeout       time.Duration
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	conn, err := nats.Connect(
		url,
		nats.Name("vendor-finder"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		subject:        subject,
		requestTimeout: requestTimeout,
		executor:       options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// reply is the wire envelope answered by workers: exactly one of Result or Error is set.
type reply struct {
	Result *domain.AgentResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Kind   string              `json:"kind,omitempty"`
}

// FindVendors dispatches the request to a worker and waits for its reply.
func (q *Queue) FindVendors(ctx context.Context, req domain.DiscoveryRequest) (*domain.AgentResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal discovery request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, q.requestTimeout)
	defer cancel()

	msg, err := resilience.Call(ctx, q.executor, "nats.request", func(callCtx context.Context) (*nats.Msg, error) {
		return q.conn.RequestWithContext(callCtx, q.subject, payload)
	}, classifyNATSError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("nats request", err)
	}
	return decodeReply(msg.Data)
}

func decodeReply(data []byte) (*domain.AgentResult, error) {
	var out reply
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode discovery reply: %w", err)
	}
	if out.Error != "" {
		if out.Kind == kindInvalidInput {
			return nil, domain.WrapError(domain.ErrInvalidInput, "remote discovery", errors.New(out.Error))
		}
		return nil, fmt.Errorf("remote discovery: %s", out.Error)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("decode discovery reply: empty result")
	}
	return out.Result, nil
}

// RequestObserver is notified around each request a worker serves.
type RequestObserver interface {
	StartRequest()
	FinishRequest(service string, duration time.Duration, status string)
}

// ServeDiscovery answers discovery requests in the queue group until ctx is cancelled, then drains.
func (q *Queue) ServeDiscovery(ctx context.Context, service ports.VendorDiscoveryService, handlerTimeout time.Duration, observer RequestObserver) error {
	sub, err := q.conn.QueueSubscribe(q.subject, QueueGroup, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		started := time.Now()
		if observer != nil {
			observer.StartRequest()
		}

		handlerCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()

		data, status := handleRequest(handlerCtx, service, msg.Data)
		if err := msg.Respond(data); err != nil {
			slog.Error("nats_respond_failed", "subject", msg.Subject, "error", err)
		}
		if observer != nil {
			observer.FinishRequest("worker", time.Since(started), status)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func handleRequest(ctx context.Context, service ports.VendorDiscoveryService, data []byte) ([]byte, string) {
	var req domain.DiscoveryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return encodeReply(reply{Error: fmt.Sprintf("decode discovery request: %v", err), Kind: kindInvalidInput}), kindInvalidInput
	}

	result, err := service.FindVendors(ctx, req)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return encodeReply(reply{Error: err.Error(), Kind: kindInvalidInput}), kindInvalidInput
		}
		slog.Error("worker_discovery_failed", "service", req.Service, "error", err)
		return encodeReply(reply{Error: err.Error(), Kind: kindInternal}), "error"
	}
	return encodeReply(reply{Result: result}), "ok"
}

func encodeReply(r reply) []byte {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(reply{Error: fmt.Sprintf("encode discovery reply: %v", err), Kind: kindInternal})
	}
	return data
}
