package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"txview/internal/application"
	"txview/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const DefaultURL = "https://indexer.highstakes.ch/demo/api/transactions/bymessagetype"

type Config struct {
	URL string
	// Timeout bounds a single fetch. Zero leaves it unbounded.
	Timeout time.Duration
	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client
}

// Client reads the by-message-type aggregation from the search index.
type Client struct {
	url  string
	rest *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("search url is required")
	}

	var rest *resty.Client
	if cfg.HTTPClient != nil {
		rest = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rest = resty.New()
	}
	rest.SetRetryCount(0)
	if cfg.Timeout > 0 {
		rest.SetTimeout(cfg.Timeout)
	}
	return &Client{url: url, rest: rest}, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) FetchByMessageType(ctx context.Context) (domain.AggregationResponse, error) {
	tracer := otel.Tracer("txview/search")
	ctx, span := tracer.Start(ctx, "search.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", c.url))

	result, err := c.fetch(ctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.AggregationResponse{}, err
	}
	return result, nil
}

func (c *Client) fetch(ctx context.Context, span trace.Span) (domain.AggregationResponse, error) {
	req := c.rest.R().SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := req.Get(c.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.AggregationResponse{}, fmt.Errorf("%w: %w", application.ErrTransport, ctxErr)
		}
		return domain.AggregationResponse{}, fmt.Errorf("%w: %v", application.ErrTransport, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return domain.AggregationResponse{}, fmt.Errorf("%w: search status %d", application.ErrTransport, resp.StatusCode())
	}

	var decoded domain.AggregationResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return domain.AggregationResponse{}, fmt.Errorf("%w: %v", application.ErrDecode, err)
	}
	return decoded, nil
}
