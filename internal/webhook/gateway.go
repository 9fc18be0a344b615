package webhook

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/metrics"
	"github.com/imaginify/backend/internal/services"
)

const (
	ProviderClerk  = "clerk"
	ProviderStripe = "stripe"

	// DefaultHandlerTimeout keeps a delivery inside the providers' own timeouts.
	DefaultHandlerTimeout = 8 * time.Second
)

// HandlerFunc applies one event. A returned error makes the provider retry.
type HandlerFunc func(ctx context.Context, event Event) (services.Outcome, error)

// Decoder turns a verified body into a typed envelope.
type Decoder func(body []byte) (Envelope, error)

// Result describes one processed delivery.
type Result struct {
	Provider   string
	DeliveryID string
	EventType  string
	Outcome    services.Outcome
}

// Gateway is one provider's ingestion pipeline: verify, decode, dispatch.
type Gateway struct {
	provider string
	verifier Verifier
	decode   Decoder
	handlers map[string]HandlerFunc
	dedupe   *Deduper
	metrics  *metrics.Collectors
	timeout  time.Duration
}

func NewGateway(provider string, verifier Verifier, decode Decoder, handlers map[string]HandlerFunc) *Gateway {
	return &Gateway{
		provider: provider,
		verifier: verifier,
		decode:   decode,
		handlers: handlers,
		timeout:  DefaultHandlerTimeout,
	}
}

func (g *Gateway) WithDeduper(d *Deduper) *Gateway {
	g.dedupe = d
	return g
}

func (g *Gateway) WithMetrics(m *metrics.Collectors) *Gateway {
	g.metrics = m
	return g
}

func (g *Gateway) WithTimeout(timeout time.Duration) *Gateway {
	g.timeout = timeout
	return g
}

func (g *Gateway) Provider() string {
	return g.provider
}

// Process runs a raw delivery through the pipeline. Nothing past
// verification runs unless the signature holds.
func (g *Gateway) Process(ctx context.Context, body []byte, headers http.Header) (Result, error) {
	result := Result{Provider: g.provider}

	delivery, err := g.verifier.Verify(body, headers)
	if err != nil {
		log.Printf("[WEBHOOK] %s verification failed: %v", g.provider, err)
		g.metrics.ObserveDelivery(g.provider, "unverified", string(services.OutcomeFailed))
		return result, err
	}

	env, err := g.decode(body)
	if err != nil {
		log.Printf("[WEBHOOK] %s payload rejected: %v body=%s", g.provider, err, string(body))
		g.metrics.ObserveDelivery(g.provider, "undecodable", string(services.OutcomeFailed))
		return result, err
	}

	result.EventType = env.Type
	result.DeliveryID = delivery.ID
	if result.DeliveryID == "" {
		result.DeliveryID = env.ID
	}

	handler, ok := g.handlers[env.Type]
	if !ok {
		log.Printf("[WEBHOOK] Unhandled %s event type: %s", g.provider, env.Type)
		result.Outcome = services.Outcome{Kind: services.OutcomeIgnored}
		g.metrics.ObserveDelivery(g.provider, "unhandled", string(services.OutcomeIgnored))
		return result, nil
	}

	if g.dedupe.Seen(ctx, g.provider, result.DeliveryID) {
		log.Printf("[WEBHOOK] %s delivery %s already processed", g.provider, result.DeliveryID)
		result.Outcome = services.Outcome{Kind: services.OutcomeAlreadyDone}
		g.metrics.ObserveDelivery(g.provider, env.Type, string(services.OutcomeAlreadyDone))
		return result, nil
	}

	handlerCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		handlerCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	outcome, err := handler(handlerCtx, env.Event)
	if err == nil && !outcome.Success() {
		err = outcome.Err
		if err == nil {
			err = errors.New("handler reported failure")
		}
	}
	if err != nil {
		log.Printf("[WEBHOOK] %s %s handler failed: %v", g.provider, env.Type, err)
		result.Outcome = services.Outcome{Kind: services.OutcomeFailed, Err: err}
		g.metrics.ObserveDelivery(g.provider, env.Type, string(services.OutcomeFailed))
		return result, err
	}

	result.Outcome = outcome
	g.dedupe.Mark(ctx, g.provider, result.DeliveryID)
	g.metrics.ObserveDelivery(g.provider, env.Type, string(outcome.Kind))
	log.Printf("[WEBHOOK] %s %s processed: %s", g.provider, env.Type, outcome.Kind)
	return result, nil
}

// StatusCode maps a Process error to the response code. Authentication and
// validation failures are permanent (400); everything else asks for a retry.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperror.ErrAuthentication), errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
