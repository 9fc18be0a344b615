package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/config"
	"github.com/imaginify/backend/internal/models"
)

// CheckoutService creates hosted checkout sessions with the payment processor.
// Credits are granted later, when the processor reports the session completed.
type CheckoutService struct {
	secret      config.SecretSource
	apiURL      string
	currency    string
	frontendURL string
	httpClient  *http.Client
	validator   *ValidationHelper
}

func NewCheckoutService(secret config.SecretSource, cfg config.StripeConfig, frontendURL string) *CheckoutService {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		secret:      secret,
		apiURL:      strings.TrimSuffix(cfg.APIURL, "/"),
		currency:    currency,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		validator:   NewValidationHelper(),
	}
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CheckoutService) sessionForm(req models.CheckoutRequest) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.frontendURL+"/profile")
	form.Set("cancel_url", s.frontendURL+"/")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", s.currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(models.DecimalToMinorUnits(req.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Plan)
	form.Set("metadata[plan]", req.Plan)
	form.Set("metadata[credits]", strconv.Itoa(req.Credits))
	form.Set("metadata[buyerId]", req.BuyerID)
	if req.PlanID != nil {
		form.Set("metadata[planId]", strconv.Itoa(*req.PlanID))
	}
	return form
}

// CreateSession registers a checkout session and returns its redirect URL.
func (s *CheckoutService) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	if err := s.validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ValidationFailed("amount", "amount must be greater than zero")
	}

	secret := s.secret()
	if secret == "" {
		return nil, apperror.MissingConfig("STRIPE_SECRET_KEY")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v1/checkout/sessions",
		strings.NewReader(s.sessionForm(req).Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+secret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRequestBody))
	if err != nil {
		return nil, fmt.Errorf("checkout: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var stripeErr stripeErrorBody
		_ = json.Unmarshal(body, &stripeErr)
		log.Printf("[CHECKOUT] Session rejected for %s: %s %s", req.BuyerID, resp.Status, stripeErr.Error.Message)
		if resp.StatusCode == http.StatusBadRequest && stripeErr.Error.Message != "" {
			return nil, apperror.ValidationFailed("checkout", stripeErr.Error.Message)
		}
		return nil, fmt.Errorf("checkout: unexpected status: %s", resp.Status)
	}

	var session models.CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("checkout: decode response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("checkout: session %s has no url", session.ID)
	}

	log.Printf("[CHECKOUT] Session %s created for %s (%s, %d credits)", session.ID, req.BuyerID, req.Plan, req.Credits)
	return &session, nil
}
