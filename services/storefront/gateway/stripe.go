package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

// StripeClient cria payment intents na API do processador
type StripeClient struct {
	client *resty.Client
	logger *zap.Logger
}

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewStripeClient cria uma nova instância de StripeClient
func NewStripeClient(baseURL, secretKey string, timeout time.Duration, logger *zap.Logger) *StripeClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &StripeClient{client: client, logger: logger}
}

// CreatePaymentIntent solicita um intent com o valor em centavos.
// Retries reutilizam a mesma Idempotency-Key, então o processador nunca cria dois intents.
func (s *StripeClient) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	form := map[string]string{
		"amount":                 strconv.FormatInt(req.AmountMinor, 10),
		"currency":               req.Currency,
		"payment_method_types[]": "card",
	}
	for k, v := range req.Metadata {
		form[fmt.Sprintf("metadata[%s]", k)] = v
	}

	var (
		intent stripeIntentResponse
		apiErr stripeErrorResponse
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", key).
		SetFormData(form).
		SetResult(&intent).
		SetError(&apiErr).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, &models.GatewayError{Op: "create payment intent", Err: err}
	}
	if resp.IsError() {
		s.logger.Error("❌ [PAYMENT INTENT] Processor rejected request",
			zap.Int("status", resp.StatusCode()),
			zap.String("error_type", apiErr.Error.Type),
			zap.String("error_code", apiErr.Error.Code),
		)
		return nil, &models.GatewayError{
			Op:  "create payment intent",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode(), apiErr.Error.Message),
		}
	}
	if intent.ID == "" {
		return nil, &models.GatewayError{Op: "create payment intent", Err: fmt.Errorf("empty intent id")}
	}

	return &models.PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
