package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// WebhookOutcome é o resultado de um evento processado sem erro
type WebhookOutcome string

const (
	// WebhookSettled: pagamento e pedido passaram para paid
	WebhookSettled WebhookOutcome = "settled"
	// WebhookDuplicate: evento já estava no ledger, nada foi alterado
	WebhookDuplicate WebhookOutcome = "duplicate"
	// WebhookIgnored: tipo de evento sem tratamento
	WebhookIgnored WebhookOutcome = "ignored"
	// WebhookOrderNotFound: o pedido do metadata não existe, nada foi alterado
	WebhookOrderNotFound WebhookOutcome = "order_not_found"
	// WebhookStale: o pedido já saiu de pending; o evento é registrado sem liquidar
	WebhookStale WebhookOutcome = "stale"
)

// WebhookResult descreve o que o processador fez com o evento
type WebhookResult struct {
	Outcome WebhookOutcome
	EventID string
	OrderID int64
}

var errLostLedgerRace = errors.New("webhook event recorded concurrently")

// WebhookProcessor aplica eventos assinados do processador de pagamentos
// com efeito exatamente-uma-vez sobre entregas pelo menos-uma-vez.
type WebhookProcessor struct {
	store     repository.Store
	verifier  WebhookVerifier
	secret    string
	publisher events.Publisher
	logger    *zap.Logger
}

// NewWebhookProcessor cria uma nova instância de WebhookProcessor
func NewWebhookProcessor(store repository.Store, verifier WebhookVerifier, secret string, publisher events.Publisher, logger *zap.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		store:     store,
		verifier:  verifier,
		secret:    secret,
		publisher: publisher,
		logger:    logger,
	}
}

// Process verifica, deduplica e aplica o evento. Erros tipados indicam
// resposta 4xx/500 de configuração; qualquer outro erro deve virar 500
// para o processador reenviar.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ctx, span := tracer.Start(ctx, "process_webhook")
	defer span.End()

	// 1. Autenticidade
	if p.secret == "" {
		p.logger.Error("❌ [WEBHOOK] Secret not configured")
		return nil, &models.ConfigurationError{Message: "Webhook secret não configurado"}
	}

	event, err := p.verifier.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		p.logger.Warn("🚫 [WEBHOOK] Signature rejected", zap.Error(err))
		var sigErr *models.SignatureError
		if !errors.As(err, &sigErr) {
			err = &models.SignatureError{Reason: err.Error(), Err: err}
		}
		return nil, err
	}

	result := &WebhookResult{EventID: event.ID}
	span.SetAttributes(attribute.String("event_id", event.ID), attribute.String("event_type", event.Type))
	log := p.logger.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	// 2. Idempotência
	seen, err := p.store.WebhookEvents().Exists(ctx, event.ID)
	if err != nil {
		return nil, p.fail(log, fmt.Errorf("failed to check ledger: %w", err))
	}
	if seen {
		log.Info("ℹ️ [WEBHOOK] Duplicate delivery")
		result.Outcome = WebhookDuplicate
		return result, nil
	}

	// 3. Despacho por tipo
	if event.Type != models.EventPaymentIntentSucceeded {
		log.Info("ℹ️ [WEBHOOK] Event type not handled")
		result.Outcome = WebhookIgnored
		return result, nil
	}

	// 4. Pedido no metadata
	var intent models.PaymentIntentObject
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		log.Warn("🚫 [WEBHOOK] Malformed payment intent", zap.Error(err))
		return nil, &models.InvalidMetadataError{}
	}
	orderID, err := parseOrderID(intent.Metadata)
	if err != nil {
		log.Warn("🚫 [WEBHOOK] Invalid order id in metadata", zap.String("intent_id", intent.ID))
		return nil, err
	}
	result.OrderID = orderID
	log = log.With(zap.Int64("order_id", orderID), zap.String("intent_id", intent.ID))

	// 5. Existência do pedido
	if _, err := p.store.Orders().FindByID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("⚠️ [WEBHOOK] Order not found")
			result.Outcome = WebhookOrderNotFound
			return result, nil
		}
		return nil, p.fail(log, fmt.Errorf("failed to get order: %w", err))
	}

	// 6 e 7. Liquidação e ledger na mesma transação
	settled := false
	err = p.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		moved, err := repos.Orders().UpdateStatusIf(ctx, orderID, models.OrderStatusPending, models.OrderStatusPaid, nil)
		if err != nil {
			return err
		}
		if moved {
			reference := intent.ID
			if _, err := repos.Payments().TransitionByOrder(ctx, orderID, models.PaymentStatusPending, models.PaymentStatusPaid, &reference); err != nil {
				return err
			}
			if err := repos.Orders().AppendStatusHistory(ctx, &models.OrderStatusHistory{
				OrderID: orderID,
				Status:  models.OrderStatusPaid,
			}); err != nil {
				return err
			}
		}

		recorded, err := repos.WebhookEvents().Record(ctx, event.ID)
		if err != nil {
			return err
		}
		if !recorded {
			return errLostLedgerRace
		}
		settled = moved
		return nil
	})
	switch {
	case errors.Is(err, errLostLedgerRace):
		log.Info("ℹ️ [WEBHOOK] Duplicate delivery processed concurrently")
		result.Outcome = WebhookDuplicate
		return result, nil
	case err != nil:
		return nil, p.fail(log, fmt.Errorf("failed to settle order: %w", err))
	}

	if !settled {
		log.Info("ℹ️ [WEBHOOK] Order no longer pending, nothing to settle")
		result.Outcome = WebhookStale
		return result, nil
	}

	result.Outcome = WebhookSettled
	log.Info("✅ [WEBHOOK] Order settled")

	publish(ctx, p.publisher, p.logger, events.Event{
		Type:      events.TypeOrderPaid,
		OrderID:   orderID,
		Status:    string(models.OrderStatusPaid),
		Reference: intent.ID,
	})
	return result, nil
}

// parseOrderID aceita somente um inteiro positivo em formato string
func parseOrderID(metadata map[string]string) (int64, error) {
	raw, ok := metadata[models.OrderIDMetadataKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, &models.InvalidMetadataError{}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.InvalidMetadataError{Value: raw}
	}
	return id, nil
}

func (p *WebhookProcessor) fail(log *zap.Logger, err error) error {
	log.Error("❌ [WEBHOOK] FAILED", zap.Error(err))
	return err
}
