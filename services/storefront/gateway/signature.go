package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

// SignatureHeader é o cabeçalho que carrega a assinatura do webhook
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance é a idade máxima aceita para o timestamp assinado
const DefaultTolerance = webhook.DefaultTolerance

// SignatureVerifier valida eventos no esquema t=<unix>,v1=<hmac-sha256 hex>
// usando o pacote webhook do stripe-go. O evento é decodificado no nosso
// modelo, sem checar a versão da API de quem enviou.
type SignatureVerifier struct {
	Tolerance time.Duration
}

// NewSignatureVerifier cria um verificador. Tolerância zero desativa a checagem do timestamp.
func NewSignatureVerifier(tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{Tolerance: tolerance}
}

// ConstructEvent verifica a assinatura sobre os bytes brutos e só então
// decodifica o evento. Falhas devolvem *models.SignatureError.
func (v *SignatureVerifier) ConstructEvent(payload []byte, header, secret string) (*models.WebhookEvent, error) {
	var err error
	if v.Tolerance > 0 {
		err = webhook.ValidatePayloadWithTolerance(payload, header, secret, v.Tolerance)
	} else {
		err = webhook.ValidatePayloadIgnoringTolerance(payload, header, secret)
	}
	if err != nil {
		return nil, &models.SignatureError{Reason: signatureReason(err), Err: err}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, &models.SignatureError{Reason: fmt.Sprintf("invalid payload: %v", err), Err: err}
	}
	if event.ID == "" {
		return nil, &models.SignatureError{Reason: "event without id"}
	}
	return &event, nil
}

func signatureReason(err error) string {
	switch {
	case errors.Is(err, webhook.ErrNotSigned):
		return "missing signature header"
	case errors.Is(err, webhook.ErrInvalidHeader):
		return "invalid signature header"
	case errors.Is(err, webhook.ErrTooOld):
		return "timestamp outside the tolerance zone"
	case errors.Is(err, webhook.ErrNoValidSignature):
		return "no signatures found matching the expected signature for payload"
	default:
		return err.Error()
	}
}

// SignPayload gera um cabeçalho de assinatura válido. Usado por testes e
// ferramentas que simulam o processador.
func SignPayload(payload []byte, secret string, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}
