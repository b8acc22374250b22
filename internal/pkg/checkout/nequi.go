package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/google/uuid"
)

// nequiProvider collects the payer's Nequi account data and issues a local
// payment reference. There is no production Nequi API integration yet; the
// provider interface keeps the orchestrator unchanged once one lands.
//
// TODO: call the Nequi push-payment API here once merchant credentials are
// issued; the reference must then come from the provider response.
type nequiProvider struct {
	merchantPhone string
}

func newNequiProvider(cfg map[string]string) *nequiProvider {
	return &nequiProvider{
		merchantPhone: strings.TrimSpace(cfg["phone_number"]),
	}
}

func (p *nequiProvider) Name() string {
	return models.PaymentProviderNequi
}

func (p *nequiProvider) Validate(fields map[string]string) error {
	phone := strings.TrimSpace(fields["phone_number"])
	if !nequiPhonePattern.MatchString(phone) {
		return fmt.Errorf("%w: phone_number must be exactly 10 digits", ErrValidationFailed)
	}
	if strings.TrimSpace(fields["full_name"]) == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidationFailed)
	}
	if !strings.Contains(fields["email"], "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	return nil
}

func (p *nequiProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	return &ActionResult{
		Reference: "NEQ-" + strings.ToUpper(uuid.NewString()[:8]),
		Instructions: []string{
			"Abre la app de Nequi en tu celular",
			fmt.Sprintf("Envía el pago al número %s", p.merchantPhone),
			"Conserva el comprobante de la transacción",
		},
		RequiresManualConfirm: true,
	}, nil
}
