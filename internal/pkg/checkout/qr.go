package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

// qrProvider looks up the pre-provisioned QR image for the plan and target
// sub-provider and requires an explicit "I scanned it" acknowledgement.
type qrProvider struct {
	lookup QRAssetLookup
}

func newQRProvider(lookup QRAssetLookup) *qrProvider {
	return &qrProvider{lookup: lookup}
}

func (p *qrProvider) Name() string {
	return models.PaymentProviderQRCode
}

func (p *qrProvider) Validate(fields map[string]string) error {
	if strings.TrimSpace(fields["target_provider"]) == "" {
		return fmt.Errorf("%w: target_provider is required", ErrValidationFailed)
	}
	return nil
}

func (p *qrProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	target := strings.TrimSpace(sess.Fields()["target_provider"])

	asset, err := p.lookup(ctx, sess.Plan.ID, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}
	if asset == nil {
		return nil, ErrNoQRConfigured
	}

	return &ActionResult{
		QRImageURL: asset.ImageURL,
		Instructions: []string{
			"Escanea el código QR con la app de tu banco",
			"Completa el pago por el valor del plan",
			"Confirma aquí cuando hayas escaneado y pagado",
		},
		RequiresManualConfirm: true,
	}, nil
}
