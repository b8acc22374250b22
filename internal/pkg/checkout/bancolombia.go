package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/google/uuid"
)

// QRAssetLookup resolves the provisioned QR image for a (plan, provider)
// pair. Returns nil when none is usable.
type QRAssetLookup func(ctx context.Context, planID uint, provider string) (*models.QRAsset, error)

// bancolombiaProvider generates bank transfer details with a unique payment
// reference. The user completes the transfer out-of-band and acknowledges
// it manually; verification happens later, outside this flow.
type bancolombiaProvider struct {
	accountNumber string
	accountType   string
	beneficiary   string
	qrLookup      QRAssetLookup
}

func newBancolombiaProvider(cfg map[string]string, qrLookup QRAssetLookup) *bancolombiaProvider {
	accountType := strings.TrimSpace(cfg["account_type"])
	if accountType == "" {
		accountType = "Ahorros"
	}
	return &bancolombiaProvider{
		accountNumber: strings.TrimSpace(cfg["account_number"]),
		accountType:   accountType,
		beneficiary:   strings.TrimSpace(cfg["beneficiary"]),
		qrLookup:      qrLookup,
	}
}

func (p *bancolombiaProvider) Name() string {
	return models.PaymentProviderBancolombia
}

func (p *bancolombiaProvider) Validate(fields map[string]string) error {
	if p.accountNumber == "" || p.beneficiary == "" {
		return fmt.Errorf("%w: bancolombia account details not configured", ErrValidationFailed)
	}
	return nil
}

func (p *bancolombiaProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	reference := "MF-" + strings.ToUpper(uuid.NewString()[:10])

	result := &ActionResult{
		Reference:     reference,
		BankName:      "Bancolombia",
		AccountNumber: p.accountNumber,
		AccountType:   p.accountType,
		Beneficiary:   p.beneficiary,
		Instructions: []string{
			fmt.Sprintf("Transfiere %s a la cuenta %s (%s)", formatAmount(sess.Plan.PriceCents, sess.Plan.Currency), p.accountNumber, p.accountType),
			fmt.Sprintf("Beneficiario: %s", p.beneficiary),
			fmt.Sprintf("Usa la referencia de pago: %s", reference),
			"Confirma aquí cuando hayas completado la transferencia",
		},
		RequiresManualConfirm: true,
	}

	// A provisioned QR for this plan is optional extra convenience.
	if p.qrLookup != nil {
		if asset, err := p.qrLookup(ctx, sess.Plan.ID, models.PaymentProviderBancolombia); err == nil && asset != nil {
			result.QRImageURL = asset.ImageURL
		}
	}

	return result, nil
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, cents/100, cents%100)
}
