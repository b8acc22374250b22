package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/entitlements"
)

// requiredConfigKeys lists the configuration keys that must be present and
// non-empty per provider type. QR methods are validated against provisioned
// assets instead (see validateMethodConfig).
var requiredConfigKeys = map[string][]string{
	models.PaymentProviderStripe:      {"public_key", "secret_key"},
	models.PaymentProviderMercadoPago: {"public_key"},
	models.PaymentProviderNequi:       {"phone_number"},
	models.PaymentProviderBancolombia: {"account_number", "beneficiary"},
}

// recurringCapableProviders are offered on tiers above the lowest paid
// tier. This is policy, not a technical constraint: higher-value recurring
// billing goes through the hosted-checkout providers only.
var recurringCapableProviders = map[string]bool{
	models.PaymentProviderStripe:      true,
	models.PaymentProviderMercadoPago: true,
}

var nequiPhonePattern = regexp.MustCompile(`^\d{10}$`)

// ComputeEligibleMethods returns the payment methods a user may choose for
// the given plan, in the stable order the methods were configured. Pure
// function of its inputs; no side effects.
//
// Filtering, in order: inactive methods are dropped, then methods whose
// provider-specific required configuration is incomplete, then methods not
// permitted for the plan's tier. Free plans bypass checkout entirely and
// always yield an empty set.
func ComputeEligibleMethods(plan *models.Plan, methods []models.PaymentMethodConfig, qrAssets []models.QRAsset) []EligibleMethod {
	if plan == nil || plan.IsFree() {
		return nil
	}

	tier := entitlements.ClassifyPlan(plan)
	now := time.Now()

	var eligible []EligibleMethod
	for _, m := range methods {
		if !m.IsActive {
			continue
		}
		if err := validateMethodConfig(&m, qrAssets, now); err != nil {
			continue
		}
		if tier != entitlements.TierBasic && !recurringCapableProviders[m.Provider] {
			continue
		}
		eligible = append(eligible, EligibleMethod{
			ID:          m.ID,
			Provider:    m.Provider,
			DisplayName: m.DisplayName,
			Config:      m.Config(),
		})
	}
	return eligible
}

// validateMethodConfig checks that a method's provider-specific required
// fields are fully populated. Returns a wrapped ErrValidationFailed naming
// the first missing or malformed key.
func validateMethodConfig(m *models.PaymentMethodConfig, qrAssets []models.QRAsset, now time.Time) error {
	cfg := m.Config()

	switch m.Provider {
	case models.PaymentProviderQRCode:
		// A QR method is usable only with at least one active,
		// non-expired image provisioned for the plan.
		for _, asset := range qrAssets {
			if asset.IsUsable(now) {
				return nil
			}
		}
		return fmt.Errorf("%w: no usable QR asset provisioned", ErrValidationFailed)
	case models.PaymentProviderNequi:
		phone := strings.TrimSpace(cfg["phone_number"])
		if !nequiPhonePattern.MatchString(phone) {
			return fmt.Errorf("%w: nequi phone_number must be exactly 10 digits", ErrValidationFailed)
		}
		return nil
	default:
		keys, ok := requiredConfigKeys[m.Provider]
		if !ok {
			return fmt.Errorf("%w: unknown provider type %q", ErrValidationFailed, m.Provider)
		}
		for _, key := range keys {
			if strings.TrimSpace(cfg[key]) == "" {
				return fmt.Errorf("%w: missing required config key %q", ErrValidationFailed, key)
			}
		}
		return nil
	}
}

// containsMethod reports whether the eligible set includes the method ID.
func containsMethod(eligible []EligibleMethod, methodID uint) (*EligibleMethod, bool) {
	for i := range eligible {
		if eligible[i].ID == methodID {
			return &eligible[i], true
		}
	}
	return nil, false
}
