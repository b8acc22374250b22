package checkout

import (
	"testing"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

func methodConfig(id uint, provider string, active bool, cfg map[string]string) models.PaymentMethodConfig {
	m := models.PaymentMethodConfig{
		ID:          id,
		Provider:    provider,
		DisplayName: provider,
		IsActive:    active,
		CreatedAt:   time.Unix(int64(id), 0),
	}
	if cfg != nil {
		if err := m.SetConfig(cfg); err != nil {
			panic(err)
		}
	}
	return m
}

func basicPlan() *models.Plan {
	return &models.Plan{ID: 1, Name: "Plan Básico", PriceCents: 2990000, Currency: "COP", BillingInterval: models.BillingIntervalMonthly}
}

func premiumPlan() *models.Plan {
	return &models.Plan{ID: 2, Name: "Plan Premium", PriceCents: 7990000, Currency: "COP", BillingInterval: models.BillingIntervalMonthly}
}

func freePlan() *models.Plan {
	return &models.Plan{ID: 3, Name: "Plan Gratis", PriceCents: 0, Currency: "COP", BillingInterval: models.BillingIntervalMonthly}
}

func fullMethodSet() []models.PaymentMethodConfig {
	return []models.PaymentMethodConfig{
		methodConfig(1, models.PaymentProviderStripe, true, map[string]string{"public_key": "pk_test_1", "secret_key": "sk_test_1"}),
		methodConfig(2, models.PaymentProviderMercadoPago, true, map[string]string{"public_key": "TEST-abc"}),
		methodConfig(3, models.PaymentProviderNequi, true, map[string]string{"phone_number": "3001234567"}),
		methodConfig(4, models.PaymentProviderBancolombia, true, map[string]string{"account_number": "12345678901", "beneficiary": "MesaFácil SAS"}),
		methodConfig(5, models.PaymentProviderQRCode, true, nil),
	}
}

func usableQRAssets(planID uint) []models.QRAsset {
	return []models.QRAsset{
		{ID: 1, PlanID: planID, Provider: models.PaymentProviderBancolombia, ImageURL: "https://cdn.example.com/qr/1.png", IsActive: true},
	}
}

func providerIDs(eligible []EligibleMethod) []string {
	out := make([]string, 0, len(eligible))
	for _, m := range eligible {
		out = append(out, m.Provider)
	}
	return out
}

func TestComputeEligibleMethodsFreePlan(t *testing.T) {
	eligible := ComputeEligibleMethods(freePlan(), fullMethodSet(), nil)
	if len(eligible) != 0 {
		t.Fatalf("free plan must yield no methods, got %v", providerIDs(eligible))
	}

	if got := ComputeEligibleMethods(nil, fullMethodSet(), nil); len(got) != 0 {
		t.Fatalf("nil plan must yield no methods, got %v", providerIDs(got))
	}
}

func TestComputeEligibleMethodsBasicPlanFullSet(t *testing.T) {
	plan := basicPlan()
	eligible := ComputeEligibleMethods(plan, fullMethodSet(), usableQRAssets(plan.ID))

	want := []string{
		models.PaymentProviderStripe,
		models.PaymentProviderMercadoPago,
		models.PaymentProviderNequi,
		models.PaymentProviderBancolombia,
		models.PaymentProviderQRCode,
	}
	got := providerIDs(eligible)
	if len(got) != len(want) {
		t.Fatalf("expected %d methods, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestComputeEligibleMethodsExcludesInactive(t *testing.T) {
	plan := basicPlan()
	methods := fullMethodSet()
	methods[2].IsActive = false // nequi

	eligible := ComputeEligibleMethods(plan, methods, usableQRAssets(plan.ID))
	for _, m := range eligible {
		if m.Provider == models.PaymentProviderNequi {
			t.Fatalf("inactive method must not be eligible")
		}
	}
	if len(eligible) != 4 {
		t.Fatalf("expected 4 methods, got %d: %v", len(eligible), providerIDs(eligible))
	}
}

func TestComputeEligibleMethodsIncompleteConfig(t *testing.T) {
	plan := basicPlan()

	tests := []struct {
		name   string
		method models.PaymentMethodConfig
	}{
		{"stripe missing secret", methodConfig(1, models.PaymentProviderStripe, true, map[string]string{"public_key": "pk_test_1"})},
		{"stripe blank secret", methodConfig(1, models.PaymentProviderStripe, true, map[string]string{"public_key": "pk_test_1", "secret_key": "  "})},
		{"mercado pago missing public key", methodConfig(2, models.PaymentProviderMercadoPago, true, map[string]string{"access_token": "TEST-tok"})},
		{"bancolombia missing beneficiary", methodConfig(4, models.PaymentProviderBancolombia, true, map[string]string{"account_number": "12345678901"})},
		{"unknown provider", methodConfig(9, "paypal", true, map[string]string{"client_id": "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eligible := ComputeEligibleMethods(plan, []models.PaymentMethodConfig{tt.method}, nil)
			if len(eligible) != 0 {
				t.Fatalf("incomplete config must be excluded, got %v", providerIDs(eligible))
			}
		})
	}
}

func TestComputeEligibleMethodsNequiPhoneFormat(t *testing.T) {
	plan := basicPlan()

	tests := []struct {
		phone    string
		eligible bool
	}{
		{"3001234567", true},
		{"300123456", false},   // 9 digits
		{"30012345678", false}, // 11 digits
		{"300123456a", false},
		{" 3001234567 ", true}, // surrounding whitespace trimmed
		{"", false},
	}

	for _, tt := range tests {
		methods := []models.PaymentMethodConfig{
			methodConfig(3, models.PaymentProviderNequi, true, map[string]string{"phone_number": tt.phone}),
		}
		got := ComputeEligibleMethods(plan, methods, nil)
		if (len(got) == 1) != tt.eligible {
			t.Fatalf("phone %q: expected eligible=%v, got %v", tt.phone, tt.eligible, providerIDs(got))
		}
	}
}

func TestComputeEligibleMethodsQRRequiresUsableAsset(t *testing.T) {
	plan := basicPlan()
	qrOnly := []models.PaymentMethodConfig{
		methodConfig(5, models.PaymentProviderQRCode, true, nil),
	}
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name     string
		assets   []models.QRAsset
		eligible bool
	}{
		{"no assets", nil, false},
		{"inactive asset", []models.QRAsset{{PlanID: plan.ID, IsActive: false}}, false},
		{"expired asset", []models.QRAsset{{PlanID: plan.ID, IsActive: true, ExpiresAt: &past}}, false},
		{"active non-expiring asset", []models.QRAsset{{PlanID: plan.ID, IsActive: true}}, true},
		{"active future-expiring asset", []models.QRAsset{{PlanID: plan.ID, IsActive: true, ExpiresAt: &future}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEligibleMethods(plan, qrOnly, tt.assets)
			if (len(got) == 1) != tt.eligible {
				t.Fatalf("expected eligible=%v, got %v", tt.eligible, providerIDs(got))
			}
		})
	}
}

func TestComputeEligibleMethodsPremiumTierGate(t *testing.T) {
	plan := premiumPlan()
	eligible := ComputeEligibleMethods(plan, fullMethodSet(), usableQRAssets(plan.ID))

	if len(eligible) == 0 {
		t.Fatal("premium plan should keep the hosted-checkout providers")
	}
	for _, m := range eligible {
		if m.Provider != models.PaymentProviderStripe && m.Provider != models.PaymentProviderMercadoPago {
			t.Fatalf("premium tier must only offer stripe and mercado_pago, got %s", m.Provider)
		}
	}
	if len(eligible) != 2 {
		t.Fatalf("expected 2 methods, got %v", providerIDs(eligible))
	}
}

func TestComputeEligibleMethodsStableOrder(t *testing.T) {
	plan := basicPlan()
	methods := fullMethodSet()
	assets := usableQRAssets(plan.ID)

	first := providerIDs(ComputeEligibleMethods(plan, methods, assets))
	for i := 0; i < 5; i++ {
		next := providerIDs(ComputeEligibleMethods(plan, methods, assets))
		if len(next) != len(first) {
			t.Fatalf("run %d: size changed from %d to %d", i, len(first), len(next))
		}
		for j := range first {
			if next[j] != first[j] {
				t.Fatalf("run %d: order changed at %d: %v vs %v", i, j, first, next)
			}
		}
	}
}
