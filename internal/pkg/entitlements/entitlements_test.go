package entitlements

import (
	"testing"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

func TestClassifyPlan(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		want  Tier
	}{
		{name: "Gratis", price: 0, want: TierFree},
		{name: "Básico", price: 1000000, want: TierBasic},
		{name: "basic monthly", price: 1000000, want: TierBasic},
		{name: "Premium", price: 5000000, want: TierPremium},
		{name: "Empresarial", price: 9000000, want: TierPremium},
	}

	for _, tt := range tests {
		plan := &models.Plan{Name: tt.name, PriceCents: tt.price}
		if got := ClassifyPlan(plan); got != tt.want {
			t.Fatalf("ClassifyPlan(%q, %d) = %q, want %q", tt.name, tt.price, got, tt.want)
		}
	}
}

func TestClassifyPlan_NilIsFree(t *testing.T) {
	if got := ClassifyPlan(nil); got != TierFree {
		t.Fatalf("ClassifyPlan(nil) = %q, want free", got)
	}
}

func TestClassifyPlan_FreePlanNameIgnored(t *testing.T) {
	// Price wins over name: a zero-price plan is free no matter what it is called.
	plan := &models.Plan{Name: "Premium trial", PriceCents: 0}
	if got := ClassifyPlan(plan); got != TierFree {
		t.Fatalf("expected free for zero-price plan, got %q", got)
	}
}

func TestTierRank(t *testing.T) {
	if TierRank(TierFree) >= TierRank(TierBasic) {
		t.Fatalf("expected basic to outrank free")
	}
	if TierRank(TierBasic) >= TierRank(TierPremium) {
		t.Fatalf("expected premium to outrank basic")
	}
}

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "basic", want: TierBasic},
		{in: "PREMIUM", want: TierPremium},
		{in: "free", want: TierFree},
		{in: "invalid", want: TierFree},
	}

	for _, tt := range tests {
		if got := NormalizeTier(tt.in); got != tt.want {
			t.Fatalf("NormalizeTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaxProducts(t *testing.T) {
	if MaxProducts(TierFree) == 0 {
		t.Fatalf("free tier should be limited")
	}
	if MaxProducts(TierPremium) != 0 {
		t.Fatalf("premium tier should be unlimited")
	}
}
