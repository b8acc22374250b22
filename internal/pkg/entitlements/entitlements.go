package entitlements

import (
	"strings"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

// Tier is a plan's pricing category, used to gate which payment providers
// are offered and which features a company may use.
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// basicNames are the plan name markers identifying the lowest paid tier.
var basicNames = []string{"básico", "basico", "basic"}

// ClassifyPlan derives a plan's tier from its price and name. Free plans
// are price 0; the lowest paid tier is identified by name; everything else
// counts as premium.
func ClassifyPlan(plan *models.Plan) Tier {
	if plan == nil || plan.IsFree() {
		return TierFree
	}
	name := strings.ToLower(strings.TrimSpace(plan.Name))
	for _, marker := range basicNames {
		if strings.Contains(name, marker) {
			return TierBasic
		}
	}
	return TierPremium
}

func NormalizeTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierBasic):
		return TierBasic
	case string(TierPremium):
		return TierPremium
	default:
		return TierFree
	}
}

func TierRank(tier Tier) int {
	switch tier {
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

// AllowedFeatures returns which dashboard features are available for a
// given tier.
func AllowedFeatures(tier Tier) (analytics, multiUser, customBranding bool) {
	switch tier {
	case TierPremium:
		return true, true, true
	case TierBasic:
		return true, false, false
	default:
		return false, false, false
	}
}

// MaxProducts returns the catalog size limit per tier. 0 means unlimited.
func MaxProducts(tier Tier) int {
	switch tier {
	case TierPremium:
		return 0
	case TierBasic:
		return 100
	default:
		return 15
	}
}
