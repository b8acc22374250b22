package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/entitlements"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

// HandleDashboard renders the company dashboard with the current
// subscription and the features its tier unlocks.
func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	data := fiber.Map{
		"Title": " | Panel",
	}

	if userCtx.CompanyID != 0 {
		if company, err := repos.Company.GetByID(userCtx.CompanyID); err == nil {
			data["Company"] = company
		}

		tier := entitlements.TierFree
		if sub, err := repos.Subscription.GetCurrentForCompany(userCtx.CompanyID); err == nil {
			data["Subscription"] = sub
			data["SubscriptionPending"] = sub.Status == models.SubscriptionStatusPending
			if plan, err := repos.Plan.GetByID(sub.PlanID); err == nil {
				data["Plan"] = plan
				if sub.IsEntitling() {
					tier = entitlements.ClassifyPlan(plan)
				}
			}
		}

		analytics, multiUser, customBranding := entitlements.AllowedFeatures(tier)
		data["Tier"] = string(tier)
		data["CanAnalytics"] = analytics
		data["CanMultiUser"] = multiUser
		data["CanCustomBranding"] = customBranding
		data["MaxProducts"] = entitlements.MaxProducts(tier)

		if count, err := repos.Product.CountByCompany(userCtx.CompanyID); err == nil {
			data["ProductCount"] = count
		}
	}

	return render(c, "dashboard/index", data)
}
