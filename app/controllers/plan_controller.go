package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/entitlements"
)

// planView is a display model combining a plan with its derived tier
type planView struct {
	ID              uint
	Name            string
	Description     string
	PriceCents      int64
	Currency        string
	BillingInterval string
	Features        []string
	IsFeatured      bool
	IsFree          bool
	Tier            string
}

// HandlePlans renders the public plan overview
func HandlePlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalRepositories().Plan.GetActive()
	if err != nil {
		return render(c, "plans/index", fiber.Map{
			"Title": " | Planes",
			"Error": "No pudimos cargar los planes",
		})
	}

	views := make([]planView, 0, len(plans))
	for i := range plans {
		p := plans[i]
		views = append(views, planView{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			PriceCents:      p.PriceCents,
			Currency:        p.Currency,
			BillingInterval: p.BillingInterval,
			Features:        p.Features(),
			IsFeatured:      p.IsFeatured,
			IsFree:          p.IsFree(),
			Tier:            string(entitlements.ClassifyPlan(&p)),
		})
	}

	return render(c, "plans/index", fiber.Map{
		"Title": " | Planes",
		"Plans": views,
	})
}
