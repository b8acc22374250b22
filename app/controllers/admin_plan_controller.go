package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
)

// HandleAdminPlans lists all plans for administration
func HandleAdminPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalRepositories().Plan.GetAll()
	if err != nil {
		return render(c, "admin/plans", fiber.Map{
			"Title": " | Planes",
			"Error": "No pudimos cargar los planes",
		})
	}

	return render(c, "admin/plans", fiber.Map{
		"Title": " | Planes",
		"Plans": plans,
	})
}

func planFromForm(c *fiber.Ctx, plan *models.Plan) error {
	plan.Name = strings.TrimSpace(c.FormValue("name"))
	plan.Description = strings.TrimSpace(c.FormValue("description"))
	plan.Currency = c.FormValue("currency", "COP")
	plan.BillingInterval = c.FormValue("billing_interval", models.BillingIntervalMonthly)
	plan.IsActive = c.FormValue("is_active", "true") == "true"
	plan.IsFeatured = c.FormValue("is_featured") == "true"

	priceCents, err := strconv.ParseInt(c.FormValue("price_cents", "0"), 10, 64)
	if err != nil || priceCents < 0 {
		return fmt.Errorf("invalid price")
	}
	plan.PriceCents = priceCents

	if sortOrder, err := strconv.Atoi(c.FormValue("sort_order", "0")); err == nil {
		plan.SortOrder = sortOrder
	}

	if features := strings.TrimSpace(c.FormValue("features")); features != "" {
		list := []string{}
		for _, f := range strings.Split(features, "\n") {
			if f = strings.TrimSpace(f); f != "" {
				list = append(list, f)
			}
		}
		if err := plan.SetFeatures(list); err != nil {
			return err
		}
	}

	return plan.Validate()
}

// HandleAdminPlanCreate adds a new subscription plan
func HandleAdminPlanCreate(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	var plan models.Plan
	if err := planFromForm(c, &plan); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/planes")
	}

	if err := repos.Plan.Create(&plan); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/planes")
	}

	notifyConfigChanged("plan:created")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Plan %s creado", plan.Name),
	}).Redirect("/admin/planes")
}

// HandleAdminPlanUpdate edits an existing plan. Price and name changes
// affect tier gating, so eligibility caches are invalidated.
func HandleAdminPlanUpdate(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	plan, err := repos.Plan.GetByID(parseUintParam(c, "id"))
	if err != nil {
		fm["message"] = "Plan no encontrado"

		return flash.WithError(c, fm).Redirect("/admin/planes")
	}

	if err := planFromForm(c, plan); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/planes")
	}

	if err := repos.Plan.Update(plan); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/planes")
	}

	notifyConfigChanged("plan:updated")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Plan actualizado",
	}).Redirect("/admin/planes")
}

// HandleAdminPlanDelete deactivates a plan instead of removing it when
// subscriptions still reference it.
func HandleAdminPlanDelete(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	plan, err := repos.Plan.GetByID(parseUintParam(c, "id"))
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Plan no encontrado",
		}).Redirect("/admin/planes")
	}

	plan.IsActive = false
	if err := repos.Plan.Update(plan); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/admin/planes")
	}

	notifyConfigChanged("plan:deactivated")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Plan %s desactivado", plan.Name),
	}).Redirect("/admin/planes")
}
