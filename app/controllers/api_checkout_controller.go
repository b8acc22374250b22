package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/checkout"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

// HandleAPIEligibleMethods returns the payment methods currently eligible
// for a plan. The set is computed from live configuration on every call.
func HandleAPIEligibleMethods(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("plan_id")
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan id"})
	}

	repos := repository.GetGlobalRepositories()
	plan, err := repos.Plan.GetByID(uint(planID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	methods, err := repos.PaymentMethod.GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load payment methods"})
	}
	qrAssets, err := repos.PaymentMethod.GetQRAssetsByPlan(plan.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load QR assets"})
	}

	eligible := checkout.ComputeEligibleMethods(plan, methods, qrAssets)

	return c.JSON(fiber.Map{
		"plan_id": plan.ID,
		"methods": eligible,
	})
}

// checkoutStatusPayload builds the JSON body for a checkout session status
// response. Kept separate from the handler so it stays testable.
func checkoutStatusPayload(sess *checkout.Session) fiber.Map {
	payload := fiber.Map{
		"id":         sess.ID,
		"plan_id":    sess.Plan.ID,
		"step":       string(sess.Step()),
		"created_at": sess.CreatedAt.UTC(),
	}
	if method := sess.Method(); method != nil {
		payload["method"] = fiber.Map{
			"id":           method.ID,
			"provider":     method.Provider,
			"display_name": method.DisplayName,
		}
	}
	if result := sess.Result(); result != nil {
		payload["result"] = result
	}
	if lastError := sess.LastError(); lastError != "" {
		payload["last_error"] = lastError
	}
	return payload
}

// HandleAPICheckoutStatus returns the state of an open checkout session for
// the authenticated owner.
func HandleAPICheckoutStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sess, err := GetOrchestrator().Get(c.Params("id"))
	if err != nil || sess.Auth.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Checkout session not found"})
	}

	return c.JSON(checkoutStatusPayload(sess))
}
