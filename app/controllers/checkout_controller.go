package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/checkout"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/mail"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

// orchestrator is the process-wide checkout flow coordinator, wired during
// application startup.
var orchestrator *checkout.Orchestrator

// SetOrchestrator injects the checkout orchestrator. Called once from main.
func SetOrchestrator(o *checkout.Orchestrator) {
	orchestrator = o
}

// GetOrchestrator returns the active checkout orchestrator.
func GetOrchestrator() *checkout.Orchestrator {
	return orchestrator
}

func checkoutAuth(c *fiber.Ctx) checkout.AuthContext {
	userCtx := usercontext.GetUserContext(c)
	return checkout.AuthContext{
		UserID:    userCtx.UserID,
		CompanyID: userCtx.CompanyID,
		Name:      userCtx.Username,
		Email:     userCtx.Email,
	}
}

// getOwnedSession loads the checkout session and verifies it belongs to the
// current user.
func getOwnedSession(c *fiber.Ctx) (*checkout.Session, error) {
	sess, err := orchestrator.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if sess.Auth.UserID != usercontext.GetUserID(c) {
		return nil, checkout.ErrSessionNotFound
	}
	return sess, nil
}

// HandleCheckoutStart opens a checkout session for the posted plan. Free
// plans skip checkout and subscribe the company directly.
func HandleCheckoutStart(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	planID := uint(0)
	if id, err := c.ParamsInt("plan_id"); err == nil && id > 0 {
		planID = uint(id)
	}
	plan, err := repository.GetGlobalRepositories().Plan.GetByID(planID)
	if err != nil {
		fm["message"] = "Plan no encontrado"

		return flash.WithError(c, fm).Redirect("/planes")
	}

	auth := checkoutAuth(c)

	if plan.IsFree() {
		if err := subscribeToFreePlan(auth, plan); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/planes")
		}
		fm = fiber.Map{
			"type":    "success",
			"message": fmt.Sprintf("Tu empresa quedó suscrita al plan %s", plan.Name),
		}

		return flash.WithSuccess(c, fm).Redirect("/dashboard")
	}

	sess, err := orchestrator.Begin(c.Context(), auth, *plan)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnauthenticated):
			return c.Redirect("/login", fiber.StatusSeeOther)
		case errors.Is(err, checkout.ErrCheckoutDisabled):
			fm["message"] = "Los pagos en línea están deshabilitados por el momento"
		default:
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)
		}

		return flash.WithError(c, fm).Redirect("/planes")
	}

	return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
}

// subscribeToFreePlan activates a free plan for the user's company without
// any payment flow.
func subscribeToFreePlan(auth checkout.AuthContext, plan *models.Plan) error {
	if auth.CompanyID == 0 {
		return errors.New("no company assigned")
	}
	return repository.GetGlobalRepositories().Subscription.Upsert(&models.Subscription{
		CompanyID:              auth.CompanyID,
		PlanID:                 plan.ID,
		Provider:               "free",
		ProviderSubscriptionID: fmt.Sprintf("free:%d", auth.CompanyID),
		Status:                 models.SubscriptionStatusActive,
	})
}

// HandleCheckoutShow renders the current step of the checkout flow.
func HandleCheckoutShow(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "La sesión de pago ya no existe",
		}).Redirect("/planes")
	}

	data := fiber.Map{
		"Title":     " | Pago",
		"SessionID": sess.ID,
		"Plan":      sess.Plan,
		"Step":      string(sess.Step()),
	}

	switch sess.Step() {
	case checkout.StepMethod:
		eligible, err := orchestrator.EligibleMethods(c.Context(), sess)
		if err != nil && !errors.Is(err, checkout.ErrNoMethodsConfigured) {
			data["Error"] = "No pudimos cargar los métodos de pago"
		}
		data["Methods"] = eligible
		data["NoMethods"] = errors.Is(err, checkout.ErrNoMethodsConfigured)
		return render(c, "checkout/method", data)
	case checkout.StepPayment:
		data["Method"] = sess.Method()
		data["Result"] = sess.Result()
		data["LastError"] = sess.LastError()
		return render(c, "checkout/payment", data)
	default:
		data["Result"] = sess.Result()
		return render(c, "checkout/confirmation", data)
	}
}

// HandleCheckoutSelectMethod records the chosen payment method.
func HandleCheckoutSelectMethod(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return c.Redirect("/planes", fiber.StatusSeeOther)
	}

	methodID := uint(0)
	if id, err := c.ParamsInt("method_id"); err == nil && id > 0 {
		methodID = uint(id)
	}

	if err := orchestrator.SelectMethod(c.Context(), sess, methodID); err != nil {
		fm := fiber.Map{
			"type": "error",
		}
		switch {
		case errors.Is(err, checkout.ErrMethodNoLongerEligible):
			fm["message"] = "Ese método de pago ya no está disponible, elige otro"
		case errors.Is(err, checkout.ErrNoMethodsConfigured):
			fm["message"] = "No hay métodos de pago configurados, contacta al administrador"
		default:
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)
		}

		return flash.WithError(c, fm).Redirect("/checkout/" + sess.ID)
	}

	if err := orchestrator.AdvanceToPayment(c.Context(), sess); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Ese método de pago ya no está disponible, elige otro",
		}

		return flash.WithError(c, fm).Redirect("/checkout/" + sess.ID)
	}

	return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
}

// HandleCheckoutExecute runs the provider action with the posted fields.
func HandleCheckoutExecute(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return c.Redirect("/planes", fiber.StatusSeeOther)
	}

	fields := map[string]string{}
	for _, key := range []string{"phone_number", "full_name", "email", "target_provider"} {
		if v := c.FormValue(key); v != "" {
			fields[key] = v
		}
	}

	if err := orchestrator.ExecuteProviderAction(c.Context(), sess, fields); err != nil {
		if errors.Is(err, checkout.ErrValidationFailed) {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": err.Error(),
			}).Redirect("/checkout/" + sess.ID)
		}
		// Provider failures land in the session's error sub-state and are
		// rendered on the payment page.
		return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
	}

	if result := sess.Result(); result != nil && result.RedirectURL != "" {
		return c.Redirect(result.RedirectURL, fiber.StatusSeeOther)
	}

	return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
}

// HandleCheckoutRetry clears a failed provider action.
func HandleCheckoutRetry(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return c.Redirect("/planes", fiber.StatusSeeOther)
	}

	if err := orchestrator.Retry(sess); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/checkout/" + sess.ID)
	}

	return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
}

// HandleCheckoutConfirm records the user's claim that the payment was made.
func HandleCheckoutConfirm(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return c.Redirect("/planes", fiber.StatusSeeOther)
	}

	if err := orchestrator.Confirm(c.Context(), sess); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/checkout/" + sess.ID)
	}

	if result := sess.Result(); result != nil {
		go mail.SendCheckoutConfirmationMail(sess.Auth.Email, sess.Auth.Name, sess.Plan.Name, result.Reference)
	}

	return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
}

// HandleCheckoutCancel closes the session and returns to the plan list.
func HandleCheckoutCancel(c *fiber.Ctx) error {
	if sess, err := getOwnedSession(c); err == nil {
		orchestrator.Close(sess.ID)
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Pago cancelado",
	}).Redirect("/planes")
}

// HandleCheckoutReturn receives the user coming back from a hosted provider
// checkout (Stripe, Mercado Pago).
func HandleCheckoutReturn(c *fiber.Ctx) error {
	sess, err := getOwnedSession(c)
	if err != nil {
		return c.Redirect("/planes", fiber.StatusSeeOther)
	}

	status := c.Query("status")
	if status == "success" || status == "approved" {
		// The hosted checkout reports completion; record the claim. The
		// subscription still waits for webhook verification.
		if sess.Step() == checkout.StepPayment && sess.Result() != nil {
			if err := orchestrator.Confirm(c.Context(), sess); err != nil {
				return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
			}
		}
		return c.Redirect("/checkout/"+sess.ID, fiber.StatusSeeOther)
	}

	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": "El proveedor no completó el pago, puedes intentarlo de nuevo",
	}).Redirect("/checkout/" + sess.ID)
}
