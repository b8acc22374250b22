package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/statistics"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

// HandleAdminDashboard renders the admin overview with platform statistics
func HandleAdminDashboard(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()
	repos := repository.GetGlobalRepositories()

	pendingSubs, _ := repos.Subscription.CountByStatus(models.SubscriptionStatusPending)
	recentEvents, _ := repos.PaymentEvent.ListRecent(20)

	return render(c, "admin/dashboard", fiber.Map{
		"Title":                " | Administración",
		"TotalCompanies":       stats.TotalCompanies,
		"TotalUsers":           stats.TotalUsers,
		"ActiveSubscriptions":  stats.ActiveSubscriptions,
		"TodayPaymentEvents":   stats.TodayPaymentEvents,
		"PendingSubscriptions": pendingSubs,
		"RecentEvents":         recentEvents,
	})
}

// HandleAdminUsers lists users. Platform admins see everyone; company
// owners only reach their own staff through the company views.
func HandleAdminUsers(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 25

	var users []models.User
	var err error
	if query := strings.TrimSpace(c.Query("q")); query != "" {
		users, err = repos.User.Search(query)
	} else {
		users, err = repos.User.List((page-1)*perPage, perPage)
	}
	if err != nil {
		return render(c, "admin/users", fiber.Map{
			"Title": " | Usuarios",
			"Error": "No pudimos cargar los usuarios",
		})
	}

	total, _ := repos.User.Count()

	return render(c, "admin/users", fiber.Map{
		"Title": " | Usuarios",
		"Users": users,
		"Total": total,
		"Page":  page,
	})
}

// HandleAdminUserUpdate edits a user's role and status, restricted by the
// acting user's management scope.
func HandleAdminUserUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	actor, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		fm["message"] = "Usuario no encontrado"

		return flash.WithError(c, fm).Redirect("/admin/usuarios")
	}
	target, err := repos.User.GetByID(parseUintParam(c, "id"))
	if err != nil {
		fm["message"] = "Usuario no encontrado"

		return flash.WithError(c, fm).Redirect("/admin/usuarios")
	}
	if !actor.CanManageUser(target) {
		fm["message"] = "No tienes permisos sobre ese usuario"

		return flash.WithError(c, fm).Redirect("/admin/usuarios")
	}

	if role := c.FormValue("role"); role != "" {
		// Only platform admins may grant the admin role.
		if role == models.ROLE_ADMIN && actor.Role != models.ROLE_ADMIN {
			fm["message"] = "No puedes asignar ese rol"

			return flash.WithError(c, fm).Redirect("/admin/usuarios")
		}
		target.Role = role
	}
	if status := c.FormValue("status"); status != "" {
		target.Status = status
	}

	if err := target.Validate(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/usuarios")
	}
	if err := repos.User.Update(target); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/usuarios")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Usuario actualizado",
	}).Redirect("/admin/usuarios")
}

// HandleAdminUserDelete soft deletes a user within the actor's scope
func HandleAdminUserDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	actor, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return c.Redirect("/admin/usuarios", fiber.StatusSeeOther)
	}
	target, err := repos.User.GetByID(parseUintParam(c, "id"))
	if err != nil || !actor.CanManageUser(target) || target.ID == actor.ID {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "No puedes eliminar ese usuario",
		}).Redirect("/admin/usuarios")
	}

	if err := repos.User.Delete(target.ID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/admin/usuarios")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Usuario eliminado",
	}).Redirect("/admin/usuarios")
}

// HandleAdminSettings shows and saves the global application settings
func HandleAdminSettings(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	if c.Method() == fiber.MethodPost {
		settings := &models.AppSettings{
			SiteTitle:           strings.TrimSpace(c.FormValue("site_title")),
			SiteDescription:     strings.TrimSpace(c.FormValue("site_description")),
			CheckoutEnabled:     c.FormValue("checkout_enabled") == "true",
			PaymentsSandboxMode: c.FormValue("payments_sandbox_mode") == "true",
		}

		if err := repos.Setting.Save(settings); err != nil {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}).Redirect("/admin/configuracion")
		}

		return flash.WithSuccess(c, fiber.Map{
			"type":    "success",
			"message": "Configuración guardada",
		}).Redirect("/admin/configuracion")
	}

	settings, _ := repos.Setting.Get()

	return render(c, "admin/settings", fiber.Map{
		"Title":    " | Configuración",
		"Settings": settings,
	})
}
