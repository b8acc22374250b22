package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/database"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/env"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/mail"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/session"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/statistics"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		userRepo := repository.GetGlobalRepositories().User
		user, err := userRepo.GetByEmail(strings.TrimSpace(c.FormValue("email")))
		if err != nil {
			fm["message"] = "No pudimos iniciar tu sesión, revisa tus datos"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
			fm["message"] = "No pudimos iniciar tu sesión, revisa tus datos"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if user.Status != models.STATUS_ACTIVE {
			fm["message"] = "Tu cuenta aún no está activa"

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(usercontext.AuthKey, true)
		sess.Set(usercontext.KeyUserID, user.ID)
		sess.Set(usercontext.KeyUsername, user.Name)
		sess.Set(usercontext.KeyUserEmail, user.Email)
		sess.Set(usercontext.KeyUserRole, user.Role)
		sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
		if user.CompanyID != nil {
			sess.Set(usercontext.KeyCompanyID, *user.CompanyID)
		}

		if err = sess.Save(); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		database.GetDB().Model(user).Update("last_login_at", time.Now())

		fm = fiber.Map{
			"type":    "success",
			"message": "¡Bienvenido de nuevo!",
		}

		return flash.WithSuccess(c, fm).Redirect("/")
	}

	return render(c, "auth/login", fiber.Map{
		"Title": " | Iniciar sesión",
	})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err = sess.Destroy(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "¡Hasta pronto!",
	}

	c.Locals(usercontext.KeyFromProtected, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		user, err := models.CreateUser(
			strings.TrimSpace(c.FormValue("name")),
			strings.TrimSpace(c.FormValue("email")),
			c.FormValue("password"),
		)
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		token, err := models.GenerateToken()
		if err == nil {
			user.ActivationToken = token
			user.Status = models.STATUS_INACTIVE
		}

		if err := repository.GetGlobalRepositories().User.Create(user); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		if user.ActivationToken != "" {
			activationLink := fmt.Sprintf("%s/activate?token=%s", env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), user.ActivationToken)
			go mail.SendActivationMail(user.Email, user.Name, activationLink)
		}

		// Update statistics after registration
		go statistics.UpdateStatisticsCache()

		fm := fiber.Map{
			"type":    "success",
			"message": "¡Listo! Revisa tu correo para activar la cuenta.",
		}

		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return render(c, "auth/register", fiber.Map{
		"Title": " | Registrarse",
	})
}

// HandleAuthActivate activates an account via the emailed token
func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	fm := fiber.Map{
		"type": "error",
	}
	if token == "" {
		fm["message"] = "Enlace de activación inválido"

		return flash.WithError(c, fm).Redirect("/login")
	}

	userRepo := repository.GetGlobalRepositories().User
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		fm["message"] = "Enlace de activación inválido"

		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Cuenta activada, ya puedes iniciar sesión",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}
