package controllers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/session"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// makeSlug derives a URL slug from a company name
func makeSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
	s = replacer.Replace(s)
	s = slugCleanup.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// HandleCompanyCreate registers a new company and promotes the current
// user to its owner.
func HandleCompanyCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		if userCtx.CompanyID != 0 {
			fm["message"] = "Ya tienes una empresa registrada"

			return flash.WithError(c, fm).Redirect("/dashboard")
		}

		name := strings.TrimSpace(c.FormValue("name"))
		slug := makeSlug(name)
		if slug == "" {
			fm["message"] = "El nombre de la empresa no es válido"

			return flash.WithError(c, fm).Redirect("/empresa/nueva")
		}

		if exists, err := repos.Company.SlugExists(slug); err != nil || exists {
			fm["message"] = "Ya existe una empresa con un nombre muy similar"

			return flash.WithError(c, fm).Redirect("/empresa/nueva")
		}

		company := &models.Company{
			Name:    name,
			Slug:    slug,
			OwnerID: userCtx.UserID,
			Email:   strings.TrimSpace(c.FormValue("email")),
			Phone:   strings.TrimSpace(c.FormValue("phone")),
			Address: strings.TrimSpace(c.FormValue("address")),
			City:    strings.TrimSpace(c.FormValue("city")),
		}
		if err := company.Validate(); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/empresa/nueva")
		}
		if err := repos.Company.Create(company); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/empresa/nueva")
		}

		user, err := repos.User.GetByID(userCtx.UserID)
		if err == nil {
			user.Role = models.ROLE_OWNER
			user.CompanyID = &company.ID
			if err := repos.User.Update(user); err == nil {
				// Refresh the session so the new company scope is active
				// immediately.
				if sess, err := session.GetSessionStore().Get(c); err == nil {
					sess.Set(usercontext.KeyCompanyID, company.ID)
					sess.Set(usercontext.KeyUserRole, models.ROLE_OWNER)
					_ = sess.Save()
				}
			}
		}

		fm = fiber.Map{
			"type":    "success",
			"message": fmt.Sprintf("¡Empresa %s registrada!", company.Name),
		}

		return flash.WithSuccess(c, fm).Redirect("/dashboard")
	}

	return render(c, "company/new", fiber.Map{
		"Title": " | Nueva empresa",
	})
}

// HandleCompanyEdit updates the company profile. Only the owner or a
// platform admin may edit it.
func HandleCompanyEdit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	company, err := repos.Company.GetByID(userCtx.CompanyID)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Empresa no encontrada",
		}).Redirect("/dashboard")
	}
	if company.OwnerID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	if c.Method() == fiber.MethodPost {
		company.Name = strings.TrimSpace(c.FormValue("name"))
		company.Email = strings.TrimSpace(c.FormValue("email"))
		company.Phone = strings.TrimSpace(c.FormValue("phone"))
		company.Address = strings.TrimSpace(c.FormValue("address"))
		company.City = strings.TrimSpace(c.FormValue("city"))

		if err := company.Validate(); err != nil {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}).Redirect("/empresa/editar")
		}
		if err := repos.Company.Update(company); err != nil {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}).Redirect("/empresa/editar")
		}

		return flash.WithSuccess(c, fiber.Map{
			"type":    "success",
			"message": "Datos de la empresa actualizados",
		}).Redirect("/dashboard")
	}

	return render(c, "company/edit", fiber.Map{
		"Title":   " | Editar empresa",
		"Company": company,
	})
}
