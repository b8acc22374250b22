package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/entitlements"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

// companyTier resolves the entitling tier for a company from its current
// subscription.
func companyTier(companyID uint) entitlements.Tier {
	repos := repository.GetGlobalRepositories()
	sub, err := repos.Subscription.GetCurrentForCompany(companyID)
	if err != nil || !sub.IsEntitling() {
		return entitlements.TierFree
	}
	plan, err := repos.Plan.GetByID(sub.PlanID)
	if err != nil {
		return entitlements.TierFree
	}
	return entitlements.ClassifyPlan(plan)
}

// HandleProducts lists the company's menu products
func HandleProducts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 50

	products, err := repos.Product.GetByCompany(userCtx.CompanyID, (page-1)*perPage, perPage)
	if err != nil {
		return render(c, "products/index", fiber.Map{
			"Title": " | Menú",
			"Error": "No pudimos cargar el menú",
		})
	}
	categories, _ := repos.Category.GetByCompany(userCtx.CompanyID)

	return render(c, "products/index", fiber.Map{
		"Title":      " | Menú",
		"Products":   products,
		"Categories": categories,
		"Page":       page,
	})
}

// HandleProductCreate adds a product to the company's menu, enforcing the
// tier's catalog limit.
func HandleProductCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	tier := companyTier(userCtx.CompanyID)
	if max := entitlements.MaxProducts(tier); max > 0 {
		count, err := repos.Product.CountByCompany(userCtx.CompanyID)
		if err == nil && count >= int64(max) {
			fm["message"] = fmt.Sprintf("Tu plan permite máximo %d productos, mejora tu plan para agregar más", max)

			return flash.WithError(c, fm).Redirect("/menu")
		}
	}

	priceCents, err := strconv.ParseInt(c.FormValue("price_cents", "0"), 10, 64)
	if err != nil || priceCents < 0 {
		fm["message"] = "El precio no es válido"

		return flash.WithError(c, fm).Redirect("/menu")
	}

	product := &models.Product{
		CompanyID:   userCtx.CompanyID,
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		PriceCents:  priceCents,
		Currency:    c.FormValue("currency", "COP"),
		IsAvailable: c.FormValue("is_available", "true") == "true",
	}
	if catID, err := strconv.Atoi(c.FormValue("category_id", "0")); err == nil && catID > 0 {
		id := uint(catID)
		product.CategoryID = &id
	}

	if err := product.Validate(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/menu")
	}
	if err := repos.Product.Create(product); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/menu")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Producto %s agregado al menú", product.Name),
	}).Redirect("/menu")
}

// HandleProductUpdate edits a product of the company's menu
func HandleProductUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	product, err := repos.Product.GetByID(parseUintParam(c, "id"))
	if err != nil || product.CompanyID != userCtx.CompanyID {
		fm["message"] = "Producto no encontrado"

		return flash.WithError(c, fm).Redirect("/menu")
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		product.Name = name
	}
	product.Description = strings.TrimSpace(c.FormValue("description"))
	if priceCents, err := strconv.ParseInt(c.FormValue("price_cents", "-1"), 10, 64); err == nil && priceCents >= 0 {
		product.PriceCents = priceCents
	}
	product.IsAvailable = c.FormValue("is_available", "true") == "true"

	if err := product.Validate(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/menu")
	}
	if err := repos.Product.Update(product); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/menu")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Producto actualizado",
	}).Redirect("/menu")
}

// HandleProductDelete removes a product from the company's menu
func HandleProductDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	product, err := repos.Product.GetByID(parseUintParam(c, "id"))
	if err != nil || product.CompanyID != userCtx.CompanyID {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Producto no encontrado",
		}).Redirect("/menu")
	}

	if err := repos.Product.Delete(product.ID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/menu")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Producto eliminado",
	}).Redirect("/menu")
}

// HandleCategoryCreate adds a menu category
func HandleCategoryCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	category := &models.Category{
		CompanyID: userCtx.CompanyID,
		Name:      strings.TrimSpace(c.FormValue("name")),
		IsActive:  true,
	}
	if err := category.Validate(); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/menu")
	}
	if err := repos.Category.Create(category); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/menu")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Categoría %s creada", category.Name),
	}).Redirect("/menu")
}

// HandleCategoryDelete removes a menu category
func HandleCategoryDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	category, err := repos.Category.GetByID(parseUintParam(c, "id"))
	if err != nil || category.CompanyID != userCtx.CompanyID {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Categoría no encontrada",
		}).Redirect("/menu")
	}

	if err := repos.Category.Delete(category.ID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/menu")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Categoría eliminada",
	}).Redirect("/menu")
}
