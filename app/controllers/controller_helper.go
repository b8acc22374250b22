package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/internal/pkg/usercontext"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(usercontext.KeyFromProtected); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// render wraps c.Render with the bindings every page needs: the user
// context and any pending flash message.
func render(c *fiber.Ctx, template string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	userCtx := usercontext.GetUserContext(c)
	data["UserContext"] = userCtx
	data["IsLoggedIn"] = userCtx.IsLoggedIn
	data["IsAdmin"] = userCtx.IsAdmin
	data["Flash"] = flash.Get(c)

	return c.Render(template, data, "layouts/main")
}

// parseUintParam reads a numeric route parameter, returning 0 when invalid
func parseUintParam(c *fiber.Ctx, name string) uint {
	id, err := c.ParamsInt(name)
	if err != nil || id < 0 {
		return 0
	}
	return uint(id)
}
