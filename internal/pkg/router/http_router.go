package router

import (
	"github.com/CamiloVelandia/MesaFacil/app/controllers"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/middleware"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerProtectedRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleStart)
	app.Get("/acerca", controllers.HandleAbout)
	app.Get("/planes", controllers.HandlePlans)

	app.Get("/login", controllers.HandleAuthLogin)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Get("/register", controllers.HandleAuthRegister)
	app.Post("/register", controllers.HandleAuthRegister)
	app.Get("/logout", controllers.HandleAuthLogout)
	app.Get("/activate", controllers.HandleAuthActivate)

	// Provider webhooks authenticate through signatures, not sessions
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
	app.Post("/webhooks/mercado-pago", controllers.HandleMercadoPagoWebhook)
}

func (h HttpRouter) registerProtectedRoutes(app *fiber.App) {
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)

	company := app.Group("/empresa", middleware.RequireAuth)
	company.Get("/nueva", controllers.HandleCompanyCreate)
	company.Post("/nueva", controllers.HandleCompanyCreate)
	company.Get("/editar", middleware.RequireCompany, controllers.HandleCompanyEdit)
	company.Post("/editar", middleware.RequireCompany, controllers.HandleCompanyEdit)

	menu := app.Group("/menu", middleware.RequireAuth, middleware.RequireCompany)
	menu.Get("/", controllers.HandleProducts)
	menu.Post("/productos", controllers.HandleProductCreate)
	menu.Post("/productos/:id", controllers.HandleProductUpdate)
	menu.Post("/productos/:id/eliminar", controllers.HandleProductDelete)
	menu.Post("/categorias", controllers.HandleCategoryCreate)
	menu.Post("/categorias/:id/eliminar", controllers.HandleCategoryDelete)

	checkout := app.Group("/checkout", middleware.RequireAuth)
	checkout.Post("/start/:plan_id", middleware.RequireCompany, controllers.HandleCheckoutStart)
	checkout.Get("/:id", controllers.HandleCheckoutShow)
	checkout.Post("/:id/method/:method_id", controllers.HandleCheckoutSelectMethod)
	checkout.Post("/:id/pay", controllers.HandleCheckoutExecute)
	checkout.Post("/:id/retry", controllers.HandleCheckoutRetry)
	checkout.Post("/:id/confirm", controllers.HandleCheckoutConfirm)
	checkout.Post("/:id/cancel", controllers.HandleCheckoutCancel)
	checkout.Get("/:id/return", controllers.HandleCheckoutReturn)
}

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.RequireAdmin)
	admin.Get("/", controllers.HandleAdminDashboard)

	admin.Get("/usuarios", controllers.HandleAdminUsers)
	admin.Post("/usuarios/:id", controllers.HandleAdminUserUpdate)
	admin.Post("/usuarios/:id/eliminar", controllers.HandleAdminUserDelete)

	admin.Get("/configuracion", controllers.HandleAdminSettings)
	admin.Post("/configuracion", controllers.HandleAdminSettings)

	admin.Get("/pagos", controllers.HandleAdminPaymentMethods)
	admin.Post("/pagos", controllers.HandleAdminPaymentMethodCreate)
	admin.Post("/pagos/qr", controllers.HandleAdminQRAssetUpload)
	admin.Post("/pagos/qr/:id/eliminar", controllers.HandleAdminQRAssetDelete)
	admin.Post("/pagos/:id", controllers.HandleAdminPaymentMethodUpdate)
	admin.Post("/pagos/:id/eliminar", controllers.HandleAdminPaymentMethodDelete)

	admin.Get("/planes", controllers.HandleAdminPlans)
	admin.Post("/planes", controllers.HandleAdminPlanCreate)
	admin.Post("/planes/:id", controllers.HandleAdminPlanUpdate)
	admin.Post("/planes/:id/eliminar", controllers.HandleAdminPlanDelete)
}
