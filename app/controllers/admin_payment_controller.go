package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/realtime"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/storage"
)

// storageClient holds the object storage client for QR uploads, wired
// during startup. Nil when S3 storage is disabled.
var storageClient *storage.Client

// SetStorageClient injects the storage client. Called once from main.
func SetStorageClient(client *storage.Client) {
	storageClient = client
}

// notifyConfigChanged invalidates cached eligibility everywhere after an
// admin mutation of billing configuration.
func notifyConfigChanged(reason string) {
	realtime.PublishConfigChanged(reason)
	if orchestrator != nil {
		orchestrator.HandleConfigChanged()
	}
}

// HandleAdminPaymentMethods lists the configured payment methods with
// secrets masked.
func HandleAdminPaymentMethods(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	methods, err := repos.PaymentMethod.GetAll()
	if err != nil {
		return render(c, "admin/payment_methods", fiber.Map{
			"Title": " | Métodos de pago",
			"Error": "No pudimos cargar los métodos de pago",
		})
	}

	type methodView struct {
		ID          uint
		Provider    string
		DisplayName string
		IsActive    bool
		Config      map[string]string
	}
	views := make([]methodView, 0, len(methods))
	for _, m := range methods {
		views = append(views, methodView{
			ID:          m.ID,
			Provider:    m.Provider,
			DisplayName: m.DisplayName,
			IsActive:    m.IsActive,
			Config:      m.RedactedConfig(),
		})
	}

	qrAssets, _ := repos.PaymentMethod.GetAllQRAssets()
	plans, _ := repos.Plan.GetAll()

	return render(c, "admin/payment_methods", fiber.Map{
		"Title":     " | Métodos de pago",
		"Methods":   views,
		"QRAssets":  qrAssets,
		"Plans":     plans,
		"Providers": models.AllPaymentProviders,
	})
}

// HandleAdminPaymentMethodCreate adds a payment method configuration
func HandleAdminPaymentMethodCreate(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	provider := strings.ToLower(strings.TrimSpace(c.FormValue("provider")))
	if !models.IsKnownPaymentProvider(provider) {
		fm["message"] = fmt.Sprintf("Proveedor desconocido: %s", provider)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	method := &models.PaymentMethodConfig{
		Provider:    provider,
		DisplayName: strings.TrimSpace(c.FormValue("display_name")),
		IsActive:    c.FormValue("is_active", "true") == "true",
	}
	if method.DisplayName == "" {
		method.DisplayName = provider
	}
	if err := method.SetConfig(collectConfigFields(c)); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	if err := repos.PaymentMethod.Create(method); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	notifyConfigChanged("payment_method:created")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Método de pago %s creado", method.DisplayName),
	}).Redirect("/admin/pagos")
}

// collectConfigFields reads the provider-specific config keys from the form
func collectConfigFields(c *fiber.Ctx) map[string]string {
	cfg := map[string]string{}
	for _, key := range []string{
		"public_key", "secret_key", "access_token", "webhook_secret",
		"phone_number", "account_number", "account_type", "beneficiary",
	} {
		if v := strings.TrimSpace(c.FormValue("config_" + key)); v != "" {
			cfg[key] = v
		}
	}
	return cfg
}

// HandleAdminPaymentMethodUpdate edits a payment method configuration.
// Blank secret fields keep their stored values.
func HandleAdminPaymentMethodUpdate(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	method, err := repos.PaymentMethod.GetByID(parseUintParam(c, "id"))
	if err != nil {
		fm["message"] = "Método de pago no encontrado"

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	if name := strings.TrimSpace(c.FormValue("display_name")); name != "" {
		method.DisplayName = name
	}
	method.IsActive = c.FormValue("is_active", "true") == "true"

	cfg := method.Config()
	for key, value := range collectConfigFields(c) {
		cfg[key] = value
	}
	if err := method.SetConfig(cfg); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	if err := repos.PaymentMethod.Update(method); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	notifyConfigChanged("payment_method:updated")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Método de pago actualizado",
	}).Redirect("/admin/pagos")
}

// HandleAdminPaymentMethodDelete removes a payment method configuration
func HandleAdminPaymentMethodDelete(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	if err := repos.PaymentMethod.Delete(parseUintParam(c, "id")); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/admin/pagos")
	}

	notifyConfigChanged("payment_method:deleted")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Método de pago eliminado",
	}).Redirect("/admin/pagos")
}

// HandleAdminQRAssetUpload stores a QR payment image for a (plan, provider)
// pair in object storage and registers it.
func HandleAdminQRAssetUpload(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fm := fiber.Map{
		"type": "error",
	}

	if storageClient == nil {
		fm["message"] = "El almacenamiento de imágenes no está habilitado"

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	planID, _ := strconv.Atoi(c.FormValue("plan_id", "0"))
	provider := strings.ToLower(strings.TrimSpace(c.FormValue("provider")))
	if planID <= 0 || !models.IsKnownPaymentProvider(provider) {
		fm["message"] = "Plan o proveedor inválido"

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}
	if _, err := repos.Plan.GetByID(uint(planID)); err != nil {
		fm["message"] = "Plan no encontrado"

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		fm["message"] = "Selecciona una imagen QR"

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}
	file, err := fileHeader.Open()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}
	defer file.Close()

	objectKey, publicURL, err := storageClient.UploadQRImage(c.Context(), uint(planID), provider, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	asset := &models.QRAsset{
		PlanID:     uint(planID),
		Provider:   provider,
		ImageURL:   publicURL,
		StorageKey: objectKey,
		IsActive:   true,
	}
	if expires := strings.TrimSpace(c.FormValue("expires_at")); expires != "" {
		if t, err := time.Parse("2006-01-02", expires); err == nil {
			asset.ExpiresAt = &t
		}
	}

	if err := repos.PaymentMethod.CreateQRAsset(asset); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/admin/pagos")
	}

	notifyConfigChanged("qr_asset:created")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Imagen QR registrada",
	}).Redirect("/admin/pagos")
}

// HandleAdminQRAssetDelete deactivates a QR asset and removes its object
func HandleAdminQRAssetDelete(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	asset, err := repos.PaymentMethod.GetQRAssetByID(parseUintParam(c, "id"))
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Imagen QR no encontrada",
		}).Redirect("/admin/pagos")
	}

	if err := repos.PaymentMethod.DeleteQRAsset(asset.ID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/admin/pagos")
	}

	if storageClient != nil && asset.StorageKey != "" {
		if err := storageClient.DeleteObject(c.Context(), asset.StorageKey); err != nil {
			// The DB row is gone; a leftover object is only storage noise.
			log.Warnf("failed to delete QR object %s: %v", asset.StorageKey, err)
		}
	}

	notifyConfigChanged("qr_asset:deleted")

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Imagen QR eliminada",
	}).Redirect("/admin/pagos")
}
