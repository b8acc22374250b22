package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/statistics"
)

// HandleStart renders the landing page
func HandleStart(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()
	settings := models.GetAppSettings()

	siteTitle := "MesaFácil"
	siteDescription := ""
	if settings != nil {
		siteTitle = settings.SiteTitle
		siteDescription = settings.SiteDescription
	}

	return render(c, "home/index", fiber.Map{
		"Title":           "",
		"SiteTitle":       siteTitle,
		"SiteDescription": siteDescription,
		"TotalCompanies":  stats.TotalCompanies,
		"TotalUsers":      stats.TotalUsers,
	})
}

// HandleAbout renders the about page
func HandleAbout(c *fiber.Ctx) error {
	return render(c, "home/about", fiber.Map{
		"Title": " | Acerca de",
	})
}
