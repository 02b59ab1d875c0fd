// handlers/admin_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"fanfi-engagement-service/middleware"
	"fanfi-engagement-service/models"
	"fanfi-engagement-service/services"
	"fanfi-engagement-service/utils"
	"fanfi-engagement-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupAdminRoutes(app *fiber.App, questService *services.QuestService, matchService *services.MatchService, reconciler *workers.BalanceReconciler) {
	admin := app.Group("/admin", middleware.ServiceAuthMiddleware())

	// Quest creation accepts multipart so an icon can be uploaded alongside
	admin.Post("/quests", func(c *fiber.Ctx) error {
		quest := models.Quest{
			Title:            c.FormValue("title"),
			Description:      c.FormValue("description"),
			Category:         models.QuestCategory(c.FormValue("category")),
			RequirementType:  models.RequirementType(c.FormValue("requirement_type")),
			RequirementValue: formInt(c, "requirement_value"),
			RewardTokens:     formInt(c, "reward_tokens"),
			RewardPoints:     formInt(c, "reward_points"),
			Active:           c.FormValue("active", "true") == "true",
		}
		if quest.Title == "" || quest.Category == "" || quest.RequirementType == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title, category and requirement_type are required"})
		}

		if icon, err := c.FormFile("icon"); err == nil {
			url, upErr := utils.UploadFileToR2(icon, "quest-icons/"+uuid.NewString()+"-"+icon.Filename)
			if upErr != nil && !errors.Is(upErr, utils.ErrR2NotConfigured) {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload icon"})
			}
			quest.IconURL = url
		}

		if err := questService.CreateQuest(&quest); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quest"})
		}
		return c.Status(fiber.StatusCreated).JSON(quest)
	})

	admin.Post("/matches", func(c *fiber.Ctx) error {
		homeTeam := c.FormValue("home_team")
		awayTeam := c.FormValue("away_team")
		if homeTeam == "" || awayTeam == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "home_team and away_team are required"})
		}

		kickoffAt, err := time.Parse(time.RFC3339, c.FormValue("kickoff_at"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kickoff_at must be RFC3339"})
		}

		var bannerURL string
		if banner, err := c.FormFile("banner"); err == nil {
			url, upErr := utils.UploadFileToR2(banner, "match-banners/"+uuid.NewString()+"-"+banner.Filename)
			if upErr != nil && !errors.Is(upErr, utils.ErrR2NotConfigured) {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload banner"})
			}
			bannerURL = url
		}

		match, err := matchService.Create(homeTeam, awayTeam,
			c.FormValue("country"), c.FormValue("league"),
			kickoffAt, bannerURL, c.FormValue("demo") == "true")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create match"})
		}
		return c.Status(fiber.StatusCreated).JSON(match)
	})

	// Latest reconciliation snapshot: off-chain vs on-chain per wallet
	admin.Get("/reconciliation", func(c *fiber.Ctx) error {
		balances, err := reconciler.Snapshot()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch reconciliation data"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    balances,
			"count":   len(balances),
		})
	})

	// Trigger a reconciliation pass out of band
	admin.Post("/reconciliation/run", func(c *fiber.Ctx) error {
		if err := reconciler.ReconcileOnce(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Reconciliation pass completed"})
	})
}

func formInt(c *fiber.Ctx, key string) int64 {
	v, err := strconv.ParseInt(c.FormValue(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
