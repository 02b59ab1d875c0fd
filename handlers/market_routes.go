// handlers/market_routes.go
package handlers

import (
	"strconv"
	"time"

	"fanfi-engagement-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMarketRoutes(app *fiber.App, matchService *services.MatchService, userService *services.UserService, predictionService *services.PredictionService) {
	app.Get("/matches", func(c *fiber.Ctx) error {
		country := c.Query("country")
		demo := c.Query("demo") == "true"

		matches, err := matchService.List(country, demo)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch matches"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    matches,
			"count":   len(matches),
		})
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		entries, err := userService.Leaderboard(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch leaderboard"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    entries,
			"count":   len(entries),
		})
	})

	app.Post("/predictions/create-match", func(c *fiber.Ctx) error {
		var req struct {
			MatchID   string    `json:"matchId"`
			LockTime  time.Time `json:"lockTime"`
			MatchTime time.Time `json:"matchTime"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.MatchID == "" || req.LockTime.IsZero() || req.MatchTime.IsZero() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "matchId, lockTime and matchTime are required"})
		}
		if !req.LockTime.Before(req.MatchTime) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "lockTime must be before matchTime"})
		}

		result, err := predictionService.CreateMarket(c.Context(), req.MatchID, req.LockTime, req.MatchTime)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create prediction market"})
		}

		message := "Prediction market created"
		if result.AlreadyExists {
			message = "Prediction market already exists"
		}

		return c.JSON(fiber.Map{
			"success":         true,
			"transactionHash": result.Market.TxHash,
			"matchIdHash":     result.Market.MatchIDHash,
			"message":         message,
		})
	})
}
