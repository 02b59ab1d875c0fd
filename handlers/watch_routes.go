// handlers/watch_routes.go
package handlers

import (
	"errors"

	"fanfi-engagement-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWatchRoutes(app *fiber.App, watchService *services.WatchService) {
	app.Post("/watch-room/join", func(c *fiber.Ctx) error {
		var req struct {
			Wallet  string `json:"wallet"`
			MatchID string `json:"matchId"`
			RoomID  string `json:"roomId"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.Wallet == "" || req.MatchID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet and matchId are required"})
		}

		session, err := watchService.Join(req.Wallet, req.MatchID, req.RoomID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to join watch room"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"session": session,
			"message": "Joined watch room",
		})
	})

	app.Post("/watch-room/activity", func(c *fiber.Ctx) error {
		var req struct {
			Wallet  string `json:"wallet"`
			MatchID string `json:"matchId"`
			Kind    string `json:"kind"` // "message" or "poll"
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.Wallet == "" || req.MatchID == "" || req.Kind == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet, matchId and kind are required"})
		}

		if err := watchService.RecordActivity(req.Wallet, req.MatchID, req.Kind); err != nil {
			if errors.Is(err, services.ErrNoActiveSession) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "No active watch session"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
		}

		return c.JSON(fiber.Map{"success": true, "message": "Activity recorded"})
	})

	app.Post("/watch-room/leave", func(c *fiber.Ctx) error {
		var req struct {
			Wallet  string `json:"wallet"`
			MatchID string `json:"matchId"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.Wallet == "" || req.MatchID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet and matchId are required"})
		}

		result, err := watchService.Leave(req.Wallet, req.MatchID)
		if err != nil {
			if errors.Is(err, services.ErrNoActiveSession) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "No active watch session for this match"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to leave watch room"})
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"watchTime": result.WatchSeconds,
			"engagement": fiber.Map{
				"messages_sent":      result.Session.MessagesSent,
				"polls_participated": result.Session.PollsParticipated,
			},
			"rewards": fiber.Map{
				"base":          result.BaseReward,
				"message_bonus": result.MessageBonus,
				"poll_bonus":    result.PollBonus,
				"total":         result.TotalReward,
			},
			"message": "Watch session finalized",
		})
	})
}
