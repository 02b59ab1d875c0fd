// handlers/duel_routes.go
package handlers

import (
	"errors"
	"strconv"

	"fanfi-engagement-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDuelRoutes(app *fiber.App, duelService *services.DuelService) {
	app.Post("/duels/create", func(c *fiber.Ctx) error {
		var req struct {
			CreatorWallet string `json:"creatorWallet"`
			MatchID       string `json:"matchId"`
			StakeTokens   int64  `json:"stakeTokens"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.CreatorWallet == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "creatorWallet is required"})
		}
		if req.StakeTokens < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "stakeTokens must not be negative"})
		}

		duel, err := duelService.Create(req.CreatorWallet, req.MatchID, req.StakeTokens)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create duel"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"duel":    duel,
			"message": "Duel created, waiting for an opponent",
		})
	})

	app.Post("/duels/join", func(c *fiber.Ctx) error {
		var req struct {
			DuelID         string `json:"duelId"`
			OpponentWallet string `json:"opponentWallet"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.DuelID == "" || req.OpponentWallet == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "duelId and opponentWallet are required"})
		}

		duel, err := duelService.Join(c.Context(), req.DuelID, req.OpponentWallet)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSelfJoin):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot join your own duel"})
			case errors.Is(err, services.ErrDuelTaken):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Another opponent already took this duel"})
			case errors.Is(err, services.ErrDuelNotOpen):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Duel not found or no longer open"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to join duel"})
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"duel":    duel,
			"message": "Duel is now active",
		})
	})

	app.Get("/duels/open", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		duels, err := duelService.GetOpen(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch duels"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    duels,
			"count":   len(duels),
		})
	})
}
