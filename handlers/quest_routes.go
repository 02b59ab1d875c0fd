// handlers/quest_routes.go
package handlers

import (
	"errors"

	"fanfi-engagement-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService) {
	app.Get("/quests", func(c *fiber.Ctx) error {
		wallet := c.Query("wallet")
		if wallet == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet query parameter is required"})
		}

		quests, err := questService.ListForWallet(wallet)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch quests"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    quests,
			"count":   len(quests),
		})
	})

	app.Post("/quests/claim", func(c *fiber.Ctx) error {
		var req struct {
			Wallet  string `json:"wallet"`
			QuestID string `json:"questId"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.Wallet == "" || req.QuestID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet and questId are required"})
		}

		result, err := questService.Claim(c.Context(), req.Wallet, req.QuestID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrQuestNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Quest not found"})
			case errors.Is(err, services.ErrNotClaimable):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Quest not completed or reward already claimed"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to claim quest reward"})
			}
		}

		message := "Reward claimed"
		if !result.OnChain {
			message = "Reward claimed (database only, on-chain mint unavailable)"
		}

		return c.JSON(fiber.Map{
			"success": true,
			"reward":  result.Reward,
			"txHash":  result.TxHash,
			"onChain": result.OnChain,
			"message": message,
		})
	})
}
