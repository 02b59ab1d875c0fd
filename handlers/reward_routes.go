// handlers/reward_routes.go
package handlers

import (
	"errors"
	"time"

	"fanfi-engagement-service/models"
	"fanfi-engagement-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewardService *services.RewardService, stakingService *services.StakingService, userService *services.UserService) {
	app.Post("/rewards/award", func(c *fiber.Ctx) error {
		var req struct {
			UserID          string            `json:"userId"`
			WalletAddress   string            `json:"walletAddress"`
			Action          string            `json:"action"`
			Metadata        map[string]string `json:"metadata"`
			CooldownMinutes int               `json:"cooldownMinutes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.WalletAddress == "" || req.Action == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "walletAddress and action are required"})
		}
		if req.CooldownMinutes < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "cooldownMinutes must not be negative"})
		}

		cooldown := time.Duration(req.CooldownMinutes) * time.Minute
		reward, err := rewardService.Award(c.Context(), req.WalletAddress, models.RewardAction(req.Action),
			req.Metadata["source_type"], req.Metadata["source_id"], cooldown)
		if err != nil {
			if errors.Is(err, services.ErrCooldownActive) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": "Cooldown active, try again later"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to award reward"})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"tokens":  reward.Tokens,
			"points":  reward.Points,
			"action":  reward.Action,
		})
	})

	app.Post("/staking/track", func(c *fiber.Ctx) error {
		var req struct {
			Wallet string `json:"wallet"`
			Action string `json:"action"`
			Amount int64  `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
		if req.Wallet == "" || req.Action == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "wallet and action are required"})
		}

		if err := stakingService.Track(req.Wallet, req.Action, req.Amount); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Staking action tracked",
		})
	})

	app.Post("/verify", func(c *fiber.Ctx) error {
		var req services.VerifyRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
		}
		if req.AttestationID == "" || len(req.Proof) == 0 || len(req.PublicSignals) == 0 || req.UserContextData == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "attestationId, proof, publicSignals and userContextData are required",
			})
		}

		result, err := userService.VerifyIdentity(c.Context(), req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Verification request failed"})
		}
		if !result.Valid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"result":  false,
				"message": result.Reason,
			})
		}

		return c.JSON(fiber.Map{
			"status":            "success",
			"result":            true,
			"credentialSubject": result.CredentialSubject,
			"message":           "Identity verified",
		})
	})
}
