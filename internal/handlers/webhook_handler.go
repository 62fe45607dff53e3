package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/growmate/growmate-backend/internal/config"
	"github.com/growmate/growmate-backend/internal/dto"
	"github.com/growmate/growmate-backend/internal/services"
)

type WebhookHandler struct {
	commands *services.CommandService
	cfg      *config.Config
}

func NewWebhookHandler(commands *services.CommandService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{commands: commands, cfg: cfg}
}

// HandleSignal receives one inbound message from the Signal relay and returns
// the reply to send back. When SIGNAL_WEBHOOK_SECRET is set, the relay must
// sign the raw body with HMAC-SHA256 in X-Signature.
func (h *WebhookHandler) HandleSignal(c *fiber.Ctx) error {
	if h.cfg.SignalWebhookSecret != "" {
		if !validSignature(c.Body(), c.Get("X-Signature"), h.cfg.SignalWebhookSecret) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.WebhookResponse{
				Success: false, Error: "Invalid signature",
			})
		}
	}

	var req dto.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.WebhookResponse{
			Success: false, Error: "Invalid webhook payload",
		})
	}
	if req.Sender == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.WebhookResponse{
			Success: false, Error: "sender and message are required",
		})
	}

	reply, err := h.commands.HandleCommand(req.Sender, req.Message)
	if err != nil {
		slog.Error("command processing failed", "sender", req.Sender, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.WebhookResponse{
			Success: false, Error: "Failed to process message",
		})
	}

	return c.JSON(dto.WebhookResponse{Success: true, Message: reply})
}

func validSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
