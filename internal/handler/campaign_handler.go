package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
)

// CampaignServiceInterface defines the interface for campaign business logic.
type CampaignServiceInterface interface {
	Create(ctx context.Context, req *model.CampaignRequest) (*model.CampaignResponse, error)
	GetByID(ctx context.Context, id int64) (*model.CampaignResponse, error)
	List(ctx context.Context) ([]model.CampaignResponse, error)
	Delete(ctx context.Context, id int64) error
}

// CampaignHandler handles HTTP requests for campaign operations.
type CampaignHandler struct {
	service   CampaignServiceInterface
	validator *validator.Validate
}

// NewCampaignHandler creates a new CampaignHandler with the given service and validator.
func NewCampaignHandler(svc CampaignServiceInterface, v *validator.Validate) *CampaignHandler {
	return &CampaignHandler{service: svc, validator: v}
}

// CreateCampaign handles POST /api/campaigns. When the campaign targets a
// segment, vouchers for the segment's current members are issued before the
// response is sent; a 409 means code generation gave up and the whole call
// may be retried.
func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req model.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWindow):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: end_date must not precede start_date"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		case errors.Is(err, service.ErrSegmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "target segment not found"})
		case errors.Is(err, service.ErrCodeExhausted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "voucher code generation failed, retry the request"})
		}
		log.Error().Err(err).Str("campaign_name", req.Name).Msg("failed to create campaign")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetCampaign handles GET /api/campaigns/:id, returning the campaign with
// its vouchers.
func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	resp, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "campaign not found"})
		}
		log.Error().Err(err).Int64("campaign_id", id).Msg("failed to get campaign")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Int64("campaign_id", resp.ID).
		Int("vouchers_count", len(resp.Vouchers)).
		Msg("campaign retrieved")

	return c.JSON(resp)
}

// ListCampaigns handles GET /api/campaigns.
func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list campaigns")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(campaigns)
}

// DeleteCampaign handles DELETE /api/campaigns/:id. The campaign's vouchers
// are deleted with it.
func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "campaign not found"})
		}
		log.Error().Err(err).Int64("campaign_id", id).Msg("failed to delete campaign")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().Int64("campaign_id", id).Msg("campaign and its vouchers deleted")
	return c.SendStatus(fiber.StatusNoContent)
}
