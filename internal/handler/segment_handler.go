package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
)

// SegmentServiceInterface defines the interface for segment business logic.
type SegmentServiceInterface interface {
	Create(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error)
	Update(ctx context.Context, id int64, req *model.SegmentRequest) (*model.Segment, error)
	GetByID(ctx context.Context, id int64) (*model.Segment, error)
	List(ctx context.Context) ([]model.Segment, error)
	MemberIDs(ctx context.Context, id int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

// SegmentHandler handles HTTP requests for segment operations.
type SegmentHandler struct {
	service   SegmentServiceInterface
	validator *validator.Validate
}

// NewSegmentHandler creates a new SegmentHandler with the given service and validator.
func NewSegmentHandler(svc SegmentServiceInterface, v *validator.Validate) *SegmentHandler {
	return &SegmentHandler{service: svc, validator: v}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateSegment handles POST /api/segments. Creating a segment reconciles
// its membership before the response is sent.
func (h *SegmentHandler) CreateSegment(c *fiber.Ctx) error {
	var req model.SegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	seg, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("segment_name", req.Name).Msg("failed to create segment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().Int64("segment_id", seg.ID).Msg("segment created")
	return c.Status(fiber.StatusCreated).JSON(seg)
}

// UpdateSegment handles PUT /api/segments/:id. Updating a segment's filter
// fully replaces its membership.
func (h *SegmentHandler) UpdateSegment(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	var req model.SegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	seg, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrSegmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "segment not found"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Int64("segment_id", id).Msg("failed to update segment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(seg)
}

// GetSegment handles GET /api/segments/:id.
func (h *SegmentHandler) GetSegment(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	seg, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSegmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "segment not found"})
		}
		log.Error().Err(err).Int64("segment_id", id).Msg("failed to get segment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(seg)
}

// ListSegments handles GET /api/segments.
func (h *SegmentHandler) ListSegments(c *fiber.Ctx) error {
	segments, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list segments")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(segments)
}

// GetSegmentMembers handles GET /api/segments/:id/members.
func (h *SegmentHandler) GetSegmentMembers(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	memberIDs, err := h.service.MemberIDs(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSegmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "segment not found"})
		}
		log.Error().Err(err).Int64("segment_id", id).Msg("failed to get segment members")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(model.SegmentMembersResponse{SegmentID: id, CustomerIDs: memberIDs})
}

// DeleteSegment handles DELETE /api/segments/:id. Membership edges go with
// the segment; campaigns that targeted it are left alone.
func (h *SegmentHandler) DeleteSegment(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSegmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "segment not found"})
		}
		log.Error().Err(err).Int64("segment_id", id).Msg("failed to delete segment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().Int64("segment_id", id).Msg("segment deleted")
	return c.SendStatus(fiber.StatusNoContent)
}
