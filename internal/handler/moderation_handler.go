package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/middleware"
	"sbir-marketplace/internal/service/listing"
	"sbir-marketplace/internal/service/moderation"
)

type ModerationHandler struct {
	moderationService moderation.Service
	listingService    listing.Service
}

func NewModerationHandler(moderationService moderation.Service, listingService listing.Service) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
		listingService:    listingService,
	}
}

type updateListingResponse struct {
	Listing *domain.Listing  `json:"listing"`
	Changes domain.ChangeSet `json:"changes"`
}

func (h *ModerationHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var status *domain.ListingStatus
	if s := c.Query("status"); s != "" {
		st := domain.ListingStatus(s)
		status = &st
	}

	filter := domain.ListingFilter{
		Category:         c.Query("category"),
		Agency:           c.Query("agency"),
		Phase:            domain.Phase(c.Query("phase")),
		Search:           c.Query("q"),
		PaginationParams: getPaginationParams(c),
	}

	result, err := h.listingService.ListByStatus(c.Context(), actor, status, filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	actor, listingID, notes, err := h.parseAction(c)
	if err != nil {
		return err
	}

	result, err := h.moderationService.Approve(c.Context(), actor, listingID, notes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	actor, listingID, notes, err := h.parseAction(c)
	if err != nil {
		return err
	}

	result, err := h.moderationService.Reject(c.Context(), actor, listingID, notes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ModerationHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return err
	}

	var input domain.ChangeStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.moderationService.ChangeStatus(c.Context(), actor, listingID, input.Status, input.ModerationNotes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ModerationHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return err
	}

	var input domain.AdminEditInput
	if err := c.BodyParser(&input); err != nil {
		if errors.Is(err, domain.ErrInvalidField) {
			return err
		}
		return middleware.BadRequest("Invalid request body")
	}

	result, changes, err := h.moderationService.UpdateWithAudit(c.Context(), actor, listingID, input.Changes, input.InternalNotes)
	if err != nil {
		return err
	}

	if changes == nil {
		changes = domain.ChangeSet{}
	}
	return c.Status(fiber.StatusOK).JSON(updateListingResponse{Listing: result, Changes: changes})
}

func (h *ModerationHandler) parseAction(c *fiber.Ctx) (domain.Actor, uuid.UUID, domain.ModerationNotes, error) {
	var notes domain.ModerationNotes

	actor, err := requireActor(c)
	if err != nil {
		return actor, uuid.Nil, notes, err
	}

	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return actor, listingID, notes, err
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(&notes); err != nil {
			return actor, listingID, notes, middleware.BadRequest("Invalid request body")
		}
	}

	return actor, listingID, notes, nil
}
