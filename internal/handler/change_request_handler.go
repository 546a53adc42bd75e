package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/middleware"
	"sbir-marketplace/internal/service/changerequest"
)

type ChangeRequestHandler struct {
	crService changerequest.Service
}

func NewChangeRequestHandler(crService changerequest.Service) *ChangeRequestHandler {
	return &ChangeRequestHandler{crService: crService}
}

func (h *ChangeRequestHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return err
	}

	var input domain.CreateChangeRequestInput
	if err := c.BodyParser(&input); err != nil {
		if errors.Is(err, domain.ErrInvalidField) {
			return err
		}
		return middleware.BadRequest("Invalid request body")
	}

	cr, err := h.crService.Create(c.Context(), actor, listingID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(cr)
}

func (h *ChangeRequestHandler) ListMine(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	result, err := h.crService.ListMine(c.Context(), actor, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ChangeRequestHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var status *domain.ChangeRequestStatus
	if s := c.Query("status"); s != "" {
		st := domain.ChangeRequestStatus(s)
		status = &st
	}

	result, err := h.crService.List(c.Context(), status, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ChangeRequestHandler) Get(c *fiber.Ctx) error {
	requestID, err := parseIDParam(c, "requestId", "request")
	if err != nil {
		return err
	}

	cr, err := h.crService.GetByID(c.Context(), requestID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(cr)
}

func (h *ChangeRequestHandler) Approve(c *fiber.Ctx) error {
	return h.process(c, domain.RequestApproved)
}

func (h *ChangeRequestHandler) Reject(c *fiber.Ctx) error {
	return h.process(c, domain.RequestRejected)
}

func (h *ChangeRequestHandler) process(c *fiber.Ctx, status domain.ChangeRequestStatus) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	requestID, err := parseIDParam(c, "requestId", "request")
	if err != nil {
		return err
	}

	var input domain.ReviewChangeRequestInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	result, err := h.crService.Process(c.Context(), actor, requestID, status, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
