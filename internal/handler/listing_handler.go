package handler

import (
	"github.com/gofiber/fiber/v2"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/middleware"
	"sbir-marketplace/internal/service/listing"
)

type ListingHandler struct {
	listingService listing.Service
}

func NewListingHandler(listingService listing.Service) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filter := domain.ListingFilter{
		Category:         c.Query("category"),
		Agency:           c.Query("agency"),
		Phase:            domain.Phase(c.Query("phase")),
		Search:           c.Query("q"),
		PaginationParams: getPaginationParams(c),
	}

	result, err := h.listingService.ListActive(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return err
	}

	result, err := h.listingService.GetByID(c.Context(), middleware.GetCurrentActor(c), listingID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var input domain.CreateListingInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.listingService.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ListingHandler) ListMine(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	result, err := h.listingService.ListByOwner(c.Context(), actor, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ListingHandler) UploadPhoto(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	listingID, err := parseIDParam(c, "listingId", "listing")
	if err != nil {
		return err
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return middleware.BadRequest("Photo file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read photo")
	}
	defer reader.Close()

	result, err := h.listingService.UploadPhoto(c.Context(), actor, listingID, reader)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
