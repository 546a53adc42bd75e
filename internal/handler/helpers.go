package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/middleware"
)

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", domain.DefaultPageSize); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}

func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	actor := middleware.GetCurrentActor(c)
	if actor == nil {
		return domain.Actor{}, middleware.Unauthorized("User not authenticated")
	}
	return *actor, nil
}
