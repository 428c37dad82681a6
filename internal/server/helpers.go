package server

import (
	"errors"
	"strconv"

	"floorview/internal/models"
	"floorview/internal/observability"
	"floorview/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Paging holds parsed comment paging query parameters.
type Paging struct {
	Page int
	Size int
}

// parsePaging extracts page and size query parameters. Out-of-range values
// fall back to the defaults.
func parsePaging(c *fiber.Ctx) Paging {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	size := c.QueryInt("size", service.DefaultPageSize)
	if size <= 0 {
		size = service.DefaultPageSize
	}
	if size > service.MaxPageSize {
		size = service.MaxPageSize
	}

	return Paging{Page: page, Size: size}
}

// parseID extracts a route parameter by name as a positive int64.
// On failure it writes a 400 response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		_ = s.respondError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return id, nil
}

// queryID reads an optional non-negative id from the query string.
func queryID(c *fiber.Ctx, key string) int64 {
	id, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// respondError writes a JSON envelope for API routes and the error page otherwise.
func (s *Server) respondError(c *fiber.Ctx, status int, appErr *models.AppError) error {
	if wantsJSON(c) {
		return models.RespondWithError(c, status, appErr)
	}
	return s.renderError(c, status, appErr.Message)
}

func (s *Server) renderError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("error", fiber.Map{
		"Title":     "出错了",
		"Status":    status,
		"Message":   message,
		"RequestID": observability.ExtractRequestID(c.UserContext()),
	})
}

// failureStatus maps a degraded outcome to an HTTP status; 0 means OK.
func failureStatus(o service.Outcome) int {
	switch o {
	case service.OutcomeFailed:
		return fiber.StatusBadGateway
	case service.OutcomeEmpty:
		return fiber.StatusNotFound
	default:
		return 0
	}
}
