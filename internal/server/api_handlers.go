package server

import (
	"floorview/internal/models"
	"floorview/internal/service"
	"floorview/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// PostDetailResponse is the JSON body of GET /api/post/:id. Content is the
// formatted HTML; RawContent keeps the upstream markup.
type PostDetailResponse struct {
	*models.PostDetail
	RawContent string `json:"raw_content"`
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	res := s.forum.Categories(c.UserContext())
	if res.Outcome == service.OutcomeFailed {
		return models.RespondWithError(c, fiber.StatusBadGateway, models.NewUpstreamError(res.Err))
	}
	return c.JSON(res.Categories)
}

// GetCategory handles GET /api/category/:id
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res := s.forum.Category(c.UserContext(), id)
	switch res.Outcome {
	case service.OutcomeFailed:
		return models.RespondWithError(c, fiber.StatusBadGateway, models.NewUpstreamError(res.Err))
	case service.OutcomeEmpty:
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewCategoryNotFoundError(id))
	}
	return c.JSON(res.Category)
}

// GetPosts handles GET /api/posts/:id where id is the category.
// Optional query: tag_id, count, sort_by.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res := s.forum.Posts(c.UserContext(), upstream.PostListQuery{
		CategoryID: id,
		TagID:      queryID(c, "tag_id"),
		Count:      c.QueryInt("count", service.DefaultPageSize),
		SortBy:     c.QueryInt("sort_by", 0),
	})
	if res.Outcome == service.OutcomeFailed {
		return models.RespondWithError(c, fiber.StatusBadGateway, models.NewUpstreamError(res.Err))
	}
	return c.JSON(res.Page)
}

// GetPost handles GET /api/post/:id. Optional query: page, size.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	paging := parsePaging(c)
	res := s.forum.PostDetail(c.UserContext(), upstream.PostDetailQuery{
		PostID:   id,
		PageNo:   paging.Page,
		PageSize: paging.Size,
	})
	if status := failureStatus(res.Outcome); status != 0 {
		if res.Outcome == service.OutcomeFailed {
			return models.RespondWithError(c, status, models.NewUpstreamError(res.Err))
		}
		return models.RespondWithError(c, status, models.NewPostNotFoundError(id))
	}

	detail := *res.Detail
	raw := detail.Post.Content
	detail.Post.Content = s.formatter.Format(raw)
	return c.JSON(PostDetailResponse{PostDetail: &detail, RawContent: raw})
}
