package server

import (
	"floorview/internal/models"
	"floorview/internal/service"
	"floorview/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// IndexPage lists every board. An upstream failure renders an empty list with a banner.
func (s *Server) IndexPage(c *fiber.Ctx) error {
	res := s.forum.Categories(c.UserContext())
	return c.Render("index", fiber.Map{
		"Title":      "全部板块",
		"Categories": res.Categories,
		"Failed":     res.Outcome == service.OutcomeFailed,
	})
}

// CategoryPage shows one board with its tags and the first page of posts.
func (s *Server) CategoryPage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	cat := s.forum.Category(ctx, id)
	switch cat.Outcome {
	case service.OutcomeFailed:
		return s.respondError(c, fiber.StatusBadGateway, models.NewUpstreamError(cat.Err))
	case service.OutcomeEmpty:
		return s.respondError(c, fiber.StatusNotFound, models.NewCategoryNotFoundError(id))
	}

	tagID := queryID(c, "tag_id")
	posts := s.forum.Posts(ctx, upstream.PostListQuery{
		CategoryID: id,
		TagID:      tagID,
		Count:      c.QueryInt("count", service.DefaultPageSize),
		SortBy:     c.QueryInt("sort_by", 0),
	})

	return c.Render("category", fiber.Map{
		"Title":        cat.Category.Title,
		"Category":     cat.Category,
		"Page":         posts.Page,
		"CurrentTagID": tagID,
		"Failed":       posts.Outcome == service.OutcomeFailed,
	})
}

// PostPage shows a post with one page of comments.
func (s *Server) PostPage(c *fiber.Ctx) error {
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
	switch res.Outcome {
	case service.OutcomeFailed:
		return s.respondError(c, fiber.StatusBadGateway, models.NewUpstreamError(res.Err))
	case service.OutcomeEmpty:
		return s.respondError(c, fiber.StatusNotFound, models.NewPostNotFoundError(id))
	}

	return c.Render("post", fiber.Map{
		"Title":  res.Detail.Post.Title,
		"Detail": res.Detail,
	})
}
