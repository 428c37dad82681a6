// Package service holds the forum read model on top of the floor API client.
package service

import (
	"context"
	"log/slog"
	"strings"

	"floorview/internal/mapper"
	"floorview/internal/models"
	"floorview/internal/upstream"
)

// Paging defaults and limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Outcome tells a successful result apart from a degraded one.
type Outcome int

const (
	// OutcomeOK means the upstream answered with data.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the upstream answered but had nothing to show.
	OutcomeEmpty
	// OutcomeFailed means the upstream call failed; the value is a degraded default.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fetcher is the subset of the upstream client the service needs.
type Fetcher interface {
	FetchCategories(ctx context.Context) ([]mapper.Raw, error)
	FetchPostList(ctx context.Context, q upstream.PostListQuery) (*upstream.PostList, error)
	FetchPostDetail(ctx context.Context, q upstream.PostDetailQuery) (*upstream.PostDetail, error)
}

// CategoriesResult is the category list. Categories is never nil.
type CategoriesResult struct {
	Categories []models.Category
	Outcome    Outcome
	Err        error
}

// CategoryResult is a single category looked up in the list.
type CategoryResult struct {
	Category models.Category
	Found    bool
	Outcome  Outcome
	Err      error
}

// PostListResult is one listing page; the page echoes the requested ids even on failure.
type PostListResult struct {
	Page    models.PostPage
	Outcome Outcome
	Err     error
}

// PostDetailResult is a post with comments. Detail is nil unless Outcome is OutcomeOK.
type PostDetailResult struct {
	Detail  *models.PostDetail
	Outcome Outcome
	Err     error
}

// ForumService maps floor API responses into display records and applies
// the degrade-on-failure policy.
type ForumService struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewForumService creates a ForumService.
func NewForumService(fetcher Fetcher, logger *slog.Logger) *ForumService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForumService{fetcher: fetcher, logger: logger.With(slog.String("component", "forum"))}
}

// Categories fetches every board.
func (s *ForumService) Categories(ctx context.Context) CategoriesResult {
	raws, err := s.fetcher.FetchCategories(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch categories", slog.String("operation", upstream.OpCategories), slog.Any("error", err))
		return CategoriesResult{Categories: []models.Category{}, Outcome: OutcomeFailed, Err: err}
	}

	cats := mapper.Categories(raws)
	s.logger.InfoContext(ctx, "fetched categories", slog.Int("count", len(cats)))
	return CategoriesResult{Categories: cats, Outcome: outcomeFor(len(cats))}
}

// Category finds one board by id among the fetched list.
func (s *ForumService) Category(ctx context.Context, id int64) CategoryResult {
	res := s.Categories(ctx)
	if res.Outcome == OutcomeFailed {
		return CategoryResult{Outcome: OutcomeFailed, Err: res.Err}
	}

	cat, ok := FindCategory(res.Categories, id, "")
	if !ok {
		return CategoryResult{Outcome: OutcomeEmpty}
	}
	return CategoryResult{Category: cat, Found: true, Outcome: OutcomeOK}
}

// Posts fetches one page of a category listing.
func (s *ForumService) Posts(ctx context.Context, q upstream.PostListQuery) PostListResult {
	q.Count = normalizeSize(q.Count)
	page := models.PostPage{Posts: []models.Post{}, CategoryID: q.CategoryID, TagID: q.TagID}

	raw, err := s.fetcher.FetchPostList(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch post list",
			slog.String("operation", upstream.OpPostList),
			slog.Int64("category_id", q.CategoryID),
			slog.Int64("tag_id", q.TagID),
			slog.Any("error", err))
		return PostListResult{Page: page, Outcome: OutcomeFailed, Err: err}
	}

	page.Posts = mapper.Posts(raw.Posts)
	page.HasMore = raw.More
	return PostListResult{Page: page, Outcome: outcomeFor(len(page.Posts))}
}

// PostDetail fetches a post and one page of comments.
func (s *ForumService) PostDetail(ctx context.Context, q upstream.PostDetailQuery) PostDetailResult {
	q.PageNo = normalizePage(q.PageNo)
	q.PageSize = normalizeSize(q.PageSize)

	raw, err := s.fetcher.FetchPostDetail(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch post detail",
			slog.String("operation", upstream.OpPostDetail),
			slog.Int64("post_id", q.PostID),
			slog.Any("error", err))
		return PostDetailResult{Outcome: OutcomeFailed, Err: err}
	}
	if !raw.Found {
		s.logger.WarnContext(ctx, "post not found upstream", slog.Int64("post_id", q.PostID))
		return PostDetailResult{Outcome: OutcomeEmpty}
	}

	detail := mapper.PostDetail(raw.Post, raw.Comments, q.PageNo, q.PageSize)
	return PostDetailResult{Detail: &detail, Outcome: OutcomeOK}
}

// FindCategory returns the first category whose id matches, or when id is 0,
// whose title contains name.
func FindCategory(cats []models.Category, id int64, name string) (models.Category, bool) {
	for _, c := range cats {
		if id != 0 && c.ID == id {
			return c, true
		}
		if id == 0 && name != "" && strings.Contains(c.Title, name) {
			return c, true
		}
	}
	return models.Category{}, false
}

func outcomeFor(n int) Outcome {
	if n == 0 {
		return OutcomeEmpty
	}
	return OutcomeOK
}

func normalizeSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func normalizePage(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
