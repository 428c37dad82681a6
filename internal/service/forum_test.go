package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"floorview/internal/fixture"
	"floorview/internal/mapper"
	"floorview/internal/models"
	"floorview/internal/observability"
	"floorview/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetcherStub is a stub for the upstream client.
type fetcherStub struct {
	categoriesFn func(context.Context) ([]mapper.Raw, error)
	postListFn   func(context.Context, upstream.PostListQuery) (*upstream.PostList, error)
	postDetailFn func(context.Context, upstream.PostDetailQuery) (*upstream.PostDetail, error)
}

func (s *fetcherStub) FetchCategories(ctx context.Context) ([]mapper.Raw, error) {
	return s.categoriesFn(ctx)
}
func (s *fetcherStub) FetchPostList(ctx context.Context, q upstream.PostListQuery) (*upstream.PostList, error) {
	return s.postListFn(ctx, q)
}
func (s *fetcherStub) FetchPostDetail(ctx context.Context, q upstream.PostDetailQuery) (*upstream.PostDetail, error) {
	return s.postDetailFn(ctx, q)
}

var errUpstream = &upstream.Error{Op: upstream.OpCategories, Kind: upstream.KindStatus, StatusCode: 500}

func failingFetcher() *fetcherStub {
	return &fetcherStub{
		categoriesFn: func(context.Context) ([]mapper.Raw, error) { return nil, errUpstream },
		postListFn: func(context.Context, upstream.PostListQuery) (*upstream.PostList, error) {
			return nil, errUpstream
		},
		postDetailFn: func(context.Context, upstream.PostDetailQuery) (*upstream.PostDetail, error) {
			return nil, errUpstream
		},
	}
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return observability.NewLogger(observability.LogConfig{Env: "production", Level: "debug", Writer: &buf}), &buf
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "empty", OutcomeEmpty.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestCategories(t *testing.T) {
	f := fixture.NewFactory(20)
	stub := &fetcherStub{categoriesFn: func(context.Context) ([]mapper.Raw, error) {
		return []mapper.Raw{f.Category(), f.Category()}, nil
	}}

	res := NewForumService(stub, observability.NopLogger()).Categories(context.Background())
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Len(t, res.Categories, 2)
}

func TestCategories_EmptyVersusFailed(t *testing.T) {
	empty := &fetcherStub{categoriesFn: func(context.Context) ([]mapper.Raw, error) { return []mapper.Raw{}, nil }}
	res := NewForumService(empty, observability.NopLogger()).Categories(context.Background())
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.NoError(t, res.Err)
	assert.NotNil(t, res.Categories)

	logger, buf := bufferLogger()
	res = NewForumService(failingFetcher(), logger).Categories(context.Background())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, errUpstream)
	assert.NotNil(t, res.Categories)
	assert.Empty(t, res.Categories)
	assert.Contains(t, buf.String(), "failed to fetch categories")
	assert.Contains(t, buf.String(), `"operation":"categories"`)
}

func TestCategory_Lookup(t *testing.T) {
	f := fixture.NewFactory(21)
	stub := &fetcherStub{categoriesFn: func(context.Context) ([]mapper.Raw, error) {
		return []mapper.Raw{
			f.Category(func(r fixture.Raw) { r["categoryID"] = 2 }),
			f.Category(func(r fixture.Raw) { r["categoryID"] = 21; r["title"] = "3楼公告版" }),
		}, nil
	}}
	svc := NewForumService(stub, observability.NopLogger())

	res := svc.Category(context.Background(), 21)
	require.True(t, res.Found)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, "3楼公告版", res.Category.Title)

	res = svc.Category(context.Background(), 999)
	assert.False(t, res.Found)
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.NoError(t, res.Err)

	res = NewForumService(failingFetcher(), observability.NopLogger()).Category(context.Background(), 21)
	assert.False(t, res.Found)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestFindCategory(t *testing.T) {
	cats := []models.Category{
		{ID: 1, Title: "综合讨论"},
		{ID: 2, Title: "游戏资源"},
	}

	c, ok := FindCategory(cats, 2, "")
	assert.True(t, ok)
	assert.Equal(t, "游戏资源", c.Title)

	c, ok = FindCategory(cats, 0, "资源")
	assert.True(t, ok)
	assert.Equal(t, int64(2), c.ID)

	_, ok = FindCategory(cats, 0, "")
	assert.False(t, ok)

	_, ok = FindCategory(nil, 1, "")
	assert.False(t, ok)
}

func TestPosts_NormalizesCountAndEchoesIDs(t *testing.T) {
	f := fixture.NewFactory(22)
	var got upstream.PostListQuery
	stub := &fetcherStub{postListFn: func(_ context.Context, q upstream.PostListQuery) (*upstream.PostList, error) {
		got = q
		return &upstream.PostList{Posts: []mapper.Raw{f.Post(), f.Post()}, More: true}, nil
	}}
	svc := NewForumService(stub, observability.NopLogger())

	tests := []struct {
		count int
		want  int
	}{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{15, 15},
		{500, MaxPageSize},
	}
	for _, tt := range tests {
		res := svc.Posts(context.Background(), upstream.PostListQuery{CategoryID: 7, TagID: 3, Count: tt.count})
		assert.Equal(t, tt.want, got.Count)
		assert.Equal(t, OutcomeOK, res.Outcome)
		assert.True(t, res.Page.HasMore)
		assert.Len(t, res.Page.Posts, 2)
		assert.Equal(t, int64(7), res.Page.CategoryID)
		assert.Equal(t, int64(3), res.Page.TagID)
	}
}

func TestPosts_Failure(t *testing.T) {
	logger, buf := bufferLogger()
	res := NewForumService(failingFetcher(), logger).Posts(context.Background(), upstream.PostListQuery{CategoryID: 7, TagID: 3})

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.NotNil(t, res.Page.Posts)
	assert.Empty(t, res.Page.Posts)
	assert.False(t, res.Page.HasMore)
	assert.Equal(t, int64(7), res.Page.CategoryID)
	assert.Equal(t, int64(3), res.Page.TagID)
	assert.Contains(t, buf.String(), `"category_id":7`)
}

func TestPostDetail(t *testing.T) {
	f := fixture.NewFactory(23)
	var got upstream.PostDetailQuery
	stub := &fetcherStub{postDetailFn: func(_ context.Context, q upstream.PostDetailQuery) (*upstream.PostDetail, error) {
		got = q
		comments := make([]mapper.Raw, 0, 20)
		for i := 0; i < 20; i++ {
			comments = append(comments, f.Comment())
		}
		return &upstream.PostDetail{Post: f.Post(func(r fixture.Raw) { r["postID"] = 9 }), Found: true, Comments: comments}, nil
	}}

	res := NewForumService(stub, observability.NopLogger()).PostDetail(context.Background(), upstream.PostDetailQuery{PostID: 9})
	require.Equal(t, OutcomeOK, res.Outcome)
	require.NotNil(t, res.Detail)
	assert.Equal(t, 1, got.PageNo)
	assert.Equal(t, DefaultPageSize, got.PageSize)
	assert.Equal(t, int64(9), res.Detail.Post.ID)
	assert.Len(t, res.Detail.Comments, 20)
	assert.True(t, res.Detail.HasMore)
	assert.Equal(t, 1, res.Detail.PageNo)
}

func TestPostDetail_NotFoundAndFailure(t *testing.T) {
	missing := &fetcherStub{postDetailFn: func(context.Context, upstream.PostDetailQuery) (*upstream.PostDetail, error) {
		return &upstream.PostDetail{Found: false}, nil
	}}
	res := NewForumService(missing, observability.NopLogger()).PostDetail(context.Background(), upstream.PostDetailQuery{PostID: 1})
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.Nil(t, res.Detail)
	assert.NoError(t, res.Err)

	logger, buf := bufferLogger()
	res = NewForumService(failingFetcher(), logger).PostDetail(context.Background(), upstream.PostDetailQuery{PostID: 77})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Nil(t, res.Detail)
	assert.True(t, errors.As(res.Err, new(*upstream.Error)))
	assert.Contains(t, buf.String(), `"post_id":77`)
}
