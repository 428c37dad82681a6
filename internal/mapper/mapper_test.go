package mapper

import (
	"encoding/json"
	"strings"
	"testing"

	"floorview/internal/fixture"
	"floorview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode round-trips through JSON so values arrive as json.Number like in production.
func decode(t *testing.T, v any) Raw {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var out Raw
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestCategory_EmptyObjectDefaults(t *testing.T) {
	c := Category(Raw{})

	assert.Zero(t, c.ID)
	assert.Equal(t, "", c.Title)
	assert.Equal(t, "", c.Description)
	assert.Equal(t, "", c.Icon)
	assert.Zero(t, c.PostCount)
	assert.Zero(t, c.ViewCount)
	assert.False(t, c.IsGood)
	assert.False(t, c.IsSubscribed)
	assert.NotNil(t, c.Moderators)
	assert.Empty(t, c.Moderators)
	assert.Equal(t, "", c.ModeratorNames)
	assert.NotNil(t, c.Tags)
	assert.Empty(t, c.Tags)
}

func TestCategory_MapsFixture(t *testing.T) {
	f := fixture.NewFactory(1)
	raw := decode(t, f.Category(func(r fixture.Raw) {
		r["categoryID"] = 21
		r["isGood"] = 1
		r["moderator"] = []any{
			map[string]any{"nick": "甲"},
			map[string]any{"nick": "乙"},
			"not an object",
		}
	}))

	c := Category(raw)
	assert.Equal(t, int64(21), c.ID)
	assert.True(t, c.IsGood)
	assert.Equal(t, []string{"甲", "乙"}, c.Moderators)
	assert.Equal(t, "甲、乙", c.ModeratorNames)
	require.Len(t, c.Tags, 2)
	assert.Equal(t, "全部", c.Tags[0].Name)
	assert.Equal(t, raw["title"], c.Title)
}

func TestPost_EmptyObjectDefaults(t *testing.T) {
	p := Post(Raw{})

	assert.Equal(t, models.Post{Images: []string{}}, p)
}

func TestPost_NumericStringsAndWrongTypes(t *testing.T) {
	p := Post(Raw{
		"postID":       "123",
		"title":        42.0,
		"hit":          "not a number",
		"commentCount": json.Number("7"),
		"images":       "should be a list",
		"user":         []any{"wrong shape"},
	})

	assert.Equal(t, int64(123), p.ID)
	assert.Equal(t, "42", p.Title)
	assert.Zero(t, p.Hits)
	assert.Equal(t, int64(7), p.CommentCount)
	assert.Empty(t, p.Images)
	assert.Equal(t, models.Author{}, p.Author)
}

func TestPost_MapsAuthor(t *testing.T) {
	f := fixture.NewFactory(2)
	raw := decode(t, f.Post())

	p := Post(raw)
	user := raw["user"].(map[string]any)
	assert.Equal(t, user["nick"], p.Author.Nickname)
	assert.Equal(t, user["avatar"], p.Author.Avatar)
	assert.NotZero(t, p.Author.ID)
	assert.Len(t, p.Images, 1)
	assert.Contains(t, p.Content, "<image>")
}

func TestComment_Quote(t *testing.T) {
	c := Comment(Raw{
		"commentID": 9,
		"text":      "回复",
		"refComment": map[string]any{
			"text": "原文",
			"user": map[string]any{"nick": "楼主"},
		},
	})

	assert.Equal(t, int64(9), c.ID)
	assert.Equal(t, "楼主", c.QuoteNick)
	assert.Equal(t, "原文", c.QuoteText)
	assert.NotNil(t, c.Images)
}

func TestPostDetail_Fallbacks(t *testing.T) {
	detail := PostDetail(Raw{
		"postID":      5,
		"detail":      "",
		"description": "desc body",
		"createTime":  1000,
		"updateTime":  0,
	}, nil, 1, 20)

	assert.Equal(t, "desc body", detail.Post.Content)
	assert.Equal(t, int64(1000), detail.Post.ActiveTime)
	assert.NotNil(t, detail.Comments)
	assert.False(t, detail.HasMore)
	assert.Equal(t, 1, detail.PageNo)
	assert.Equal(t, 20, detail.PageSize)

	detail = PostDetail(Raw{"detail": "body", "createTime": 1000, "updateTime": 2000}, nil, 1, 20)
	assert.Equal(t, "body", detail.Post.Content)
	assert.Equal(t, int64(2000), detail.Post.ActiveTime)
}

func TestPostDetail_HasMore(t *testing.T) {
	f := fixture.NewFactory(3)
	payload := decode(t, fixture.PostDetail(f.Post(), f.Comments(3)))
	post, ok := Object(payload, "post")
	require.True(t, ok)
	comments := List(payload, "comments")

	tests := []struct {
		name     string
		pageSize int
		want     bool
	}{
		{"fewer than page size", 4, false},
		{"exactly page size", 3, true},
		{"more than page size", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PostDetail(post, comments, 1, tt.pageSize)
			assert.Equal(t, tt.want, d.HasMore)
			require.Len(t, d.Comments, 3)
			assert.Equal(t, int64(1), d.Comments[0].Seq)
			assert.Equal(t, int64(3), d.Comments[2].Seq)
		})
	}
}

func TestCategories_PreservesOrder(t *testing.T) {
	f := fixture.NewFactory(4)
	payload := decode(t, fixture.CategoryList(f.Category(), f.Category(), f.Category()))

	cats := Categories(List(payload, "categories"))
	require.Len(t, cats, 3)
	assert.Less(t, cats[0].ID, cats[1].ID)
	assert.Less(t, cats[1].ID, cats[2].ID)
}

func TestFlag(t *testing.T) {
	assert.True(t, Flag(Raw{"more": json.Number("1")}, "more"))
	assert.True(t, Flag(Raw{"more": true}, "more"))
	assert.False(t, Flag(Raw{"more": json.Number("0")}, "more"))
	assert.False(t, Flag(Raw{}, "more"))
}
