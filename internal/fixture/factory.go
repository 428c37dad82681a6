// Package fixture builds raw floor API payloads for tests and local demos.
// The objects mirror the JSON shapes the upstream returns, decoded into
// map[string]any the same way the upstream client decodes them.
package fixture

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

// Raw is a decoded JSON object.
type Raw = map[string]any

// Factory builds randomized raw objects. Use a fixed seed for repeatable output.
type Factory struct {
	fake   *gofakeit.Faker
	nextID int64
}

// NewFactory creates a factory seeded with seed.
func NewFactory(seed int64) *Factory {
	return &Factory{fake: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) id() int64 {
	f.nextID++
	return f.nextID
}

func apply(raw Raw, overrides []func(Raw)) Raw {
	for _, o := range overrides {
		o(raw)
	}
	return raw
}

// User builds an embedded user object.
func (f *Factory) User(overrides ...func(Raw)) Raw {
	return apply(Raw{
		"userID": f.id(),
		"nick":   f.fake.Username(),
		"avatar": fmt.Sprintf("http://cdn.huluxia.com/avatar/%s.png", f.fake.UUID()),
		"gender": f.fake.Number(0, 2),
		"level":  f.fake.Number(1, 20),
	}, overrides)
}

// Category builds a category with two tags and one moderator. The first tag
// is the "全部" (all) pseudo-tag the upstream always sends.
func (f *Factory) Category(overrides ...func(Raw)) Raw {
	return apply(Raw{
		"categoryID":    f.id(),
		"title":         f.fake.Word(),
		"description":   f.fake.Sentence(6),
		"postCount":     f.fake.Number(0, 100000),
		"viewCount":     f.fake.Number(0, 1000000),
		"icon":          f.fake.URL(),
		"model":         f.fake.Number(0, 3),
		"isGood":        0,
		"isSubscribe":   0,
		"seq":           f.fake.Number(0, 50),
		"subscribeType": 0,
		"moderator": []any{
			map[string]any{"nick": f.fake.Username()},
		},
		"tags": []any{
			map[string]any{"ID": 0, "name": "全部"},
			map[string]any{"ID": f.id(), "name": f.fake.Word()},
		},
	}, overrides)
}

// Post builds a post summary. Its body mixes a <text> segment and an image tag.
func (f *Factory) Post(overrides ...func(Raw)) Raw {
	img := fmt.Sprintf("http://cdn.huluxia.com/g/%s.jpg", f.fake.UUID())
	created := f.fake.Date().UnixMilli()
	return apply(Raw{
		"postID":       f.id(),
		"title":        f.fake.Sentence(5),
		"detail":       fmt.Sprintf("<text>%s</text>\n<image>%s,800,600</image>", f.fake.Sentence(8), img),
		"images":       []any{img},
		"hit":          f.fake.Number(0, 10000),
		"commentCount": f.fake.Number(0, 500),
		"createTime":   created,
		"activeTime":   created,
		"isGood":       0,
		"user":         f.User(),
	}, overrides)
}

// Comment builds a reply.
func (f *Factory) Comment(overrides ...func(Raw)) Raw {
	return apply(Raw{
		"commentID":  f.id(),
		"seq":        f.fake.Number(1, 500),
		"text":       f.fake.Sentence(7),
		"images":     []any{},
		"createTime": f.fake.Date().UnixMilli(),
		"user":       f.User(),
	}, overrides)
}

// Comments builds n replies with increasing floor numbers.
func (f *Factory) Comments(n int) []any {
	out := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		seq := i
		out = append(out, f.Comment(func(r Raw) { r["seq"] = seq }))
	}
	return out
}

// CategoryList wraps categories the way the category endpoint does.
func CategoryList(cats ...Raw) Raw {
	list := make([]any, 0, len(cats))
	for _, c := range cats {
		list = append(list, c)
	}
	return Raw{"categories": list, "msg": "", "status": 1}
}

// PostList wraps posts the way the listing endpoint does.
func PostList(more bool, posts ...Raw) Raw {
	list := make([]any, 0, len(posts))
	for _, p := range posts {
		list = append(list, p)
	}
	m := 0
	if more {
		m = 1
	}
	return Raw{"posts": list, "more": m, "msg": "", "status": 1}
}

// PostDetail wraps a post and its comments the way the detail endpoint does.
func PostDetail(post Raw, comments []any) Raw {
	return Raw{"post": post, "comments": comments, "msg": "", "status": 1}
}
