package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"floorview/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newPrinter(t *testing.T) (*Printer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	return New(&buf, time.UTC), &buf
}

func sampleCategories() []models.Category {
	return []models.Category{
		{
			ID:             1,
			Title:          "游戏交流",
			Description:    strings.Repeat("长", 120),
			ModeratorNames: "甲、乙",
			Tags:           []models.Tag{{ID: 0, Name: "全部"}, {ID: 11, Name: "攻略"}},
		},
		{ID: 2, Title: "闲聊", Tags: []models.Tag{{ID: 0, Name: "全部"}}},
	}
}

func TestCategories_Empty(t *testing.T) {
	p, buf := newPrinter(t)
	p.Categories(nil)
	assert.Equal(t, "未获取到任何板块信息\n", buf.String())
}

func TestCategories_SkipsAllTag(t *testing.T) {
	p, buf := newPrinter(t)
	p.Categories(sampleCategories())

	out := buf.String()
	assert.Contains(t, out, "共 2 个板块")
	assert.Contains(t, out, "├─ 攻略 (ID: 11)")
	assert.NotContains(t, out, "├─ 全部")
	assert.NotContains(t, out, "【2】 闲聊")
	assert.Contains(t, out, strings.Repeat("长", 100)+"...")
	assert.Contains(t, out, "甲、乙")
}

func TestCategory_ListsEveryTag(t *testing.T) {
	p, buf := newPrinter(t)
	p.Category(sampleCategories()[0])

	out := buf.String()
	assert.Contains(t, out, "【游戏交流】(ID: 1)")
	assert.Contains(t, out, "1. 全部 (ID: 0)")
	assert.Contains(t, out, "2. 攻略 (ID: 11)")
}

func TestCategory_NoTags(t *testing.T) {
	p, buf := newPrinter(t)
	p.Category(models.Category{ID: 3, Title: "空"})
	assert.Contains(t, buf.String(), "该板块没有子版块")
}

func TestPosts(t *testing.T) {
	p, buf := newPrinter(t)
	p.Posts(models.PostPage{
		Posts: []models.Post{
			{ID: 42, Title: "置顶", IsGood: true, Hits: 9, ActiveTime: 1700000000, Author: models.Author{Nickname: "楼主"}},
		},
		HasMore: true,
	})

	out := buf.String()
	assert.Contains(t, out, "[精] 置顶")
	assert.Contains(t, out, "楼主")
	assert.Contains(t, out, "2023-11-14 22:13:20")
	assert.Contains(t, out, "还有更多帖子")
}

func TestPosts_Empty(t *testing.T) {
	p, buf := newPrinter(t)
	p.Posts(models.PostPage{Posts: []models.Post{}})
	assert.Equal(t, "暂无帖子\n", buf.String())
}

func TestPostDetail(t *testing.T) {
	p, buf := newPrinter(t)
	p.PostDetail(&models.PostDetail{
		Post: models.Post{
			ID:      42,
			Title:   "图文帖",
			Content: "<text>第一行\n第二行</text>\n<image>https://img.example/a.png,800,600</image>\n看图 @https://img.example/b.png",
			Author:  models.Author{Nickname: "楼主", Level: 3},
		},
		Comments: []models.Comment{
			{Seq: 1, Text: "沙发", Author: models.Author{Nickname: "路人"}, QuoteNick: "楼主", QuoteText: "第一行"},
		},
		PageNo:  1,
		HasMore: true,
	})

	out := buf.String()
	assert.Contains(t, out, "图文帖 (ID: 42)")
	assert.Contains(t, out, "发布于 未知时间")
	assert.Contains(t, out, "第一行\n第二行\n")
	assert.Contains(t, out, "[图片 1] https://img.example/a.png")
	assert.Contains(t, out, "[图片 2] https://img.example/b.png")
	assert.Contains(t, out, "回复 楼主：第一行 | 沙发")
	assert.Contains(t, out, "下一页: --page 2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "葫芦...", truncate("葫芦侠", 2))
}
