// Package display prints forum records to a terminal.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"floorview/internal/content"
	"floorview/internal/models"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// AllTagName is the catch-all sub-board every category carries.
const AllTagName = "全部"

const descriptionLimit = 100

var (
	headingColor = color.New(color.Bold, color.FgHiCyan)
	mutedColor   = color.New(color.FgHiBlack)
	goodColor    = color.New(color.Bold, color.FgHiRed)
	ruler        = strings.Repeat("=", 80)
)

// Printer writes records to w. Timestamps render in loc.
type Printer struct {
	w   io.Writer
	loc *time.Location
}

// New creates a Printer.
func New(w io.Writer, loc *time.Location) *Printer {
	return &Printer{w: w, loc: loc}
}

func (p *Printer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.w)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

// Categories prints every board followed by its sub-boards, leaving out the
// catch-all tag.
func (p *Printer) Categories(cats []models.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(p.w, "未获取到任何板块信息")
		return
	}

	fmt.Fprintln(p.w, ruler)
	headingColor.Fprintf(p.w, "葫芦侠论坛板块信息 (共 %d 个板块)\n", len(cats))
	fmt.Fprintln(p.w, ruler)

	table := p.table([]string{"#", "ID", "名称", "描述", "帖子", "浏览", "版主"})
	for i, c := range cats {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(c.ID, 10),
			c.Title,
			truncate(c.Description, descriptionLimit),
			strconv.FormatInt(c.PostCount, 10),
			strconv.FormatInt(c.ViewCount, 10),
			c.ModeratorNames,
		})
	}
	table.Render()

	for i, c := range cats {
		tags := subBoards(c.Tags)
		if len(tags) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "\n【%d】 %s (ID: %d)\n", i+1, c.Title, c.ID)
		for _, t := range tags {
			fmt.Fprintf(p.w, "    ├─ %s (ID: %d)\n", t.Name, t.ID)
		}
	}
}

// Category prints one board with every sub-board it has.
func (p *Printer) Category(c models.Category) {
	fmt.Fprintln(p.w, ruler)
	headingColor.Fprintf(p.w, "【%s】(ID: %d)\n", c.Title, c.ID)
	fmt.Fprintln(p.w, ruler)

	if c.Description != "" {
		fmt.Fprintf(p.w, "描述: %s\n", c.Description)
	}
	if c.ModeratorNames != "" {
		fmt.Fprintf(p.w, "版主: %s\n", c.ModeratorNames)
	}
	if c.Icon != "" {
		mutedColor.Fprintf(p.w, "图标URL: %s\n", c.Icon)
	}

	if len(c.Tags) == 0 {
		fmt.Fprintln(p.w, "\n该板块没有子版块")
		return
	}
	fmt.Fprintln(p.w, "\n子版块列表:")
	for i, t := range c.Tags {
		fmt.Fprintf(p.w, "%d. %s (ID: %d)\n", i+1, t.Name, t.ID)
	}
}

// Posts prints one listing page.
func (p *Printer) Posts(page models.PostPage) {
	if len(page.Posts) == 0 {
		fmt.Fprintln(p.w, "暂无帖子")
		return
	}

	table := p.table([]string{"#", "ID", "标题", "作者", "点击", "评论", "活跃时间"})
	for i, post := range page.Posts {
		title := post.Title
		if post.IsGood {
			title = goodColor.Sprint("[精] ") + title
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(post.ID, 10),
			title,
			post.Author.Nickname,
			strconv.FormatInt(post.Hits, 10),
			strconv.FormatInt(post.CommentCount, 10),
			content.Timestamp(post.ActiveTime, p.loc),
		})
	}
	table.Render()

	if page.HasMore {
		mutedColor.Fprintln(p.w, "还有更多帖子")
	}
}

// PostDetail prints a post body as plain text with its images listed, then
// the comment page.
func (p *Printer) PostDetail(d *models.PostDetail) {
	post := d.Post
	fmt.Fprintln(p.w, ruler)
	headingColor.Fprintf(p.w, "%s (ID: %d)\n", post.Title, post.ID)
	fmt.Fprintln(p.w, ruler)
	mutedColor.Fprintf(p.w, "%s Lv.%d · 发布于 %s · 活跃于 %s · 点击 %d · 评论 %d\n",
		post.Author.Nickname, post.Author.Level,
		content.Timestamp(post.CreateTime, p.loc), content.Timestamp(post.ActiveTime, p.loc),
		post.Hits, post.CommentCount)
	fmt.Fprintln(p.w)

	doc := content.Scan(post.Content)
	for _, seg := range doc.Segments {
		for _, line := range strings.Split(seg.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintln(p.w, line)
			}
		}
	}
	for i, url := range doc.ImageURLs() {
		mutedColor.Fprintf(p.w, "[图片 %d] %s\n", i+1, url)
	}

	fmt.Fprintf(p.w, "\n评论 (第 %d 页)\n", d.PageNo)
	if len(d.Comments) == 0 {
		fmt.Fprintln(p.w, "暂无评论")
		return
	}

	table := p.table([]string{"楼层", "作者", "时间", "内容"})
	for _, c := range d.Comments {
		text := strings.Join(strings.Fields(c.Text), " ")
		if c.QuoteNick != "" {
			text = fmt.Sprintf("回复 %s：%s | %s", c.QuoteNick, truncate(c.QuoteText, 30), text)
		}
		table.Append([]string{
			strconv.FormatInt(c.Seq, 10),
			c.Author.Nickname,
			content.Timestamp(c.CreateTime, p.loc),
			text,
		})
	}
	table.Render()

	if d.HasMore {
		mutedColor.Fprintf(p.w, "下一页: --page %d\n", d.PageNo+1)
	}
}

func subBoards(tags []models.Tag) []models.Tag {
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Name != AllTagName {
			out = append(out, t)
		}
	}
	return out
}

// truncate cuts s to limit runes and marks the cut with "...".
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
