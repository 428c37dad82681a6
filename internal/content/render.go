package content

import (
	"html"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// RowSize is the number of images per gallery row.
const RowSize = 3

// DefaultGalleryGroup is the lightbox group shared by a post's images.
const DefaultGalleryGroup = "post-images"

// Caption labels for gallery images.
const (
	postCaption    = "帖子图片"
	commentCaption = "评论图片"
)

// Formatter renders post bodies. It is safe for concurrent use.
type Formatter struct {
	group   string
	caption string
	policy  *bluemonday.Policy
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithGalleryGroup sets the lightbox group identifier.
func WithGalleryGroup(group string) Option {
	return func(f *Formatter) {
		if group = strings.TrimSpace(group); group != "" {
			f.group = group
		}
	}
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		group:   DefaultGalleryGroup,
		caption: postCaption,
		policy:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForComment returns a Formatter whose gallery is the lightbox group
// comment-<id>, so a comment's images browse apart from the post's.
func (f *Formatter) ForComment(id int64) *Formatter {
	cp := *f
	cp.group = "comment-" + strconv.FormatInt(id, 10)
	cp.caption = commentCaption
	return &cp
}

// Format renders raw as HTML paragraphs followed by an image gallery.
func (f *Formatter) Format(raw string) string {
	if raw == "" {
		return ""
	}
	return f.Render(Scan(raw))
}

// HTML is Format for use in templates.
func (f *Formatter) HTML(raw string) template.HTML {
	return template.HTML(f.Format(raw)) //nolint:gosec // output is escaped by Render
}

// Render produces the HTML for a scanned document.
func (f *Formatter) Render(doc Document) string {
	var b strings.Builder
	for _, seg := range doc.Segments {
		f.writeParagraphs(&b, seg.Text)
	}
	f.writeGallery(&b, doc.ImageURLs())
	return b.String()
}

func (f *Formatter) writeParagraphs(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		clean := strings.TrimSpace(f.policy.Sanitize(line))
		if clean == "" {
			continue
		}
		b.WriteString(`<p class="post-text">`)
		b.WriteString(clean)
		b.WriteString(`</p>`)
	}
}

func (f *Formatter) writeGallery(b *strings.Builder, urls []string) {
	if len(urls) == 0 {
		return
	}
	group := html.EscapeString(f.group)
	caption := html.EscapeString(f.caption)

	b.WriteString(`<div class="post-image-gallery">`)
	for start := 0; start < len(urls); start += RowSize {
		end := min(start+RowSize, len(urls))
		b.WriteString(`<div class="post-image-row">`)
		for i, u := range urls[start:end] {
			src := html.EscapeString(safeURL(u))
			b.WriteString(`<div class="post-image-container"><a href="`)
			b.WriteString(src)
			b.WriteString(`" data-lightbox="`)
			b.WriteString(group)
			b.WriteString(`" data-title="`)
			b.WriteString(caption)
			b.WriteString(` `)
			b.WriteString(strconv.Itoa(start + i + 1))
			b.WriteString(`"><img src="`)
			b.WriteString(src)
			b.WriteString(`" alt="`)
			b.WriteString(caption)
			b.WriteString(`" class="post-image"></a></div>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
}

// safeURL returns u when it is http(s) or relative, "#" otherwise.
func safeURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https":
		return u
	default:
		return "#"
	}
}
