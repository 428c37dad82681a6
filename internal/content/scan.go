// Package content converts raw floor post bodies into HTML.
//
// A body mixes <text>…</text> segments, <image>URL[,w,h]</image> tags, bare
// @http(s)://… image markers and plain newline separated prose. Formatting is
// two phases: Scan splits the body into text segments and an ordered list of
// image references, Render turns that document into paragraphs and a gallery.
package content

import (
	"regexp"
	"sort"
	"strings"
)

var (
	textTag   = regexp.MustCompile(`(?s)<text>(.*?)</text>`)
	imageTag  = regexp.MustCompile(`<image>(.*?)</image>`)
	// The URL stops at any Unicode white space, including U+3000 and NBSP.
	inlineURL = regexp.MustCompile(`@(https?://[^\s\p{Z}\x{0B}\x{1C}-\x{1F}\x{85}]+)`)
)

// ImageSource tells where an image reference was found.
type ImageSource int

const (
	// SourceTag is an <image> tag.
	SourceTag ImageSource = iota
	// SourceInline is an @URL marker.
	SourceInline
)

func (s ImageSource) String() string {
	if s == SourceInline {
		return "inline"
	}
	return "tag"
}

// ImageRef is one image pulled out of a body. Offset is the byte offset of
// the tag or marker in the original input.
type ImageRef struct {
	Source ImageSource
	Offset int
	URL    string
}

// Segment is a run of text left after images were removed.
// Tagged is set for the body of a <text> element.
type Segment struct {
	Text   string
	Offset int
	Tagged bool
}

// Document is the result of scanning a body.
type Document struct {
	Segments []Segment
	Images   []ImageRef
}

// ImageURLs returns the gallery URLs in display order.
func (d Document) ImageURLs() []string {
	urls := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// fragment is a piece of surviving text and where it started in the input.
type fragment struct {
	text   string
	offset int
}

// pieces tracks surviving text across strip passes so match positions can be
// mapped back to input offsets.
type pieces []fragment

func (p pieces) String() string {
	var b strings.Builder
	for _, f := range p {
		b.WriteString(f.text)
	}
	return b.String()
}

// origin maps a position in p.String() to an input offset.
func (p pieces) origin(pos int) int {
	for _, f := range p {
		if pos < len(f.text) {
			return f.offset + pos
		}
		pos -= len(f.text)
	}
	if len(p) == 0 {
		return 0
	}
	last := p[len(p)-1]
	return last.offset + len(last.text)
}

// strip removes the byte ranges [lo, hi) of p.String() and returns what is left.
func (p pieces) strip(ranges [][2]int) pieces {
	if len(ranges) == 0 {
		return p
	}
	var out pieces
	pos, r := 0, 0
	for _, f := range p {
		start, end := pos, pos+len(f.text)
		cur := start
		for r < len(ranges) && ranges[r][0] < end {
			lo, hi := ranges[r][0], ranges[r][1]
			if lo > cur {
				out = append(out, fragment{text: f.text[cur-start : lo-start], offset: f.offset + cur - start})
			}
			if hi > end {
				// range continues into the next fragment
				cur = end
				ranges[r][0] = end
				break
			}
			cur = hi
			r++
		}
		if cur < end {
			out = append(out, fragment{text: f.text[cur-start:], offset: f.offset + cur - start})
		}
		pos = end
	}
	return out
}

// Scan splits raw into text segments and collects image references.
// Images from <image> tags come first, then @URL markers, each group in
// input order.
func Scan(raw string) Document {
	doc := Document{Segments: []Segment{}, Images: []ImageRef{}}
	if raw == "" {
		return doc
	}

	type span struct {
		body   pieces
		tagged bool
	}
	var spans []span
	last := 0
	for _, m := range textTag.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > last {
			spans = append(spans, span{body: pieces{{text: raw[last:m[0]], offset: last}}})
		}
		spans = append(spans, span{body: pieces{{text: raw[m[2]:m[3]], offset: m[2]}}, tagged: true})
		last = m[1]
	}
	if last < len(raw) {
		spans = append(spans, span{body: pieces{{text: raw[last:], offset: last}}})
	}

	var tagged, inline []ImageRef
	for i := range spans {
		s := spans[i].body.String()
		var cut [][2]int
		for _, m := range imageTag.FindAllStringSubmatchIndex(s, -1) {
			body := s[m[2]:m[3]]
			if comma := strings.IndexByte(body, ','); comma >= 0 {
				body = body[:comma]
			}
			if url := strings.TrimSpace(body); url != "" {
				tagged = append(tagged, ImageRef{Source: SourceTag, Offset: spans[i].body.origin(m[0]), URL: url})
			}
			cut = append(cut, [2]int{m[0], m[1]})
		}
		spans[i].body = spans[i].body.strip(cut)

		s = spans[i].body.String()
		cut = cut[:0]
		for _, m := range inlineURL.FindAllStringSubmatchIndex(s, -1) {
			inline = append(inline, ImageRef{Source: SourceInline, Offset: spans[i].body.origin(m[0]), URL: s[m[2]:m[3]]})
			cut = append(cut, [2]int{m[0], m[1]})
		}
		spans[i].body = spans[i].body.strip(cut)
	}

	sort.SliceStable(tagged, func(a, b int) bool { return tagged[a].Offset < tagged[b].Offset })
	sort.SliceStable(inline, func(a, b int) bool { return inline[a].Offset < inline[b].Offset })
	doc.Images = append(append(doc.Images, tagged...), inline...)

	for _, sp := range spans {
		offset := 0
		if len(sp.body) > 0 {
			offset = sp.body[0].offset
		}
		doc.Segments = append(doc.Segments, Segment{Text: sp.body.String(), Offset: offset, Tagged: sp.tagged})
	}
	return doc
}
