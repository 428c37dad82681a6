package server

import (
	"html/template"
	"net/http"
	"time"

	"floorview/internal/content"
	"floorview/web"

	"github.com/gofiber/template/html/v2"
)

// newViewEngine loads the embedded page templates with the helpers they use.
func newViewEngine(formatter *content.Formatter, loc *time.Location) *html.Engine {
	engine := html.NewFileSystem(http.FS(web.Views()), ".html")
	engine.AddFunc("formatContent", func(raw string) template.HTML {
		return formatter.HTML(raw)
	})
	engine.AddFunc("formatComment", func(raw string, id int64) template.HTML {
		return formatter.ForComment(id).HTML(raw)
	})
	engine.AddFunc("datetime", func(ts int64) string {
		return content.Timestamp(ts, loc)
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	return engine
}
