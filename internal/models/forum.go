// Package models holds the display records built from floor API responses.
package models

import "strings"

// ModeratorSeparator joins moderator nicknames for display.
const ModeratorSeparator = "、"

// Tag is a sub-board of a category.
type Tag struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Category is a top-level forum board.
type Category struct {
	ID             int64    `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	PostCount      int64    `json:"post_count" yaml:"post_count"`
	ViewCount      int64    `json:"view_count" yaml:"view_count"`
	Icon           string   `json:"icon" yaml:"icon"`
	Model          int64    `json:"model" yaml:"model"`
	IsGood         bool     `json:"is_good" yaml:"is_good"`
	IsSubscribed   bool     `json:"is_subscribed" yaml:"is_subscribed"`
	Seq            int64    `json:"seq" yaml:"seq"`
	SubscribeType  int64    `json:"subscribe_type" yaml:"subscribe_type"`
	Moderators     []string `json:"moderators" yaml:"moderators"`
	ModeratorNames string   `json:"moderator_names" yaml:"moderator_names"`
	Tags           []Tag    `json:"tags" yaml:"tags"`
}

// JoinModerators folds nicknames into the display string.
func JoinModerators(nicks []string) string {
	return strings.Join(nicks, ModeratorSeparator)
}

// Author is the user embedded in posts and comments.
type Author struct {
	ID       int64  `json:"id" yaml:"id"`
	Nickname string `json:"nick" yaml:"nick"`
	Avatar   string `json:"avatar" yaml:"avatar"`
	Gender   int64  `json:"gender" yaml:"gender"`
	Level    int64  `json:"level" yaml:"level"`
}

// Post is a post summary as shown in a category listing.
type Post struct {
	ID           int64    `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Content      string   `json:"content" yaml:"content"`
	Images       []string `json:"images" yaml:"images"`
	Hits         int64    `json:"hit" yaml:"hit"`
	CommentCount int64    `json:"comment_count" yaml:"comment_count"`
	CreateTime   int64    `json:"create_time" yaml:"create_time"`
	ActiveTime   int64    `json:"active_time" yaml:"active_time"`
	IsGood       bool     `json:"is_good" yaml:"is_good"`
	Author       Author   `json:"user" yaml:"user"`
}

// Comment is a reply on a post.
type Comment struct {
	ID         int64    `json:"id" yaml:"id"`
	Seq        int64    `json:"seq" yaml:"seq"`
	Text       string   `json:"text" yaml:"text"`
	Images     []string `json:"images" yaml:"images"`
	CreateTime int64    `json:"create_time" yaml:"create_time"`
	Author     Author   `json:"user" yaml:"user"`
	QuoteNick  string   `json:"quote_nick,omitempty" yaml:"quote_nick,omitempty"`
	QuoteText  string   `json:"quote_text,omitempty" yaml:"quote_text,omitempty"`
}

// PostDetail is a post with one page of comments.
type PostDetail struct {
	Post     Post      `json:"post" yaml:"post"`
	Comments []Comment `json:"comments" yaml:"comments"`
	PageNo   int       `json:"page_no" yaml:"page_no"`
	PageSize int       `json:"page_size" yaml:"page_size"`
	HasMore  bool      `json:"has_more" yaml:"has_more"`
}

// PostPage is one page of a category listing.
type PostPage struct {
	Posts      []Post `json:"posts" yaml:"posts"`
	HasMore    bool   `json:"has_more" yaml:"has_more"`
	CategoryID int64  `json:"category_id" yaml:"category_id"`
	TagID      int64  `json:"tag_id" yaml:"tag_id"`
}
