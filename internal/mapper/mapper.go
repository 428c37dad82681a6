// Package mapper turns raw floor API objects into display records.
//
// Every function is total: missing or mistyped keys fall back to the zero
// value of the field ("" / 0 / false / empty list) and nothing is validated.
package mapper

import (
	"floorview/internal/models"
)

// Raw is a decoded JSON object as returned by the floor API.
type Raw = map[string]any

// Category maps one entry of the category list.
func Category(raw Raw) models.Category {
	moderators := make([]string, 0)
	for _, m := range objs(raw, "moderator") {
		moderators = append(moderators, str(m, "nick"))
	}

	tags := make([]models.Tag, 0)
	for _, t := range objs(raw, "tags") {
		tags = append(tags, Tag(t))
	}

	return models.Category{
		ID:             num(raw, "categoryID"),
		Title:          str(raw, "title"),
		Description:    str(raw, "description"),
		PostCount:      num(raw, "postCount"),
		ViewCount:      num(raw, "viewCount"),
		Icon:           str(raw, "icon"),
		Model:          num(raw, "model"),
		IsGood:         flag(raw, "isGood"),
		IsSubscribed:   flag(raw, "isSubscribe"),
		Seq:            num(raw, "seq"),
		SubscribeType:  num(raw, "subscribeType"),
		Moderators:     moderators,
		ModeratorNames: models.JoinModerators(moderators),
		Tags:           tags,
	}
}

// Categories maps a whole category list, preserving order.
func Categories(raws []Raw) []models.Category {
	out := make([]models.Category, 0, len(raws))
	for _, r := range raws {
		out = append(out, Category(r))
	}
	return out
}

// Tag maps a sub-board.
func Tag(raw Raw) models.Tag {
	return models.Tag{
		ID:   num(raw, "ID"),
		Name: str(raw, "name"),
	}
}

// Author maps the embedded user object.
func Author(raw Raw) models.Author {
	return models.Author{
		ID:       num(raw, "userID"),
		Nickname: str(raw, "nick"),
		Avatar:   str(raw, "avatar"),
		Gender:   num(raw, "gender"),
		Level:    num(raw, "level"),
	}
}

// Post maps a post summary from the listing endpoint.
func Post(raw Raw) models.Post {
	return models.Post{
		ID:           num(raw, "postID"),
		Title:        str(raw, "title"),
		Content:      str(raw, "detail"),
		Images:       strs(raw, "images"),
		Hits:         num(raw, "hit"),
		CommentCount: num(raw, "commentCount"),
		CreateTime:   num(raw, "createTime"),
		ActiveTime:   num(raw, "activeTime"),
		IsGood:       flag(raw, "isGood"),
		Author:       Author(obj(raw, "user")),
	}
}

// Posts maps a listing page.
func Posts(raws []Raw) []models.Post {
	out := make([]models.Post, 0, len(raws))
	for _, r := range raws {
		out = append(out, Post(r))
	}
	return out
}

// Comment maps one reply. A quoted reply carries the quoted author and text.
func Comment(raw Raw) models.Comment {
	c := models.Comment{
		ID:         num(raw, "commentID"),
		Seq:        num(raw, "seq"),
		Text:       str(raw, "text"),
		Images:     strs(raw, "images"),
		CreateTime: num(raw, "createTime"),
		Author:     Author(obj(raw, "user")),
	}
	if ref := obj(raw, "refComment"); len(ref) > 0 {
		c.QuoteNick = str(obj(ref, "user"), "nick")
		if c.QuoteNick == "" {
			c.QuoteNick = str(ref, "nick")
		}
		c.QuoteText = str(ref, "text")
	}
	return c
}

// PostDetail maps the detail endpoint's post object and comment page.
// Content falls back to the description, the active time to the creation time.
func PostDetail(rawPost Raw, rawComments []Raw, pageNo, pageSize int) models.PostDetail {
	post := Post(rawPost)
	if post.Content == "" {
		post.Content = str(rawPost, "description")
	}
	post.ActiveTime = num(rawPost, "updateTime")
	if post.ActiveTime == 0 {
		post.ActiveTime = post.CreateTime
	}

	comments := make([]models.Comment, 0, len(rawComments))
	for _, c := range rawComments {
		comments = append(comments, Comment(c))
	}

	return models.PostDetail{
		Post:     post,
		Comments: comments,
		PageNo:   pageNo,
		PageSize: pageSize,
		HasMore:  len(rawComments) >= pageSize,
	}
}
