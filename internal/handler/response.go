package handler

import (
	"time"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// The types below are the public JSON shapes.  Password hashes and token
// hashes never leave the service.

type userPublic struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toUserPublic(u *model.User) userPublic {
	if u == nil {
		return userPublic{}
	}
	return userPublic{FirstName: u.FirstName, LastName: u.LastName}
}

type commentPublic struct {
	ID          string     `json:"id"`
	Message     string     `json:"message"`
	DateCreated time.Time  `json:"date_created"`
	Author      userPublic `json:"author"`
}

type postResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	DateCreated time.Time       `json:"date_created"`
	Author      userPublic      `json:"author"`
	Comments    []commentPublic `json:"comments"`
}

func toPost(p model.Post) postResponse {
	out := postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		DateCreated: p.CreatedAt,
		Author:      toUserPublic(p.Author),
		Comments:    make([]commentPublic, 0, len(p.Comments)),
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, commentPublic{
			ID: c.ID, Message: c.Message, DateCreated: c.CreatedAt, Author: toUserPublic(c.Author),
		})
	}
	return out
}

func toPosts(ps []model.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPost(p))
	}
	return out
}

type postPublic struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Author  userPublic `json:"author"`
}

func toPostPublic(p *model.Post) postPublic {
	if p == nil {
		return postPublic{}
	}
	return postPublic{ID: p.ID, Title: p.Title, Content: p.Content, Author: toUserPublic(p.Author)}
}

type commentResponse struct {
	ID          string     `json:"id"`
	Message     string     `json:"message"`
	DateCreated time.Time  `json:"date_created"`
	Author      userPublic `json:"author"`
	Post        postPublic `json:"post"`
}

func toComment(c model.Comment) commentResponse {
	return commentResponse{
		ID:          c.ID,
		Message:     c.Message,
		DateCreated: c.CreatedAt,
		Author:      toUserPublic(c.Author),
		Post:        toPostPublic(c.Post),
	}
}

func toComments(cs []model.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toComment(c))
	}
	return out
}

type notificationComment struct {
	ID      string     `json:"id"`
	Message string     `json:"message"`
	Author  userPublic `json:"author"`
}

type notificationResponse struct {
	ID               string              `json:"id"`
	Message          string              `json:"message"`
	NotificationDate time.Time           `json:"notification_date"`
	User             userPublic          `json:"user"`
	Post             postPublic          `json:"post"`
	Comment          notificationComment `json:"comment"`
}

func toNotification(n model.Notification) notificationResponse {
	out := notificationResponse{
		ID:               n.ID,
		Message:          n.Message,
		NotificationDate: n.CreatedAt,
		User:             toUserPublic(n.User),
		Post:             toPostPublic(n.Post),
	}
	if n.Comment != nil {
		out.Comment = notificationComment{ID: n.Comment.ID, Message: n.Comment.Message, Author: toUserPublic(n.Comment.Author)}
	}
	return out
}

func toNotifications(ns []model.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNotification(n))
	}
	return out
}

type postSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	DateCreated time.Time `json:"date_created"`
}

type commentSummary struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	Message     string    `json:"message"`
	DateCreated time.Time `json:"date_created"`
}

type tokenSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

type userResponse struct {
	ID            string           `json:"id"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Username      string           `json:"username"`
	Role          model.Role       `json:"role"`
	CreatedAt     time.Time        `json:"created_at"`
	Posts         []postSummary    `json:"posts"`
	Comments      []commentSummary `json:"comments"`
	RefreshTokens []tokenSummary   `json:"refresh_tokens"`
}

func toUser(u model.User) userResponse {
	out := userResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Username:      u.Username,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
		Posts:         make([]postSummary, 0, len(u.Posts)),
		Comments:      make([]commentSummary, 0, len(u.Comments)),
		RefreshTokens: make([]tokenSummary, 0, len(u.RefreshTokens)),
	}
	for _, p := range u.Posts {
		out.Posts = append(out.Posts, postSummary{ID: p.ID, Title: p.Title, Content: p.Content, DateCreated: p.CreatedAt})
	}
	for _, c := range u.Comments {
		out.Comments = append(out.Comments, commentSummary{ID: c.ID, PostID: c.PostID, Message: c.Message, DateCreated: c.CreatedAt})
	}
	for _, t := range u.RefreshTokens {
		out.RefreshTokens = append(out.RefreshTokens, tokenSummary{ID: t.ID, CreatedAt: t.CreatedAt, ExpiresAt: t.ExpiresAt, Revoked: t.Revoked})
	}
	return out
}

type tokenResponse struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func toTokens(p service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      p.AccessToken,
		TokenType:        p.TokenType,
		ExpiresIn:        p.ExpiresIn,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}
