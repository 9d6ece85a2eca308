// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

import (
	"time"

	"github.com/iliyamo/social-feed/internal/model"
)

// NotificationCreatedEvent is published after a notification row has been
// committed.  It carries enough information for a delivery worker to notify
// the recipient without querying the primary database.
type NotificationCreatedEvent struct {
	NotificationID string `json:"notification_id"`
	RecipientID    string `json:"recipient_id"`
	ActorID        string `json:"actor_id"`
	ActorName      string `json:"actor_name"`
	PostID         string `json:"post_id"`
	PostTitle      string `json:"post_title"`
	CommentID      string `json:"comment_id"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

// NewNotificationCreatedEvent builds the event for n, triggered by actor
// commenting on post.
func NewNotificationCreatedEvent(n model.Notification, actor model.User, post model.Post) NotificationCreatedEvent {
	return NotificationCreatedEvent{
		NotificationID: n.ID,
		RecipientID:    n.UserID,
		ActorID:        actor.ID,
		ActorName:      actor.FullName(),
		PostID:         n.PostID,
		PostTitle:      post.Title,
		CommentID:      n.CommentID,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
