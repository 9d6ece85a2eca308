package service

import "github.com/iliyamo/social-feed/internal/model"

// Allow is the role gate: the actor must exist and hold exactly the
// required role.
func Allow(actor *model.User, required model.Role) bool {
	return actor != nil && actor.Role == required
}

// CanModify reports whether actor owns the entity whose owner is ownerID.
func CanModify(actor *model.User, ownerID string) bool {
	return actor != nil && actor.ID == ownerID
}

// CanDeleteComment allows the comment author and the author of the post the
// comment was left on.
func CanDeleteComment(actor *model.User, c model.Comment) bool {
	if CanModify(actor, c.UserID) {
		return true
	}
	return c.Post != nil && CanModify(actor, c.Post.UserID)
}
