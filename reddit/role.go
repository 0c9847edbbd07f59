package reddit

import (
	"strings"

	"github.com/snoowatch/snoowatch/model"
)

// ClassifyComment decides what a top-level comment is to the watcher: the
// aggregate reply it owns, a pinned comment owned by someone else, or
// unrelated. Ownership requires author equality with the authenticated
// identity plus the watermark sentinel at the end of the body.
func ClassifyComment(comment *model.Comment, self string) model.CommentRole {
	if strings.EqualFold(comment.Author.Name, self) && strings.HasSuffix(comment.Body, Watermark) {
		return model.RoleOwnedAggregate
	}
	if comment.Stickied {
		return model.RoleForeignPinned
	}
	return model.RoleUnrelated
}

// IsOwnedAggregate reports whether the comment is the aggregate reply owned
// by the authenticated identity.
func IsOwnedAggregate(comment *model.Comment, self string) bool {
	return ClassifyComment(comment, self) == model.RoleOwnedAggregate
}
