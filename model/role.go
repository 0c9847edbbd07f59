package model

// CommentRole classifies a top-level comment found while scanning a
// submission for an aggregate sticky reply.
type CommentRole int

const (
	// RoleUnrelated is any comment the watcher does not manage.
	RoleUnrelated CommentRole = iota
	// RoleOwnedAggregate is the aggregate reply the watcher maintains:
	// authored by the bot and carrying the watermark sentinel.
	RoleOwnedAggregate
	// RoleForeignPinned is a stickied comment owned by someone else. The
	// watcher never takes these over.
	RoleForeignPinned
)

func (r CommentRole) String() string {
	switch r {
	case RoleOwnedAggregate:
		return "OWNED_AGGREGATE"
	case RoleForeignPinned:
		return "FOREIGN_PINNED"
	default:
		return "UNRELATED"
	}
}
