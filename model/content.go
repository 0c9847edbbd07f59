package model

// ContentKind discriminates the union of Reddit content types the watcher
// handles. URL building and notification rendering switch on it instead of
// inspecting runtime types.
type ContentKind string

const (
	KindPost    ContentKind = "POST"
	KindComment ContentKind = "COMMENT"
	KindUser    ContentKind = "USER"
)

// User is a Reddit account, either a tracked user or the bot itself.
type User struct {
	Name    string
	IconURL string
}

// Post is a Reddit submission. Exactly one of SelfText or LinkURL carries the
// body: self posts have text, link posts have an external URL.
type Post struct {
	ID         string
	Fullname   string // thing fullname, e.g. "t3_abc123"
	Author     User
	Subreddit  string
	Permalink  string
	CreatedUTC int64
	Title      string
	SelfText   string
	LinkURL    string

	FlairText       string
	FlairTemplateID string
}

// Comment is a Reddit comment on a submission.
type Comment struct {
	ID         string
	Fullname   string // thing fullname, e.g. "t1_xyz789"
	Author     User
	Subreddit  string
	Permalink  string
	CreatedUTC int64
	Body       string
	LinkID     string // fullname of the parent submission
	Stickied   bool
	Removed    bool
}

// Content is the tagged union over the content types. The pointer matching
// Kind is set, the others are nil.
type Content struct {
	Kind    ContentKind
	Post    *Post
	Comment *Comment
	User    *User
}

func PostContent(p *Post) Content {
	return Content{Kind: KindPost, Post: p}
}

func CommentContent(c *Comment) Content {
	return Content{Kind: KindComment, Comment: c}
}

func UserContent(u *User) Content {
	return Content{Kind: KindUser, User: u}
}

// CreatedUTC returns the creation time of the content in Unix seconds. Users
// have no creation time relevant to the watcher and report zero.
func (c Content) CreatedUTC() int64 {
	switch c.Kind {
	case KindPost:
		return c.Post.CreatedUTC
	case KindComment:
		return c.Comment.CreatedUTC
	}
	return 0
}

// Subreddit returns the community the content belongs to.
func (c Content) Subreddit() string {
	switch c.Kind {
	case KindPost:
		return c.Post.Subreddit
	case KindComment:
		return c.Comment.Subreddit
	}
	return ""
}

// Author returns the account that produced the content.
func (c Content) Author() User {
	switch c.Kind {
	case KindPost:
		return c.Post.Author
	case KindComment:
		return c.Comment.Author
	case KindUser:
		return *c.User
	}
	return User{}
}
