package reddit

import (
	"fmt"

	"github.com/snoowatch/snoowatch/model"
)

const baseURL = "https://reddit.com"

// CommentContext is the number of parent comments shown when a comment link
// is opened.
const CommentContext = 5

// BuildURL returns a complete URL to the provided Reddit content. Comment
// URLs get a context parameter when withContext is set, so the link opens
// with surrounding conversation.
func BuildURL(content model.Content, withContext bool) string {
	switch content.Kind {
	case model.KindPost:
		return baseURL + content.Post.Permalink
	case model.KindComment:
		url := baseURL + content.Comment.Permalink
		if withContext {
			url += fmt.Sprintf("?context=%d", CommentContext)
		}
		return url
	case model.KindUser:
		return baseURL + "/user/" + content.User.Name
	}
	return baseURL
}
