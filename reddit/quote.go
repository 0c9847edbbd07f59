package reddit

import (
	"strings"

	"github.com/snoowatch/snoowatch/model"
)

// Watermark marks an aggregate reply as maintained by the watcher. Ownership
// detection across runs depends on it staying at the very end of the body.
const Watermark = "^(This comment is maintained by Snoowatch.)"

// BuildQuote returns a markdown-formatted quote of the provided comment: a
// context link, the author link, then the body as a blockquote.
func BuildQuote(comment *model.Comment, label string) string {
	link := "[Comment](" + BuildURL(model.CommentContent(comment), true) + ")"

	// Escape the path separator with a backslash so Reddit does not send a
	// mention notification to the quoted user
	author := "[u\\/" + comment.Author.Name + "](" + BuildURL(model.UserContent(&comment.Author), false) + ")"

	quote := link + " by " + author

	if label != "" {
		quote += " (" + label + ")"
	}

	quote += "\n\n"
	quote += Blockquote(comment.Body)

	return quote
}

// Blockquote prefixes each line of text with the markdown blockquote marker,
// preserving line breaks.
func Blockquote(text string) string {
	var quoted strings.Builder

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		quoted.WriteString("> ")
		quoted.WriteString(line)
	}

	return quoted.String()
}

// NewAggregateBody builds the body of a fresh aggregate reply holding a
// single quote block, terminated by the ownership watermark.
func NewAggregateBody(quote string) string {
	return quote + "\n\n" + Watermark
}

// AppendQuote splices a new quote block into an existing aggregate body,
// keeping the watermark terminal. The result grows by exactly the blank-line
// separator plus the quote block.
func AppendQuote(body, quote string) string {
	if trimmed, found := strings.CutSuffix(body, "\n\n"+Watermark); found {
		return trimmed + "\n\n" + quote + "\n\n" + Watermark
	}
	return body + "\n\n" + quote
}

// Truncate trims text to maxLength and marks the cut with an ellipsis when it
// is at or over the limit.
func Truncate(text string, maxLength int) string {
	if len(text) >= maxLength {
		return text[:maxLength] + "..."
	}
	return text
}
