package reddit

import (
	"strings"
	"testing"

	"github.com/snoowatch/snoowatch/model"

	"github.com/stretchr/testify/assert"
)

func testComment() *model.Comment {
	return &model.Comment{
		ID:         "abc123",
		Fullname:   "t1_abc123",
		Author:     model.User{Name: "SomeDev"},
		Subreddit:  "gaming",
		Permalink:  "/r/gaming/comments/xyz789/patch_notes/abc123/",
		CreatedUTC: 1700000000,
		Body:       "First line\nSecond line",
		LinkID:     "t3_xyz789",
	}
}

func TestBuildQuote(t *testing.T) {
	t.Run("links the comment with context and escapes the author separator", func(t *testing.T) {
		quote := BuildQuote(testComment(), "")
		assert.Contains(t, quote, "[Comment](https://reddit.com/r/gaming/comments/xyz789/patch_notes/abc123/?context=5)")
		assert.Contains(t, quote, "[u\\/SomeDev](https://reddit.com/user/SomeDev)")
		assert.NotContains(t, quote, "[u/SomeDev]")
	})

	t.Run("prefixes every body line with the blockquote marker", func(t *testing.T) {
		quote := BuildQuote(testComment(), "")
		lines := strings.Split(quote, "\n")
		assert.Equal(t, "> First line", lines[len(lines)-2])
		assert.Equal(t, "> Second line", lines[len(lines)-1])
	})

	t.Run("appends the label after the author link", func(t *testing.T) {
		quote := BuildQuote(testComment(), "Developer")
		assert.Contains(t, quote, "(https://reddit.com/user/SomeDev) (Developer)")
	})

	t.Run("omits the label suffix when no label is set", func(t *testing.T) {
		quote := BuildQuote(testComment(), "")
		assert.NotContains(t, quote, "(Developer)")
	})

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, BuildQuote(testComment(), "Developer"), BuildQuote(testComment(), "Developer"))
	})
}

func TestBlockquote(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		expected    string
	}{
		{"single line", "hello", "> hello"},
		{"multiple lines", "one\ntwo", "> one\n> two"},
		{"preserves trailing newline", "one\ntwo\n", "> one\n> two\n"},
		{"empty text yields nothing", "", ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Blockquote(testCase.text))
		})
	}
}

func TestAppendQuote(t *testing.T) {
	t.Run("keeps the watermark terminal", func(t *testing.T) {
		body := NewAggregateBody("> first")
		next := AppendQuote(body, "> second")
		assert.True(t, strings.HasSuffix(next, Watermark))
		assert.Equal(t, "> first\n\n> second\n\n"+Watermark, next)
	})

	t.Run("grows by separator plus quote", func(t *testing.T) {
		body := NewAggregateBody("> first")
		quote := "> second"
		next := AppendQuote(body, quote)
		assert.Equal(t, len(body)+len("\n\n")+len(quote), len(next))
	})

	t.Run("appends plainly when no watermark is present", func(t *testing.T) {
		next := AppendQuote("> first", "> second")
		assert.Equal(t, "> first\n\n> second", next)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("returns short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short", Truncate("short", 10))
	})

	t.Run("trims and marks text at the limit", func(t *testing.T) {
		assert.Equal(t, "abcde...", Truncate("abcde", 5))
	})

	t.Run("trims and marks text over the limit", func(t *testing.T) {
		assert.Equal(t, "abc...", Truncate("abcdef", 3))
	})
}
