package redditapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/snoowatch/snoowatch/model"
)

// Reddit thing kind prefixes.
const (
	kindComment   = "t1"
	kindUser      = "t2"
	kindLink      = "t3"
	kindSubreddit = "t5"
	kindMore      = "more"
)

// thing is the generic Reddit API envelope around a single object.
type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

// thingData holds the union of fields across the thing kinds the watcher
// reads. The meaning of "name" depends on the kind: username for t2, thing
// fullname for everything else.
type thingData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`

	// t3 submissions
	Title               string `json:"title"`
	Selftext            string `json:"selftext"`
	URL                 string `json:"url"`
	IsSelf              bool   `json:"is_self"`
	LinkFlairText       string `json:"link_flair_text"`
	LinkFlairTemplateID string `json:"link_flair_template_id"`

	// t1 comments
	Body     string `json:"body"`
	LinkID   string `json:"link_id"`
	ParentID string `json:"parent_id"`
	Stickied bool   `json:"stickied"`
	Removed  bool   `json:"removed"`

	// t2 users
	IconImg string `json:"icon_img"`

	// t5 subreddits
	DisplayName string `json:"display_name"`

	// "more" stubs carry the IDs of unexpanded children
	Children []string `json:"children"`
}

// listing is the paged container envelope.
type listing struct {
	Data struct {
		After    string  `json:"after"`
		Before   string  `json:"before"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// jsonResponse is the envelope of api_type=json mutation endpoints.
type jsonResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (r jsonResponse) err() error {
	if len(r.JSON.Errors) > 0 {
		return &APIError{Errors: r.JSON.Errors}
	}
	return nil
}

func (t thing) post() *model.Post {
	post := &model.Post{
		ID:              t.Data.ID,
		Fullname:        t.Data.Name,
		Author:          model.User{Name: t.Data.Author},
		Subreddit:       t.Data.Subreddit,
		Permalink:       t.Data.Permalink,
		CreatedUTC:      int64(t.Data.CreatedUTC),
		Title:           t.Data.Title,
		FlairText:       t.Data.LinkFlairText,
		FlairTemplateID: t.Data.LinkFlairTemplateID,
	}
	if t.Data.IsSelf {
		post.SelfText = t.Data.Selftext
	} else {
		post.LinkURL = t.Data.URL
	}
	return post
}

func (t thing) comment() *model.Comment {
	return &model.Comment{
		ID:         t.Data.ID,
		Fullname:   t.Data.Name,
		Author:     model.User{Name: t.Data.Author},
		Subreddit:  t.Data.Subreddit,
		Permalink:  t.Data.Permalink,
		CreatedUTC: int64(t.Data.CreatedUTC),
		Body:       t.Data.Body,
		LinkID:     t.Data.LinkID,
		Stickied:   t.Data.Stickied,
		Removed:    t.Data.Removed,
	}
}

// ListingIterator walks a paged listing lazily, newest-first, fetching the
// next page only when the buffered one is drained.
type ListingIterator struct {
	client *Client
	ctx    context.Context
	path   string

	after string
	buf   []model.Content
	done  bool
}

// Next returns the next item, or nil when the listing is exhausted.
func (it *ListingIterator) Next() (*model.Content, error) {
	for len(it.buf) == 0 && !it.done {
		if err := it.fetchPage(); err != nil {
			it.done = true
			return nil, err
		}
	}
	if len(it.buf) == 0 {
		return nil, nil
	}

	item := it.buf[0]
	it.buf = it.buf[1:]
	return &item, nil
}

func (it *ListingIterator) fetchPage() error {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(it.client.pageSize))
	query.Set("sort", "new")
	if it.after != "" {
		query.Set("after", it.after)
	}

	var page listing
	if err := it.client.getJSON(it.ctx, it.path, query, &page); err != nil {
		return err
	}

	for _, child := range page.Data.Children {
		switch child.Kind {
		case kindLink:
			it.buf = append(it.buf, model.PostContent(child.post()))
		case kindComment:
			it.buf = append(it.buf, model.CommentContent(child.comment()))
		}
	}

	it.after = page.Data.After
	if it.after == "" || len(page.Data.Children) == 0 {
		it.done = true
	}
	return nil
}
