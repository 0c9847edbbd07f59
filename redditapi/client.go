// Package redditapi is a narrow Reddit OAuth2 client covering the calls the
// watcher needs: user activity listings, submission comment trees, and the
// moderation mutations.
package redditapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/snoowatch/snoowatch/model"

	log "github.com/sirupsen/logrus"
)

const (
	tokenURL = "https://www.reddit.com/api/v1/access_token"
	apiBase  = "https://oauth.reddit.com"
)

// ErrNotFound is returned when the requested user or submission does not
// exist (or is unreachable, e.g. suspended).
var ErrNotFound = errors.New("not found")

// APIError carries the error tuples of an api_type=json mutation response.
type APIError struct {
	Errors [][]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit api errors: %v", e.Errors)
}

// Credentials is the script-app password grant credential set.
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// Client is an authenticated Reddit API client. Not safe for concurrent use;
// the watcher runs strictly sequentially.
type Client struct {
	http      *retryablehttp.Client
	userAgent string
	token     string
	self      model.User
	pageSize  int

	// lazily fetched set of case-folded subreddits the bot moderates
	modSubs map[string]struct{}
}

// Authenticate performs the password grant and resolves the client's own
// identity. A client that cannot resolve its identity is unusable for
// moderation and treated as an authentication failure.
func Authenticate(ctx context.Context, creds Credentials, userAgent string, pageSize int) (*Client, error) {
	if creds.Username == "" || creds.Password == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("incomplete Reddit credentials")
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = log.StandardLogger()

	client := &Client{
		http:      httpClient,
		userAgent: userAgent,
		pageSize:  pageSize,
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {creds.Username},
		"password":   {creds.Password},
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, tokenURL, []byte(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		Error       string `json:"error"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	if token.Error != "" || token.AccessToken == "" {
		return nil, fmt.Errorf("authentication rejected: %s", token.Error)
	}
	client.token = token.AccessToken

	var me struct {
		Name    string `json:"name"`
		IconImg string `json:"icon_img"`
	}
	if err = client.getJSON(ctx, "/api/v1/me", nil, &me); err != nil {
		return nil, fmt.Errorf("resolve client identity: %w", err)
	}
	if me.Name == "" {
		return nil, errors.New("client username is unknown")
	}
	client.self = model.User{Name: me.Name, IconURL: me.IconImg}

	log.Infof("Authenticated client with Reddit as u/%s", me.Name)
	return client, nil
}

// Self returns the authenticated identity.
func (c *Client) Self() model.User {
	return c.self
}

// FetchUser looks up a Reddit user by name. Returns ErrNotFound for unknown
// users.
func (c *Client) FetchUser(ctx context.Context, username string) (*model.User, error) {
	var t thing
	if err := c.getJSON(ctx, "/user/"+username+"/about", nil, &t); err != nil {
		return nil, err
	}
	if t.Kind != kindUser || t.Data.Name == "" {
		return nil, ErrNotFound
	}
	return &model.User{Name: t.Data.Name, IconURL: t.Data.IconImg}, nil
}

// UserPosts returns a lazy newest-first listing of the user's submissions.
func (c *Client) UserPosts(ctx context.Context, username string) *ListingIterator {
	return &ListingIterator{client: c, ctx: ctx, path: "/user/" + username + "/submitted"}
}

// UserComments returns a lazy newest-first listing of the user's comments.
func (c *Client) UserComments(ctx context.Context, username string) *ListingIterator {
	return &ListingIterator{client: c, ctx: ctx, path: "/user/" + username + "/comments"}
}

// Submission fetches a single submission by fullname.
func (c *Client) Submission(ctx context.Context, fullname string) (*model.Post, error) {
	query := url.Values{"id": {fullname}}
	var page listing
	if err := c.getJSON(ctx, "/api/info", query, &page); err != nil {
		return nil, err
	}
	for _, child := range page.Data.Children {
		if child.Kind == kindLink {
			return child.post(), nil
		}
	}
	return nil, ErrNotFound
}

// SubmissionComments returns the top-level comments of a submission, with
// "load more" stubs resolved.
func (c *Client) SubmissionComments(ctx context.Context, linkID string) ([]model.Comment, error) {
	article := strings.TrimPrefix(linkID, kindLink+"_")
	query := url.Values{"limit": {"500"}, "depth": {"1"}}

	var payload []listing
	if err := c.getJSON(ctx, "/comments/"+article, query, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("unexpected comment payload for %s", linkID)
	}

	var comments []model.Comment
	var stubs []string
	for _, child := range payload[1].Data.Children {
		switch child.Kind {
		case kindComment:
			comments = append(comments, *child.comment())
		case kindMore:
			stubs = append(stubs, child.Data.Children...)
		}
	}

	if len(stubs) > 0 {
		more, err := c.moreChildren(ctx, linkID, stubs)
		if err != nil {
			return nil, err
		}
		comments = append(comments, more...)
	}

	return comments, nil
}

// moreChildren expands unloaded comment stubs, keeping only top-level
// comments of the submission.
func (c *Client) moreChildren(ctx context.Context, linkID string, ids []string) ([]model.Comment, error) {
	form := url.Values{
		"api_type": {"json"},
		"link_id":  {linkID},
		"children": {strings.Join(ids, ",")},
	}

	var resp jsonResponse
	if err := c.postForm(ctx, "/api/morechildren", form, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	var comments []model.Comment
	for _, t := range resp.JSON.Data.Things {
		if t.Kind == kindComment && t.Data.ParentID == linkID {
			comments = append(comments, *t.comment())
		}
	}
	return comments, nil
}

// IsModerator reports whether the authenticated identity moderates the
// community. The moderated-subreddit set is fetched once and cached for the
// client's lifetime.
func (c *Client) IsModerator(ctx context.Context, subreddit string) (bool, error) {
	if c.modSubs == nil {
		moderated, err := c.fetchModerated(ctx)
		if err != nil {
			return false, err
		}
		c.modSubs = moderated
	}
	_, moderator := c.modSubs[strings.ToLower(subreddit)]
	return moderator, nil
}

func (c *Client) fetchModerated(ctx context.Context) (map[string]struct{}, error) {
	moderated := map[string]struct{}{}
	after := ""
	for {
		query := url.Values{"limit": {"100"}}
		if after != "" {
			query.Set("after", after)
		}
		var page listing
		if err := c.getJSON(ctx, "/subreddits/mine/moderator", query, &page); err != nil {
			return nil, err
		}
		for _, child := range page.Data.Children {
			if child.Kind == kindSubreddit {
				moderated[strings.ToLower(child.Data.DisplayName)] = struct{}{}
			}
		}
		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			return moderated, nil
		}
	}
}

// Reply posts a comment under the given thing and returns the created
// comment.
func (c *Client) Reply(ctx context.Context, parentFullname, text string) (*model.Comment, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {parentFullname},
		"text":     {text},
	}

	var resp jsonResponse
	if err := c.postForm(ctx, "/api/comment", form, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	for _, t := range resp.JSON.Data.Things {
		if t.Kind == kindComment {
			return t.comment(), nil
		}
	}
	return nil, errors.New("reply created but missing from response")
}

// EditComment replaces the body of a comment owned by the client.
func (c *Client) EditComment(ctx context.Context, fullname, text string) error {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {fullname},
		"text":     {text},
	}

	var resp jsonResponse
	if err := c.postForm(ctx, "/api/editusertext", form, &resp); err != nil {
		return err
	}
	return resp.err()
}

// Approve moderator-approves a thing.
func (c *Client) Approve(ctx context.Context, fullname string) error {
	return c.postForm(ctx, "/api/approve", url.Values{"id": {fullname}}, nil)
}

// Lock locks a thing against further replies.
func (c *Client) Lock(ctx context.Context, fullname string) error {
	return c.postForm(ctx, "/api/lock", url.Values{"id": {fullname}}, nil)
}

// DistinguishSticky distinguishes a comment as a moderator and pins it.
func (c *Client) DistinguishSticky(ctx context.Context, fullname string) error {
	form := url.Values{
		"api_type": {"json"},
		"id":       {fullname},
		"how":      {"yes"},
		"sticky":   {"true"},
	}

	var resp jsonResponse
	if err := c.postForm(ctx, "/api/distinguish", form, &resp); err != nil {
		return err
	}
	return resp.err()
}

// SetFlair sets the link flair of a submission, keeping the flair template.
func (c *Client) SetFlair(ctx context.Context, subreddit, linkFullname, templateID, text string) error {
	form := url.Values{
		"api_type": {"json"},
		"link":     {linkFullname},
		"text":     {text},
	}
	if templateID != "" {
		form.Set("flair_template_id", templateID)
	}

	var resp jsonResponse
	if err := c.postForm(ctx, "/r/"+subreddit+"/api/selectflair", form, &resp); err != nil {
		return err
	}
	return resp.err()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, apiBase+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("reddit api %s returned %s", path, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, []byte(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("reddit api %s returned %s", path, resp.Status)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decorate(req *retryablehttp.Request) {
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
}
