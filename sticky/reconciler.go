// Package sticky maintains one aggregate sticky reply per submission,
// consolidating a tracked user's comments into a single pinned thread.
package sticky

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucsky/cuid"
	"github.com/snoowatch/snoowatch/model"
	"github.com/snoowatch/snoowatch/reddit"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxBodyLength is the Reddit comment body ceiling.
const DefaultMaxBodyLength = 10000

// repliedFlairSuffix guards the flair edit against being applied twice.
const repliedFlairSuffix = " Replied)"

// Platform is the content-platform surface the reconciler mutates through.
type Platform interface {
	SubmissionComments(ctx context.Context, linkID string) ([]model.Comment, error)
	Submission(ctx context.Context, fullname string) (*model.Post, error)
	Reply(ctx context.Context, parentFullname, text string) (*model.Comment, error)
	EditComment(ctx context.Context, fullname, text string) error
	Approve(ctx context.Context, fullname string) error
	Lock(ctx context.Context, fullname string) error
	DistinguishSticky(ctx context.Context, fullname string) error
	SetFlair(ctx context.Context, subreddit, linkFullname, templateID, text string) error
}

type Reconciler struct {
	platform        Platform
	self            string
	maxBodyLength   int
	testModeEnabled bool
}

func NewReconciler(platform Platform, self string, maxBodyLength int, isTestMode bool) *Reconciler {
	if maxBodyLength <= 0 {
		maxBodyLength = DefaultMaxBodyLength
	}
	return &Reconciler{
		platform:        platform,
		self:            self,
		maxBodyLength:   maxBodyLength,
		testModeEnabled: isTestMode,
	}
}

// Reconcile handles one new comment by a tracked account: approves it, marks
// the parent submission's flair, and folds the comment into the submission's
// aggregate reply. The caller must have confirmed moderator capability over
// the comment's community.
func (r *Reconciler) Reconcile(ctx context.Context, comment *model.Comment, label string) error {
	if err := r.approve(ctx, comment.Fullname); err != nil {
		log.Errorf("failed to approve comment %s: %v", comment.Fullname, err)
	}

	r.markFlair(ctx, comment, label)

	comments, err := r.platform.SubmissionComments(ctx, comment.LinkID)
	if err != nil {
		return fmt.Errorf("fetch comments for submission %s: %w", comment.LinkID, err)
	}

	quote := reddit.BuildQuote(comment, label)

	aggregate, role := findAggregate(comments, r.self)
	if role == model.RoleForeignPinned {
		log.Debugf("stickied comment on %s is owned by someone else, creating our own", comment.LinkID)
	}
	if aggregate == nil {
		return r.createAggregate(ctx, comment.LinkID, quote)
	}
	r.appendToAggregate(ctx, aggregate, quote)
	return nil
}

// findAggregate scans a submission's top-level comments and decides the
// aggregate state once: the owned aggregate if present, otherwise whether a
// foreign pinned comment occupies the sticky slot.
func findAggregate(comments []model.Comment, self string) (*model.Comment, model.CommentRole) {
	role := model.RoleUnrelated
	for i := range comments {
		switch reddit.ClassifyComment(&comments[i], self) {
		case model.RoleOwnedAggregate:
			return &comments[i], model.RoleOwnedAggregate
		case model.RoleForeignPinned:
			role = model.RoleForeignPinned
		}
	}
	return nil, role
}

// createAggregate posts a fresh aggregate reply holding a single quote block,
// then approves, locks, and pins it, in that order.
func (r *Reconciler) createAggregate(ctx context.Context, linkID, quote string) error {
	body := reddit.NewAggregateBody(quote)

	reply, err := r.reply(ctx, linkID, body)
	if err != nil {
		return fmt.Errorf("create aggregate reply on %s: %w", linkID, err)
	}

	if err = r.approve(ctx, reply.Fullname); err != nil {
		log.Errorf("failed to approve aggregate reply %s: %v", reply.Fullname, err)
	}
	if err = r.lock(ctx, reply.Fullname); err != nil {
		log.Errorf("failed to lock aggregate reply %s: %v", reply.Fullname, err)
	}
	if err = r.distinguishSticky(ctx, reply.Fullname); err != nil {
		log.Errorf("failed to sticky aggregate reply %s: %v", reply.Fullname, err)
	}

	log.Infof("Created aggregate reply %s on %s", reply.Fullname, linkID)
	return nil
}

// appendToAggregate folds the quote into the existing aggregate body. When
// the result would reach the ceiling the append is dropped and the remote
// comment left untouched; the lost update is accepted rather than truncated.
func (r *Reconciler) appendToAggregate(ctx context.Context, aggregate *model.Comment, quote string) {
	body := reddit.AppendQuote(aggregate.Body, quote)

	if len(body) >= r.maxBodyLength {
		log.Warnf("Cannot edit comment %s due to exceeding the length limit (%d >= %d)", aggregate.Fullname, len(body), r.maxBodyLength)
		return
	}

	if err := r.edit(ctx, aggregate.Fullname, body); err != nil {
		log.Errorf("failed to edit comment %s: %v", aggregate.Fullname, err)
		return
	}

	log.Infof("Appended quote to aggregate reply %s", aggregate.Fullname)
}

// markFlair appends a "(<Label> Replied)" suffix to the parent submission's
// flair, once. Skipped when there is no label or no existing flair text.
func (r *Reconciler) markFlair(ctx context.Context, comment *model.Comment, label string) {
	if label == "" {
		return
	}

	parent, err := r.platform.Submission(ctx, comment.LinkID)
	if err != nil {
		log.Errorf("failed to fetch submission %s: %v", comment.LinkID, err)
		return
	}
	if parent.FlairText == "" || strings.HasSuffix(parent.FlairText, repliedFlairSuffix) {
		return
	}

	text := fmt.Sprintf("%s (%s Replied)", parent.FlairText, label)
	if err = r.setFlair(ctx, parent.Subreddit, parent.Fullname, parent.FlairTemplateID, text); err != nil {
		log.Errorf("failed to set flair on %s: %v", parent.Fullname, err)
	}
}

// Mutation wrappers; test mode simulates instead of posting.

func (r *Reconciler) reply(ctx context.Context, parentFullname, text string) (*model.Comment, error) {
	if r.testModeEnabled {
		fullname := kindCommentPrefix + cuid.New()
		log.WithField("parent", parentFullname).WithField("body", text).Infof("Simulating reply with comment %s", fullname)
		return &model.Comment{Fullname: fullname, Author: model.User{Name: r.self}, Body: text}, nil
	}
	return r.platform.Reply(ctx, parentFullname, text)
}

func (r *Reconciler) edit(ctx context.Context, fullname, text string) error {
	if r.testModeEnabled {
		log.WithField("comment", fullname).WithField("body", text).Info("Simulating comment edit")
		return nil
	}
	return r.platform.EditComment(ctx, fullname, text)
}

func (r *Reconciler) approve(ctx context.Context, fullname string) error {
	if r.testModeEnabled {
		log.WithField("thing", fullname).Info("Simulating approve")
		return nil
	}
	return r.platform.Approve(ctx, fullname)
}

func (r *Reconciler) lock(ctx context.Context, fullname string) error {
	if r.testModeEnabled {
		log.WithField("thing", fullname).Info("Simulating lock")
		return nil
	}
	return r.platform.Lock(ctx, fullname)
}

func (r *Reconciler) distinguishSticky(ctx context.Context, fullname string) error {
	if r.testModeEnabled {
		log.WithField("thing", fullname).Info("Simulating distinguish+sticky")
		return nil
	}
	return r.platform.DistinguishSticky(ctx, fullname)
}

func (r *Reconciler) setFlair(ctx context.Context, subreddit, linkFullname, templateID, text string) error {
	if r.testModeEnabled {
		log.WithField("link", linkFullname).WithField("text", text).Info("Simulating flair update")
		return nil
	}
	return r.platform.SetFlair(ctx, subreddit, linkFullname, templateID, text)
}

const kindCommentPrefix = "t1_"
