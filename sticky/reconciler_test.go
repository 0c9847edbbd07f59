package sticky

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/snoowatch/snoowatch/model"
	"github.com/snoowatch/snoowatch/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const self = "snoowatch_bot"

type MockPlatform struct {
	mock.Mock
	calls []string
}

func (m *MockPlatform) SubmissionComments(ctx context.Context, linkID string) ([]model.Comment, error) {
	args := m.Called(ctx, linkID)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockPlatform) Submission(ctx context.Context, fullname string) (*model.Post, error) {
	args := m.Called(ctx, fullname)
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPlatform) Reply(ctx context.Context, parentFullname, text string) (*model.Comment, error) {
	m.calls = append(m.calls, "Reply")
	args := m.Called(ctx, parentFullname, text)
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockPlatform) EditComment(ctx context.Context, fullname, text string) error {
	m.calls = append(m.calls, "EditComment")
	args := m.Called(ctx, fullname, text)
	return args.Error(0)
}

func (m *MockPlatform) Approve(ctx context.Context, fullname string) error {
	m.calls = append(m.calls, "Approve:"+fullname)
	args := m.Called(ctx, fullname)
	return args.Error(0)
}

func (m *MockPlatform) Lock(ctx context.Context, fullname string) error {
	m.calls = append(m.calls, "Lock:"+fullname)
	args := m.Called(ctx, fullname)
	return args.Error(0)
}

func (m *MockPlatform) DistinguishSticky(ctx context.Context, fullname string) error {
	m.calls = append(m.calls, "Sticky:"+fullname)
	args := m.Called(ctx, fullname)
	return args.Error(0)
}

func (m *MockPlatform) SetFlair(ctx context.Context, subreddit, linkFullname, templateID, text string) error {
	m.calls = append(m.calls, "SetFlair")
	args := m.Called(ctx, subreddit, linkFullname, templateID, text)
	return args.Error(0)
}

func newComment() *model.Comment {
	return &model.Comment{
		Fullname:   "t1_new123",
		Author:     model.User{Name: "SomeDev"},
		Subreddit:  "gaming",
		Permalink:  "/r/gaming/comments/xyz789/patch_notes/new123/",
		CreatedUTC: 1700000000,
		Body:       "We're on it.",
		LinkID:     "t3_xyz789",
	}
}

func ownedAggregate() model.Comment {
	return model.Comment{
		Fullname: "t1_agg456",
		Author:   model.User{Name: self},
		Body:     reddit.NewAggregateBody("> earlier reply"),
		Stickied: true,
	}
}

func TestReconcile(t *testing.T) {
	t.Run("creates exactly one pinned reply when no aggregate exists", func(t *testing.T) {
		comment := newComment()
		created := &model.Comment{Fullname: "t1_reply789"}

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), comment.Fullname).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{}, nil)
		platform.On("Reply", context.TODO(), comment.LinkID, mock.Anything).Return(created, nil)
		platform.On("Approve", context.TODO(), created.Fullname).Return(nil)
		platform.On("Lock", context.TODO(), created.Fullname).Return(nil)
		platform.On("DistinguishSticky", context.TODO(), created.Fullname).Return(nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		err := reconciler.Reconcile(context.TODO(), comment, "")
		assert.NoError(t, err)
		platform.AssertNumberOfCalls(t, "Reply", 1)
		platform.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything)

		// the new reply is approved, locked, then pinned, in that order
		assert.Equal(t, []string{
			"Approve:" + comment.Fullname,
			"Reply",
			"Approve:" + created.Fullname,
			"Lock:" + created.Fullname,
			"Sticky:" + created.Fullname,
		}, platform.calls)
	})

	t.Run("the created reply body ends with the watermark", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), mock.Anything).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{}, nil)
		platform.On("Reply", context.TODO(), comment.LinkID, mock.MatchedBy(func(body string) bool {
			return strings.HasSuffix(body, reddit.Watermark)
		})).Return(&model.Comment{Fullname: "t1_reply789"}, nil)
		platform.On("Lock", context.TODO(), mock.Anything).Return(nil)
		platform.On("DistinguishSticky", context.TODO(), mock.Anything).Return(nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		assert.NoError(t, reconciler.Reconcile(context.TODO(), comment, ""))
		platform.AssertExpectations(t)
	})

	t.Run("creates a new reply when the sticky slot is held by someone else", func(t *testing.T) {
		comment := newComment()
		foreign := model.Comment{Fullname: "t1_other", Author: model.User{Name: "other_mod"}, Body: "announcement", Stickied: true}

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), mock.Anything).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{foreign}, nil)
		platform.On("Reply", context.TODO(), comment.LinkID, mock.Anything).Return(&model.Comment{Fullname: "t1_reply789"}, nil)
		platform.On("Lock", context.TODO(), mock.Anything).Return(nil)
		platform.On("DistinguishSticky", context.TODO(), mock.Anything).Return(nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		assert.NoError(t, reconciler.Reconcile(context.TODO(), comment, ""))
		platform.AssertNumberOfCalls(t, "Reply", 1)
		platform.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("appends to an aggregate it owns instead of creating another", func(t *testing.T) {
		comment := newComment()
		aggregate := ownedAggregate()
		expected := reddit.AppendQuote(aggregate.Body, reddit.BuildQuote(comment, ""))

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), comment.Fullname).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{aggregate}, nil)
		platform.On("EditComment", context.TODO(), aggregate.Fullname, expected).Return(nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		assert.NoError(t, reconciler.Reconcile(context.TODO(), comment, ""))
		platform.AssertExpectations(t)
		platform.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("swallows an edit failure", func(t *testing.T) {
		comment := newComment()
		aggregate := ownedAggregate()

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), mock.Anything).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{aggregate}, nil)
		platform.On("EditComment", context.TODO(), aggregate.Fullname, mock.Anything).Return(fmt.Errorf("oh nooooo"))

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		assert.NoError(t, reconciler.Reconcile(context.TODO(), comment, ""))
	})

	t.Run("fails the comment when the submission scan fails", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("Approve", context.TODO(), mock.Anything).Return(nil)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{}, fmt.Errorf("timeout"))

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		assert.Error(t, reconciler.Reconcile(context.TODO(), comment, ""))
		platform.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("simulates all mutations in test mode", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("SubmissionComments", context.TODO(), comment.LinkID).Return([]model.Comment{}, nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, true)
		assert.NoError(t, reconciler.Reconcile(context.TODO(), comment, ""))
		platform.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
		platform.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
	})
}

func TestAppendCeiling(t *testing.T) {
	t.Run("rejects an append that would reach the ceiling", func(t *testing.T) {
		// 9950-char body + separator + 100-char quote lands over a 10000 ceiling
		aggregate := ownedAggregate()
		terminator := "\n\n" + reddit.Watermark
		aggregate.Body = strings.Repeat("x", 9950-len(terminator)) + terminator
		assert.Equal(t, 9950, len(aggregate.Body))
		quote := strings.Repeat("q", 100)

		platform := new(MockPlatform)
		reconciler := NewReconciler(platform, self, 10000, false)
		reconciler.appendToAggregate(context.TODO(), &aggregate, quote)

		platform.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("allows an append below the ceiling", func(t *testing.T) {
		aggregate := ownedAggregate()
		quote := "> short quote"

		platform := new(MockPlatform)
		platform.On("EditComment", context.TODO(), aggregate.Fullname, reddit.AppendQuote(aggregate.Body, quote)).Return(nil)

		reconciler := NewReconciler(platform, self, 10000, false)
		reconciler.appendToAggregate(context.TODO(), &aggregate, quote)
		platform.AssertExpectations(t)
	})
}

func TestMarkFlair(t *testing.T) {
	submission := func(flair string) *model.Post {
		return &model.Post{
			Fullname:        "t3_xyz789",
			Subreddit:       "gaming",
			FlairText:       flair,
			FlairTemplateID: "tpl-1",
		}
	}

	t.Run("appends the label suffix to existing flair", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("Submission", context.TODO(), comment.LinkID).Return(submission("News"), nil)
		platform.On("SetFlair", context.TODO(), "gaming", "t3_xyz789", "tpl-1", "News (Developer Replied)").Return(nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		reconciler.markFlair(context.TODO(), comment, "Developer")
		platform.AssertExpectations(t)
	})

	t.Run("does not edit flair twice", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("Submission", context.TODO(), comment.LinkID).Return(submission("News (Developer Replied)"), nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		reconciler.markFlair(context.TODO(), comment, "Developer")
		platform.AssertNotCalled(t, "SetFlair", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips submissions without flair text", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		platform.On("Submission", context.TODO(), comment.LinkID).Return(submission(""), nil)

		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		reconciler.markFlair(context.TODO(), comment, "Developer")
		platform.AssertNotCalled(t, "SetFlair", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips entirely without a label", func(t *testing.T) {
		comment := newComment()

		platform := new(MockPlatform)
		reconciler := NewReconciler(platform, self, DefaultMaxBodyLength, false)
		reconciler.markFlair(context.TODO(), comment, "")
		platform.AssertNotCalled(t, "Submission", mock.Anything, mock.Anything)
	})
}

func TestFindAggregate(t *testing.T) {
	t.Run("finds the owned aggregate among unrelated comments", func(t *testing.T) {
		aggregate := ownedAggregate()
		comments := []model.Comment{
			{Fullname: "t1_a", Author: model.User{Name: "someone"}, Body: "hi"},
			aggregate,
		}
		found, role := findAggregate(comments, self)
		assert.Equal(t, model.RoleOwnedAggregate, role)
		assert.Equal(t, aggregate.Fullname, found.Fullname)
	})

	t.Run("reports a foreign pinned comment when nothing is owned", func(t *testing.T) {
		comments := []model.Comment{
			{Fullname: "t1_other", Author: model.User{Name: "other_mod"}, Body: "announcement", Stickied: true},
		}
		found, role := findAggregate(comments, self)
		assert.Nil(t, found)
		assert.Equal(t, model.RoleForeignPinned, role)
	})

	t.Run("reports unrelated for an empty scan", func(t *testing.T) {
		found, role := findAggregate(nil, self)
		assert.Nil(t, found)
		assert.Equal(t, model.RoleUnrelated, role)
	})
}
