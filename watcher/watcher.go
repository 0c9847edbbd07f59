// Package watcher orchestrates one polling pass over the tracked accounts.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/snoowatch/snoowatch/checkpoint"
	"github.com/snoowatch/snoowatch/filter"
	"github.com/snoowatch/snoowatch/model"
	"github.com/snoowatch/snoowatch/reddit"
	"github.com/snoowatch/snoowatch/redditapi"
	"golang.org/x/exp/maps"

	log "github.com/sirupsen/logrus"
)

// Platform is the read/moderation surface the watcher polls through.
type Platform interface {
	FetchUser(ctx context.Context, username string) (*model.User, error)
	UserPosts(ctx context.Context, username string) filter.Source
	UserComments(ctx context.Context, username string) filter.Source
	IsModerator(ctx context.Context, subreddit string) (bool, error)
	Approve(ctx context.Context, fullname string) error
}

// Reconciler folds a new comment into its submission's aggregate reply.
type Reconciler interface {
	Reconcile(ctx context.Context, comment *model.Comment, label string) error
}

// Notifier reports a new activity item.
type Notifier interface {
	Notify(item model.Content, label string)
}

type Watcher struct {
	platform   Platform
	reconciler Reconciler
	notifier   Notifier
	store      checkpoint.Store
	accounts   []model.Account

	debugEnabled    bool
	testModeEnabled bool
}

func NewWatcher(platform Platform, reconciler Reconciler, notifier Notifier, store checkpoint.Store, accounts []model.Account, isDebug, isTestMode bool) *Watcher {
	return &Watcher{
		platform:        platform,
		reconciler:      reconciler,
		notifier:        notifier,
		store:           store,
		accounts:        accounts,
		debugEnabled:    isDebug,
		testModeEnabled: isTestMode,
	}
}

// RunOnce performs a single sequential pass: load the checkpoint, process
// each tracked account's new posts and comments, then advance the checkpoint
// to now. Per-item failures are swallowed so one bad item never blocks the
// rest; the checkpoint advances even after partial failures, so a partially
// failed run is not retried from the same point.
func (w *Watcher) RunOnce(ctx context.Context) error {
	cp := w.store.Load(ctx)

	for _, account := range w.accounts {
		if len(account.Communities) > 0 {
			communities := maps.Keys(account.CommunitySet())
			slices.Sort(communities)
			log.Debugf("tracking u/%s in communities %v", account.Username, communities)
		}

		user, err := w.platform.FetchUser(ctx, account.Username)
		if err != nil {
			if errors.Is(err, redditapi.ErrNotFound) {
				log.Warnf("Reddit user u/%s not found", account.Username)
			} else {
				log.Errorf("failed to fetch Reddit user u/%s: %v", account.Username, err)
			}
			continue
		}

		w.checkPosts(ctx, user, account, cp)
		w.checkComments(ctx, user, account, cp)

		log.Infof("Processed latest activity for u/%s", user.Name)
	}

	if w.debugEnabled {
		log.Debug("debug mode enabled, checkpoint not advanced")
		return nil
	}
	if err := w.store.Save(ctx, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Watch runs passes on an interval until the context closes. Passes never
// overlap: the next tick waits for the previous pass to finish.
func (w *Watcher) Watch(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			log.Debug("exiting Watcher by closing channel")
			return nil
		case <-time.After(interval):
			if err := w.RunOnce(ctx); err != nil {
				log.Errorf("watch pass failed: %v", err)
			}
		}
	}
}

// checkPosts processes the latest post activity for a tracked user.
func (w *Watcher) checkPosts(ctx context.Context, user *model.User, account model.Account, cp int64) {
	posts := filter.Collect(w.platform.UserPosts(ctx, user.Name), cp, account.CommunitySet())

	log.Infof("Checking %d posts for Reddit user u/%s", len(posts), user.Name)

	for _, post := range posts {
		log.Infof("New post by u/%s in r/%s", user.Name, post.Subreddit())
		log.Debug(reddit.BuildURL(post, false))

		// listing items carry only the author's name
		post.Post.Author.IconURL = user.IconURL

		w.notifier.Notify(post, account.Label)

		moderator, err := w.platform.IsModerator(ctx, post.Subreddit())
		if err != nil {
			log.Errorf("failed to check moderator status for r/%s: %v", post.Subreddit(), err)
			continue
		}
		if moderator {
			w.approve(ctx, post.Post.Fullname)
		}
	}
}

// checkComments processes the latest comment activity for a tracked user.
func (w *Watcher) checkComments(ctx context.Context, user *model.User, account model.Account, cp int64) {
	comments := filter.Collect(w.platform.UserComments(ctx, user.Name), cp, account.CommunitySet())

	log.Infof("Checking %d comments for Reddit user u/%s", len(comments), user.Name)

	for _, item := range comments {
		log.Infof("New comment by u/%s in r/%s", user.Name, item.Subreddit())
		log.Debug(reddit.BuildURL(item, false))

		item.Comment.Author.IconURL = user.IconURL

		w.notifier.Notify(item, account.Label)

		moderator, err := w.platform.IsModerator(ctx, item.Subreddit())
		if err != nil {
			log.Errorf("failed to check moderator status for r/%s: %v", item.Subreddit(), err)
			continue
		}
		if !moderator {
			log.Debugf("client user is not a Moderator of r/%s, no further action for this comment", item.Subreddit())
			continue
		}

		if err := w.reconciler.Reconcile(ctx, item.Comment, account.Label); err != nil {
			log.Errorf("failed to reconcile sticky reply for comment %s: %v", item.Comment.Fullname, err)
		}
	}
}

func (w *Watcher) approve(ctx context.Context, fullname string) {
	if w.testModeEnabled {
		log.WithField("thing", fullname).Info("Simulating approve")
		return
	}
	if err := w.platform.Approve(ctx, fullname); err != nil {
		log.Errorf("failed to approve %s: %v", fullname, err)
	}
}
