package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/snoowatch/snoowatch/config"
	"github.com/snoowatch/snoowatch/filter"
	"github.com/snoowatch/snoowatch/model"
	"github.com/snoowatch/snoowatch/redditapi"

	log "github.com/sirupsen/logrus"
)

// RedditService owns the authenticated Reddit client and adapts its listing
// iterators to the filter.Source shape the watcher consumes.
type RedditService struct {
	client *redditapi.Client
}

func NewRedditService(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) *RedditService {
	creds := redditapi.Credentials{
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
	}

	// Secrets Manager credentials take precedence over the envfile
	if cfg.Reddit.SecretPath != "" {
		var redditSecrets config.RedditSecretData
		if err := readSecret(ctx, secretsManagerClient, cfg.Reddit.SecretPath, &redditSecrets); err != nil {
			log.Fatalf("reddit secrets read error: %v", err)
		}
		creds = redditapi.Credentials{
			Username:     redditSecrets.Username,
			Password:     redditSecrets.Password,
			ClientID:     redditSecrets.ClientID,
			ClientSecret: redditSecrets.ClientSecret,
		}
	}

	client, err := redditapi.Authenticate(ctx, creds, cfg.Reddit.UserAgent, cfg.Reddit.PageSize)
	if err != nil {
		log.Fatalf("reddit authentication error: %v", err)
	}
	log.Infof("Authenticated to Reddit as u/%s", client.Self().Name)

	return &RedditService{client: client}
}

// Client exposes the underlying API client for the moderation surface.
func (s *RedditService) Client() *redditapi.Client {
	return s.client
}

func (s *RedditService) FetchUser(ctx context.Context, username string) (*model.User, error) {
	return s.client.FetchUser(ctx, username)
}

func (s *RedditService) UserPosts(ctx context.Context, username string) filter.Source {
	return s.client.UserPosts(ctx, username)
}

func (s *RedditService) UserComments(ctx context.Context, username string) filter.Source {
	return s.client.UserComments(ctx, username)
}

func (s *RedditService) IsModerator(ctx context.Context, subreddit string) (bool, error) {
	return s.client.IsModerator(ctx, subreddit)
}

func (s *RedditService) Approve(ctx context.Context, fullname string) error {
	return s.client.Approve(ctx, fullname)
}
