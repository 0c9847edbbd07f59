// Package notifier reports tracked-account activity to a Discord webhook.
package notifier

import (
	"time"

	"github.com/snoowatch/snoowatch/discord"
	"github.com/snoowatch/snoowatch/model"
	"github.com/snoowatch/snoowatch/reddit"

	log "github.com/sirupsen/logrus"
)

const (
	// Reddit's brand orange, as the embed accent.
	accentColor = 0xFF5700

	footerText    = "Reddit"
	footerIconURL = "https://i.imgur.com/ucGCjfj.png"

	// Embed descriptions are capped well under Discord's limit.
	maxBodyLength = 4000
)

// Sender delivers a webhook message. Delivery failures never fail the run.
type Sender interface {
	Execute(message discord.Message) error
}

type Notifier struct {
	sender          Sender // nil when no webhook is configured
	testModeEnabled bool
}

func New(sender Sender, isTestMode bool) *Notifier {
	return &Notifier{
		sender:          sender,
		testModeEnabled: isTestMode,
	}
}

// Notify builds a card-style message for the content item and delivers it.
// A no-op (logged) when no webhook is configured.
func (n *Notifier) Notify(item model.Content, label string) {
	if n.sender == nil {
		log.Info("Discord webhook for notifications is not set")
		return
	}

	message := discord.Message{Embeds: []discord.Embed{BuildEmbed(item, label)}}

	if n.testModeEnabled {
		log.WithField("title", message.Embeds[0].Title).Info("Simulating notification delivery")
		return
	}

	if err := n.sender.Execute(message); err != nil {
		log.Errorf("failed to deliver notification: %v", err)
	}
}

// BuildEmbed maps a post or comment to a Discord embed.
func BuildEmbed(item model.Content, label string) discord.Embed {
	author := item.Author()

	authorName := "u/" + author.Name
	if label != "" {
		authorName += " (" + label + ")"
	}

	embed := discord.Embed{
		Color: accentColor,
		Author: &discord.EmbedAuthor{
			Name:    authorName,
			URL:     reddit.BuildURL(model.UserContent(&author), false),
			IconURL: author.IconURL,
		},
		Footer: &discord.EmbedFooter{
			Text:    footerText,
			IconURL: footerIconURL,
		},
		Timestamp: time.Unix(item.CreatedUTC(), 0).UTC().Format(time.RFC3339),
	}

	switch item.Kind {
	case model.KindPost:
		embed.Title = item.Post.Title
		embed.URL = reddit.BuildURL(item, false)

		// Self posts carry text, link posts an external URL
		if item.Post.SelfText != "" {
			embed.Description = ">>> " + reddit.Truncate(item.Post.SelfText, maxBodyLength)
		} else if item.Post.LinkURL != "" {
			embed.Description = reddit.Truncate(item.Post.LinkURL, maxBodyLength)
		}
	case model.KindComment:
		embed.Title = "Comment in r/" + item.Comment.Subreddit
		embed.URL = reddit.BuildURL(item, true)
		embed.Description = ">>> " + reddit.Truncate(item.Comment.Body, maxBodyLength)
	}

	return embed
}
