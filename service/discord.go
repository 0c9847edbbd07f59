package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/snoowatch/snoowatch/config"
	"github.com/snoowatch/snoowatch/discord"
	"github.com/snoowatch/snoowatch/notifier"

	log "github.com/sirupsen/logrus"
)

// NewNotifySender resolves the Discord webhook URL and builds the webhook
// client. Returns nil when no webhook is configured; notifications are
// optional.
func NewNotifySender(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) notifier.Sender {
	webhookURL := cfg.Discord.WebhookURL
	if webhookURL == "" && cfg.Discord.SecretPath != "" {
		var discordSecrets config.DiscordSecretData
		if err := readSecret(ctx, secretsManagerClient, cfg.Discord.SecretPath, &discordSecrets); err != nil {
			log.Fatalf("discord secrets read error: %v", err)
		}
		webhookURL = discordSecrets.WebhookURL
	}
	if webhookURL == "" {
		return nil
	}
	return discord.NewClient(webhookURL)
}
