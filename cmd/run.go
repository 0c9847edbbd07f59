package cmd

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/snoowatch/snoowatch/config"
	"github.com/snoowatch/snoowatch/notifier"
	"github.com/snoowatch/snoowatch/service"
	"github.com/snoowatch/snoowatch/sticky"
	"github.com/snoowatch/snoowatch/watcher"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a single polling pass over the tracked accounts",
	Long:  `Runs a single polling pass over the tracked accounts`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()
		setupLogging(cfg)

		ctx := context.Background()
		w, cleanup := buildWatcher(ctx, cfg)
		defer cleanup()

		if err := w.RunOnce(ctx); err != nil {
			log.Errorf("polling pass failed: %v", err)
		}
	},
}

// buildWatcher assembles the full service stack for a watcher.
func buildWatcher(ctx context.Context, cfg config.Config) (*watcher.Watcher, func()) {
	accounts, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		log.Fatalf("error loading tracked accounts: %v", err)
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal(err)
	}
	secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

	redditService := service.NewRedditService(ctx, cfg, secretsManagerClient)
	sender := service.NewNotifySender(ctx, cfg, secretsManagerClient)
	store, cleanup := service.NewCheckpointStore(ctx, cfg, secretsManagerClient)

	reconciler := sticky.NewReconciler(
		redditService.Client(),
		redditService.Client().Self().Name,
		cfg.Reddit.MaxCommentLength,
		cfg.TestModeEnabled,
	)
	notify := notifier.New(sender, cfg.TestModeEnabled)

	w := watcher.NewWatcher(redditService, reconciler, notify, store, accounts, cfg.DebugEnabled, cfg.TestModeEnabled)
	return w, cleanup
}
