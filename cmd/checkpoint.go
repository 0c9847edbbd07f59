package cmd

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/snoowatch/snoowatch/config"
	"github.com/snoowatch/snoowatch/service"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

var checkpointSeed int64

func init() {
	checkpointCmd.Flags().Int64Var(&checkpointSeed, "set", 0, "seed the checkpoint to a Unix timestamp")
	rootCmd.AddCommand(checkpointCmd)
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Shows or seeds the stored activity checkpoint",
	Long:  `Shows or seeds the stored activity checkpoint`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()
		setupLogging(cfg)

		ctx := context.Background()

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatal(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		store, cleanup := service.NewCheckpointStore(ctx, cfg, secretsManagerClient)
		defer cleanup()

		if cmd.Flags().Changed("set") {
			if err := store.Save(ctx, checkpointSeed); err != nil {
				log.Fatalf("error seeding checkpoint: %v", err)
			}
		}

		value := store.Load(ctx)
		fmt.Printf("%d (%s UTC)\n", value, time.Unix(value, 0).UTC().Format("2006-01-02 15:04:05"))
	},
}
