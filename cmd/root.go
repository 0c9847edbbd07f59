package cmd

import (
	"fmt"
	"os"

	"github.com/snoowatch/snoowatch/config"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

var rootCmd = &cobra.Command{
	Use:   "snoowatch",
	Short: "snoowatch watches Reddit accounts and keeps sticky reply digests",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("No subcommand given")
		cmd.Usage()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Exit with a nonzero exit code if the command fails with an error
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) {
	log.SetLevel(cfg.LogLevel)

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}

	if cfg.TestModeEnabled {
		log.Info("TEST MODE ENABLED")
	}
	if cfg.DebugEnabled {
		log.Info("DEBUG MODE ENABLED, checkpoint will not advance")
	}
}
