package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/snoowatch/snoowatch/config"
	"github.com/snoowatch/snoowatch/service"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the watcher on an interval until terminated",
	Long:  `Runs the watcher on an interval until terminated`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()
		setupLogging(cfg)

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		w, cleanup := buildWatcher(gCtx, cfg)
		defer cleanup()

		healthchecker := service.NewHealthchecker(cfg.HealthcheckPort)

		g.Go(func() error {
			defer log.Info("exiting watcher")
			return w.Watch(gCtx, cfg.WatchInterval)
		})

		// For deployed instances, provide a basic healthcheck endpoint to show it's online
		g.Go(func() error {
			if err := healthchecker.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut down the server if the watcher needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting healthchecker")
			return healthchecker.Server.Shutdown(context.Background())
		})

		if err := g.Wait(); err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
