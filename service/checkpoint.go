package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/snoowatch/snoowatch/checkpoint"
	"github.com/snoowatch/snoowatch/config"

	log "github.com/sirupsen/logrus"
)

// NewCheckpointStore picks the checkpoint backend. Postgres is used when a
// connection string is configured, otherwise the plain checkpoint file. The
// returned func releases the backend's resources.
func NewCheckpointStore(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) (checkpoint.Store, func()) {
	connString := cfg.PostgresURL
	if connString == "" && cfg.PostgresSecretPath != "" {
		var pgSecrets config.PostgresSecretData
		if err := readSecret(ctx, secretsManagerClient, cfg.PostgresSecretPath, &pgSecrets); err != nil {
			log.Fatalf("postgres secrets read error: %v", err)
		}
		connString = pgSecrets.ConnectionString
	}

	if connString == "" {
		log.Debugf("using checkpoint file %s", cfg.CheckpointFile)
		return checkpoint.NewFileStore(cfg.CheckpointFile), func() {}
	}

	store := checkpoint.NewPostgresStore(connString)
	if err := store.Connect(ctx); err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	return store, store.Disconnect
}
