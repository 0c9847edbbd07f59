package checkpoint

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	log "github.com/sirupsen/logrus"
)

// PostgresStore keeps the checkpoint in a single-row table, for deployments
// where the local filesystem is ephemeral.
//
//	CREATE TABLE checkpoint (
//	    id    int PRIMARY KEY,
//	    value bigint NOT NULL,
//	    saved timestamptz NOT NULL
//	);
type PostgresStore struct {
	connString string
	pool       *pgxpool.Pool
}

func NewPostgresStore(connString string) *PostgresStore {
	return &PostgresStore{
		connString: connString,
	}
}

func (s *PostgresStore) Connect(ctx context.Context) error {
	var err error
	s.pool, err = pgxpool.New(ctx, s.connString)
	if err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Disconnect() {
	s.pool.Close()
}

func (s *PostgresStore) Load(ctx context.Context) int64 {
	fallback := now()

	var timestamp int64
	err := s.pool.QueryRow(ctx, `
	SELECT value FROM checkpoint WHERE id = 1`,
	).Scan(&timestamp)
	if err != nil {
		// A blank table is OK and obviously can't return rows
		if err == pgx.ErrNoRows {
			log.Infof("Checkpoint not found, defaulted to now (%d)", fallback)
		} else {
			log.Warnf("Failed to read checkpoint, defaulted to now (%d): %v", fallback, err)
		}
		return fallback
	}

	log.Infof("Loaded checkpoint at %s (%d)", humanize(timestamp), timestamp)
	return timestamp
}

func (s *PostgresStore) Save(ctx context.Context, timestamp int64) error {
	// don't really care about the result, as long as this succeeds
	_, err := s.pool.Exec(ctx, `
	INSERT INTO checkpoint (id, value, saved) VALUES (1, $1, $2)
	ON CONFLICT (id) DO UPDATE SET value = $1, saved = $2`,
		timestamp,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return err
	}

	log.Infof("Saved checkpoint at %s (%d)", humanize(timestamp), timestamp)
	return nil
}
