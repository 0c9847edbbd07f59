// Package checkpoint persists the timestamp marking the boundary between
// already-processed and new activity.
package checkpoint

import (
	"context"
	"time"
)

// Store persists a single Unix timestamp between runs. Load never fails:
// absent or unreadable state defaults to the current time, which is the
// conservative choice because it avoids re-processing old activity.
type Store interface {
	Load(ctx context.Context) int64
	Save(ctx context.Context, timestamp int64) error
}

func humanize(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format("2006-01-02 15:04:05")
}

func now() int64 {
	return time.Now().UTC().Unix()
}
