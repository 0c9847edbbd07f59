package checkpoint

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FileStore keeps the checkpoint as plain integer text in a local file, so
// operators can read and seed it by hand.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) int64 {
	fallback := now()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Infof("Checkpoint not found, defaulted to now (%d)", fallback)
		return fallback
	}
	if err != nil {
		log.Warnf("Failed to read local checkpoint, defaulted to now (%d): %v", fallback, err)
		return fallback
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		log.Warnf("Failed to parse local checkpoint, defaulted to now (%d): %v", fallback, err)
		return fallback
	}

	log.Infof("Loaded checkpoint at %s (%d)", humanize(timestamp), timestamp)
	return timestamp
}

// Save writes to a sibling temp file and renames it over the checkpoint, so a
// crash mid-write loses the update but never corrupts the stored value.
func (s *FileStore) Save(ctx context.Context, timestamp int64) error {
	tmp := s.path + ".tmp"

	if err := os.WriteFile(tmp, []byte(strconv.FormatInt(timestamp, 10)), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	log.Infof("Saved checkpoint at %s (%d)", humanize(timestamp), timestamp)
	return nil
}
