// Package filter selects the new, in-scope activity items from a lazy
// newest-first listing.
package filter

import (
	"strings"

	"github.com/snoowatch/snoowatch/model"

	log "github.com/sirupsen/logrus"
)

// Source yields activity items in newest-first order. Next returns nil when
// the listing is exhausted.
type Source interface {
	Next() (*model.Content, error)
}

// Collect consumes items from src until it reaches one created before the
// checkpoint, relying on the newest-first ordering to stop early. Items whose
// case-folded community is not in the allow-list are skipped; an empty
// allow-list means unrestricted. A source error ends collection and whatever
// was accumulated so far is returned.
func Collect(src Source, checkpoint int64, allowlist map[string]struct{}) []model.Content {
	var items []model.Content

	for {
		item, err := src.Next()
		if err != nil {
			log.Errorf("failed while fetching activity, keeping %d items: %v", len(items), err)
			return items
		}
		if item == nil {
			return items
		}

		if item.CreatedUTC() < checkpoint {
			log.Debugf("checkpoint reached after %d items (%d < %d)", len(items), item.CreatedUTC(), checkpoint)
			return items
		}

		if len(allowlist) > 0 {
			if _, tracked := allowlist[strings.ToLower(item.Subreddit())]; !tracked {
				log.Debugf("r/%s is not a tracked community", item.Subreddit())
				continue
			}
		}

		items = append(items, *item)
	}
}
