package model

import "strings"

// Account is a tracked Reddit account from the watch configuration. Loaded
// once per run and immutable afterwards.
type Account struct {
	Username string `mapstructure:"username" json:"username"`
	// Communities restricts processing to these subreddits, case-insensitive.
	// Empty means no restriction.
	Communities []string `mapstructure:"communities" json:"communities"`
	Label       string   `mapstructure:"label" json:"label"`
}

// CommunitySet returns the allow-list as a case-folded set. An empty set
// means the account is unrestricted.
func (a Account) CommunitySet() map[string]struct{} {
	if len(a.Communities) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a.Communities))
	for _, community := range a.Communities {
		set[strings.ToLower(community)] = struct{}{}
	}
	return set
}
