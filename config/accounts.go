package config

import (
	"fmt"
	"strings"

	"github.com/snoowatch/snoowatch/model"
	"github.com/spf13/viper"
)

/*
LoadAccounts reads the tracked-account file. The file is JSON with a single
"users" key:

	{
	  "users": [
	    {"username": "SomeDev", "communities": ["gaming"], "label": "Developer"}
	  ]
	}

Community names are case-folded on load; an account with no communities is
tracked everywhere.
*/
func LoadAccounts(path string) ([]model.Account, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var accounts []model.Account
	if err := v.UnmarshalKey("users", &accounts); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no tracked users in %s", path)
	}

	for i, account := range accounts {
		if account.Username == "" {
			return nil, fmt.Errorf("tracked user %d has no username", i)
		}
		for j, community := range account.Communities {
			accounts[i].Communities[j] = strings.ToLower(community)
		}
	}
	return accounts, nil
}
