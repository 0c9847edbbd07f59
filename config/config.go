package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Reddit  RedditConfig
	Discord DiscordConfig

	PostgresURL        string
	PostgresSecretPath string
	CheckpointFile     string
	AccountsFile       string

	WatchInterval   time.Duration
	HealthcheckPort int

	LogLevel        log.Level
	LogFormat       LogFormat
	DebugEnabled    bool
	TestModeEnabled bool
}

type RedditConfig struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	SecretPath   string

	UserAgent        string
	PageSize         int
	MaxCommentLength int
}

type DiscordConfig struct {
	WebhookURL string
	SecretPath string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Reddit script-app credentials, unless supplied via Secrets Manager
	EnvfileKeyRedditUsername     = "REDDIT_USERNAME"
	EnvfileKeyRedditPassword     = "REDDIT_PASSWORD"
	EnvfileKeyRedditClientID     = "REDDIT_CLIENT_ID"
	EnvfileKeyRedditClientSecret = "REDDIT_CLIENT_SECRET"
	// AWS Secrets Manager path where Reddit credentials can be found
	EnvfileKeyRedditSecretPath = "REDDIT_SECRETS_PATH"
	// User agent sent on every Reddit API call
	EnvfileKeyRedditUserAgent = "REDDIT_USER_AGENT"
	// Number of items to request per listing page
	EnvfileKeyRedditPageSize = "REDDIT_PAGE_SIZE"
	// Hard ceiling on aggregate reply body length
	EnvfileKeyRedditMaxCommentLength = "REDDIT_MAX_COMMENT_LENGTH"

	// Discord webhook URL for activity notifications
	EnvfileKeyDiscordWebhookURL = "DISCORD_WEBHOOK_URL"
	// AWS Secrets Manager path where the webhook URL can be found
	EnvfileKeyDiscordSecretPath = "DISCORD_SECRETS_PATH"

	// Postgres connection string; enables the Postgres checkpoint store
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"
	// Path of the plain-text checkpoint file (file store)
	EnvfileKeyCheckpointFile = "CHECKPOINT_FILE"

	// Path of the tracked-account config file
	EnvfileKeyAccountsFile = "ACCOUNTS_FILE"

	// Seconds between polling passes in serve mode
	EnvfileKeyWatchInterval = "WATCH_INTERVAL"
	// Port of the healthcheck endpoint in serve mode
	EnvfileKeyHealthcheckPort = "HEALTHCHECK_PORT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Suppresses the checkpoint advance at the end of a run
	EnvfileKeyDebug = "DEBUG"
	// Enables "test mode" (mutations and deliveries are simulated)
	EnvfileKeyTestMode = "TEST_MODE"
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	if err := viper.ReadInConfig(); err != nil {
		// Plain env vars still apply without a .env file
		log.Debugf("no .env file loaded: %v", err)
	}

	redditSecretPath := getConfigString(EnvfileKeyRedditSecretPath)
	redditUsername := getConfigString(EnvfileKeyRedditUsername)
	if redditSecretPath == "" && redditUsername == "" {
		log.Fatal("reddit credentials not configured")
	}

	userAgent := getConfigString(EnvfileKeyRedditUserAgent)
	if userAgent == "" {
		userAgent = "snoowatch (https://github.com/snoowatch/snoowatch)"
	}

	pageSize := getConfigInt(EnvfileKeyRedditPageSize)
	if pageSize == 0 {
		// Reddit's listing maximum
		pageSize = 100
	}

	maxCommentLength := getConfigInt(EnvfileKeyRedditMaxCommentLength)
	if maxCommentLength == 0 {
		maxCommentLength = 10000
	}

	checkpointFile := getConfigString(EnvfileKeyCheckpointFile)
	if checkpointFile == "" {
		checkpointFile = "checkpoint.txt"
	}

	accountsFile := getConfigString(EnvfileKeyAccountsFile)
	if accountsFile == "" {
		accountsFile = "config.json"
	}

	watchInterval := getConfigInt(EnvfileKeyWatchInterval)
	if watchInterval == 0 {
		// Default to 5 minutes between passes
		watchInterval = 300
	}

	healthcheckPort := getConfigInt(EnvfileKeyHealthcheckPort)
	if healthcheckPort == 0 {
		healthcheckPort = 8080
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	return Config{
		Reddit: RedditConfig{
			Username:         redditUsername,
			Password:         getConfigString(EnvfileKeyRedditPassword),
			ClientID:         getConfigString(EnvfileKeyRedditClientID),
			ClientSecret:     getConfigString(EnvfileKeyRedditClientSecret),
			SecretPath:       redditSecretPath,
			UserAgent:        userAgent,
			PageSize:         pageSize,
			MaxCommentLength: maxCommentLength,
		},
		Discord: DiscordConfig{
			WebhookURL: getConfigString(EnvfileKeyDiscordWebhookURL),
			SecretPath: getConfigString(EnvfileKeyDiscordSecretPath),
		},
		PostgresURL:        getConfigString(EnvfileKeyPostgresURL),
		PostgresSecretPath: getConfigString(EnvfileKeyPostgresSecretsPath),
		CheckpointFile:     checkpointFile,
		AccountsFile:       accountsFile,
		WatchInterval:      time.Duration(watchInterval) * time.Second,
		HealthcheckPort:    healthcheckPort,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		DebugEnabled:       viper.GetBool(EnvfileKeyDebug),
		TestModeEnabled:    viper.GetBool(EnvfileKeyTestMode),
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	envVarValue := os.Getenv(key)
	if envVarValue == "" {
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(envVarValue)
	if err != nil {
		return 0
	}
	return value
}
