package config

type RedditSecretData struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type DiscordSecretData struct {
	WebhookURL string `json:"webhookUrl"`
}

type PostgresSecretData struct {
	ConnectionString string `json:"connectionString"`
}
