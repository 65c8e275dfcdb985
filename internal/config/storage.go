package config

// S3Config holds configuration for mirroring rendered documents to S3
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// EmailConfig holds configuration for the transactional mailer
type EmailConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	APIKey           string `mapstructure:"api_key"`
	FromAddress      string `mapstructure:"from_address"`
	ReplyTo          string `mapstructure:"reply_to"`
	DefaultRecipient string `mapstructure:"default_recipient"`
}
