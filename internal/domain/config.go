package domain

import "time"

type Config struct {
	TelegramToken     string        `mapstructure:"telegram_token"`
	SerperAPIKey      string        `mapstructure:"serper_api_key"`
	KinopoiskAPIKey   string        `mapstructure:"kinopoisk_api_key"`
	SerperURL         string        `mapstructure:"serper_url"`
	KinopoiskURL      string        `mapstructure:"kinopoisk_url"`
	PrimarySite       string        `mapstructure:"primary_site"`
	FallbackSite      string        `mapstructure:"fallback_site"`
	UpstreamTimeout   time.Duration `mapstructure:"upstream_timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	DatabaseDir       string        `mapstructure:"database_dir"`
	HistoryLimit      int           `mapstructure:"history_limit"`
	AdminIDs          []int64       `mapstructure:"admin_ids"`
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
	LogLevel          string        `mapstructure:"log_level"`
}

// IsAdmin reports whether userID may run admin-only commands
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
