package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/varoOP/kinobot/internal/domain"
)

const (
	DefaultSerperURL    = "https://google.serper.dev/search"
	DefaultKinopoiskURL = "https://kinopoiskapiunofficial.tech"
)

// legacyEnv lists the environment names the first version of the bot read
var legacyEnv = map[string]string{
	"telegram_token":    "TELEGRAM_BOT_TOKEN",
	"serper_api_key":    "SERPER_API_KEY",
	"kinopoisk_api_key": "KINOPOISK_UNOFFICIAL_API_KEY",
}

// SetDefaults registers defaults and env bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("serper_url", DefaultSerperURL)
	v.SetDefault("kinopoisk_url", DefaultKinopoiskURL)
	v.SetDefault("primary_site", "lordfilm")
	v.SetDefault("fallback_site", "rutube.ru")
	v.SetDefault("upstream_timeout", "10s")
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("database_dir", ".")
	v.SetDefault("history_limit", 20)
	v.SetDefault("log_level", "info")

	for key, env := range legacyEnv {
		// BindEnv only fails without a key
		_ = v.BindEnv(key, "KINOBOT_"+strings.ToUpper(key), env)
	}
}

// Load loads configuration from multiple sources:
// 1. Config file (config.yaml, optional)
// 2. Environment variables (KINOBOT_* and the legacy names)
// API keys are optional, a missing key disables the matching upstream.
func Load(v *viper.Viper) (*domain.Config, error) {
	cfg := &domain.Config{
		TelegramToken:     v.GetString("telegram_token"),
		SerperAPIKey:      v.GetString("serper_api_key"),
		KinopoiskAPIKey:   v.GetString("kinopoisk_api_key"),
		SerperURL:         v.GetString("serper_url"),
		KinopoiskURL:      v.GetString("kinopoisk_url"),
		PrimarySite:       v.GetString("primary_site"),
		FallbackSite:      v.GetString("fallback_site"),
		DatabaseDir:       v.GetString("database_dir"),
		HistoryLimit:      v.GetInt("history_limit"),
		DiscordWebhookURL: v.GetString("discord_webhook_url"),
		LogLevel:          v.GetString("log_level"),
	}

	var err error
	if cfg.UpstreamTimeout, err = duration(v, "upstream_timeout"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = duration(v, "cache_ttl"); err != nil {
		return nil, err
	}

	if cfg.AdminIDs, err = adminIDs(v.GetStringSlice("admin_ids")); err != nil {
		return nil, err
	}

	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.Errorf("upstream_timeout must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.HistoryLimit <= 0 {
		return nil, errors.Errorf("history_limit must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.PrimarySite == "" || cfg.FallbackSite == "" {
		return nil, errors.New("primary_site and fallback_site must not be empty")
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}

// adminIDs accepts both a YAML list and a comma separated env value
func adminIDs(raw []string) ([]int64, error) {
	var ids []int64
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid admin_ids entry %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
