package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Auth struct {
		Secret        string
		Algorithm     string
		TokenLifetime time.Duration
	}
	Scrape struct {
		TitleTimeout   time.Duration
		FaviconTimeout time.Duration
		UserAgent      string
		MaxBodyBytes   int64
	}
	Log struct {
		Level  string
		Pretty bool
	}
	StatsInterval time.Duration
}

// Requirement names a group of settings a command cannot run without.
type Requirement int

const (
	NeedDB   Requirement = iota // db.driver and db.dsn
	NeedAuth                    // auth.secret
)

// Load reads config from environment (BOOKMARKS_ prefix) and optional
// bookmarks.yaml. Settings named by needs must be present.
func Load(needs ...Requirement) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("bookmarks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.token_lifetime", "30m")
	v.SetDefault("scrape.title_timeout", "10s")
	v.SetDefault("scrape.favicon_timeout", "5s")
	v.SetDefault("scrape.user_agent", "BookmarksBot/1.0 (+https://github.com/Krupsinko/Bookmark)")
	v.SetDefault("scrape.max_body_bytes", 5<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("stats.interval", "1m")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Auth.Secret = v.GetString("auth.secret")
	cfg.Auth.Algorithm = strings.ToUpper(v.GetString("auth.algorithm"))
	cfg.Scrape.UserAgent = v.GetString("scrape.user_agent")
	cfg.Scrape.MaxBodyBytes = v.GetInt64("scrape.max_body_bytes")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Pretty = v.GetBool("log.pretty")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"auth.token_lifetime", &cfg.Auth.TokenLifetime},
		{"scrape.title_timeout", &cfg.Scrape.TitleTimeout},
		{"scrape.favicon_timeout", &cfg.Scrape.FaviconTimeout},
		{"stats.interval", &cfg.StatsInterval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envName(d.key), err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("%s must be positive", envName(d.key))
		}
		*d.dst = parsed
	}

	for _, n := range needs {
		switch n {
		case NeedDB:
			if cfg.DB.Driver == "" {
				return nil, fmt.Errorf("BOOKMARKS_DB_DRIVER is required (sqlite3, mysql, postgres)")
			}
			if cfg.DB.DSN == "" {
				return nil, fmt.Errorf("BOOKMARKS_DB_DSN is required")
			}
		case NeedAuth:
			if cfg.Auth.Secret == "" {
				return nil, fmt.Errorf("BOOKMARKS_AUTH_SECRET is required")
			}
		}
	}
	switch cfg.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("BOOKMARKS_AUTH_ALGORITHM must be one of HS256, HS384, HS512, got %q", cfg.Auth.Algorithm)
	}
	if cfg.Scrape.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("BOOKMARKS_SCRAPE_MAX_BODY_BYTES must be positive")
	}

	return cfg, nil
}

func envName(key string) string {
	return "BOOKMARKS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
