// Package config loads server settings: defaults first, then environment
// variables on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
)

const minSecretLength = 16

// Config holds runtime settings for the server.
type Config struct {
	Port      int
	DBPath    string
	TempDir   string
	LogLevel  string
	LogFormat string

	// MediaDir and BaseURL back the on-disk media store used when S3 is not
	// configured.
	MediaDir string
	BaseURL  string

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	S3 media.S3Config

	RedisAddr       string
	RedisPassword   string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	GitHub auth.GitHubConfig

	MaxUploadBytes int64
}

// LoadDefaults populates c with development defaults. Token secrets have
// no default and must come from the environment.
func (c *Config) LoadDefaults() {
	c.Port = 8000
	c.DBPath = "data/watchwonders.db"
	c.TempDir = "./public/temp"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.MediaDir = "./public/media"
	c.AccessTokenExpiry = 15 * time.Minute
	c.RefreshTokenExpiry = 240 * time.Hour
	c.LoginRateLimit = 10
	c.LoginRateWindow = time.Minute
	c.MaxUploadBytes = 512 << 20
}

// Load applies defaults and then the process environment.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	e := envReader{lookup: lookup}
	e.int("PORT", &cfg.Port)
	e.string("DB_PATH", &cfg.DBPath)
	e.string("TEMP_DIR", &cfg.TempDir)
	e.string("LOG_LEVEL", &cfg.LogLevel)
	e.string("LOG_FORMAT", &cfg.LogFormat)
	e.string("MEDIA_DIR", &cfg.MediaDir)
	e.string("BASE_URL", &cfg.BaseURL)

	e.string("ACCESS_TOKEN_SECRET", &cfg.AccessTokenSecret)
	e.duration("ACCESS_TOKEN_EXPIRY", &cfg.AccessTokenExpiry)
	e.string("REFRESH_TOKEN_SECRET", &cfg.RefreshTokenSecret)
	e.duration("REFRESH_TOKEN_EXPIRY", &cfg.RefreshTokenExpiry)
	e.bool("COOKIE_SECURE", &cfg.CookieSecure)
	e.bool("TRUST_PROXY", &cfg.TrustProxy)

	e.string("S3_BUCKET", &cfg.S3.Bucket)
	e.string("S3_REGION", &cfg.S3.Region)
	e.string("S3_ENDPOINT", &cfg.S3.Endpoint)
	e.string("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	e.string("S3_SECRET_KEY", &cfg.S3.SecretKey)
	e.string("S3_PUBLIC_URL", &cfg.S3.PublicURL)
	e.string("S3_PREFIX", &cfg.S3.Prefix)

	e.string("REDIS_ADDR", &cfg.RedisAddr)
	e.string("REDIS_PASSWORD", &cfg.RedisPassword)
	e.int("LOGIN_RATE_LIMIT", &cfg.LoginRateLimit)
	e.duration("LOGIN_RATE_WINDOW", &cfg.LoginRateWindow)

	e.string("GITHUB_CLIENT_ID", &cfg.GitHub.ClientID)
	e.string("GITHUB_CLIENT_SECRET", &cfg.GitHub.ClientSecret)
	e.string("GITHUB_CALLBACK_URL", &cfg.GitHub.CallbackURL)

	e.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = cfg.BaseURL + "/api/v1/users/auth/github/callback"
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch {
	case c.AccessTokenSecret == "" || c.RefreshTokenSecret == "":
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required"))
	case c.AccessTokenSecret == c.RefreshTokenSecret:
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	case len(c.AccessTokenSecret) < minSecretLength || len(c.RefreshTokenSecret) < minSecretLength:
		errs = append(errs, fmt.Errorf("token secrets must be at least %d characters", minSecretLength))
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// TokenConfig returns the signer settings for auth.NewTokenService.
func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		AccessSecret:  c.AccessTokenSecret,
		AccessTTL:     c.AccessTokenExpiry,
		RefreshSecret: c.RefreshTokenSecret,
		RefreshTTL:    c.RefreshTokenExpiry,
	}
}

// envReader overlays environment values and collects parse errors so that
// every bad variable is reported at once.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			return
		}
		*dst = b
	}
}

// duration accepts Go duration strings ("15m", "240h") and, like the
// "1d"/"10d" style of token expiry settings, a whole number of days.
func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if days, found := strings.CutSuffix(v, "d"); found {
		n, err := strconv.Atoi(days)
		if err == nil && n > 0 {
			*dst = time.Duration(n) * 24 * time.Hour
			return
		}
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return
	}
	*dst = d
}
