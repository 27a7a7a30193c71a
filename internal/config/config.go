package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/quill/internal/post"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Content
	ContentDir     string              // root of the blog collection (ex: ./content/blog)
	IconsFile      string              // optional YAML override of the icon links
	ContactEmail   string              // footer email link, omitted when empty
	SchemaVariant  post.SeriesEncoding // series-pair (default) or series-fields
	ShowDrafts     bool                // include drafts in listings
	Strict         bool                // any invalid file rejects the whole reload
	WordsPerMinute int                 // reading time estimate

	// Background jobs
	ReloadInterval time.Duration // periodic rescan of ContentDir (default: 10m)
	Watch          bool          // fsnotify-triggered reloads
	WatchDebounce  time.Duration // coalesce bursts of fs events
	GCInterval     time.Duration // interval to run garbage collection (default: 24h)
	GCThreshold    time.Duration // retired posts older than this lose their view counters

	// Redis (optional, empty RedisAddr = view counters kept in memory only)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// HTTP access
	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // allowed origins for the JSON API, "*" for any
	RateBurst    int      // per-IP burst on /api
	RatePerMin   int      // per-IP sustained rate on /api
}

// RedisEnabled reports whether view counters are persisted.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// Load reads the QUILL_* environment. Every invalid value is reported in
// the returned error, not only the first one.
func Load() (*Config, error) {
	e := &env{}

	cfg := &Config{
		// Server settings
		ListenPort:      e.getenv("QUILL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: e.mustDuration("QUILL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  e.getenv("QUILL_LOG_LEVEL", "info"),
		PrettyLog: e.mustBool("QUILL_PRETTY_LOG", true),

		// Content
		ContentDir:     e.getenv("QUILL_CONTENT_DIR", "./content/blog"),
		IconsFile:      e.getenv("QUILL_ICONS_FILE", ""),
		ContactEmail:   e.getenv("QUILL_CONTACT_EMAIL", ""),
		SchemaVariant:  e.seriesEncoding("QUILL_SCHEMA_VARIANT"),
		ShowDrafts:     e.mustBool("QUILL_SHOW_DRAFTS", false),
		Strict:         e.mustBool("QUILL_STRICT", false),
		WordsPerMinute: e.getenvInt("QUILL_WORDS_PER_MINUTE", 200),

		// Background jobs
		ReloadInterval: e.mustDuration("QUILL_RELOAD_INTERVAL", 10*time.Minute),
		Watch:          e.mustBool("QUILL_WATCH", true),
		WatchDebounce:  e.mustDuration("QUILL_WATCH_DEBOUNCE", 500*time.Millisecond),
		GCInterval:     e.mustDuration("QUILL_GC_INTERVAL", 24*time.Hour),
		GCThreshold:    e.mustDuration("QUILL_GC_THRESHOLD", 30*24*time.Hour),

		// Redis settings
		RedisAddr:             e.getenv("QUILL_REDIS_ADDR", ""),
		RedisUser:             e.getenv("QUILL_REDIS_USERNAME", ""),
		RedisPasswordRequired: e.mustBool("QUILL_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         e.getenv("QUILL_REDIS_PASSWORD", ""),
		RedisDB:               e.getenvInt("QUILL_REDIS_DB", 0),
		RedisDT:               e.mustDuration("QUILL_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               e.mustDuration("QUILL_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               e.mustDuration("QUILL_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          e.mustDuration("QUILL_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      e.mustDuration("QUILL_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         e.getenvInt("QUILL_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   e.mustDuration("QUILL_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    e.mustDuration("QUILL_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    e.getenvInt("QUILL_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(e.getenv("QUILL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: e.parseAllowedCIDRs(e.getenv("QUILL_ALLOWED_CIDRS", "")),
		TrustProxy:   e.mustBool("QUILL_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(e.getenv("QUILL_CORS_ORIGINS", "*")),
		RateBurst:    e.getenvInt("QUILL_RATE_BURST", 30),
		RatePerMin:   e.getenvInt("QUILL_RATE_PER_MIN", 120),
	}

	if cfg.RedisEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		e.fail("QUILL_REDIS_PASSWORD is required when QUILL_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.WordsPerMinute <= 0 {
		e.fail("QUILL_WORDS_PER_MINUTE must be positive, got %d", cfg.WordsPerMinute)
	}
	if cfg.RateBurst <= 0 || cfg.RatePerMin <= 0 {
		e.fail("QUILL_RATE_BURST and QUILL_RATE_PER_MIN must be positive")
	}

	if e.err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", e.err)
	}
	return cfg, nil
}

// env collects every parse error while reading variables.
type env struct {
	err error
}

func (e *env) fail(format string, args ...any) {
	e.err = multierr.Append(e.err, fmt.Errorf(format, args...))
}

// helpers
func (e *env) getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (e *env) getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail("invalid integer value for %s: %q", key, v)
		return def
	}
	return i
}

func (e *env) mustBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail("invalid boolean value for %s: %q", key, v)
		return def
	}
	return b
}

func (e *env) mustDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		e.fail("invalid duration value for %s: %q", key, v)
		return def
	}
	return d
}

func (e *env) seriesEncoding(key string) post.SeriesEncoding {
	enc, err := post.ParseSeriesEncoding(os.Getenv(key))
	if err != nil {
		e.fail("%s: %v", key, err)
	}
	return enc
}

// parseAllowedCIDRs accepts bare addresses and prefixes, the same forms the
// admin guard understands.
func (e *env) parseAllowedCIDRs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	cidrs := make([]string, 0, 4)
	for _, c := range splitAndTrim(allowed) {
		if _, err := netip.ParsePrefix(c); err != nil {
			if _, err := netip.ParseAddr(c); err != nil {
				e.fail("invalid address or prefix in QUILL_ALLOWED_CIDRS: %q", c)
				continue
			}
		}
		cidrs = append(cidrs, c)
	}
	return cidrs
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
