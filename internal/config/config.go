package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendDisk   = "disk"
	CacheBackendRedis  = "redis"
	CacheBackendBolt   = "bolt"
	CacheBackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":3001"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, enrichment calls an LLM

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotating log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Catalog files
	DataDir        string        // root directory holding default-locale entries and locale subdirectories
	ListingTTL     time.Duration // in-memory listing cache TTL per locale
	ReloadInterval time.Duration // periodic force refresh of every locale
	DedupeInterval time.Duration // 0 disables the periodic deduplicator
	LocalizeQueue  int           // buffered submissions awaiting translation
	KeywordsFile   string        // optional YAML override for classifier keywords

	// Enrichment cache
	EnrichTTL    time.Duration
	CacheBackend string // disk | redis | bolt | memory
	CacheDir     string // disk backend directory
	BoltPath     string // bolt backend file
	CacheL1Size  int    // in-process LRU in front of the backend, 0 disables

	CachePruneInterval time.Duration // redis key index pruning

	// LLM
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
	LLMCharLimit int
	LLMTimeout   time.Duration

	// GitHub
	GitHubAPIURL      string
	GitHubRawURL      string
	GitHubToken       string
	GitHubTimeout     time.Duration
	GitHubCacheTTL    time.Duration
	MaxDocumentBytes  int64
	DocumentUserAgent string

	// Redis (only when CacheBackend == redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// HTTP surface
	AllowedOrigins   []string // CORS origins, "*" allows any
	AllowedHosts     []string // optional, restrict admin endpoints to specific Host headers
	AllowedCIDRS     []string // optional, restrict admin endpoints to specific IPs/CIDRs
	TrustProxy       bool     // true => trust X-Forwarded-For headers
	SubmitBurst      int      // submit rate limit bucket size per IP
	SubmitPerMin     int      // submit refill per IP per minute
	MetricsEnabled   bool
	LLMConfigured    bool // derived: API key present
	GitHubAuthorized bool // derived: token present
}

func Load() *Config {
	// A missing .env is fine, the process environment wins anyway.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      normalizePort(getenv("MCPHUB_LISTEN_PORT", getenv("PORT", ":3001"))),
		ShutdownTimeout: mustDuration("MCPHUB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("MCPHUB_REQUEST_TIMEOUT", 90*time.Second),

		// Logging
		LogLevel:      getenv("MCPHUB_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("MCPHUB_PRETTY_LOG", true),
		LogFile:       getenv("MCPHUB_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("MCPHUB_LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getenvInt("MCPHUB_LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getenvInt("MCPHUB_LOG_MAX_AGE_DAYS", 7),

		// Catalog
		DataDir:        getenv("MCPHUB_DATA_DIR", "./data/split"),
		ListingTTL:     mustDuration("MCPHUB_LISTING_TTL", time.Hour),
		ReloadInterval: mustDuration("MCPHUB_RELOAD_INTERVAL", time.Hour),
		DedupeInterval: mustDuration("MCPHUB_DEDUPE_INTERVAL", 24*time.Hour),
		LocalizeQueue:  getenvInt("MCPHUB_LOCALIZE_QUEUE", 64),
		KeywordsFile:   getenv("MCPHUB_KEYWORDS_FILE", ""),

		// Enrichment cache
		EnrichTTL:    mustDuration("MCPHUB_ENRICH_TTL", time.Hour),
		CacheBackend: strings.ToLower(getenv("MCPHUB_CACHE_BACKEND", CacheBackendDisk)),
		CacheDir:     getenv("MCPHUB_CACHE_DIR", "./data/cached"),
		BoltPath:     getenv("MCPHUB_BOLT_PATH", "./data/enrich.db"),
		CacheL1Size:  getenvInt("MCPHUB_CACHE_L1_SIZE", 1024),

		CachePruneInterval: mustDuration("MCPHUB_CACHE_PRUNE_INTERVAL", 6*time.Hour),

		// LLM
		LLMBaseURL:   normalizeBaseURL(getenv("MCPHUB_LLM_BASE_URL", "https://api.openai.com/v1")),
		LLMAPIKey:    getenv("MCPHUB_LLM_API_KEY", ""),
		LLMModel:     getenv("MCPHUB_LLM_MODEL", "gpt-3.5-turbo"),
		LLMCharLimit: getenvInt("MCPHUB_LLM_CHAR_LIMIT", 100000),
		LLMTimeout:   mustDuration("MCPHUB_LLM_TIMEOUT", 60*time.Second),

		// GitHub
		GitHubAPIURL:      strings.TrimRight(getenv("MCPHUB_GITHUB_API_URL", "https://api.github.com"), "/"),
		GitHubRawURL:      strings.TrimRight(getenv("MCPHUB_GITHUB_RAW_URL", "https://raw.githubusercontent.com"), "/"),
		GitHubToken:       getenv("MCPHUB_GITHUB_TOKEN", ""),
		GitHubTimeout:     mustDuration("MCPHUB_GITHUB_TIMEOUT", 15*time.Second),
		GitHubCacheTTL:    mustDuration("MCPHUB_GITHUB_CACHE_TTL", 10*time.Minute),
		MaxDocumentBytes:  int64(getenvInt("MCPHUB_MAX_DOCUMENT_BYTES", 2<<20)),
		DocumentUserAgent: getenv("MCPHUB_USER_AGENT", "mcphub/1.0 (+https://github.com/MrSnakeDoc/mcphub)"),

		// Redis settings
		RedisUser:           getenv("MCPHUB_REDIS_USERNAME", ""),
		RedisPassword:       getenv("MCPHUB_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MCPHUB_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// HTTP surface
		AllowedOrigins: splitAndTrim(getenv("MCPHUB_ALLOWED_ORIGINS", "*")),
		AllowedHosts:   splitAndTrim(getenv("MCPHUB_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("MCPHUB_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("MCPHUB_TRUST_PROXY", false),
		SubmitBurst:    getenvInt("MCPHUB_SUBMIT_BURST", 5),
		SubmitPerMin:   getenvInt("MCPHUB_SUBMIT_PER_MIN", 2),
		MetricsEnabled: mustBool("MCPHUB_METRICS_ENABLED", true),
	}

	switch cfg.CacheBackend {
	case CacheBackendDisk, CacheBackendBolt, CacheBackendMemory:
	case CacheBackendRedis:
		cfg.RedisAddr = requireEnv("MCPHUB_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid MCPHUB_CACHE_BACKEND %q (want disk, redis, bolt or memory)", cfg.CacheBackend))
	}

	cfg.LLMConfigured = strings.TrimSpace(cfg.LLMAPIKey) != ""
	cfg.GitHubAuthorized = strings.TrimSpace(cfg.GitHubToken) != ""

	if !cfg.LLMConfigured {
		log.Printf("[WARN] MCPHUB_LLM_API_KEY is not set: extraction, translation and LLM classification are disabled")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = redact(cfg.RedisPassword)
		cfgCopy.LLMAPIKey = redact(cfg.LLMAPIKey)
		cfgCopy.GitHubToken = redact(cfg.GitHubToken)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

// mustDuration accepts Go durations ("90s") and bare integers, which are
// read as milliseconds.
func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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

// normalizePort turns "3001" into ":3001".
func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

// normalizeBaseURL trims trailing slashes and adds https:// when the
// scheme is missing.
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		return u
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}
