package configs

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Limits    LimitsConfig    `mapstructure:"limits" validate:"required"`
	Writer    WriterConfig    `mapstructure:"writer" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKeys               []APIKeyConfig `mapstructure:"api_keys" validate:"required,min=1,dive"`
	WidgetTokenSecret     string         `mapstructure:"widget_token_secret" validate:"required,min=32"`
	WidgetTokenTTLMinutes int            `mapstructure:"widget_token_ttl_minutes" validate:"required,min=1"`
	CacheMaxEntries       int            `mapstructure:"cache_max_entries" validate:"required,min=1"`
	CacheTTLSeconds       int            `mapstructure:"cache_ttl_seconds" validate:"required,min=1"`
}

// APIKeyConfig binds one long-lived tenant credential to its tenant and project.
type APIKeyConfig struct {
	Key       string `mapstructure:"key" validate:"required"`
	TenantID  string `mapstructure:"tenant_id" validate:"required"`
	ProjectID string `mapstructure:"project_id" validate:"required"`
}

// RateLimitConfig holds the two token-bucket pool configurations.
type RateLimitConfig struct {
	PerIP                RateLimitPoolConfig `mapstructure:"per_ip" validate:"required"`
	PerCredential        RateLimitPoolConfig `mapstructure:"per_credential" validate:"required"`
	SweepIntervalSeconds int                 `mapstructure:"sweep_interval_seconds" validate:"required,min=1"`
	IdleEvictionSeconds  int                 `mapstructure:"idle_eviction_seconds" validate:"required,min=1"`
}

// RateLimitPoolConfig configures one token-bucket pool.
type RateLimitPoolConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"required,gt=0"`
	Burst         float64 `mapstructure:"burst" validate:"required,gt=0"`
}

// LimitsConfig holds request and batch size ceilings.
type LimitsConfig struct {
	MaxBodyBytes   int `mapstructure:"max_body_bytes" validate:"required,min=1"`
	MaxBatchEvents int `mapstructure:"max_batch_events" validate:"required,min=1"`
}

// WriterConfig holds batch writer tuning.
type WriterConfig struct {
	FlushSize       int `mapstructure:"flush_size" validate:"required,min=1"`
	FlushIntervalMs int `mapstructure:"flush_interval_ms" validate:"required,min=1"`
	BufferCap       int `mapstructure:"buffer_cap" validate:"required,min=1"`
}

// StorageConfig holds analytics storage configuration.
type StorageConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}
