// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Firestore     FirestoreConfig     `mapstructure:"firestore"`
	APIs          APIsConfig          `mapstructure:"apis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Orchestrator  OrchestratorConfig  `mapstructure:"orchestrator"`
	Chat          ChatConfig          `mapstructure:"chat"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	ReadTimeout     int             `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int             `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int             `mapstructure:"shutdown_timeout"` // milliseconds
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"rps"`
	Burst             int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FirestoreConfig locates the trip document collection.
type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Collection      string `mapstructure:"collection"`
}

// APIsConfig holds settings for the upstream model and repair services.
type APIsConfig struct {
	GenAI struct {
		Backend     string  `mapstructure:"backend"` // gemini | http
		BaseURL     string  `mapstructure:"base_url"`
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		Temperature float64 `mapstructure:"temperature"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`

	Repair struct {
		URL     string `mapstructure:"url"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"repair"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend   string `mapstructure:"backend"` // memory | redis
	TTL       int    `mapstructure:"ttl"`     // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type OrchestratorConfig struct {
	MaxConcurrency  int `mapstructure:"max_concurrency"`
	ProviderTimeout int `mapstructure:"provider_timeout"` // milliseconds
}

type ChatConfig struct {
	MaxHistory int `mapstructure:"max_history"`
	Timeout    int `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName string `mapstructure:"service_name"`
}
