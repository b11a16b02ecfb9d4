package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the hemoconnect pipeline configuration.
type Config struct {
	HTTP       HTTPConfig                 `yaml:"http"`
	Database   DatabaseConfig             `yaml:"database"`
	Auth       AuthConfig                 `yaml:"auth"`
	Inference  InferenceConfig            `yaml:"inference"`
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`
	Moderation ModerationConfig           `yaml:"moderation"`
	Search     SearchConfig               `yaml:"search"`
	Matching   MatchingConfig             `yaml:"matching"`
	Summary    SummaryConfig              `yaml:"summary"`
	Tagging    TaggingConfig              `yaml:"tagging"`
	Logging    LoggingConfig              `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// InferenceConfig holds external inference service settings. When the
// embedding provider or HF token is unconfigured the corresponding
// operations degrade to nil results instead of failing.
type InferenceConfig struct {
	Embedding  EmbeddingProviderConfig `yaml:"embedding"`
	HF         HFConfig                `yaml:"hf"`
	MaxRetries int                     `yaml:"max_retries"`
}

// EmbeddingProviderConfig holds the OpenAI-compatible embedding endpoint.
type EmbeddingProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// HFConfig holds HuggingFace inference API settings for the text models.
type HFConfig struct {
	Token               string `yaml:"token"`
	BaseURL             string `yaml:"base_url"`
	ToxicityModel       string `yaml:"toxicity_model"`
	ClassificationModel string `yaml:"classification_model"`
	SummarizationModel  string `yaml:"summarization_model"`
}

// RateLimitConfig holds one action class's token-bucket parameters.
type RateLimitConfig struct {
	WindowMs    int `yaml:"window_ms"`
	MaxRequests int `yaml:"max_requests"`
}

// ModerationConfig holds the toxicity gate settings.
type ModerationConfig struct {
	ToxicityThreshold float64 `yaml:"toxicity_threshold"`
}

// SearchConfig holds semantic search settings.
type SearchConfig struct {
	MinSimilarity float64 `yaml:"min_similarity"`
	MaxResults    int     `yaml:"max_results"`
}

// MatchingConfig holds peer-matching settings.
type MatchingConfig struct {
	CandidatePool int `yaml:"candidate_pool"`
	TopN          int `yaml:"top_n"`
}

// SummaryConfig holds thread summarization policy settings.
type SummaryConfig struct {
	MinComments   int `yaml:"min_comments"`
	StaleAfterSec int `yaml:"stale_after_sec"`
}

// TaggingConfig holds auto-tagging settings.
type TaggingConfig struct {
	Threshold float64 `yaml:"threshold"`
	MaxLabels int     `yaml:"max_labels"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// The moderation gate may wait out inference retries (up to ~7s);
		// anything shorter would fail the gate closed instead of open.
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Inference.MaxRetries <= 0 {
		c.Inference.MaxRetries = 3
	}
	if c.Inference.HF.BaseURL == "" {
		c.Inference.HF.BaseURL = "https://api-inference.huggingface.co"
	}
	if c.Inference.HF.ToxicityModel == "" {
		c.Inference.HF.ToxicityModel = "unitary/toxic-bert"
	}
	if c.Inference.HF.ClassificationModel == "" {
		c.Inference.HF.ClassificationModel = "facebook/bart-large-mnli"
	}
	if c.Inference.HF.SummarizationModel == "" {
		c.Inference.HF.SummarizationModel = "facebook/bart-large-cnn"
	}
	if c.RateLimits == nil {
		c.RateLimits = map[string]RateLimitConfig{}
	}
	defaultLimits := map[string]RateLimitConfig{
		"create-post":    {WindowMs: 60_000, MaxRequests: 5},
		"create-comment": {WindowMs: 60_000, MaxRequests: 15},
		"send-message":   {WindowMs: 60_000, MaxRequests: 30},
		"report-content": {WindowMs: 300_000, MaxRequests: 5},
		"upload":         {WindowMs: 60_000, MaxRequests: 3},
	}
	for class, rl := range defaultLimits {
		if _, ok := c.RateLimits[class]; !ok {
			c.RateLimits[class] = rl
		}
	}
	if c.Moderation.ToxicityThreshold <= 0 {
		c.Moderation.ToxicityThreshold = 0.7
	}
	if c.Search.MinSimilarity <= 0 {
		c.Search.MinSimilarity = 0.3
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 20
	}
	if c.Matching.CandidatePool <= 0 {
		c.Matching.CandidatePool = 10
	}
	if c.Matching.TopN <= 0 {
		c.Matching.TopN = 3
	}
	if c.Summary.MinComments <= 0 {
		c.Summary.MinComments = 3
	}
	if c.Summary.StaleAfterSec <= 0 {
		c.Summary.StaleAfterSec = 3600
	}
	if c.Tagging.Threshold <= 0 {
		c.Tagging.Threshold = 0.4
	}
	if c.Tagging.MaxLabels <= 0 {
		c.Tagging.MaxLabels = 3
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	for class, rl := range c.RateLimits {
		if rl.WindowMs <= 0 {
			return fmt.Errorf("rate_limits.%s.window_ms must be positive, got %d", class, rl.WindowMs)
		}
		if rl.MaxRequests <= 0 {
			return fmt.Errorf("rate_limits.%s.max_requests must be positive, got %d", class, rl.MaxRequests)
		}
	}
	if c.Moderation.ToxicityThreshold > 1 {
		return fmt.Errorf("moderation.toxicity_threshold must be in (0,1], got %g", c.Moderation.ToxicityThreshold)
	}
	if c.Search.MinSimilarity > 1 {
		return fmt.Errorf("search.min_similarity must be in (0,1], got %g", c.Search.MinSimilarity)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
