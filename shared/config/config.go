package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI         AIConfig         `yaml:"ai"`
	Storage    StorageConfig    `yaml:"storage"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type AIConfig struct {
	GeminiAPIKey    string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	AnalysisModel   string `yaml:"analysis_model"`
	ImageModel      string `yaml:"image_model"`
	ReasoningEffort string `yaml:"reasoning_effort"` // none, low, medium, high, xhigh
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	// MaxTranscriptChars is the ceiling above which transcripts are truncated
	// head+tail with a marked gap.
	MaxTranscriptChars int `yaml:"max_transcript_chars"`
}

// CallTimeout returns the per-call ceiling for provider requests.
func (a *AIConfig) CallTimeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type StorageConfig struct {
	PostgresURL  string `yaml:"postgres_url" env:"POSTGRES_URL"`
	SupabaseURL  string `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseKey  string `yaml:"supabase_key" env:"SUPABASE_SERVICE_KEY"`
	MediaBucket  string `yaml:"media_bucket"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type PipelineConfig struct {
	// ImageBatchSize limits concurrent image generation requests per artifact.
	ImageBatchSize int `yaml:"image_batch_size"`
	// DefaultSlideCount is used when the analysis proposes no carousel slides.
	DefaultSlideCount int `yaml:"default_slide_count"`
	// StaleGeneratingMinutes is how long an artifact may sit in 'generating'
	// before the reconciler treats the run as abandoned.
	StaleGeneratingMinutes int `yaml:"stale_generating_minutes"`
}

// StaleThreshold returns the stale-generating cutoff as a duration.
func (p *PipelineConfig) StaleThreshold() time.Duration {
	return time.Duration(p.StaleGeneratingMinutes) * time.Minute
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Storage.PostgresURL == "" {
		c.Storage.PostgresURL = os.Getenv("POSTGRES_URL")
	}
	if c.Storage.SupabaseURL == "" {
		c.Storage.SupabaseURL = os.Getenv("SUPABASE_URL")
	}
	if c.Storage.SupabaseKey == "" {
		c.Storage.SupabaseKey = os.Getenv("SUPABASE_SERVICE_KEY")
	}
}

// ApplyDefaults fills every unset field with its default. Exported so tests
// and embedding callers can build configs without a file on disk.
func (c *Config) ApplyDefaults() {
	if c.AI.AnalysisModel == "" {
		c.AI.AnalysisModel = "gemini-2.5-pro"
	}
	if c.AI.ImageModel == "" {
		c.AI.ImageModel = "gemini-2.5-flash-image-preview"
	}
	if c.AI.ReasoningEffort == "" {
		c.AI.ReasoningEffort = "high"
	}
	if c.AI.MaxOutputTokens == 0 {
		c.AI.MaxOutputTokens = 16384
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 180
	}
	if c.AI.MaxTranscriptChars == 0 {
		c.AI.MaxTranscriptChars = 48000
	}
	if c.Storage.MediaBucket == "" {
		c.Storage.MediaBucket = "generated-media"
	}
	if c.Pipeline.ImageBatchSize == 0 {
		c.Pipeline.ImageBatchSize = 2
	}
	if c.Pipeline.DefaultSlideCount == 0 {
		c.Pipeline.DefaultSlideCount = 5
	}
	if c.Pipeline.StaleGeneratingMinutes == 0 {
		c.Pipeline.StaleGeneratingMinutes = 30
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "*/10 * * * *" // sweep every 10 minutes
	}
}

func (c *Config) validate() error {
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	switch c.AI.ReasoningEffort {
	case "none", "low", "medium", "high", "xhigh":
	default:
		return fmt.Errorf("invalid reasoning effort %q (want none, low, medium, high or xhigh)", c.AI.ReasoningEffort)
	}
	if c.Pipeline.ImageBatchSize < 1 {
		return fmt.Errorf("pipeline.image_batch_size must be at least 1")
	}
	return nil
}
