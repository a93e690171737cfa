package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// APIKeyEnv is the environment variable holding the LLM API key. The key
// is never read from the config file.
const APIKeyEnv = "OMIKUJI_API_KEY"

// Config holds application configuration.
type Config struct {
	// CacheExpireDays is the corpus retention window in days. Entries whose
	// updated date is older than this are swept before every corpus read or
	// write. Set to -1 to retain entries indefinitely (the sweep is
	// disabled for any non-positive value).
	CacheExpireDays int `json:"cache_expire_days"`

	// Timezone is the IANA name of the reference timezone used for every
	// calendar-day decision (daily slot validity, corpus expiry).
	Timezone string `json:"timezone,omitempty"`

	// SendByChat makes the draw tool return the raw fortune record instead
	// of the formatted sign text, so the host model can re-render it.
	SendByChat bool `json:"send_by_chat,omitempty"`

	// MergeLockTimeoutMS bounds the wait for a corpus key lock. A merge
	// that cannot acquire its lock in time fails with LOCK_TIMEOUT.
	MergeLockTimeoutMS int `json:"merge_lock_timeout_ms,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LLMBaseURL is the OpenAI-compatible endpoint for fortune generation.
	LLMBaseURL string `json:"llm_base_url,omitempty"`

	// LLMModel is the chat model used for fortune generation.
	LLMModel string `json:"llm_model,omitempty"`

	// LLMTimeoutSeconds bounds a single generation call.
	LLMTimeoutSeconds int `json:"llm_timeout_seconds,omitempty"`

	// Persona is prepended to the generation system prompt so the sign
	// text matches the hosting bot's character.
	Persona string `json:"persona,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CacheExpireDays:    7,
		Timezone:           "Asia/Shanghai",
		MergeLockTimeoutMS: 5000,
		LLMBaseURL:         "https://api.openai.com/v1",
		LLMModel:           "gpt-4o-mini",
		LLMTimeoutSeconds:  60,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.omikuji.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated. CacheExpireDays uses -1 (any negative) as an explicit
// "keep forever" override, so only 0 means unset.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.CacheExpireDays = overlay.CacheExpireDays
	if result.CacheExpireDays == 0 {
		result.CacheExpireDays = base.CacheExpireDays
	}

	result.Timezone = overlay.Timezone
	if result.Timezone == "" {
		result.Timezone = base.Timezone
	}

	result.MergeLockTimeoutMS = overlay.MergeLockTimeoutMS
	if result.MergeLockTimeoutMS == 0 {
		result.MergeLockTimeoutMS = base.MergeLockTimeoutMS
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.LLMBaseURL = overlay.LLMBaseURL
	if result.LLMBaseURL == "" {
		result.LLMBaseURL = base.LLMBaseURL
	}

	result.LLMModel = overlay.LLMModel
	if result.LLMModel == "" {
		result.LLMModel = base.LLMModel
	}

	result.LLMTimeoutSeconds = overlay.LLMTimeoutSeconds
	if result.LLMTimeoutSeconds == 0 {
		result.LLMTimeoutSeconds = base.LLMTimeoutSeconds
	}

	result.Persona = overlay.Persona
	if result.Persona == "" {
		result.Persona = base.Persona
	}

	result.SendByChat = base.SendByChat || overlay.SendByChat

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Location resolves the configured reference timezone. An unknown or empty
// name falls back to UTC so day-boundary decisions stay deterministic.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LockTimeout returns the merge lock wait as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.MergeLockTimeoutMS) * time.Millisecond
}

// LLMTimeout returns the generation call bound as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// APIKey reads the LLM API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(APIKeyEnv)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
