package server

import (
	"encoding/json"
	"errors"
	"os"
)

// Config holds the service configuration, loaded from a JSON file.
type Config struct {
	ServerAddr     string      `json:"server_addr,omitempty"`
	AllowedOrigins []string    `json:"allowed_origins,omitempty"`
	DBPath         string      `json:"db_path,omitempty"`
	LLM            *LLMConfig  `json:"llm,omitempty"`
	Quota          QuotaConfig `json:"quota,omitempty"`
}

// LLMConfig selects the model backend and the per-tier model names.
type LLMConfig struct {
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	PowerModel string `json:"power_model,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
}

// QuotaConfig sets the per-tier daily limits and the per-user cooldown
// between requests.
type QuotaConfig struct {
	FreeDailyLimit    int `json:"free_daily_limit,omitempty"`
	PremiumDailyLimit int `json:"premium_daily_limit,omitempty"`
	CooldownMS        int `json:"cooldown_ms,omitempty"`
}

const (
	defaultFreeDailyLimit    = 5
	defaultPremiumDailyLimit = 100
	defaultCooldownMS        = 1500
	defaultDBPath            = "assistant.db"
)

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.LLM == nil || cfg.LLM.Model == "" {
		return Config{}, errors.New("config must include llm.model")
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.Quota.FreeDailyLimit == 0 {
		c.Quota.FreeDailyLimit = defaultFreeDailyLimit
	}
	if c.Quota.PremiumDailyLimit == 0 {
		c.Quota.PremiumDailyLimit = defaultPremiumDailyLimit
	}
	if c.Quota.CooldownMS == 0 {
		c.Quota.CooldownMS = defaultCooldownMS
	}
}

// DailyLimit returns the tier's request allowance.
func (c Config) DailyLimit(premium bool) int {
	if premium {
		return c.Quota.PremiumDailyLimit
	}
	return c.Quota.FreeDailyLimit
}
