// Package config loads memoryforge's layered configuration: hardcoded
// defaults, an optional project YAML file, then environment variable
// overrides — the same three-tier precedence the teacher repo uses for its
// own configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the Embedder backend (internal/embed). Only
// Provider and Model are passed to embed.NewEmbedder; Host and Dimensions
// are loaded but not read by any command.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "ollama" or "static"
	Model      string `yaml:"model"`
	Host       string `yaml:"host"`
	Dimensions int    `yaml:"dimensions"` // 0 = auto-detect
}

// SearchConfig holds search defaults. They are loaded but not read by any
// command: `memoryforge query` and the search_knowledge tool use the
// internal/search defaults.
type SearchConfig struct {
	Limit     int     `yaml:"limit"`
	Threshold float64 `yaml:"threshold"`
}

// RetentionConfig configures default Retention (internal/audit) parameters.
// `memoryforge forget` uses MaxFiles and MaxAgeDays when its flags are
// unset; the forget_knowledge tool takes those two from its own input only.
// Both use ProtectImportance.
type RetentionConfig struct {
	MaxFiles          int `yaml:"max_files"`
	MaxAgeDays        int `yaml:"max_age_days"`
	ProtectImportance int `yaml:"protect_importance"`
}

// AuditConfig records the fixed audit thresholds from spec.md §4.C8. It is
// not read from the project file or the environment, and internal/audit
// uses its own constants, so these values do not change audit results.
type AuditConfig struct {
	ClaudeWarn, ClaudeCrit int
	AgentsWarn, AgentsCrit int
	SkillWarn, SkillCrit   int
	SumWarn, SumCrit       int
}

// LoggingConfig holds logging settings. They are loaded but not read by any
// command: `memoryforge serve` sets up internal/logging with its own fixed
// level and log path.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// Config is the fully-resolved configuration for one project.
type Config struct {
	ProjectRoot string `yaml:"-"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Retention RetentionConfig `yaml:"retention"`
	Audit     AuditConfig     `yaml:"-"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// fileConfig is the YAML-decodable subset of Config (Audit thresholds are
// not currently exposed to the project file; ProjectRoot is runtime-only).
type fileConfig struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Defaults returns the hardcoded base configuration, matching spec.md's
// stated defaults exactly (search limit 5, threshold 0.3, protect
// importance 8, and the audit thresholds of §4.C8).
func Defaults() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "embeddinggemma",
			Host:     "http://localhost:11434",
		},
		Search: SearchConfig{
			Limit:     5,
			Threshold: 0.3,
		},
		Retention: RetentionConfig{
			ProtectImportance: 8,
		},
		Audit: AuditConfig{
			ClaudeWarn: 500, ClaudeCrit: 1000,
			AgentsWarn: 500, AgentsCrit: 1000,
			SkillWarn: 300, SkillCrit: 600,
			SumWarn: 2000, SumCrit: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigRelPath is the project config file location, alongside the
// regenerable store directory but itself a small, git-trackable file.
const ConfigRelPath = ".memory-forge/config.yaml"

// Load resolves configuration for projectRoot: defaults, then
// <projectRoot>/.memory-forge/config.yaml if present, then environment
// variables (MEMORY_FORGE_*).
func Load(projectRoot string) (*Config, error) {
	cfg := Defaults()
	cfg.ProjectRoot = projectRoot

	path := filepath.Join(projectRoot, ConfigRelPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading project config %s: %w", path, err)
		}
	} else {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", path, err)
		}
		applyFileConfig(cfg, &fc)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.Embedding.Provider != "" {
		cfg.Embedding.Provider = fc.Embedding.Provider
	}
	if fc.Embedding.Model != "" {
		cfg.Embedding.Model = fc.Embedding.Model
	}
	if fc.Embedding.Host != "" {
		cfg.Embedding.Host = fc.Embedding.Host
	}
	if fc.Embedding.Dimensions != 0 {
		cfg.Embedding.Dimensions = fc.Embedding.Dimensions
	}
	if fc.Search.Limit != 0 {
		cfg.Search.Limit = fc.Search.Limit
	}
	if fc.Search.Threshold != 0 {
		cfg.Search.Threshold = fc.Search.Threshold
	}
	if fc.Retention.MaxFiles != 0 {
		cfg.Retention.MaxFiles = fc.Retention.MaxFiles
	}
	if fc.Retention.MaxAgeDays != 0 {
		cfg.Retention.MaxAgeDays = fc.Retention.MaxAgeDays
	}
	if fc.Retention.ProtectImportance != 0 {
		cfg.Retention.ProtectImportance = fc.Retention.ProtectImportance
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.FilePath != "" {
		cfg.Logging.FilePath = fc.Logging.FilePath
	}
}

// envPrefix is the fixed prefix for all environment variable overrides.
const envPrefix = "MEMORY_FORGE_"

func applyEnvOverrides(cfg *Config) {
	if v, ok := lookupEnv("EMBEDDER_PROVIDER"); ok {
		cfg.Embedding.Provider = v
	}
	if v, ok := lookupEnv("EMBEDDER_MODEL"); ok {
		cfg.Embedding.Model = v
	}
	if v, ok := lookupEnv("EMBEDDER_HOST"); ok {
		cfg.Embedding.Host = v
	}
	if v, ok := lookupEnvInt("EMBEDDER_DIMENSIONS"); ok {
		cfg.Embedding.Dimensions = v
	}
	if v, ok := lookupEnvInt("SEARCH_LIMIT"); ok {
		cfg.Search.Limit = v
	}
	if v, ok := lookupEnvFloat("SEARCH_THRESHOLD"); ok {
		cfg.Search.Threshold = v
	}
	if v, ok := lookupEnvInt("RETENTION_MAX_FILES"); ok {
		cfg.Retention.MaxFiles = v
	}
	if v, ok := lookupEnvInt("RETENTION_MAX_AGE_DAYS"); ok {
		cfg.Retention.MaxAgeDays = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}

func lookupEnv(suffix string) (string, bool) {
	v := os.Getenv(envPrefix + suffix)
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func lookupEnvInt(suffix string) (int, bool) {
	v, ok := lookupEnv(suffix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupEnvFloat(suffix string) (float64, bool) {
	v, ok := lookupEnv(suffix)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
