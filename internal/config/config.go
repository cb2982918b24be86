package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// Workspace is the root holding the logs/ experiment tree.
	Workspace     string `toml:"workspace"`
	DatasetDir    string `toml:"dataset_dir"`
	WeightsDir    string `toml:"weights_dir"`
	PretrainedDir string `toml:"pretrained_dir"`
	ResultsDir    string `toml:"results_dir"`
	LogDir        string `toml:"log_dir"`
}

// Training contains defaults for training runs.
type Training struct {
	SampleRate              int    `toml:"sample_rate"`
	Version                 string `toml:"version"`
	BatchSize               int    `toml:"batch_size"`
	TotalEpochs             int    `toml:"total_epochs"`
	SaveEvery               int    `toml:"save_every"`
	Workers                 int    `toml:"workers"`
	F0Method                string `toml:"f0_method"`
	PretrainedGenerator     string `toml:"pretrained_generator"`
	PretrainedDiscriminator string `toml:"pretrained_discriminator"`
}

// Index contains configuration for the optional similarity-index stage.
type Index struct {
	Enabled       bool `toml:"enabled"`
	KMeansCenters int  `toml:"kmeans_centers"`
	BatchAdd      int  `toml:"batch_add"`
}

// Inference contains conversion hyperparameters and batch behavior.
type Inference struct {
	F0Method      string  `toml:"f0_method"`
	RMSMixRate    float64 `toml:"rms_mix_rate"`
	Protect       float64 `toml:"protect"`
	FilterRadius  int     `toml:"filter_radius"`
	SkipCompleted bool    `toml:"skip_completed"`
}

// Tools points at the external collaborator scripts.
type Tools struct {
	Python     string `toml:"python"`
	ScriptsDir string `toml:"scripts_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for revoice.
//
// Configuration sections by subsystem:
//   - Paths: workspace, dataset, weights, pretrained, and results directories
//   - Training: run defaults (sample rate, model version, batch/epoch budget)
//   - Index: optional similarity-index training
//   - Inference: conversion hyperparameters and skip-ledger behavior
//   - Tools: python interpreter and collaborator script locations
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Training  Training  `toml:"training"`
	Index     Index     `toml:"index"`
	Inference Inference `toml:"inference"`
	Tools     Tools     `toml:"tools"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/revoice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("revoice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into. The
// dataset directory is deliberately excluded: its absence is a fatal
// precondition surfaced by preflight, not something to paper over.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.Workspace, c.LogsRoot(), c.Paths.WeightsDir, c.Paths.ResultsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogsRoot returns the directory holding per-experiment trees.
func (c *Config) LogsRoot() string {
	return filepath.Join(c.Paths.Workspace, "logs")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
