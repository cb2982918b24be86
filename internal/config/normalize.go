package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTraining()
	c.normalizeIndex()
	c.normalizeInference()
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Workspace, err = expandPath(c.Paths.Workspace); err != nil {
		return fmt.Errorf("paths.workspace: %w", err)
	}
	if c.Paths.DatasetDir, err = expandPath(c.Paths.DatasetDir); err != nil {
		return fmt.Errorf("paths.dataset_dir: %w", err)
	}
	if c.Paths.WeightsDir, err = expandPath(c.Paths.WeightsDir); err != nil {
		return fmt.Errorf("paths.weights_dir: %w", err)
	}
	if c.Paths.PretrainedDir, err = expandPath(c.Paths.PretrainedDir); err != nil {
		return fmt.Errorf("paths.pretrained_dir: %w", err)
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTraining() {
	if c.Training.SampleRate == 0 {
		c.Training.SampleRate = defaultSampleRate
	}
	c.Training.Version = strings.ToLower(strings.TrimSpace(c.Training.Version))
	if c.Training.Version == "" {
		c.Training.Version = defaultVersion
	}
	if c.Training.BatchSize <= 0 {
		c.Training.BatchSize = defaultBatchSize
	}
	if c.Training.TotalEpochs <= 0 {
		c.Training.TotalEpochs = defaultTotalEpochs
	}
	if c.Training.SaveEvery <= 0 {
		c.Training.SaveEvery = defaultSaveEvery
	}
	if c.Training.Workers <= 0 {
		c.Training.Workers = defaultWorkers
	}
	c.Training.F0Method = strings.ToLower(strings.TrimSpace(c.Training.F0Method))
	if c.Training.F0Method == "" {
		c.Training.F0Method = defaultF0Method
	}
	c.Training.PretrainedGenerator = strings.TrimSpace(c.Training.PretrainedGenerator)
	c.Training.PretrainedDiscriminator = strings.TrimSpace(c.Training.PretrainedDiscriminator)
}

func (c *Config) normalizeIndex() {
	if c.Index.KMeansCenters < 0 {
		c.Index.KMeansCenters = 0
	}
	if c.Index.BatchAdd <= 0 {
		c.Index.BatchAdd = defaultBatchAdd
	}
}

func (c *Config) normalizeInference() {
	c.Inference.F0Method = strings.ToLower(strings.TrimSpace(c.Inference.F0Method))
	if c.Inference.F0Method == "" {
		c.Inference.F0Method = defaultInferF0Method
	}
	if c.Inference.RMSMixRate <= 0 {
		c.Inference.RMSMixRate = defaultInferRMSMixRate
	}
	if c.Inference.Protect <= 0 {
		c.Inference.Protect = defaultInferProtect
	}
	if c.Inference.FilterRadius <= 0 {
		c.Inference.FilterRadius = defaultInferFilterRange
	}
}

func (c *Config) normalizeTools() error {
	c.Tools.Python = strings.TrimSpace(c.Tools.Python)
	if c.Tools.Python == "" {
		c.Tools.Python = defaultPython
	}
	c.Tools.ScriptsDir = strings.TrimSpace(c.Tools.ScriptsDir)
	if c.Tools.ScriptsDir != "" {
		expanded, err := expandPath(c.Tools.ScriptsDir)
		if err != nil {
			return fmt.Errorf("tools.scripts_dir: %w", err)
		}
		c.Tools.ScriptsDir = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
