package config

import (
	"errors"
	"fmt"
	"strings"
)

var supportedSampleRates = map[int]struct{}{
	32000: {},
	40000: {},
	48000: {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.workspace":   c.Paths.Workspace,
		"paths.dataset_dir": c.Paths.DatasetDir,
		"paths.weights_dir": c.Paths.WeightsDir,
		"paths.results_dir": c.Paths.ResultsDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateTraining() error {
	if _, ok := supportedSampleRates[c.Training.SampleRate]; !ok {
		return fmt.Errorf("training.sample_rate must be one of 32000, 40000, 48000 (got %d)", c.Training.SampleRate)
	}
	switch c.Training.Version {
	case "v1", "v2":
	default:
		return fmt.Errorf("training.version must be v1 or v2 (got %q)", c.Training.Version)
	}
	if c.Training.SaveEvery > c.Training.TotalEpochs {
		return errors.New("training.save_every must not exceed training.total_epochs")
	}
	return nil
}

func (c *Config) validateInference() error {
	if c.Inference.RMSMixRate < 0 || c.Inference.RMSMixRate > 1 {
		return errors.New("inference.rms_mix_rate must be between 0 and 1")
	}
	if c.Inference.Protect < 0 || c.Inference.Protect > 0.5 {
		return errors.New("inference.protect must be between 0 and 0.5")
	}
	if c.Inference.FilterRadius < 0 {
		return errors.New("inference.filter_radius must be >= 0")
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.Python) == "" {
		return errors.New("tools.python must be set")
	}
	return nil
}
