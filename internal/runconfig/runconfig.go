package runconfig

import (
	"encoding/json"
	"fmt"

	"revoice/internal/experiment"
	"revoice/internal/fileutil"
	"revoice/internal/services"
)

// Synthesize builds the trainer configuration document for the experiment.
// The schema is selected by (version, sample rate); only the sampling rate,
// batch size, and manifest path come from the experiment itself.
func Synthesize(exp *experiment.Experiment) (*Document, error) {
	frames, ok := frameTable[exp.SampleRate]
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "runconfig", "select schema",
			fmt.Sprintf("no schema for sample rate %d", exp.SampleRate), nil)
	}
	byRate, ok := upsampleTable[exp.Version]
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "runconfig", "select schema",
			fmt.Sprintf("no schema for version %q", exp.Version), nil)
	}
	upsample := byRate[exp.SampleRate]

	train := baseTrain()
	train.BatchSize = exp.BatchSize
	train.SegmentSize = frames.segmentSize

	model := baseModel()
	model.UpsampleRates = upsample.rates
	model.UpsampleKernelSizes = upsample.kernels

	return &Document{
		Train: train,
		Data: Data{
			MaxWavValue:   32768.0,
			SamplingRate:  exp.SampleRate,
			FilterLength:  frames.filterLength,
			HopLength:     frames.hopLength,
			WinLength:     frames.winLength,
			NMelChannels:  frames.nMelChannels,
			MelFmin:       0.0,
			MelFmax:       nil,
			TrainingFiles: exp.FilelistPath(),
		},
		Model: model,
	}, nil
}

// Write synthesizes the document and installs it at the experiment's training
// config path, replacing any previous revision atomically.
func Write(exp *experiment.Experiment) (string, error) {
	doc, err := Synthesize(exp)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode training config: %w", err)
	}
	path := exp.TrainConfigPath()
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("install training config: %w", err)
	}
	return path, nil
}
