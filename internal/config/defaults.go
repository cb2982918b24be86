package config

const (
	defaultWorkspace     = "~/.local/share/revoice"
	defaultDatasetDir    = "~/.local/share/revoice/dataset"
	defaultWeightsDir    = "~/.local/share/revoice/weights"
	defaultPretrainedDir = "~/.local/share/revoice/pretrained"
	defaultResultsDir    = "~/.local/share/revoice/results"
	defaultLogDir        = "~/.local/share/revoice/run-logs"

	defaultSampleRate  = 40000
	defaultVersion     = "v2"
	defaultBatchSize   = 8
	defaultTotalEpochs = 200
	defaultSaveEvery   = 10
	defaultWorkers     = 4
	defaultF0Method    = "rmvpe"

	defaultKMeansCenters = 10000
	defaultBatchAdd      = 8192

	defaultInferF0Method    = "rmvpe"
	defaultInferRMSMixRate  = 0.25
	defaultInferProtect     = 0.33
	defaultInferFilterRange = 3

	defaultPython    = "python3"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Workspace:     defaultWorkspace,
			DatasetDir:    defaultDatasetDir,
			WeightsDir:    defaultWeightsDir,
			PretrainedDir: defaultPretrainedDir,
			ResultsDir:    defaultResultsDir,
			LogDir:        defaultLogDir,
		},
		Training: Training{
			SampleRate:  defaultSampleRate,
			Version:     defaultVersion,
			BatchSize:   defaultBatchSize,
			TotalEpochs: defaultTotalEpochs,
			SaveEvery:   defaultSaveEvery,
			Workers:     defaultWorkers,
			F0Method:    defaultF0Method,
		},
		Index: Index{
			KMeansCenters: defaultKMeansCenters,
			BatchAdd:      defaultBatchAdd,
		},
		Inference: Inference{
			F0Method:      defaultInferF0Method,
			RMSMixRate:    defaultInferRMSMixRate,
			Protect:       defaultInferProtect,
			FilterRadius:  defaultInferFilterRange,
			SkipCompleted: true,
		},
		Tools: Tools{
			Python: defaultPython,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
