package preflight

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"revoice/internal/config"
	"revoice/internal/deps"
	"revoice/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config. The slice is
// what the status command renders; nothing here aborts.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if _, err := AcceleratorEnv(); err != nil {
		results = append(results, Result{Name: "Platform", Detail: err.Error()})
	} else {
		results = append(results, Result{Name: "Platform", Passed: true, Detail: runtime.GOOS})
	}

	results = append(results, CheckDirectoryAccess("Workspace", cfg.Paths.Workspace))
	results = append(results, CheckDirectoryAccess("Dataset directory", cfg.Paths.DatasetDir))
	if cfg.Paths.PretrainedDir != "" {
		results = append(results, CheckDirectoryAccess("Pretrained directory", cfg.Paths.PretrainedDir))
	}
	results = append(results, CheckDirectoryAccess("Weights directory", cfg.Paths.WeightsDir))

	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable,
// writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatasetDir enforces the dataset directory precondition before a
// training run. Its absence is the canonical missing-input diagnostic.
func CheckDatasetDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrMissingDirectory, "preflight", "dataset",
			fmt.Sprintf("missing input directory %s", path), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrMissingDirectory, "preflight", "dataset",
			fmt.Sprintf("%s is not a directory", path), nil)
	}
	return nil
}

// CheckSystemDeps evaluates the external binaries the pipeline shells out
// to. Both the train path and the status command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Python",
			Command:     cfg.Tools.Python,
			Description: "Required for every collaborator script",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Used by the preprocessor for resampling",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

// Gate combines the fatal preflight checks run before a training or
// inference session: platform support, interpreter availability, and the
// dataset precondition when requireDataset is set.
func Gate(cfg *config.Config, requireDataset bool) (Accelerator, error) {
	accel, err := AcceleratorEnv()
	if err != nil {
		return Accelerator{}, err
	}
	statuses := CheckSystemDeps(cfg)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return Accelerator{}, services.Wrap(services.ErrMissingTool, "preflight", "dependencies",
			fmt.Sprintf("missing required tools: %v", missing), nil)
	}
	if requireDataset {
		if err := CheckDatasetDir(cfg.Paths.DatasetDir); err != nil {
			return Accelerator{}, err
		}
	}
	return accel, nil
}
