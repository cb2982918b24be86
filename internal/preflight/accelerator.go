package preflight

import (
	"fmt"
	"runtime"

	"revoice/internal/services"
)

// Accelerator describes the compute environment for collaborator processes.
type Accelerator struct {
	// Env holds extra environment variables for every collaborator.
	Env []string
	// Device is the compute device hint passed to the feature extractor.
	Device string
}

// AcceleratorEnv resolves the platform's accelerator conditioning. Platforms
// without a known PyTorch story are rejected before any stage runs.
func AcceleratorEnv() (Accelerator, error) {
	return acceleratorFor(runtime.GOOS)
}

func acceleratorFor(goos string) (Accelerator, error) {
	switch goos {
	case "darwin":
		// MPS coverage is incomplete; let unsupported ops fall back to CPU
		// instead of crashing mid-stage.
		return Accelerator{
			Env:    []string{"PYTORCH_ENABLE_MPS_FALLBACK=1"},
			Device: "mps",
		}, nil
	case "linux":
		return Accelerator{Device: "cpu"}, nil
	default:
		return Accelerator{}, services.Wrap(
			services.ErrUnsupportedPlatform,
			"preflight",
			"accelerator",
			fmt.Sprintf("no accelerator conditioning for %s", goos),
			nil,
		)
	}
}
