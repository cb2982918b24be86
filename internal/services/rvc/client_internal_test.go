package rvc

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"revoice/internal/experiment"
	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/testsupport"
)

// stubCommand swaps commandContext for a recorder that runs a trivial shell
// command instead of the interpreter.
func stubCommand(t *testing.T, exitCode int, calls *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		if exitCode == 0 {
			return exec.CommandContext(ctx, "sh", "-c", "echo collaborator line")
		}
		return exec.CommandContext(ctx, "sh", "-c", "echo boom; exit "+strconv.Itoa(exitCode))
	}
	t.Cleanup(func() { commandContext = original })
}

func newExperiment(t *testing.T) *experiment.Experiment {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.NewExperiment(t, cfg, "Test",
		experiment.Params{SampleRate: 40000, Version: "v2", BatchSize: 8})
}

func TestPreprocessArguments(t *testing.T) {
	var calls [][]string
	stubCommand(t, 0, &calls)
	exp := newExperiment(t)

	cli := NewCLI(logging.NewNop(), WithPython("python3.11"), WithScriptsDir("/opt/rvc"))
	if err := cli.Preprocess(context.Background(), exp); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	got := calls[0]
	if got[0] != "python3.11" || got[1] != filepath.Join("/opt/rvc", preprocessScript) {
		t.Fatalf("unexpected interpreter invocation: %v", got)
	}
	if got[2] != exp.DatasetDir || got[3] != "40000" {
		t.Fatalf("unexpected dataset arguments: %v", got)
	}
	if got[len(got)-1] != "False" || got[len(got)-2] != exp.LogDir() {
		t.Fatalf("unexpected invocation suffix: %v", got)
	}
}

func TestExtractFeaturesUsesDeviceAndVersion(t *testing.T) {
	var calls [][]string
	stubCommand(t, 0, &calls)
	exp := newExperiment(t)

	cli := NewCLI(logging.NewNop(), WithDevice("mps"))
	if err := cli.ExtractFeatures(context.Background(), exp); err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	got := strings.Join(calls[0], " ")
	for _, fragment := range []string{featureScript, " mps ", exp.LogDir(), " v2"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("invocation %q missing %q", got, fragment)
		}
	}
}

func TestTrainIndexArguments(t *testing.T) {
	var calls [][]string
	stubCommand(t, 0, &calls)
	exp := newExperiment(t)

	cli := NewCLI(logging.NewNop())
	if err := cli.TrainIndex(context.Background(), exp); err != nil {
		t.Fatalf("TrainIndex: %v", err)
	}
	got := strings.Join(calls[0], " ")
	for _, fragment := range []string{
		"--exp Test",
		"--feat-dir " + exp.FeatureDir(),
		"--feat-dim 768",
		"--out-dir " + exp.LogDir(),
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("invocation %q missing %q", got, fragment)
		}
	}
}

func TestTrainUsesRateTag(t *testing.T) {
	var calls [][]string
	stubCommand(t, 0, &calls)
	exp := newExperiment(t)

	cli := NewCLI(logging.NewNop())
	if err := cli.Train(context.Background(), exp); err != nil {
		t.Fatalf("Train: %v", err)
	}
	got := strings.Join(calls[0], " ")
	for _, fragment := range []string{"-sr 40k", "-bs 8", "-v v2", "-e Test"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("invocation %q missing %q", got, fragment)
		}
	}
}

func TestConvertArguments(t *testing.T) {
	var calls [][]string
	stubCommand(t, 0, &calls)

	cli := NewCLI(logging.NewNop())
	err := cli.Convert(context.Background(), ConvertRequest{
		CheckpointPath: "/w/Test_e12.pth",
		InputPath:      "/in/a.wav",
		OutputPath:     "/out/a_Test_e12_converted.wav",
		F0Method:       "rmvpe",
		RMSMixRate:     0.25,
		Protect:        0.33,
		FilterRadius:   3,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got := strings.Join(calls[0], " ")
	for _, fragment := range []string{
		"--model_name /w/Test_e12.pth",
		"--input_path /in/a.wav",
		"--opt_path /out/a_Test_e12_converted.wav",
		"--f0method rmvpe",
		"--rms_mix_rate 0.25",
		"--protect 0.33",
		"--filter_radius 3",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("invocation %q missing %q", got, fragment)
		}
	}
}

func TestNonzeroExitWrapsExternalStage(t *testing.T) {
	var calls [][]string
	stubCommand(t, 3, &calls)
	exp := newExperiment(t)

	err := NewCLI(logging.NewNop()).ExtractPitch(context.Background(), exp)
	if !errors.Is(err, services.ErrExternalStage) {
		t.Fatalf("expected ErrExternalStage, got %v", err)
	}
	if !strings.Contains(err.Error(), "pitch") {
		t.Fatalf("error should carry the stage name, got %v", err)
	}
}

func TestRateTag(t *testing.T) {
	for rate, want := range map[int]string{32000: "32k", 40000: "40k", 48000: "48k"} {
		if got := rateTag(rate); got != want {
			t.Fatalf("rateTag(%d) = %q, want %q", rate, got, want)
		}
	}
}
