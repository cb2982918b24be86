package pipeline

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"revoice/internal/experiment"
)

// Stage is one unit of pipeline work.
type Stage interface {
	Name() string
	Run(ctx context.Context, exp *experiment.Experiment) error
}

// Stage names in execution order.
const (
	StagePreprocess = "preprocess"
	StageFeatures   = "features"
	StagePitch      = "pitch"
	StageIndex      = "index"
	StageManifest   = "manifest"
	StageRunConfig  = "runconfig"
	StageTrain      = "train"
)

var titleCaser = cases.Title(language.English)

// Label returns the human-readable form of a stage name for log lines and
// status output.
func Label(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// stageFunc adapts a function to the Stage interface.
type stageFunc struct {
	name string
	run  func(ctx context.Context, exp *experiment.Experiment) error
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Run(ctx context.Context, exp *experiment.Experiment) error {
	return s.run(ctx, exp)
}
