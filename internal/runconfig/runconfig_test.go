package runconfig_test

import (
	"encoding/json"
	"os"
	"testing"

	"revoice/internal/experiment"
	"revoice/internal/runconfig"
	"revoice/internal/testsupport"
)

func newExperiment(t *testing.T, params experiment.Params) *experiment.Experiment {
	t.Helper()
	return testsupport.NewExperiment(t, testsupport.NewConfig(t), "Test", params)
}

func TestSynthesizeSubstitutesExperimentValues(t *testing.T) {
	exp := newExperiment(t, experiment.Params{SampleRate: 48000, Version: "v2", BatchSize: 7})
	doc, err := runconfig.Synthesize(exp)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if doc.Data.SamplingRate != 48000 {
		t.Fatalf("sampling rate = %d, want 48000", doc.Data.SamplingRate)
	}
	if doc.Train.BatchSize != 7 {
		t.Fatalf("batch size = %d, want 7", doc.Train.BatchSize)
	}
	if doc.Data.TrainingFiles != exp.FilelistPath() {
		t.Fatalf("training files = %q, want %q", doc.Data.TrainingFiles, exp.FilelistPath())
	}
	// Everything else stays at the schema values.
	if doc.Train.Epochs != 20000 || doc.Train.Seed != 1234 {
		t.Fatalf("schema train values disturbed: %+v", doc.Train)
	}
}

func TestSynthesizeFrameParameters(t *testing.T) {
	cases := []struct {
		rate    int
		filter  int
		hop     int
		win     int
		mels    int
		segment int
	}{
		{32000, 1024, 320, 1024, 80, 12800},
		{40000, 2048, 400, 2048, 125, 12800},
		{48000, 2048, 480, 2048, 128, 17280},
	}
	for _, tc := range cases {
		exp := newExperiment(t, experiment.Params{SampleRate: tc.rate, Version: "v2"})
		doc, err := runconfig.Synthesize(exp)
		if err != nil {
			t.Fatalf("Synthesize(%d): %v", tc.rate, err)
		}
		if doc.Data.FilterLength != tc.filter || doc.Data.HopLength != tc.hop || doc.Data.WinLength != tc.win {
			t.Fatalf("rate %d: frame params %d/%d/%d, want %d/%d/%d",
				tc.rate, doc.Data.FilterLength, doc.Data.HopLength, doc.Data.WinLength, tc.filter, tc.hop, tc.win)
		}
		if doc.Data.NMelChannels != tc.mels {
			t.Fatalf("rate %d: mel channels = %d, want %d", tc.rate, doc.Data.NMelChannels, tc.mels)
		}
		if doc.Train.SegmentSize != tc.segment {
			t.Fatalf("rate %d: segment size = %d, want %d", tc.rate, doc.Train.SegmentSize, tc.segment)
		}
	}
}

func TestSynthesizeUpsampleRatesMatchHopLength(t *testing.T) {
	for _, version := range []string{"v1", "v2"} {
		for _, rate := range []int{32000, 40000, 48000} {
			exp := newExperiment(t, experiment.Params{SampleRate: rate, Version: version})
			doc, err := runconfig.Synthesize(exp)
			if err != nil {
				t.Fatalf("Synthesize(%s, %d): %v", version, rate, err)
			}
			product := 1
			for _, r := range doc.Model.UpsampleRates {
				product *= r
			}
			if product != doc.Data.HopLength {
				t.Fatalf("%s/%d: upsample product %d != hop length %d", version, rate, product, doc.Data.HopLength)
			}
			if len(doc.Model.UpsampleKernelSizes) != len(doc.Model.UpsampleRates) {
				t.Fatalf("%s/%d: kernel count %d != rate count %d",
					version, rate, len(doc.Model.UpsampleKernelSizes), len(doc.Model.UpsampleRates))
			}
		}
	}
}

func TestSynthesizeVersionsDifferAt48k(t *testing.T) {
	v1, err := runconfig.Synthesize(newExperiment(t, experiment.Params{SampleRate: 48000, Version: "v1"}))
	if err != nil {
		t.Fatalf("Synthesize v1: %v", err)
	}
	v2, err := runconfig.Synthesize(newExperiment(t, experiment.Params{SampleRate: 48000, Version: "v2"}))
	if err != nil {
		t.Fatalf("Synthesize v2: %v", err)
	}
	if len(v1.Model.UpsampleRates) == len(v2.Model.UpsampleRates) {
		t.Fatalf("v1 and v2 48k upsample stacks should differ: %v vs %v",
			v1.Model.UpsampleRates, v2.Model.UpsampleRates)
	}
}

func TestWriteInstallsValidJSON(t *testing.T) {
	exp := newExperiment(t, experiment.Params{})
	if err := os.MkdirAll(exp.LogDir(), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}

	path, err := runconfig.Write(exp)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != exp.TrainConfigPath() {
		t.Fatalf("path = %q, want %q", path, exp.TrainConfigPath())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("config is not valid JSON: %v", err)
	}
	for _, key := range []string{"train", "data", "model"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("config missing %q group", key)
		}
	}
}

func TestWriteOverwritesPreviousRevision(t *testing.T) {
	exp := newExperiment(t, experiment.Params{})
	if err := os.MkdirAll(exp.LogDir(), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(exp.TrainConfigPath(), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed stale config: %v", err)
	}

	if _, err := runconfig.Write(exp); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, err := os.ReadFile(exp.TrainConfigPath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(raw) == "stale" {
		t.Fatal("previous revision should be replaced")
	}
}
