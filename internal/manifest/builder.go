package manifest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"revoice/internal/experiment"
	"revoice/internal/fileutil"
	"revoice/internal/logging"
	"revoice/internal/services"
)

const (
	// FieldCount is the fixed number of pipe-separated fields per record.
	FieldCount = 5
	// speakerID is the fixed trailing discriminator value, reserved for the
	// trainer.
	speakerID = "0"
)

// Record holds the artifact paths for one complete sample.
type Record struct {
	Stem        string
	GroundTruth string
	Feature     string
	F0          string
	F0NSF       string
}

func (r Record) line() string {
	return strings.Join([]string{r.GroundTruth, r.Feature, r.F0, r.F0NSF, speakerID}, "|")
}

// Result summarizes a manifest build.
type Result struct {
	Path     string
	Included []Record
	Skipped  []string
}

// Option configures the builder.
type Option func(*Builder)

// WithFS overrides the filesystem used for directory scans.
func WithFS(fsys FS) Option {
	return func(b *Builder) {
		if fsys != nil {
			b.fs = fsys
		}
	}
}

// Builder joins the four artifact directories into a validated manifest.
type Builder struct {
	fs     FS
	logger *slog.Logger
}

// NewBuilder constructs a manifest builder.
func NewBuilder(logger *slog.Logger, opts ...Option) *Builder {
	b := &Builder{
		fs:     osFS{},
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reconciles the experiment's artifact directories and installs the
// manifest at the experiment's filelist path. The previous manifest, if any,
// survives untouched unless the complete new content passes validation.
func (b *Builder) Build(exp *experiment.Experiment) (*Result, error) {
	records, skipped, err := b.collect(exp)
	if err != nil {
		return nil, err
	}

	content := renderRecords(records)
	sanitized := sanitize(content)
	if err := validate(sanitized); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, services.Wrap(
			services.ErrEmptyManifest,
			"manifest",
			"validate",
			fmt.Sprintf("no complete samples under %s", exp.GTWavsDir()),
			nil,
		)
	}

	path := exp.FilelistPath()
	if err := fileutil.WriteFileAtomic(path, []byte(sanitized), 0o644); err != nil {
		return nil, fmt.Errorf("install manifest: %w", err)
	}

	b.logger.Info("manifest installed",
		logging.String("path", path),
		logging.Int("samples", len(records)),
		logging.Int("skipped", len(skipped)),
	)
	return &Result{Path: path, Included: records, Skipped: skipped}, nil
}

func (b *Builder) collect(exp *experiment.Experiment) ([]Record, []string, error) {
	gtDir := exp.GTWavsDir()
	entries, err := b.fs.ReadDir(gtDir)
	if err != nil {
		return nil, nil, services.Wrap(
			services.ErrMissingDirectory,
			"manifest",
			"scan ground truth",
			fmt.Sprintf("cannot read %s", gtDir),
			err,
		)
	}

	featDir := exp.FeatureDir()
	f0Dir := exp.F0Dir()
	f0nsfDir := exp.F0NSFDir()

	var records []Record
	var skipped []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		record := Record{
			Stem:        stem,
			GroundTruth: filepath.Join(gtDir, name),
			Feature:     filepath.Join(featDir, stem+".npy"),
			F0:          filepath.Join(f0Dir, name+".npy"),
			F0NSF:       filepath.Join(f0nsfDir, name+".npy"),
		}

		if missing := b.missingArtifacts(record); len(missing) > 0 {
			// Incomplete samples are the one recovered condition: warn and
			// move on, the run itself continues.
			b.logger.Warn("sample excluded: incomplete artifact set",
				logging.String(logging.FieldStem, stem),
				logging.String("missing", strings.Join(missing, ",")),
			)
			skipped = append(skipped, stem)
			continue
		}
		records = append(records, record)
	}

	// Bytewise ordering keeps rebuilds reproducible regardless of locale or
	// directory enumeration order.
	sort.Slice(records, func(i, j int) bool { return records[i].Stem < records[j].Stem })
	sort.Strings(skipped)
	return records, skipped, nil
}

func (b *Builder) missingArtifacts(record Record) []string {
	var missing []string
	for _, probe := range []struct {
		label string
		path  string
	}{
		{"feature", record.Feature},
		{"f0", record.F0},
		{"f0nsf", record.F0NSF},
	} {
		if _, err := b.fs.Stat(probe.path); err != nil {
			missing = append(missing, probe.label)
		}
	}
	return missing
}

func renderRecords(records []Record) string {
	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(record.line())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// sanitize strips carriage returns and blank lines, normalizing the rendered
// content to the exact wire format the trainer expects.
func sanitize(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

func validate(content string) error {
	if content == "" {
		return nil
	}
	for i, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if fields := strings.Split(line, "|"); len(fields) != FieldCount {
			return services.Wrap(
				services.ErrMalformedManifest,
				"manifest",
				"validate",
				fmt.Sprintf("line %d has %d fields, want %d", i+1, len(fields), FieldCount),
				nil,
			)
		}
	}
	return nil
}
