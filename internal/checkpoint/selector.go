package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"revoice/internal/services"
)

// WeightExtension is the trainer's checkpoint file suffix.
const WeightExtension = ".pth"

// Epoch tokens look like e130 inside names such as Formal_e130_s58890.pth.
// The leading boundary keeps digits out of unrelated words.
var epochToken = regexp.MustCompile(`(?:^|[^A-Za-z0-9])e(\d+)`)

type candidate struct {
	name  string
	epoch int
}

// Select returns the path of the checkpoint with the highest embedded epoch
// number among files in dir whose name starts with prefix. Ties are broken by
// filename so selection is deterministic for a fixed input set. It returns
// ErrCheckpointNotFound when no file matches the prefix or no matched name
// carries a parsable epoch token.
func Select(dir, prefix string) (string, error) {
	best, err := scan(dir, prefix)
	if err != nil {
		return "", err
	}
	if best == nil {
		return "", services.Wrap(
			services.ErrCheckpointNotFound,
			"checkpoint",
			"select",
			fmt.Sprintf("no checkpoint matching prefix %q with an e<epoch> token in %s", prefix, dir),
			nil,
		)
	}
	return filepath.Join(dir, best.name), nil
}

// Resolve behaves like Select but falls back to ranking all checkpoints in
// dir when nothing matches the prefix, mirroring the historical batch
// converter's bias-then-fallback behavior.
func Resolve(dir, prefix string) (string, error) {
	path, err := Select(dir, prefix)
	if err == nil || prefix == "" {
		return path, err
	}
	return Select(dir, "")
}

func scan(dir, prefix string) (*candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrMissingDirectory, "checkpoint", "scan", fmt.Sprintf("weights directory %s does not exist", dir), nil)
		}
		return nil, fmt.Errorf("read weights directory: %w", err)
	}

	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, WeightExtension) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		epoch, ok := parseEpoch(name)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{name: name, epoch: epoch})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].epoch != candidates[j].epoch {
			return candidates[i].epoch < candidates[j].epoch
		}
		return candidates[i].name < candidates[j].name
	})
	best := candidates[len(candidates)-1]
	return &best, nil
}

func parseEpoch(name string) (int, bool) {
	match := epochToken.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	epoch, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return epoch, true
}

// Base returns the checkpoint filename without its weight extension, used to
// derive inference output names.
func Base(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
