package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nuh1233/DataPipeline/pkg/table"
)

// ErrDatasetNotFound is returned by RunOne for a name absent from the
// configuration.
var ErrDatasetNotFound = errors.New("dataset not found")

// RunResult is one dataset's batch outcome: the processed table, or the
// error that aborted its run.
type RunResult struct {
	Table *table.Table
	Err   error
}

// Failed reports whether the dataset's run was aborted.
func (r *RunResult) Failed() bool { return r.Err != nil }

// RunAll processes every dataset in the configuration, one entry per
// dataset regardless of outcome. A failure in one dataset is recorded and
// logged but does not abort the rest. A missing or malformed configuration
// source yields an empty result set and the config error.
func RunAll(ctx context.Context, log *slog.Logger, configPath string) (map[string]*RunResult, error) {
	configs, err := LoadConfigs(configPath)
	if err != nil {
		log.Error("failed to load dataset configs", "path", configPath, "error", err)
		return map[string]*RunResult{}, err
	}

	log.Info("processing datasets", "count", len(configs))
	results := make(map[string]*RunResult, len(configs))
	for _, name := range SortedNames(configs) {
		log.Info("processing dataset", "dataset", name)
		t, err := Run(ctx, log.With("dataset", name), configs[name])
		if err != nil {
			log.Error("dataset failed", "dataset", name, "error", err)
			results[name] = &RunResult{Err: err}
			continue
		}
		log.Info("dataset completed", "dataset", name)
		results[name] = &RunResult{Table: t}
	}
	log.Info("batch processing complete", "datasets", len(results))
	return results, nil
}

// RunOne processes a single dataset by name.
func RunOne(ctx context.Context, log *slog.Logger, configPath, name string) (*table.Table, error) {
	configs, err := LoadConfigs(configPath)
	if err != nil {
		return nil, err
	}
	cfg, ok := configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available datasets: %s)",
			ErrDatasetNotFound, name, strings.Join(SortedNames(configs), ", "))
	}
	log.Info("processing dataset", "dataset", name)
	return Run(ctx, log.With("dataset", name), cfg)
}
