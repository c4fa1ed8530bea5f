// Package pipeline orchestrates a dataset's lifecycle: load, filter, sort,
// cluster, and save, driven by a flat per-dataset option set. The batch
// runner executes a named collection of such runs with per-dataset failure
// isolation.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nuh1233/DataPipeline/pkg/codec"
	"github.com/nuh1233/DataPipeline/pkg/format"
	"github.com/nuh1233/DataPipeline/pkg/table"
)

// Run executes one dataset pipeline in fixed order: load, filter,
// keep-only, custom sort, clusters, sub-clusters, stats, save. Steps whose
// required options are absent are skipped. Returns the processed table
// (with its built indices) for programmatic reuse.
func Run(ctx context.Context, log *slog.Logger, cfg DatasetConfig) (*table.Table, error) {
	t, err := codec.Load(ctx, log, cfg.InputFile, "")
	if err != nil {
		return nil, err
	}

	if cfg.FilterColumn != "" && len(cfg.FilterValues) > 0 {
		removed, err := t.FilterByColumn(cfg.FilterColumn, cfg.FilterValues)
		if err != nil {
			return nil, err
		}
		log.Info("filtered rows",
			"column", cfg.FilterColumn, "dropped_values", cfg.FilterValues,
			"removed", removed, "remaining", t.NumRows())
	}

	if cfg.KeepColumn != "" && len(cfg.KeepValues) > 0 {
		removed, err := t.KeepOnlyValues(cfg.KeepColumn, cfg.KeepValues)
		if err != nil {
			return nil, err
		}
		log.Info("kept matching rows",
			"column", cfg.KeepColumn, "kept_values", cfg.KeepValues,
			"removed", removed, "remaining", t.NumRows())
	}

	if cfg.PrimaryColumn != "" && len(cfg.SortOrder) > 0 {
		if err := t.SortByCustomOrder(cfg.PrimaryColumn, cfg.SortOrder); err != nil {
			return nil, err
		}
		log.Info("sorted by custom order", "column", cfg.PrimaryColumn)
	}

	var clusters *table.ClusterIndex
	if cfg.PrimaryColumn != "" {
		clusters, err = t.CreateClusters(cfg.PrimaryColumn)
		if err != nil {
			return nil, err
		}
		log.Info("created clusters", "column", cfg.PrimaryColumn, "count", clusters.Len())

		for _, sub := range cfg.SubColumns {
			idx, err := t.CreateSubClusters(cfg.PrimaryColumn, sub)
			if err != nil {
				return nil, err
			}
			for _, key := range clusters.Keys() {
				if nested, ok := idx.Group(key); ok {
					log.Debug("created sub-clusters",
						"primary_value", key.String(), "column", sub, "count", nested.Len())
				}
			}
			log.Info("created sub-clusters", "primary_column", cfg.PrimaryColumn, "column", sub)
		}
	}

	if cfg.ShowStatsEnabled() && clusters != nil {
		if err := logStats(log, t, cfg, clusters); err != nil {
			return nil, err
		}
	}

	var outFormat format.Format
	if cfg.OutputFormat != "" {
		outFormat, err = format.Parse(cfg.OutputFormat)
		if err != nil {
			return nil, err
		}
	}
	opts := codec.WriteOptions{
		Compression: cfg.Compression,
		// "jsonl" parses to the json format; keep the line orientation the
		// alias asked for even when the output path has another extension.
		JSONLines: strings.EqualFold(cfg.OutputFormat, "jsonl"),
	}
	if err := codec.Save(ctx, log, t, cfg.OutputPath(), outFormat, opts); err != nil {
		return nil, err
	}
	return t, nil
}

// logStats reports per-cluster row counts and, when sub-columns were
// requested, one illustrative sub-cluster lookup.
func logStats(log *slog.Logger, t *table.Table, cfg DatasetConfig, clusters *table.ClusterIndex) error {
	for _, key := range clusters.Keys() {
		group, _ := clusters.Group(key)
		log.Info("cluster size", "column", cfg.PrimaryColumn, "value", key.String(), "rows", group.NumRows())
	}

	if len(cfg.SubColumns) == 0 || clusters.Len() == 0 {
		return nil
	}
	sub := cfg.SubColumns[0]
	firstPrimary := clusters.Keys()[0]
	idx, err := t.CreateSubClusters(cfg.PrimaryColumn, sub)
	if err != nil {
		return err
	}
	nested, ok := idx.Group(firstPrimary)
	if !ok || nested.Len() == 0 {
		return nil
	}
	firstSub := nested.Keys()[0]
	example, found, err := t.GetSubCluster(cfg.PrimaryColumn, sub, firstPrimary.String(), firstSub.String())
	if err != nil {
		return err
	}
	if found {
		log.Info("example sub-cluster",
			"primary_value", firstPrimary.String(), "sub_value", firstSub.String(), "rows", example.NumRows())
	}
	return nil
}
