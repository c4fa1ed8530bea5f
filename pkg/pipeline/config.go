package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
)

// ErrConfigInvalid is returned when the dataset configuration source is
// missing or unparsable.
var ErrConfigInvalid = errors.New("invalid dataset config")

// DatasetConfig is one named pipeline run: input, output, and the optional
// transform steps. Read once at batch start, immutable thereafter. Keys
// match the JSON configuration document.
type DatasetConfig struct {
	InputFile     string   `json:"input_file"`
	OutputFile    string   `json:"output_file"`
	OutputDir     string   `json:"output_dir,omitempty"`
	OutputFormat  string   `json:"output_format,omitempty"`
	Compression   string   `json:"compression,omitempty"`
	PrimaryColumn string   `json:"primary_column,omitempty"`
	SubColumns    []string `json:"sub_columns,omitempty"`
	SortOrder     []string `json:"sort_order,omitempty"`
	FilterColumn  string   `json:"filter_column,omitempty"`
	FilterValues  []string `json:"filter_values,omitempty"`
	KeepColumn    string   `json:"keep_column,omitempty"`
	KeepValues    []string `json:"keep_values,omitempty"`
	ShowStats     *bool    `json:"show_stats,omitempty"`
}

// OutputPath joins the output directory (when set) with the output file.
func (c DatasetConfig) OutputPath() string {
	if c.OutputDir != "" {
		return filepath.Join(c.OutputDir, c.OutputFile)
	}
	return c.OutputFile
}

// ShowStatsEnabled defaults to true when show_stats is omitted.
func (c DatasetConfig) ShowStatsEnabled() bool {
	return c.ShowStats == nil || *c.ShowStats
}

// LoadConfigs reads the named dataset configs from a JSON document mapping
// dataset name to config.
func LoadConfigs(path string) (map[string]DatasetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	var configs map[string]DatasetConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return configs, nil
}

// SortedNames returns the dataset names in stable order.
func SortedNames(configs map[string]DatasetConfig) []string {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
