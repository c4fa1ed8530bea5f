package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/nuh1233/DataPipeline/pkg/codec"
	pipetesting "github.com/nuh1233/DataPipeline/utils/pkg/testing"
)

const propertiesCSV = `region,type,price
east,condo,100
west,house,250
east,house,300
east,condo,150
south,land,50
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeConfig(t *testing.T, dir string, configs map[string]DatasetConfig) string {
	t.Helper()
	data, err := json.Marshal(configs)
	require.NoError(t, err)
	return writeFile(t, dir, "datasets.json", string(data))
}

func TestRun_FullPipeline(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)

	cfg := DatasetConfig{
		InputFile:     input,
		OutputFile:    "properties.json",
		OutputDir:     filepath.Join(dir, "out"),
		PrimaryColumn: "region",
		SubColumns:    []string{"type"},
		SortOrder:     []string{"East", "West"},
		FilterColumn:  "region",
		FilterValues:  []string{"south"},
	}

	tbl, err := Run(ctx, log, cfg)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.NumRows())

	// Sort title-cased the region column and put East before West.
	v, err := tbl.Value(0, "region")
	require.NoError(t, err)
	require.Equal(t, "East", v.String())
	v, err = tbl.Value(3, "region")
	require.NoError(t, err)
	require.Equal(t, "West", v.String())

	// The returned table carries the built indices.
	sub, found, err := tbl.GetSubCluster("region", "type", "East", "condo")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, sub.NumRows())

	// Output landed in the auto-created directory.
	out, err := codec.Load(ctx, log, filepath.Join(dir, "out", "properties.json"), "")
	require.NoError(t, err)
	require.Equal(t, 4, out.NumRows())
	require.ElementsMatch(t, []string{"region", "type", "price"}, out.Columns())
}

func TestRun_KeepOnlyValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)

	cfg := DatasetConfig{
		InputFile:  input,
		OutputFile: filepath.Join(dir, "kept.csv"),
		KeepColumn: "type",
		KeepValues: []string{"house"},
	}
	tbl, err := Run(t.Context(), pipetesting.NewLogger(), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
}

func TestRun_OutputFormatOverride(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)

	// .dat extension is unresolvable; the explicit output_format wins.
	cfg := DatasetConfig{
		InputFile:    input,
		OutputFile:   filepath.Join(dir, "out.dat"),
		OutputFormat: "csv",
	}
	_, err := Run(ctx, log, cfg)
	require.NoError(t, err)

	out, err := codec.Load(ctx, log, filepath.Join(dir, "out.dat"), "csv")
	require.NoError(t, err)
	require.Equal(t, 5, out.NumRows())
}

func TestRun_JSONLinesFormatAlias(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)

	// output_format "jsonl" keeps line-oriented output even though the
	// path's extension would pick the array form.
	cfg := DatasetConfig{
		InputFile:    input,
		OutputFile:   filepath.Join(dir, "out.json"),
		OutputFormat: "jsonl",
	}
	_, err := Run(ctx, log, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	require.Equal(t, byte('{'), data[0])
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()
	cfg := DatasetConfig{
		InputFile:  filepath.Join(t.TempDir(), "absent.csv"),
		OutputFile: "out.csv",
	}
	_, err := Run(t.Context(), pipetesting.NewLogger(), cfg)
	require.ErrorIs(t, err, codec.ErrFileNotFound)
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)

	configPath := writeConfig(t, dir, map[string]DatasetConfig{
		"first": {
			InputFile:  input,
			OutputFile: filepath.Join(dir, "first.csv"),
		},
		"second": {
			InputFile:  filepath.Join(dir, "missing.csv"),
			OutputFile: filepath.Join(dir, "second.csv"),
		},
		"third": {
			InputFile:  input,
			OutputFile: filepath.Join(dir, "third.jsonl"),
		},
	})

	results, err := RunAll(ctx, log, configPath)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.False(t, results["first"].Failed())
	require.NotNil(t, results["first"].Table)

	require.True(t, results["second"].Failed())
	require.ErrorIs(t, results["second"].Err, codec.ErrFileNotFound)
	require.Nil(t, results["second"].Table)

	require.False(t, results["third"].Failed())

	// The datasets around the failure still produced output.
	_, err = os.Stat(filepath.Join(dir, "first.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "third.jsonl"))
	require.NoError(t, err)
}

func TestRunAll_MissingConfig(t *testing.T) {
	t.Parallel()
	results, err := RunAll(t.Context(), pipetesting.NewLogger(), filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ErrConfigInvalid)
	require.Empty(t, results)
}

func TestRunAll_MalformedConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := writeFile(t, dir, "datasets.json", "{not json")

	results, err := RunAll(t.Context(), pipetesting.NewLogger(), configPath)
	require.ErrorIs(t, err, ErrConfigInvalid)
	require.Empty(t, results)
}

func TestRunOne(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "properties.csv", propertiesCSV)
	configPath := writeConfig(t, dir, map[string]DatasetConfig{
		"props": {
			InputFile:  input,
			OutputFile: filepath.Join(dir, "props.csv"),
		},
	})

	tbl, err := RunOne(t.Context(), pipetesting.NewLogger(), configPath, "props")
	require.NoError(t, err)
	require.Equal(t, 5, tbl.NumRows())
}

func TestRunOne_NotFound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := writeConfig(t, dir, map[string]DatasetConfig{
		"alpha": {InputFile: "a.csv", OutputFile: "a.json"},
		"beta":  {InputFile: "b.csv", OutputFile: "b.json"},
	})

	_, err := RunOne(t.Context(), pipetesting.NewLogger(), configPath, "gamma")
	require.ErrorIs(t, err, ErrDatasetNotFound)
	require.Contains(t, err.Error(), "alpha")
	require.Contains(t, err.Error(), "beta")
}

func TestLoadConfigs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := writeFile(t, dir, "datasets.json", `{
		"props": {
			"input_file": "in.csv",
			"output_file": "out.parquet",
			"output_dir": "processed",
			"compression": "gzip",
			"primary_column": "region",
			"sub_columns": ["type"],
			"sort_order": ["East", "West"],
			"show_stats": false
		}
	}`)

	configs, err := LoadConfigs(configPath)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	cfg := configs["props"]
	require.Equal(t, filepath.Join("processed", "out.parquet"), cfg.OutputPath())
	require.False(t, cfg.ShowStatsEnabled())
	require.Equal(t, []string{"type"}, cfg.SubColumns)

	// show_stats defaults to true when omitted.
	require.True(t, DatasetConfig{}.ShowStatsEnabled())
}
