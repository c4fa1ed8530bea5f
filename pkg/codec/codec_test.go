package codec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuh1233/DataPipeline/pkg/format"
	"github.com/nuh1233/DataPipeline/pkg/table"
	pipetesting "github.com/nuh1233/DataPipeline/utils/pkg/testing"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		[]string{"region", "city", "pop", "score", "active"},
		[][]table.Value{
			{table.String("east"), table.String("boston"), table.Int(650), table.Float(1.5), table.Bool(true)},
			{table.String("west"), table.String("seattle"), table.Int(730), table.Float(2.25), table.Bool(false)},
			{table.String("east"), table.String("miami"), table.Int(440), table.Null(), table.Bool(true)},
		},
	)
	require.NoError(t, err)
	return tbl
}

// roundTrip saves and reloads the sample table through one format and
// checks the column set and row count survive.
func roundTrip(t *testing.T, filename string) *table.Table {
	t.Helper()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	tbl := sampleTable(t)

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, Save(ctx, log, tbl, path, "", WriteOptions{}))

	got, err := Load(ctx, log, path, "")
	require.NoError(t, err)
	require.ElementsMatch(t, tbl.Columns(), got.Columns())
	require.Equal(t, tbl.NumRows(), got.NumRows())
	return got
}

func TestRoundTrip_CSV(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.csv")

	// Text formats re-infer cell types.
	v, err := got.Value(0, "pop")
	require.NoError(t, err)
	require.Equal(t, table.Int(650), v)
	v, err = got.Value(2, "score")
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestRoundTrip_JSON(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.json")

	v, err := got.Value(0, "active")
	require.NoError(t, err)
	require.Equal(t, table.Bool(true), v)
	v, err = got.Value(1, "score")
	require.NoError(t, err)
	require.Equal(t, table.Float(2.25), v)
}

func TestRoundTrip_JSONLines(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.jsonl")

	v, err := got.Value(1, "pop")
	require.NoError(t, err)
	require.Equal(t, table.Int(730), v)
}

func TestRoundTrip_Parquet(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.parquet")

	// Typed formats preserve kinds exactly.
	v, err := got.Value(0, "score")
	require.NoError(t, err)
	require.Equal(t, table.Float(1.5), v)
	v, err = got.Value(2, "score")
	require.NoError(t, err)
	require.True(t, v.IsNull())
	v, err = got.Value(1, "active")
	require.NoError(t, err)
	require.Equal(t, table.Bool(false), v)
}

func TestRoundTrip_Feather(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.feather")

	v, err := got.Value(0, "pop")
	require.NoError(t, err)
	require.Equal(t, table.Int(650), v)
}

func TestRoundTrip_Excel(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.xlsx")

	v, err := got.Value(0, "region")
	require.NoError(t, err)
	require.Equal(t, table.String("east"), v)
}

func TestRoundTrip_HDF(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, "out.h5")

	v, err := got.Value(1, "pop")
	require.NoError(t, err)
	require.Equal(t, table.Int(730), v)
	v, err = got.Value(2, "score")
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := Load(t.Context(), pipetesting.NewLogger(), filepath.Join(t.TempDir(), "absent.csv"), "")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	t.Parallel()
	_, err := Load(t.Context(), pipetesting.NewLogger(), "data.txt", "")
	require.ErrorIs(t, err, format.ErrUnsupportedFormat)
}

func TestSave_CompressionRequiresParquet(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	err := Save(t.Context(), pipetesting.NewLogger(), tbl, path, "", WriteOptions{Compression: "gzip"})
	require.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestSave_UnknownParquetCompression(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "out.parquet")
	err := Save(t.Context(), pipetesting.NewLogger(), tbl, path, "", WriteOptions{Compression: "lzma"})
	require.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestSave_ParquetGzip(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, Save(ctx, log, tbl, path, "", WriteOptions{Compression: "gzip"}))

	got, err := Load(ctx, log, path, "")
	require.NoError(t, err)
	require.Equal(t, tbl.NumRows(), got.NumRows())
}

func TestLegacyExcelRejected(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	tbl := sampleTable(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "out.xls")
	err := Save(ctx, log, tbl, path, "", WriteOptions{})
	require.ErrorIs(t, err, ErrUnsupportedOption)
	require.Contains(t, err.Error(), ".xlsx")

	// Reading rejects the same way instead of failing inside the parser.
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	_, err = Load(ctx, log, path, "")
	require.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestSave_JSONLinesOverridesExtension(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	tbl := sampleTable(t)

	// The option, not the extension, picks line-oriented output.
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Save(ctx, log, tbl, path, "", WriteOptions{JSONLines: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte('{'), data[0])
	require.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), tbl.NumRows())

	got, err := Load(ctx, log, path, "")
	require.NoError(t, err)
	require.Equal(t, tbl.NumRows(), got.NumRows())
}

func TestSave_JSONLinesRequiresJSON(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	err := Save(t.Context(), pipetesting.NewLogger(), tbl, path, "", WriteOptions{JSONLines: true})
	require.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestSave_CreatesMissingDirectories(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")
	require.NoError(t, Save(t.Context(), pipetesting.NewLogger(), tbl, path, "", WriteOptions{}))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSave_ExplicitFormatOverridesExtension(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	log := pipetesting.NewLogger()
	tbl := sampleTable(t)

	// .dat is unresolvable, but an explicit format bypasses detection.
	path := filepath.Join(t.TempDir(), "out.dat")
	require.NoError(t, Save(ctx, log, tbl, path, format.CSV, WriteOptions{}))

	got, err := Load(ctx, log, path, format.CSV)
	require.NoError(t, err)
	require.Equal(t, tbl.NumRows(), got.NumRows())
}
