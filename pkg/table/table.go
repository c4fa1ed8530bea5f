package table

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrColumnNotFound is returned when an operation names a column the table
// does not have.
var ErrColumnNotFound = errors.New("column not found")

// Table is an in-memory dataset: an ordered list of named columns and an
// ordered list of rows, every row holding exactly one Value per column.
//
// Cluster and sub-cluster indices are derived, cached views owned by the
// table. Mutating operations (filter, keep, sort) invalidate the caches, so
// an index handed out earlier never silently goes stale against the table
// it was built from.
type Table struct {
	columns  []string
	colIndex map[string]int
	rows     [][]Value

	clusters    map[string]*ClusterIndex
	subClusters map[subClusterKey]*SubClusterIndex
}

type subClusterKey struct {
	primary string
	sub     string
}

// New builds a table from a column list and rows. Every row must have
// exactly one value per column.
func New(columns []string, rows [][]Value) (*Table, error) {
	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := colIndex[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		colIndex[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(r), len(columns))
		}
	}
	return &Table{
		columns:  columns,
		colIndex: colIndex,
		rows:     rows,
	}, nil
}

func (t *Table) NumRows() int      { return len(t.rows) }
func (t *Table) NumCols() int      { return len(t.columns) }
func (t *Table) Columns() []string { return t.columns }

// Row returns the i-th row. The returned slice is the table's own storage;
// callers must not modify it.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Value returns the cell at row i, column name.
func (t *Table) Value(i int, column string) (Value, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return Value{}, err
	}
	return t.rows[i][ci], nil
}

func (t *Table) columnIndex(column string) (int, error) {
	ci, ok := t.colIndex[column]
	if !ok {
		return 0, fmt.Errorf("%w: %q (columns: %v)", ErrColumnNotFound, column, t.columns)
	}
	return ci, nil
}

// invalidateIndexes drops all cached cluster and sub-cluster indices. Called
// by every mutating operation.
func (t *Table) invalidateIndexes() {
	t.clusters = nil
	t.subClusters = nil
}

// FilterByColumn removes every row whose value in column is in drop
// (matched against the value's display form). Returns the number of rows
// removed.
func (t *Table) FilterByColumn(column string, drop []string) (int, error) {
	return t.filterRows(column, drop, false)
}

// KeepOnlyValues removes every row whose value in column is NOT in keep.
// Returns the number of rows removed.
func (t *Table) KeepOnlyValues(column string, keep []string) (int, error) {
	return t.filterRows(column, keep, true)
}

func (t *Table) filterRows(column string, values []string, keepMatching bool) (int, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return 0, err
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	kept := t.rows[:0]
	for _, row := range t.rows {
		if set[row[ci].String()] == keepMatching {
			kept = append(kept, row)
		}
	}
	removed := len(t.rows) - len(kept)
	t.rows = kept
	t.invalidateIndexes()
	return removed, nil
}

var titleCaser = cases.Title(language.Und)

// SortByCustomOrder normalizes the column's string values to title case,
// then stably reorders rows so values appear in the order given. Values not
// listed sort after all listed categories; nulls sort last. Idempotent.
func (t *Table) SortByCustomOrder(column string, order []string) error {
	ci, err := t.columnIndex(column)
	if err != nil {
		return err
	}

	// Normalization mutates the column, like the rest of the pipeline's
	// in-place operations.
	for _, row := range t.rows {
		if row[ci].Kind() == KindString {
			row[ci] = String(titleCaser.String(row[ci].Str()))
		}
	}

	rank := make(map[string]int, len(order))
	for i, cat := range order {
		rank[cat] = i
	}
	unlisted := len(order)
	missing := len(order) + 1

	rowRank := func(row []Value) int {
		v := row[ci]
		if v.IsNull() {
			return missing
		}
		if r, ok := rank[v.String()]; ok {
			return r
		}
		return unlisted
	}

	sort.SliceStable(t.rows, func(i, j int) bool {
		return rowRank(t.rows[i]) < rowRank(t.rows[j])
	})
	t.invalidateIndexes()
	return nil
}

// ClusterIndex partitions a table's rows by one column's distinct values.
// Keys iterate in first-seen row order.
type ClusterIndex struct {
	Column string

	keys   []Value
	groups map[Value]*Table
}

// Len returns the number of distinct partitions.
func (ci *ClusterIndex) Len() int { return len(ci.keys) }

// Keys returns the distinct values in first-seen order.
func (ci *ClusterIndex) Keys() []Value { return ci.keys }

// Group returns the sub-table of rows sharing the given value.
func (ci *ClusterIndex) Group(v Value) (*Table, bool) {
	g, ok := ci.groups[v]
	return g, ok
}

// GroupByName looks a partition up by its key's display form.
func (ci *ClusterIndex) GroupByName(name string) (*Table, bool) {
	for _, k := range ci.keys {
		if k.String() == name {
			return ci.groups[k], true
		}
	}
	return nil, false
}

// SubClusterIndex partitions each primary partition again by a second
// column: primary value → sub value → sub-table.
type SubClusterIndex struct {
	Primary string
	Sub     string

	primaries map[Value]*ClusterIndex
}

// Group returns the nested cluster index for one primary value.
func (si *SubClusterIndex) Group(primary Value) (*ClusterIndex, bool) {
	g, ok := si.primaries[primary]
	return g, ok
}

// CreateClusters groups all current rows by exact value equality on column,
// caching (and overwriting any previous cache for) the resulting index.
func (t *Table) CreateClusters(column string) (*ClusterIndex, error) {
	idx, err := buildClusters(t, column)
	if err != nil {
		return nil, err
	}
	if t.clusters == nil {
		t.clusters = make(map[string]*ClusterIndex)
	}
	t.clusters[column] = idx
	return idx, nil
}

func buildClusters(t *Table, column string) (*ClusterIndex, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	idx := &ClusterIndex{
		Column: column,
		groups: make(map[Value]*Table),
	}
	buckets := make(map[Value][][]Value)
	for _, row := range t.rows {
		key := row[ci]
		if _, seen := buckets[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		buckets[key] = append(buckets[key], row)
	}
	for _, key := range idx.keys {
		idx.groups[key] = &Table{
			columns:  t.columns,
			colIndex: t.colIndex,
			rows:     buckets[key],
		}
	}
	return idx, nil
}

// CreateSubClusters builds the two-level index for (primary, sub), reusing
// a cached primary cluster index when one exists.
func (t *Table) CreateSubClusters(primary, sub string) (*SubClusterIndex, error) {
	base, ok := t.clusters[primary]
	if !ok {
		var err error
		base, err = t.CreateClusters(primary)
		if err != nil {
			return nil, err
		}
	}
	idx := &SubClusterIndex{
		Primary:   primary,
		Sub:       sub,
		primaries: make(map[Value]*ClusterIndex, base.Len()),
	}
	for _, key := range base.Keys() {
		group, _ := base.Group(key)
		nested, err := buildClusters(group, sub)
		if err != nil {
			return nil, err
		}
		idx.primaries[key] = nested
	}
	if t.subClusters == nil {
		t.subClusters = make(map[subClusterKey]*SubClusterIndex)
	}
	t.subClusters[subClusterKey{primary, sub}] = idx
	return idx, nil
}

// GetSubCluster returns the sub-table for one (primary value, sub value)
// pair, building the index if it is not cached. A key path with no matching
// rows yields (nil, false, nil), not an error. Values are matched by their
// display form.
func (t *Table) GetSubCluster(primary, sub, primaryValue, subValue string) (*Table, bool, error) {
	idx, ok := t.subClusters[subClusterKey{primary, sub}]
	if !ok {
		var err error
		idx, err = t.CreateSubClusters(primary, sub)
		if err != nil {
			return nil, false, err
		}
	}
	for key, nested := range idx.primaries {
		if key.String() != primaryValue {
			continue
		}
		if g, ok := nested.GroupByName(subValue); ok {
			return g, true, nil
		}
		return nil, false, nil
	}
	return nil, false, nil
}
