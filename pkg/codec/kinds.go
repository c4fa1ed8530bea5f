package codec

import "github.com/nuh1233/DataPipeline/pkg/table"

// columnKind unifies the kinds appearing in one column so typed formats can
// pick a storage type: int and float mix to float, any other mix collapses
// to string, an all-null column is string. The second return reports
// whether the column contains nulls.
func columnKind(t *table.Table, col int) (table.Kind, bool) {
	kind := table.KindNull
	hasNull := false
	for i := 0; i < t.NumRows(); i++ {
		v := t.Row(i)[col]
		if v.IsNull() {
			hasNull = true
			continue
		}
		switch {
		case kind == table.KindNull:
			kind = v.Kind()
		case kind == v.Kind():
		case (kind == table.KindInt && v.Kind() == table.KindFloat) ||
			(kind == table.KindFloat && v.Kind() == table.KindInt):
			kind = table.KindFloat
		default:
			return table.KindString, columnHasNull(t, col)
		}
	}
	if kind == table.KindNull {
		kind = table.KindString
	}
	return kind, hasNull
}

func columnHasNull(t *table.Table, col int) bool {
	for i := 0; i < t.NumRows(); i++ {
		if t.Row(i)[col].IsNull() {
			return true
		}
	}
	return false
}
