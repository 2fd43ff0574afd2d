package dataframe

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// SortBy returns a new frame with rows sorted by the given columns. The
// sort is stable, so rows equal under all sort columns keep their input
// order. ascending must be the same length as columns.
func (df *DataFrame) SortBy(columns []string, ascending []bool) (*DataFrame, error) {
	arrays, err := df.columnArrays(columns)
	if err != nil {
		return nil, err
	}
	defer releaseArrays(arrays)

	indices := make([]int, df.Len())
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		for col, arr := range arrays {
			cmp := compareValues(arr, indices[a], indices[b])
			if cmp == 0 {
				continue
			}
			if ascending[col] {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	return df.Take(indices), nil
}

func compareValues(arr arrow.Array, a, b int) int {
	switch typed := arr.(type) {
	case *array.Int64:
		return cmpOrdered(typed.Value(a), typed.Value(b))
	case *array.Float64:
		return cmpOrdered(typed.Value(a), typed.Value(b))
	default:
		return cmpOrdered(stringValueOf(arr, a), stringValueOf(arr, b))
	}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
