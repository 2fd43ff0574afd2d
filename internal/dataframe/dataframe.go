// Package dataframe provides the column-oriented table operations the sales
// pipeline is built on: selection, filtering, hash joins, grouped
// aggregation and stable sorting over immutable column sets.
package dataframe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/series"
)

// DataFrame represents a table of data with typed columns. Operations never
// mutate the receiver; they return new DataFrames backed by fresh arrays.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries.
func New(ss ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(ss))

	for _, s := range ss {
		name := s.Name()
		columns[name] = s
		order = append(order, name)
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// Columns returns the names of all columns in order.
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (assumes all columns have same length).
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	if s, exists := df.columns[df.order[0]]; exists {
		return s.Len()
	}
	return 0
}

// Width returns the number of columns.
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	s, exists := df.columns[name]
	return s, exists
}

// HasColumn checks if a column exists.
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns.
func (df *DataFrame) Select(names ...string) *DataFrame {
	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(names))

	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			newColumns[name] = s
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Drop returns a new DataFrame without the specified columns.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool)
	for _, name := range names {
		dropSet[name] = true
	}

	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(df.order))

	for _, name := range df.order {
		if !dropSet[name] {
			newColumns[name] = df.columns[name]
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// WithColumn returns a new DataFrame with the given series appended,
// replacing any existing column of the same name in place.
func (df *DataFrame) WithColumn(s ISeries) *DataFrame {
	newColumns := make(map[string]ISeries, len(df.columns)+1)
	newOrder := make([]string, 0, len(df.order)+1)

	for _, name := range df.order {
		if name == s.Name() {
			newColumns[name] = s
		} else {
			newColumns[name] = df.columns[name]
		}
		newOrder = append(newOrder, name)
	}

	if _, exists := df.columns[s.Name()]; !exists {
		newColumns[s.Name()] = s
		newOrder = append(newOrder, s.Name())
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Take returns a new DataFrame containing the rows at the given indices, in
// that order. An index of -1 produces a zero-value row (used to fill the
// unmatched side of outer joins).
func (df *DataFrame) Take(indices []int) *DataFrame {
	mem := memory.NewGoAllocator()

	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		taken = append(taken, gatherSeries(df.columns[name], indices, mem))
	}

	return New(taken...)
}

// FilterIn returns the rows whose string value in the given column is a
// member of the allowed set. An empty set keeps every row.
func (df *DataFrame) FilterIn(column string, allowed []string) *DataFrame {
	if len(allowed) == 0 {
		return df
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		allowedSet[v] = true
	}

	col, exists := df.columns[column]
	if !exists {
		return df.Take(nil)
	}

	arr := col.Array()
	defer arr.Release()

	var indices []int
	for i := range col.Len() {
		if allowedSet[stringValueOf(arr, i)] {
			indices = append(indices, i)
		}
	}

	return df.Take(indices)
}

// StringAt returns the string representation of the value at (column, row).
// Missing columns and out-of-range rows yield the empty string.
func (df *DataFrame) StringAt(column string, row int) string {
	col, exists := df.columns[column]
	if !exists || row < 0 || row >= col.Len() {
		return ""
	}
	arr := col.Array()
	defer arr.Release()
	return stringValueOf(arr, row)
}

// Int64At returns the int64 value at (column, row), 0 when absent.
func (df *DataFrame) Int64At(column string, row int) int64 {
	col, exists := df.columns[column]
	if !exists || row < 0 || row >= col.Len() {
		return 0
	}
	arr := col.Array()
	defer arr.Release()
	if typed, ok := arr.(*array.Int64); ok {
		return typed.Value(row)
	}
	return 0
}

// Float64At returns the float64 value at (column, row), 0 when absent.
// Int64 columns are widened.
func (df *DataFrame) Float64At(column string, row int) float64 {
	col, exists := df.columns[column]
	if !exists || row < 0 || row >= col.Len() {
		return 0
	}
	arr := col.Array()
	defer arr.Release()
	switch typed := arr.(type) {
	case *array.Float64:
		return typed.Value(row)
	case *array.Int64:
		return float64(typed.Value(row))
	default:
		return 0
	}
}

// String returns a string representation of the DataFrame.
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name].DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory.
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
}

// gatherSeries builds a new series from the source rows at the given
// indices; index -1 contributes the type's zero value.
func gatherSeries(s ISeries, indices []int, mem memory.Allocator) ISeries {
	arr := s.Array()
	defer arr.Release()

	switch typed := arr.(type) {
	case *array.String:
		values := make([]string, len(indices))
		for i, idx := range indices {
			if idx >= 0 && idx < typed.Len() && !typed.IsNull(idx) {
				values[i] = typed.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem)
	case *array.Int64:
		values := make([]int64, len(indices))
		for i, idx := range indices {
			if idx >= 0 && idx < typed.Len() && !typed.IsNull(idx) {
				values[i] = typed.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem)
	case *array.Float64:
		values := make([]float64, len(indices))
		for i, idx := range indices {
			if idx >= 0 && idx < typed.Len() && !typed.IsNull(idx) {
				values[i] = typed.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem)
	case *array.Boolean:
		values := make([]bool, len(indices))
		for i, idx := range indices {
			if idx >= 0 && idx < typed.Len() && !typed.IsNull(idx) {
				values[i] = typed.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem)
	default:
		return series.New(s.Name(), make([]string, len(indices)), mem)
	}
}

// stringValueOf extracts the string representation of an array element.
func stringValueOf(arr arrow.Array, index int) string {
	if index < 0 || index >= arr.Len() || arr.IsNull(index) {
		return ""
	}

	switch typed := arr.(type) {
	case *array.String:
		return typed.Value(index)
	case *array.Int64:
		return strconv.FormatInt(typed.Value(index), 10)
	case *array.Float64:
		return strconv.FormatFloat(typed.Value(index), 'f', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(typed.Value(index))
	default:
		return ""
	}
}

// rowKey builds a composite string key from the given columns at a row.
func rowKey(arrays []arrow.Array, row int) string {
	if len(arrays) == 1 {
		return stringValueOf(arrays[0], row)
	}

	parts := make([]string, len(arrays))
	for i, arr := range arrays {
		parts[i] = stringValueOf(arr, row)
	}
	return strings.Join(parts, "|")
}

// columnArrays retains the Arrow arrays for the named columns. The caller
// must release every returned array.
func (df *DataFrame) columnArrays(names []string) ([]arrow.Array, error) {
	arrays := make([]arrow.Array, 0, len(names))
	for _, name := range names {
		col, exists := df.columns[name]
		if !exists {
			for _, arr := range arrays {
				arr.Release()
			}
			return nil, fmt.Errorf("missing column: %s", name)
		}
		arrays = append(arrays, col.Array())
	}
	return arrays, nil
}

func releaseArrays(arrays []arrow.Array) {
	for _, arr := range arrays {
		arr.Release()
	}
}
