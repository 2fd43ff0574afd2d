package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/series"
)

// GroupBy holds a grouping of rows by one or more key columns. Groups are
// kept in first-appearance order so repeated runs over the same input
// produce identical output.
type GroupBy struct {
	df        *DataFrame
	keys      []string
	order     []string
	groupRows map[string][]int
}

// AggFunc identifies an aggregation over a numeric column.
type AggFunc int

const (
	AggSum AggFunc = iota
	AggCount
	AggMean
)

// Agg describes one aggregation to apply within each group.
type Agg struct {
	fn     AggFunc
	column string
	alias  string
}

// Sum aggregates a column by summation into a float64 column.
func Sum(column string) Agg { return Agg{fn: AggSum, column: column} }

// Count counts the rows of each group into an int64 column. The column
// argument only names the default output column.
func Count(column string) Agg { return Agg{fn: AggCount, column: column} }

// Mean aggregates a column by arithmetic mean into a float64 column.
func Mean(column string) Agg { return Agg{fn: AggMean, column: column} }

// As renames the aggregation's output column.
func (a Agg) As(alias string) Agg {
	a.alias = alias
	return a
}

func (a Agg) outputName() string {
	if a.alias != "" {
		return a.alias
	}
	return a.column
}

// GroupBy groups the frame's rows by the given key columns.
func (df *DataFrame) GroupBy(keys ...string) (*GroupBy, error) {
	arrays, err := df.columnArrays(keys)
	if err != nil {
		return nil, err
	}
	defer releaseArrays(arrays)

	gb := &GroupBy{
		df:        df,
		keys:      keys,
		groupRows: make(map[string][]int),
	}

	for row := 0; row < df.Len(); row++ {
		key := rowKey(arrays, row)
		if _, seen := gb.groupRows[key]; !seen {
			gb.order = append(gb.order, key)
		}
		gb.groupRows[key] = append(gb.groupRows[key], row)
	}

	return gb, nil
}

// Groups returns the row indices of each group in appearance order.
func (gb *GroupBy) Groups() [][]int {
	groups := make([][]int, len(gb.order))
	for i, key := range gb.order {
		groups[i] = gb.groupRows[key]
	}
	return groups
}

// Len returns the number of groups.
func (gb *GroupBy) Len() int {
	return len(gb.order)
}

// Agg computes the given aggregations per group and returns a frame with
// one row per group: the key columns first, then one column per aggregation.
func (gb *GroupBy) Agg(aggs ...Agg) (*DataFrame, error) {
	mem := memory.NewGoAllocator()

	firstRows := make([]int, len(gb.order))
	for i, key := range gb.order {
		firstRows[i] = gb.groupRows[key][0]
	}

	result := make([]ISeries, 0, len(gb.keys)+len(aggs))
	for _, key := range gb.keys {
		result = append(result, gatherSeries(gb.df.columns[key], firstRows, mem))
	}

	for _, agg := range aggs {
		col, err := gb.aggregate(agg, mem)
		if err != nil {
			for _, s := range result {
				s.Release()
			}
			return nil, err
		}
		result = append(result, col)
	}

	return New(result...), nil
}

func (gb *GroupBy) aggregate(agg Agg, mem memory.Allocator) (ISeries, error) {
	if agg.fn == AggCount {
		counts := make([]int64, len(gb.order))
		for i, key := range gb.order {
			counts[i] = int64(len(gb.groupRows[key]))
		}
		return series.New(agg.outputName(), counts, mem), nil
	}

	if !gb.df.HasColumn(agg.column) {
		return nil, fmt.Errorf("aggregate column not found: %s", agg.column)
	}

	values := make([]float64, len(gb.order))
	for i, key := range gb.order {
		rows := gb.groupRows[key]
		var sum float64
		for _, row := range rows {
			sum += gb.df.Float64At(agg.column, row)
		}
		if agg.fn == AggMean && len(rows) > 0 {
			sum /= float64(len(rows))
		}
		values[i] = sum
	}
	return series.New(agg.outputName(), values, mem), nil
}
