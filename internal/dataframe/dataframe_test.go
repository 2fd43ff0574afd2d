//nolint:testpackage // requires internal access to unexported types and functions
package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/series"
)

func newTestFrame(t *testing.T) *DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	return New(
		series.New("product_id", []string{"p1", "p2", "p3"}, mem),
		series.New("price", []float64{10.0, 20.0, 30.0}, mem),
		series.New("count", []int64{1, 2, 3}, mem),
	)
}

func TestNewAndAccessors(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	assert.Equal(t, 3, df.Len())
	assert.Equal(t, 3, df.Width())
	assert.Equal(t, []string{"product_id", "price", "count"}, df.Columns())
	assert.True(t, df.HasColumn("price"))
	assert.False(t, df.HasColumn("missing"))

	assert.Equal(t, "p2", df.StringAt("product_id", 1))
	assert.InDelta(t, 20.0, df.Float64At("price", 1), 1e-9)
	assert.Equal(t, int64(3), df.Int64At("count", 2))

	// int64 widened to float64
	assert.InDelta(t, 3.0, df.Float64At("count", 2), 1e-9)

	// missing column and out-of-range row yield zero values
	assert.Equal(t, "", df.StringAt("missing", 0))
	assert.Equal(t, int64(0), df.Int64At("count", 99))
}

func TestSelectAndDrop(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	selected := df.Select("count", "product_id")
	assert.Equal(t, []string{"count", "product_id"}, selected.Columns())

	dropped := df.Drop("price")
	assert.Equal(t, []string{"product_id", "count"}, dropped.Columns())
}

func TestWithColumnReplacesInPlace(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	mem := memory.NewGoAllocator()
	replaced := df.WithColumn(series.New("price", []float64{1.0, 2.0, 3.0}, mem))

	assert.Equal(t, []string{"product_id", "price", "count"}, replaced.Columns())
	assert.InDelta(t, 2.0, replaced.Float64At("price", 1), 1e-9)

	appended := df.WithColumn(series.New("week", []string{"a", "b", "c"}, mem))
	assert.Equal(t, []string{"product_id", "price", "count", "week"}, appended.Columns())
}

func TestTakeWithNegativeIndices(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	taken := df.Take([]int{2, -1, 0})
	defer taken.Release()

	require.Equal(t, 3, taken.Len())
	assert.Equal(t, "p3", taken.StringAt("product_id", 0))
	assert.Equal(t, "", taken.StringAt("product_id", 1))
	assert.InDelta(t, 0.0, taken.Float64At("price", 1), 1e-9)
	assert.Equal(t, int64(1), taken.Int64At("count", 2))
}

func TestFilterIn(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	filtered := df.FilterIn("product_id", []string{"p1", "p3"})
	require.Equal(t, 2, filtered.Len())
	assert.Equal(t, "p1", filtered.StringAt("product_id", 0))
	assert.Equal(t, "p3", filtered.StringAt("product_id", 1))

	// empty allow-list keeps every row
	all := df.FilterIn("product_id", nil)
	assert.Equal(t, 3, all.Len())

	// missing column filters everything out
	none := df.FilterIn("missing", []string{"p1"})
	assert.Equal(t, 0, none.Len())
}

func TestRowKeyJoinsColumns(t *testing.T) {
	df := newTestFrame(t)
	defer df.Release()

	arrays, err := df.columnArrays([]string{"product_id", "count"})
	require.NoError(t, err)
	defer releaseArrays(arrays)

	assert.Equal(t, "p1|1", rowKey(arrays, 0))
	assert.Equal(t, "p3", stringValueOf(arrays[0], 2))
}
