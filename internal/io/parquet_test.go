//nolint:testpackage // requires internal access to unexported types and functions
package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/dataframe"
	"salesetl/internal/errors"
	"salesetl/internal/parallel"
	"salesetl/internal/series"
)

func newOutputFrame(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	return dataframe.New(
		series.New("product_id", []string{"p1", "p2", "p1"}, mem),
		series.New("order_purchase_week", []string{"2023-01-08", "2023-01-08", "2023-01-15"}, mem),
		series.New("total_sales_sum", []float64{10.0, 5.0, 7.5}, mem),
	)
}

func TestWritePartitioned(t *testing.T) {
	df := newOutputFrame(t)
	defer df.Release()

	dir := filepath.Join(t.TempDir(), "output_table")
	pool := parallel.NewWorkerPool(2)

	require.NoError(t, WritePartitioned(dir, df, "product_id", pool))

	for _, part := range []string{"product_id=p1", "product_id=p2"} {
		info, err := os.Stat(filepath.Join(dir, part, partFileName))
		require.NoError(t, err, part)
		assert.Positive(t, info.Size())
	}
}

func TestWritePartitionedClearsPreviousContents(t *testing.T) {
	df := newOutputFrame(t)
	defer df.Release()

	dir := filepath.Join(t.TempDir(), "output_table")
	stale := filepath.Join(dir, "product_id=stale")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "part-0.parquet"), []byte("old"), 0o644))

	pool := parallel.NewWorkerPool(1)
	require.NoError(t, WritePartitioned(dir, df, "product_id", pool))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestWritePartitionedMissingColumn(t *testing.T) {
	df := newOutputFrame(t)
	defer df.Release()

	pool := parallel.NewWorkerPool(1)
	err := WritePartitioned(t.TempDir(), df, "missing", pool)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestPartitionRowsAppearanceOrder(t *testing.T) {
	df := newOutputFrame(t)
	defer df.Release()

	partitions := partitionRows(df, "product_id")
	require.Len(t, partitions, 2)
	assert.Equal(t, "p1", partitions[0].value)
	assert.Equal(t, []int{0, 2}, partitions[0].rows)
	assert.Equal(t, "p2", partitions[1].value)
	assert.Equal(t, []int{1}, partitions[1].rows)
}
