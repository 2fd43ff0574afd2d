package io

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"salesetl/internal/dataframe"
	"salesetl/internal/errors"
	"salesetl/internal/parallel"
)

const partFileName = "part-0.parquet"

// WritePartitioned writes df as a hive-partitioned Parquet dataset under
// dir, one subdirectory per distinct value of partitionCol:
//
//	dir/<partitionCol>=<value>/part-0.parquet
//
// Any previous contents of dir are removed first, so a rerun replaces the
// dataset instead of accumulating stale partitions. Partition files are
// written concurrently through the pool.
func WritePartitioned(dir string, df *dataframe.DataFrame, partitionCol string, pool *parallel.WorkerPool) error {
	if !df.HasColumn(partitionCol) {
		return errors.NewConfigurationError("io.write_partitioned",
			fmt.Sprintf("partition column %q not found in output", partitionCol))
	}

	if err := os.RemoveAll(dir); err != nil {
		return errors.NewSinkWriteError("io.write_partitioned", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewSinkWriteError("io.write_partitioned", err)
	}

	partitions := partitionRows(df, partitionCol)

	_, err := parallel.Process(pool, partitions, func(p partition) (struct{}, error) {
		part := df.Take(p.rows).Drop(partitionCol)
		defer part.Release()

		partDir := filepath.Join(dir, fmt.Sprintf("%s=%s", partitionCol, p.value))
		if err := os.MkdirAll(partDir, 0o755); err != nil {
			return struct{}{}, errors.NewSinkWriteError("io.write_partitioned", err)
		}
		return struct{}{}, writeParquetFile(filepath.Join(partDir, partFileName), part)
	})
	return err
}

type partition struct {
	value string
	rows  []int
}

// partitionRows splits rows by their partition column value, partitions in
// first-appearance order.
func partitionRows(df *dataframe.DataFrame, partitionCol string) []partition {
	var order []string
	rowsByValue := make(map[string][]int)

	for row := 0; row < df.Len(); row++ {
		value := df.StringAt(partitionCol, row)
		if _, seen := rowsByValue[value]; !seen {
			order = append(order, value)
		}
		rowsByValue[value] = append(rowsByValue[value], row)
	}

	partitions := make([]partition, len(order))
	for i, value := range order {
		partitions[i] = partition{value: value, rows: rowsByValue[value]}
	}
	return partitions
}

func writeParquetFile(path string, df *dataframe.DataFrame) error {
	table, err := dataFrameToArrowTable(df)
	if err != nil {
		return errors.NewSinkWriteError("io.write_parquet", err)
	}
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.NewSinkWriteError("io.write_parquet", err)
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	writer, err := pqarrow.NewFileWriter(table.Schema(), f, props, arrowProps)
	if err != nil {
		f.Close()
		return errors.NewSinkWriteError("io.write_parquet", err)
	}

	if err := writer.WriteTable(table, int64(df.Len())); err != nil {
		writer.Close()
		return errors.NewSinkWriteError("io.write_parquet", err)
	}
	if err := writer.Close(); err != nil {
		return errors.NewSinkWriteError("io.write_parquet", err)
	}
	return nil
}

// dataFrameToArrowTable wraps the frame's columns into an Arrow table
// without copying the underlying buffers.
func dataFrameToArrowTable(df *dataframe.DataFrame) (arrow.Table, error) {
	fields := make([]arrow.Field, 0, df.Width())
	columns := make([]arrow.Column, 0, df.Width())

	for _, name := range df.Columns() {
		col, exists := df.Column(name)
		if !exists {
			continue
		}

		arr := col.Array()
		field := arrow.Field{Name: name, Type: arr.DataType()}
		fields = append(fields, field)

		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(df.Len())), nil
}
