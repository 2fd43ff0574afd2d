// Package io reads the pipeline's CSV inputs and writes its partitioned
// Parquet output.
package io

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/dataframe"
	"salesetl/internal/errors"
	"salesetl/internal/schema"
)

// ReadTable loads a CSV file and validates it against the schema. The first
// record is the header; columns not named by the schema are ignored.
func ReadTable(path string, s schema.Schema, mem memory.Allocator) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigurationError("io.read_table",
			fmt.Sprintf("cannot open input %q: %v", path, err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewSchemaViolation(s.Table, "",
			fmt.Sprintf("malformed CSV %q: %v", path, err))
	}
	if len(rows) == 0 {
		return nil, errors.NewSchemaViolation(s.Table, "", fmt.Sprintf("empty CSV %q", path))
	}

	return s.BuildFrame(rows[0], rows[1:], mem)
}
