// Package schema declares the typed layouts of the pipeline's input tables
// and validates raw CSV records against them.
package schema

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/dataframe"
	"salesetl/internal/errors"
	"salesetl/internal/series"
)

// Type identifies a column's logical type.
type Type int

const (
	String Type = iota
	Int64
	Float64
	// Timestamp columns are carried as raw strings; parsing happens at
	// week-bucketing time so malformed values degrade to the sentinel
	// bucket instead of failing the whole load.
	Timestamp
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema describes the layout of one input table.
type Schema struct {
	Table   string
	Columns []Column
}

// Orders describes the orders table.
func Orders() Schema {
	return Schema{
		Table: "orders",
		Columns: []Column{
			{Name: "order_id", Type: String},
			{Name: "customer_id", Type: String},
			{Name: "order_status", Type: String, Nullable: true},
			{Name: "order_purchase_timestamp", Type: Timestamp, Nullable: true},
		},
	}
}

// Customers describes the customers table.
func Customers() Schema {
	return Schema{
		Table: "customers",
		Columns: []Column{
			{Name: "customer_id", Type: String},
			{Name: "customer_city", Type: String},
			{Name: "customer_state", Type: String, Nullable: true},
		},
	}
}

// OrderItems describes the order items table.
func OrderItems() Schema {
	return Schema{
		Table: "order_items",
		Columns: []Column{
			{Name: "order_id", Type: String},
			{Name: "product_id", Type: String},
			{Name: "price", Type: Float64},
		},
	}
}

// OrderReviews describes the order reviews table.
func OrderReviews() Schema {
	return Schema{
		Table: "order_reviews",
		Columns: []Column{
			{Name: "order_id", Type: String},
			{Name: "review_score", Type: Int64},
		},
	}
}

// BuildFrame validates the raw CSV header and records against the schema
// and materializes the schema's columns as a typed DataFrame. Columns
// present in the file but absent from the schema are ignored; a missing
// schema column is a schema violation, as is an uncoercible value in a
// non-nullable numeric column.
func (s Schema) BuildFrame(header []string, records [][]string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	position := make(map[string]int, len(header))
	for i, name := range header {
		position[name] = i
	}

	columns := make([]dataframe.ISeries, 0, len(s.Columns))
	fail := func(err error) (*dataframe.DataFrame, error) {
		for _, col := range columns {
			col.Release()
		}
		return nil, err
	}

	for _, col := range s.Columns {
		pos, exists := position[col.Name]
		if !exists {
			if !col.Nullable {
				return fail(errors.NewSchemaViolation(s.Table, col.Name, "column missing from input"))
			}
			// absent nullable column loads as all-empty
			pos = -1
		}

		switch col.Type {
		case Timestamp:
			// carried raw; parsing is deferred to week bucketing
			values := make([]string, len(records))
			for i, record := range records {
				values[i] = fieldAt(record, pos)
			}
			columns = append(columns, series.New(col.Name, values, mem))

		case String:
			values := make([]string, len(records))
			for i, record := range records {
				raw := fieldAt(record, pos)
				if raw == "" && !col.Nullable {
					return fail(errors.NewSchemaViolation(s.Table, col.Name,
						fmt.Sprintf("empty value at row %d", i)))
				}
				values[i] = raw
			}
			columns = append(columns, series.New(col.Name, values, mem))

		case Int64:
			values := make([]int64, len(records))
			for i, record := range records {
				raw := fieldAt(record, pos)
				if raw == "" {
					if !col.Nullable {
						return fail(errors.NewSchemaViolation(s.Table, col.Name,
							fmt.Sprintf("empty value at row %d", i)))
					}
					continue
				}
				v, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fail(errors.NewSchemaViolation(s.Table, col.Name,
						fmt.Sprintf("cannot parse %q as int64 at row %d", raw, i)))
				}
				values[i] = v
			}
			columns = append(columns, series.New(col.Name, values, mem))

		case Float64:
			values := make([]float64, len(records))
			for i, record := range records {
				raw := fieldAt(record, pos)
				if raw == "" {
					if !col.Nullable {
						return fail(errors.NewSchemaViolation(s.Table, col.Name,
							fmt.Sprintf("empty value at row %d", i)))
					}
					continue
				}
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fail(errors.NewSchemaViolation(s.Table, col.Name,
						fmt.Sprintf("cannot parse %q as float64 at row %d", raw, i)))
				}
				values[i] = v
			}
			columns = append(columns, series.New(col.Name, values, mem))
		}
	}

	return dataframe.New(columns...), nil
}

func fieldAt(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return record[pos]
}
