package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ISeries is the column abstraction the DataFrame operates on. It is
// satisfied by series.Series[T] for every supported element type.
type ISeries interface {
	// Name returns the column name.
	Name() string
	// Len returns the number of elements.
	Len() int
	// DataType returns the Arrow data type.
	DataType() arrow.DataType
	// IsNull checks if the value at index is null.
	IsNull(index int) bool
	// Array returns the underlying Arrow array (retains a reference).
	Array() arrow.Array
	// Release releases the underlying Arrow memory.
	Release()
}
