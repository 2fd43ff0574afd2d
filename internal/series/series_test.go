//nolint:testpackage // requires internal access to unexported fields
package series

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStringSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("city", []string{"sp", "rio", "sp"}, mem)
	defer s.Release()

	assert.Equal(t, "city", s.Name())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"sp", "rio", "sp"}, s.Values())
	assert.Equal(t, "rio", s.Value(1))
}

func TestNewNumericSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	counts := New("total_count", []int64{1, 2, 3}, mem)
	defer counts.Release()
	sums := New("total_sales_sum", []float64{10.5, 20.0, 0}, mem)
	defer sums.Release()

	assert.Equal(t, []int64{1, 2, 3}, counts.Values())
	assert.InDelta(t, 20.0, sums.Value(1), 1e-9)
	assert.Equal(t, "int64", counts.DataType().Name())
	assert.Equal(t, "float64", sums.DataType().Name())
}

func TestValueOutOfBounds(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("price", []float64{10.0}, mem)
	defer s.Release()

	assert.InDelta(t, 0.0, s.Value(-1), 1e-9)
	assert.InDelta(t, 0.0, s.Value(5), 1e-9)
}

func TestArrayRetainsReference(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("id", []string{"a", "b"}, mem)
	defer s.Release()

	arr := s.Array()
	require.NotNil(t, arr)
	defer arr.Release()

	assert.Equal(t, 2, arr.Len())
}

func TestNewUnsupportedTypePanics(t *testing.T) {
	mem := memory.NewGoAllocator()

	assert.Panics(t, func() {
		New("bad", []int32{1, 2}, mem)
	})
}
