//nolint:testpackage // requires internal access to unexported types and functions
package etl

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/dataframe"
	"salesetl/internal/series"
)

func newAggregateViews(t *testing.T) (summary, ratings, topCities *dataframe.DataFrame) {
	t.Helper()
	mem := memory.NewGoAllocator()

	// p1 appears everywhere, p2 has no rating, p3 only has a rating
	summary = dataframe.New(
		series.New(ColProductID, []string{"p1", "p2"}, mem),
		series.New(ColPurchaseWeek, []string{"2023-01-08", "2023-01-08"}, mem),
		series.New(ColTotalCount, []int64{2, 1}, mem),
		series.New(ColTotalSalesSum, []float64{30.0, 5.0}, mem),
		series.New(ColCitySales, []string{
			`{"sp":{"sales_count":2,"sales_sum":30}}`,
			`{"rio":{"sales_count":1,"sales_sum":5}}`,
		}, mem),
	)
	ratings = dataframe.New(
		series.New(ColProductID, []string{"p1", "p3"}, mem),
		series.New(ColMeanRating, []float64{4.5, 2.0}, mem),
	)
	topCities = dataframe.New(
		series.New(ColProductID, []string{"p1", "p2"}, mem),
		series.New(ColTopCities, []string{`["sp"]`, `["rio"]`}, mem),
	)
	return summary, ratings, topCities
}

func outputRowByProduct(t *testing.T, df *dataframe.DataFrame, product string) int {
	t.Helper()
	for i := 0; i < df.Len(); i++ {
		if df.StringAt(ColProductID, i) == product {
			return i
		}
	}
	t.Fatalf("no output row for %s", product)
	return -1
}

func TestAssembleOuterMergeCompleteness(t *testing.T) {
	summary, ratings, topCities := newAggregateViews(t)
	defer summary.Release()
	defer ratings.Release()
	defer topCities.Release()

	output, err := Assemble(summary, ratings, topCities)
	require.NoError(t, err)
	defer output.Release()

	// every product from any view appears, none more than once
	require.Equal(t, 3, output.Len())
	seen := make(map[string]int)
	for i := 0; i < output.Len(); i++ {
		seen[output.StringAt(ColProductID, i)]++
	}
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1, "p3": 1}, seen)
}

func TestAssembleZeroFillsMissingSides(t *testing.T) {
	summary, ratings, topCities := newAggregateViews(t)
	defer summary.Release()
	defer ratings.Release()
	defer topCities.Release()

	output, err := Assemble(summary, ratings, topCities)
	require.NoError(t, err)
	defer output.Release()

	// p2 has no rating
	p2 := outputRowByProduct(t, output, "p2")
	assert.InDelta(t, 0.0, output.Float64At(ColMeanRating, p2), 1e-9)
	assert.Equal(t, "2023-01-08", output.StringAt(ColPurchaseWeek, p2))

	// p3 has no summary or top-cities side at all
	p3 := outputRowByProduct(t, output, "p3")
	assert.Equal(t, "0", output.StringAt(ColPurchaseWeek, p3))
	assert.Equal(t, int64(0), output.Int64At(ColTotalCount, p3))
	assert.InDelta(t, 0.0, output.Float64At(ColTotalSalesSum, p3), 1e-9)
	assert.Equal(t, "{}", output.StringAt(ColCitySales, p3))
	assert.Equal(t, "[]", output.StringAt(ColTopCities, p3))
	assert.InDelta(t, 2.0, output.Float64At(ColMeanRating, p3), 1e-9)
}

func TestAssembleFullyPopulatedRow(t *testing.T) {
	summary, ratings, topCities := newAggregateViews(t)
	defer summary.Release()
	defer ratings.Release()
	defer topCities.Release()

	output, err := Assemble(summary, ratings, topCities)
	require.NoError(t, err)
	defer output.Release()

	p1 := outputRowByProduct(t, output, "p1")
	assert.Equal(t, "2023-01-08", output.StringAt(ColPurchaseWeek, p1))
	assert.Equal(t, int64(2), output.Int64At(ColTotalCount, p1))
	assert.InDelta(t, 30.0, output.Float64At(ColTotalSalesSum, p1), 1e-9)
	assert.Equal(t, `{"sp":{"sales_count":2,"sales_sum":30}}`, output.StringAt(ColCitySales, p1))
	assert.InDelta(t, 4.5, output.Float64At(ColMeanRating, p1), 1e-9)
	assert.Equal(t, `["sp"]`, output.StringAt(ColTopCities, p1))
}

func TestAssembleSortedByProductAndWeek(t *testing.T) {
	summary, ratings, topCities := newAggregateViews(t)
	defer summary.Release()
	defer ratings.Release()
	defer topCities.Release()

	output, err := Assemble(summary, ratings, topCities)
	require.NoError(t, err)
	defer output.Release()

	for i := 1; i < output.Len(); i++ {
		prev := output.StringAt(ColProductID, i-1)
		cur := output.StringAt(ColProductID, i)
		assert.LessOrEqual(t, prev, cur)
	}
}
