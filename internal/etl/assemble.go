package etl

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/dataframe"
	"salesetl/internal/series"
)

// Assemble outer-merges the three aggregate views on product_id into the
// final output table. A product missing from one view gets zero-equivalent
// fields from that side: 0 for the numeric columns, "0" for the week label
// (string form of the numeric fill), "{}" for city_sales and "[]" for
// top_cities. Rows are sorted by (product_id, order_purchase_week) so
// repeated runs produce byte-identical output.
func Assemble(summary, ratings, topCities *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	withRatings, err := summary.Join(ratings, dataframe.JoinOptions{
		Type: dataframe.FullOuterJoin,
		On:   ColProductID,
	})
	if err != nil {
		return nil, err
	}
	defer withRatings.Release()

	merged, err := withRatings.Join(topCities, dataframe.JoinOptions{
		Type: dataframe.FullOuterJoin,
		On:   ColProductID,
	})
	if err != nil {
		return nil, err
	}
	defer merged.Release()

	// filled shares merged's untouched columns, so only merged is released.
	filled := fillZeroEquivalents(merged)

	return filled.SortBy(
		[]string{ColProductID, ColPurchaseWeek},
		[]bool{true, true},
	)
}

// fillZeroEquivalents normalizes the string columns the outer joins left
// empty on unmatched rows.
func fillZeroEquivalents(df *dataframe.DataFrame) *dataframe.DataFrame {
	mem := memory.NewGoAllocator()
	result := df

	fills := []struct {
		column string
		value  string
	}{
		{ColPurchaseWeek, "0"},
		{ColCitySales, "{}"},
		{ColTopCities, "[]"},
	}

	for _, fill := range fills {
		if !result.HasColumn(fill.column) {
			continue
		}
		values := make([]string, result.Len())
		for row := range values {
			v := result.StringAt(fill.column, row)
			if v == "" {
				v = fill.value
			}
			values[row] = v
		}
		result = result.WithColumn(series.New(fill.column, values, mem))
	}

	return result
}
