package etl

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/dataframe"
	"salesetl/internal/series"
)

// Column names of the summary and output tables.
const (
	ColProductID     = "product_id"
	ColPurchaseWeek  = "order_purchase_week"
	ColTotalCount    = "total_count"
	ColTotalSalesSum = "total_sales_sum"
	ColCitySales     = "city_sales"
)

// CalculateSummary computes per-product, per-week sales totals with a
// per-city breakdown. Orders are joined to customers (for the city) and to
// order items (for product and price), each joined row counting as one
// sale. The result has one row per (product_id, order_purchase_week) with
// total_count, total_sales_sum and city_sales columns, the last being the
// JSON city breakdown. productList, when non-empty, restricts the result
// to the named products.
func CalculateSummary(orders, customers, orderItems *dataframe.DataFrame, productList []string) (*dataframe.DataFrame, error) {
	withCities, err := orders.Join(customers, dataframe.JoinOptions{
		Type: dataframe.InnerJoin,
		On:   "customer_id",
	})
	if err != nil {
		return nil, err
	}
	defer withCities.Release()

	merged, err := withCities.Join(orderItems, dataframe.JoinOptions{
		Type: dataframe.InnerJoin,
		On:   "order_id",
	})
	if err != nil {
		return nil, err
	}
	defer merged.Release()

	mem := memory.NewGoAllocator()

	weeks := make([]string, merged.Len())
	for row := range weeks {
		weeks[row] = WeekBucket(merged.StringAt("order_purchase_timestamp", row))
	}
	// bucketed shares merged's columns, so only merged is released.
	bucketed := merged.WithColumn(series.New(ColPurchaseWeek, weeks, mem))

	cityGroups, err := bucketed.GroupBy(ColProductID, "customer_city", ColPurchaseWeek)
	if err != nil {
		return nil, err
	}
	citySales, err := cityGroups.Agg(
		dataframe.Sum("price").As("sales_sum"),
		dataframe.Count("price").As("sales_count"),
	)
	if err != nil {
		return nil, err
	}
	defer citySales.Release()

	type groupKey struct {
		product string
		week    string
	}
	var order []groupKey
	breakdowns := make(map[groupKey]CityBreakdown)

	for row := 0; row < citySales.Len(); row++ {
		key := groupKey{
			product: citySales.StringAt(ColProductID, row),
			week:    citySales.StringAt(ColPurchaseWeek, row),
		}
		breakdown, seen := breakdowns[key]
		if !seen {
			breakdown = make(CityBreakdown)
			breakdowns[key] = breakdown
			order = append(order, key)
		}
		breakdown.Merge(CityBreakdown{
			citySales.StringAt("customer_city", row): {
				SalesCount: citySales.Int64At("sales_count", row),
				SalesSum:   citySales.Float64At("sales_sum", row),
			},
		})
	}

	products := make([]string, len(order))
	weekLabels := make([]string, len(order))
	totalCounts := make([]int64, len(order))
	totalSums := make([]float64, len(order))
	cityJSON := make([]string, len(order))
	for i, key := range order {
		breakdown := breakdowns[key]
		products[i] = key.product
		weekLabels[i] = key.week
		totalCounts[i] = breakdown.TotalCount()
		totalSums[i] = breakdown.TotalSum()
		cityJSON[i] = breakdown.JSON()
	}

	summary := dataframe.New(
		series.New(ColProductID, products, mem),
		series.New(ColPurchaseWeek, weekLabels, mem),
		series.New(ColTotalCount, totalCounts, mem),
		series.New(ColTotalSalesSum, totalSums, mem),
		series.New(ColCitySales, cityJSON, mem),
	)

	filtered := summary.FilterIn(ColProductID, productList)
	if filtered != summary {
		summary.Release()
	}
	return filtered, nil
}
