package etl

import (
	"encoding/json"
	"sort"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/dataframe"
	"salesetl/internal/series"
)

// ColTopCities is the top cities column of the output table.
const ColTopCities = "top_cities"

// topCityLimit caps how many cities each product reports.
const topCityLimit = 3

// CalculateTopCities ranks each product's cities by how many order line
// items its customers bought. The result has one row per product_id with a
// top_cities column holding a JSON array of up to three city names in
// descending sales count; ties keep the order the cities first appeared in
// the joined input.
func CalculateTopCities(orders, customers, orderItems *dataframe.DataFrame, productList []string) (*dataframe.DataFrame, error) {
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

	groups, err := merged.GroupBy(ColProductID, "customer_city")
	if err != nil {
		return nil, err
	}
	cityCounts, err := groups.Agg(dataframe.Count("order_id").As("sales_count"))
	if err != nil {
		return nil, err
	}
	defer cityCounts.Release()

	type cityCount struct {
		city  string
		count int64
	}
	var productOrder []string
	citiesByProduct := make(map[string][]cityCount)

	for row := 0; row < cityCounts.Len(); row++ {
		product := cityCounts.StringAt(ColProductID, row)
		if _, seen := citiesByProduct[product]; !seen {
			productOrder = append(productOrder, product)
		}
		citiesByProduct[product] = append(citiesByProduct[product], cityCount{
			city:  cityCounts.StringAt("customer_city", row),
			count: cityCounts.Int64At("sales_count", row),
		})
	}

	mem := memory.NewGoAllocator()
	products := make([]string, len(productOrder))
	topCities := make([]string, len(productOrder))

	for i, product := range productOrder {
		cities := citiesByProduct[product]
		sort.SliceStable(cities, func(a, b int) bool {
			return cities[a].count > cities[b].count
		})
		if len(cities) > topCityLimit {
			cities = cities[:topCityLimit]
		}
		names := make([]string, len(cities))
		for j, c := range cities {
			names[j] = c.city
		}
		products[i] = product
		topCities[i] = topCitiesJSON(names)
	}

	result := dataframe.New(
		series.New(ColProductID, products, mem),
		series.New(ColTopCities, topCities, mem),
	)

	filtered := result.FilterIn(ColProductID, productList)
	if filtered != result {
		result.Release()
	}
	return filtered, nil
}

// topCitiesJSON renders the ranked city names; an empty list renders "[]".
func topCitiesJSON(names []string) string {
	if len(names) == 0 {
		return "[]"
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(data)
}
