package etl

import "encoding/json"

// CitySales holds the sales of one city within a (product, week) group.
type CitySales struct {
	SalesCount int64   `json:"sales_count"`
	SalesSum   float64 `json:"sales_sum"`
}

// CityBreakdown maps customer city to its sales within a group.
type CityBreakdown map[string]CitySales

// Merge folds other into the receiver, summing counts and sums per city.
func (b CityBreakdown) Merge(other CityBreakdown) {
	for city, sales := range other {
		cur := b[city]
		cur.SalesCount += sales.SalesCount
		cur.SalesSum += sales.SalesSum
		b[city] = cur
	}
}

// TotalCount returns the sum of sales counts across all cities.
func (b CityBreakdown) TotalCount() int64 {
	var total int64
	for _, sales := range b {
		total += sales.SalesCount
	}
	return total
}

// TotalSum returns the sum of sales sums across all cities.
func (b CityBreakdown) TotalSum() float64 {
	var total float64
	for _, sales := range b {
		total += sales.SalesSum
	}
	return total
}

// JSON serializes the breakdown with keys in sorted order, so equal
// breakdowns always render identically. An empty breakdown renders as "{}".
func (b CityBreakdown) JSON() string {
	if b == nil {
		return "{}"
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "{}"
	}
	return string(data)
}
