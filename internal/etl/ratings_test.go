//nolint:testpackage // requires internal access to unexported types and functions
package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProductRatings(t *testing.T) {
	orders, customers, orderItems, orderReviews := testInputTables(t)
	defer orders.Release()
	defer customers.Release()
	defer orderItems.Release()
	defer orderReviews.Release()

	ratings, err := CalculateProductRatings(orders, orderReviews, orderItems, nil)
	require.NoError(t, err)
	defer ratings.Release()

	byProduct := make(map[string]float64)
	for i := 0; i < ratings.Len(); i++ {
		byProduct[ratings.StringAt(ColProductID, i)] = ratings.Float64At(ColMeanRating, i)
	}

	// p1: o1 item scored 5, o2 item scored 3; o3 has no review and is
	// dropped by the inner join
	require.Len(t, byProduct, 2)
	assert.InDelta(t, 4.0, byProduct["p1"], 1e-9)
	assert.InDelta(t, 5.0, byProduct["p2"], 1e-9)
}

func TestCalculateProductRatingsWeightsPerLineItem(t *testing.T) {
	orders, customers, orderItems, orderReviews := testInputTables(t)
	defer orders.Release()
	defer customers.Release()
	defer orderItems.Release()
	defer orderReviews.Release()

	ratings, err := CalculateProductRatings(orders, orderReviews, orderItems, nil)
	require.NoError(t, err)
	defer ratings.Release()

	// one RatingRow per distinct product present in the join result
	products := make(map[string]int)
	for i := 0; i < ratings.Len(); i++ {
		products[ratings.StringAt(ColProductID, i)]++
	}
	for product, n := range products {
		assert.Equal(t, 1, n, product)
	}
}

func TestCalculateProductRatingsAllowList(t *testing.T) {
	orders, customers, orderItems, orderReviews := testInputTables(t)
	defer orders.Release()
	defer customers.Release()
	defer orderItems.Release()
	defer orderReviews.Release()

	ratings, err := CalculateProductRatings(orders, orderReviews, orderItems, []string{"p1"})
	require.NoError(t, err)
	defer ratings.Release()

	require.Equal(t, 1, ratings.Len())
	assert.Equal(t, "p1", ratings.StringAt(ColProductID, 0))
}
