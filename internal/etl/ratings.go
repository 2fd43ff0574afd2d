package etl

import (
	"salesetl/internal/dataframe"
)

// ColMeanRating is the mean product rating column of the output table.
const ColMeanRating = "mean_product_rating"

// CalculateProductRatings computes the mean review score per product.
// Orders are joined to reviews and to order items, so a review counts once
// per order item of its order, weighting multi-item orders accordingly.
// The result has one row per product_id with a mean_product_rating column.
func CalculateProductRatings(orders, orderReviews, orderItems *dataframe.DataFrame, productList []string) (*dataframe.DataFrame, error) {
	withReviews, err := orders.Join(orderReviews, dataframe.JoinOptions{
		Type: dataframe.InnerJoin,
		On:   "order_id",
	})
	if err != nil {
		return nil, err
	}
	defer withReviews.Release()

	merged, err := withReviews.Join(orderItems, dataframe.JoinOptions{
		Type: dataframe.InnerJoin,
		On:   "order_id",
	})
	if err != nil {
		return nil, err
	}
	defer merged.Release()

	groups, err := merged.GroupBy(ColProductID)
	if err != nil {
		return nil, err
	}
	ratings, err := groups.Agg(dataframe.Mean("review_score").As(ColMeanRating))
	if err != nil {
		return nil, err
	}

	filtered := ratings.FilterIn(ColProductID, productList)
	if filtered != ratings {
		ratings.Release()
	}
	return filtered, nil
}
