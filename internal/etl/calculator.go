package etl

import (
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/config"
	"salesetl/internal/dataframe"
	"salesetl/internal/errors"
	"salesetl/internal/io"
	"salesetl/internal/parallel"
	"salesetl/internal/schema"
)

// Input file names within the configured CSV directory.
const (
	customersFile    = "olist_customers_dataset.csv"
	orderItemsFile   = "olist_order_items_dataset.csv"
	ordersFile       = "olist_orders_dataset.csv"
	orderReviewsFile = "olist_order_reviews_dataset.csv"
)

// Calculator runs the sales aggregation pipeline over one snapshot of the
// input tables. The loaded tables are immutable; the aggregators only read
// them, which is what lets CalculateIndex run them in parallel.
type Calculator struct {
	cfg  *config.Config
	pool *parallel.WorkerPool

	orders       *dataframe.DataFrame
	customers    *dataframe.DataFrame
	orderItems   *dataframe.DataFrame
	orderReviews *dataframe.DataFrame

	output *dataframe.DataFrame
}

// NewCalculator loads and validates the four input tables from the
// configured CSV directory. Any missing file or schema violation fails the
// construction; no aggregation runs on partially loaded input.
func NewCalculator(cfg *config.Config) (*Calculator, error) {
	mem := memory.NewGoAllocator()

	orders, err := io.ReadTable(filepath.Join(cfg.CSVDir, ordersFile), schema.Orders(), mem)
	if err != nil {
		return nil, err
	}
	customers, err := io.ReadTable(filepath.Join(cfg.CSVDir, customersFile), schema.Customers(), mem)
	if err != nil {
		orders.Release()
		return nil, err
	}
	orderItems, err := io.ReadTable(filepath.Join(cfg.CSVDir, orderItemsFile), schema.OrderItems(), mem)
	if err != nil {
		orders.Release()
		customers.Release()
		return nil, err
	}
	orderReviews, err := io.ReadTable(filepath.Join(cfg.CSVDir, orderReviewsFile), schema.OrderReviews(), mem)
	if err != nil {
		orders.Release()
		customers.Release()
		orderItems.Release()
		return nil, err
	}

	return &Calculator{
		cfg:          cfg,
		pool:         parallel.NewWorkerPool(0),
		orders:       orders,
		customers:    customers,
		orderItems:   orderItems,
		orderReviews: orderReviews,
	}, nil
}

// CalculateIndex computes the three aggregate views and assembles them
// into the output table. The aggregators have no data dependency on each
// other and run concurrently through the worker pool.
func (c *Calculator) CalculateIndex() error {
	aggregators := []func() (*dataframe.DataFrame, error){
		func() (*dataframe.DataFrame, error) {
			return CalculateSummary(c.orders, c.customers, c.orderItems, c.cfg.ProductList)
		},
		func() (*dataframe.DataFrame, error) {
			return CalculateProductRatings(c.orders, c.orderReviews, c.orderItems, c.cfg.ProductList)
		},
		func() (*dataframe.DataFrame, error) {
			return CalculateTopCities(c.orders, c.customers, c.orderItems, c.cfg.ProductList)
		},
	}

	views, err := parallel.Process(c.pool, aggregators,
		func(agg func() (*dataframe.DataFrame, error)) (*dataframe.DataFrame, error) {
			return agg()
		})
	if err != nil {
		return err
	}
	summary, ratings, topCities := views[0], views[1], views[2]
	defer summary.Release()
	defer ratings.Release()
	defer topCities.Release()

	output, err := Assemble(summary, ratings, topCities)
	if err != nil {
		return err
	}

	if c.output != nil {
		c.output.Release()
	}
	c.output = output
	return nil
}

// Output returns the assembled output table. Nil until CalculateIndex has
// run.
func (c *Calculator) Output() *dataframe.DataFrame {
	return c.output
}

// SaveOutput writes the output table to the configured output directory as
// a Parquet dataset partitioned by product_id. CalculateIndex must have run
// first.
func (c *Calculator) SaveOutput() error {
	if c.output == nil {
		return errors.NewConfigurationError("etl.save_output", "no output computed yet")
	}
	return io.WritePartitioned(c.cfg.OutputDir, c.output, ColProductID, c.pool)
}

// Release frees the input tables and any computed output.
func (c *Calculator) Release() {
	c.orders.Release()
	c.customers.Release()
	c.orderItems.Release()
	c.orderReviews.Release()
	if c.output != nil {
		c.output.Release()
	}
}
