// Package snapshot builds the dashboard feed: a daily revenue rollup read
// back out of the warehouse fact table, with clean revenue split away from
// the rows the injected defects poisoned.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/edqm-seeder/pkg/dataset"
	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

const feedName = "dashboard_feed"

// Column aliases are quoted so Snowflake returns them lowercase and sqlx can
// bind them to the db tags below.
const feedQuery = `
SELECT
    order_date                                        AS "order_date",
    status                                            AS "status",
    count(*)                                          AS "order_count",
    sum(total_amount)                                 AS "total_revenue",
    sum(CASE
        WHEN is_orphan_order
          OR has_negative_amount
          OR has_math_error
          OR is_future_order
          OR has_bad_status
          OR is_duplicate
        THEN 0
        ELSE total_amount
    END)                                              AS "clean_revenue",
    count(CASE WHEN is_orphan_order THEN 1 END)       AS "orphan_orders",
    count(CASE WHEN has_negative_amount THEN 1 END)   AS "negative_amount_orders",
    count(CASE WHEN is_duplicate THEN 1 END)          AS "duplicate_orders",
    count(CASE WHEN is_future_order THEN 1 END)       AS "future_orders",
    count(CASE WHEN has_math_error THEN 1 END)        AS "math_errors",
    count(CASE WHEN has_bad_status THEN 1 END)        AS "bad_status_orders"
FROM FCT_ORDERS
GROUP BY 1, 2
ORDER BY 1, 2`

// Queryer is the slice of sqlx the service needs.
type Queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Sink publishes the finished feed for the dashboard to fetch.
type Sink interface {
	Upload(ctx context.Context, localPath, objectKey string) error
}

// FeedRow is one (day, status) rollup out of the fact table.
type FeedRow struct {
	OrderDate            time.Time       `db:"order_date"`
	Status               string          `db:"status"`
	OrderCount           int64           `db:"order_count"`
	TotalRevenue         decimal.Decimal `db:"total_revenue"`
	CleanRevenue         decimal.Decimal `db:"clean_revenue"`
	OrphanOrders         int64           `db:"orphan_orders"`
	NegativeAmountOrders int64           `db:"negative_amount_orders"`
	DuplicateOrders      int64           `db:"duplicate_orders"`
	FutureOrders         int64           `db:"future_orders"`
	MathErrors           int64           `db:"math_errors"`
	BadStatusOrders      int64           `db:"bad_status_orders"`
}

func feedHeader() []string {
	return []string{
		"order_date", "status", "order_count", "total_revenue", "clean_revenue",
		"orphan_orders", "negative_amount_orders", "duplicate_orders",
		"future_orders", "math_errors", "bad_status_orders",
	}
}

func (r FeedRow) record() []string {
	return []string{
		r.OrderDate.Format(model.DateLayout),
		r.Status,
		fmt.Sprintf("%d", r.OrderCount),
		r.TotalRevenue.StringFixed(2),
		r.CleanRevenue.StringFixed(2),
		fmt.Sprintf("%d", r.OrphanOrders),
		fmt.Sprintf("%d", r.NegativeAmountOrders),
		fmt.Sprintf("%d", r.DuplicateOrders),
		fmt.Sprintf("%d", r.FutureOrders),
		fmt.Sprintf("%d", r.MathErrors),
		fmt.Sprintf("%d", r.BadStatusOrders),
	}
}

// ServiceParams configure the snapshot service. Sink is optional; a nil sink
// leaves the feed on local disk only.
type ServiceParams struct {
	DB        Queryer
	Logger    *logger.Logger
	Sink      Sink
	OutputDir string
}

// Service renders the dashboard feed.
type Service struct {
	db        Queryer
	logg      *logger.Logger
	sink      Sink
	outputDir string
}

// Result describes one snapshot pass.
type Result struct {
	Rows     int
	Path     string
	Uploaded bool
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, errors.New(errors.CodeValidation, "warehouse connection is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "logger is required")
	}
	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Service{
		db:        params.DB,
		logg:      params.Logger,
		sink:      params.Sink,
		outputDir: outputDir,
	}, nil
}

// Run queries the fact table, writes dashboard_feed.csv, and publishes it
// when a sink is configured.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	var rows []FeedRow
	if err := s.db.SelectContext(ctx, &rows, feedQuery); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "querying order rollup")
	}
	if len(rows) == 0 {
		s.logg.Warn(ctx, "fact table returned no rows, writing empty feed")
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	ds := dataset.Dataset{Name: feedName, Header: feedHeader(), Rows: records}
	path, err := ds.WriteCSV(s.outputDir)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "writing dashboard feed")
	}

	result := &Result{Rows: len(rows), Path: path}
	ctx = s.logg.WithDataset(ctx, ds.Filename())
	s.logg.Info(s.logg.WithField(ctx, "rows", len(rows)), "dashboard feed written")

	if s.sink == nil {
		return result, nil
	}
	key := "public_assets/" + ds.Filename()
	if err := s.sink.Upload(ctx, path, key); err != nil {
		s.logg.Warn(ctx, "dashboard feed upload failed, feed is local only")
		return result, nil
	}
	result.Uploaded = true
	s.logg.Info(ctx, "dashboard feed published")
	return result, nil
}
