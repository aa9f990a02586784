// Package backfill drives the day-by-day loop that seeds a full history
// window: dimensions once, then per day a fresh order batch, a chaos pass,
// local persistence, and an optional landing upload. The watermark advances
// only when the whole window persisted.
package backfill

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/angelmondragon/edqm-seeder/internal/chaos"
	"github.com/angelmondragon/edqm-seeder/internal/generator"
	"github.com/angelmondragon/edqm-seeder/internal/watermark"
	"github.com/angelmondragon/edqm-seeder/pkg/config"
	"github.com/angelmondragon/edqm-seeder/pkg/dataset"
	"github.com/angelmondragon/edqm-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
	"github.com/angelmondragon/edqm-seeder/pkg/metrics"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

const uploadRetryBackoff = 500 * time.Millisecond

// LandingSink lands a local dataset file under an object key. Implementations
// must report failures as SINK_UNAVAILABLE; the orchestrator degrades rather
// than aborts when the sink is down.
type LandingSink interface {
	Upload(ctx context.Context, localPath, objectKey string) error
	LandingKey(entity, filename string) string
}

// DayState tracks one calendar day through the processing pipeline.
type DayState int

const (
	DayPending DayState = iota
	DayGenerated
	DayCorrupted
	DayPersisted
	DayFailed
)

func (s DayState) String() string {
	switch s {
	case DayPending:
		return "pending"
	case DayGenerated:
		return "generated"
	case DayCorrupted:
		return "corrupted"
	case DayPersisted:
		return "persisted"
	case DayFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DayResult records the outcome of one day.
type DayResult struct {
	Date     time.Time
	State    DayState
	Orders   int
	Defects  int
	Uploaded bool
	Err      error
}

// Result summarizes a full backfill run.
type Result struct {
	RunID           string
	Start           time.Time
	End             time.Time
	Days            []DayResult
	DaysPersisted   int
	DaysFailed      int
	OrdersGenerated int
	DefectsInjected int
	SinkFailures    int
	WatermarkSet    bool
}

// PartialSuccess reports whether every day persisted locally but at least one
// upload was skipped.
func (r *Result) PartialSuccess() bool {
	return r.DaysFailed == 0 && r.SinkFailures > 0
}

// ServiceParams configure the backfill service.
type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Metrics    *metrics.BackfillMetrics
	Sink       LandingSink
	Watermarks *watermark.Store
	// Now overrides the run's reference clock; nil uses time.Now.
	Now func() time.Time
}

// Service orchestrates one backfill run.
type Service struct {
	cfg        *config.Config
	logg       *logger.Logger
	metrics    *metrics.BackfillMetrics
	sink       LandingSink
	watermarks *watermark.Store
	now        func() time.Time
}

// NewService builds a backfill service. The sink is optional; everything
// else is required.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Watermarks == nil {
		return nil, fmt.Errorf("watermark store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:        params.Config,
		logg:       params.Logger,
		metrics:    params.Metrics,
		sink:       params.Sink,
		watermarks: params.Watermarks,
		now:        now,
	}, nil
}

// Run seeds the whole window. It returns a non-nil error when any day failed
// to generate or persist locally; sink failures only mark the result as
// partial. The watermark is written exactly once, after every day persisted.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	now := s.now()
	end, err := s.windowEnd(now)
	if err != nil {
		return nil, err
	}
	start := end.AddDate(0, 0, -(s.cfg.Backfill.Days - 1))

	seed := s.cfg.Generator.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	result := &Result{RunID: uuid.NewString(), Start: start, End: end}
	ctx = s.logg.WithRunID(ctx, result.RunID)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"window_start": start.Format(model.DateLayout),
		"window_end":   end.Format(model.DateLayout),
		"error_rate":   s.cfg.Chaos.ErrorRate,
	}), "backfill run starting")

	customers, products, err := s.generateDimensions(ctx, seed, start, result)
	if err != nil {
		return nil, err
	}

	orderGen, err := generator.NewOrderGenerator(generator.OrderGeneratorParams{
		Customers: customers,
		Products:  products,
		Allocator: generator.NewIDAllocator(1),
		Rand:      rng,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	engine, err := chaos.NewEngine(chaos.EngineParams{Rand: rng, Now: now})
	if err != nil {
		return nil, err
	}

	seenIDs := make(map[string]struct{})
	var dayErrs error
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dayResult := s.processDay(ctx, day, rng, orderGen, engine, seenIDs, result)
		result.Days = append(result.Days, dayResult)
		if dayResult.State == DayFailed {
			result.DaysFailed++
			s.metrics.IncDayFailed()
			dayErrs = multierr.Append(dayErrs, fmt.Errorf("day %s: %w",
				day.Format(model.DateLayout), dayResult.Err))
			continue
		}
		result.DaysPersisted++
	}

	if dayErrs != nil {
		s.logg.Warn(ctx, "backfill incomplete, watermark not advanced")
		return result, dayErrs
	}

	if err := s.watermarks.Write(end); err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing watermark")
	}
	result.WatermarkSet = true

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"days":          result.DaysPersisted,
		"orders":        result.OrdersGenerated,
		"defects":       result.DefectsInjected,
		"sink_failures": result.SinkFailures,
	}), "backfill run complete")
	return result, nil
}

func (s *Service) windowEnd(now time.Time) (time.Time, error) {
	if s.cfg.Backfill.EndDate == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	end, err := time.Parse(model.DateLayout, s.cfg.Backfill.EndDate)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing backfill end date")
	}
	return end, nil
}

func (s *Service) generateDimensions(ctx context.Context, seed int64, start time.Time, result *Result) ([]model.Customer, []model.Product, error) {
	custGen, err := generator.NewCustomerGenerator(generator.CustomerParams{
		Count:    s.cfg.Generator.NumCustomers,
		Seed:     seed,
		RunStart: start,
	})
	if err != nil {
		return nil, nil, err
	}
	prodGen, err := generator.NewProductGenerator(generator.ProductParams{
		Count: s.cfg.Generator.NumProducts,
		Seed:  seed,
	})
	if err != nil {
		return nil, nil, err
	}

	customers := custGen.Generate()
	products := prodGen.Generate()

	customerRows := make([][]string, 0, len(customers))
	for _, c := range customers {
		customerRows = append(customerRows, c.Record())
	}
	productRows := make([][]string, 0, len(products))
	for _, p := range products {
		productRows = append(productRows, p.Record())
	}

	dims := []struct {
		entity string
		ds     dataset.Dataset
	}{
		{"customers", dataset.Dataset{Name: "customers", Header: model.CustomerHeader(), Rows: customerRows}},
		{"products", dataset.Dataset{Name: "products", Header: model.ProductHeader(), Rows: productRows}},
	}
	for _, dim := range dims {
		path, err := dim.ds.WriteCSV(s.cfg.Backfill.DataDir)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting dimension dataset")
		}
		s.upload(ctx, path, dim.entity, dim.ds.Filename(), result)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customers": len(customers),
		"products":  len(products),
	}), "dimensions generated")
	return customers, products, nil
}

func (s *Service) processDay(ctx context.Context, day time.Time, rng *rand.Rand,
	orderGen *generator.OrderGenerator, engine *chaos.Engine,
	seenIDs map[string]struct{}, result *Result) DayResult {

	started := time.Now()
	dayResult := DayResult{Date: day, State: DayPending}
	dayCtx := s.logg.WithDay(ctx, day.Format(model.DateLayout))

	band := s.cfg.Generator.OrdersMax - s.cfg.Generator.OrdersMin
	numOrders := s.cfg.Generator.OrdersMin
	if band > 0 {
		numOrders += rng.Intn(band + 1)
	}

	orders, err := orderGen.Generate(numOrders, day)
	if err != nil {
		dayResult.State = DayFailed
		dayResult.Err = err
		s.logg.Error(dayCtx, "order generation failed", err)
		return dayResult
	}
	dayResult.State = DayGenerated

	dirty, report, err := engine.Apply(orders, s.cfg.Chaos.ErrorRate)
	if err != nil {
		dayResult.State = DayFailed
		dayResult.Err = err
		s.logg.Error(dayCtx, "chaos pass failed", err)
		return dayResult
	}
	dayResult.State = DayCorrupted
	dayResult.Defects = report.Touched()

	// An id repeat outside the intentional duplicate category is a bug in
	// the allocator, not a data-quality feature.
	for idx, order := range dirty {
		if report.Tags[idx] == enums.DefectDuplicate {
			continue
		}
		if _, collision := seenIDs[order.OrderID]; collision {
			dayResult.State = DayFailed
			dayResult.Err = pkgerrors.New(pkgerrors.CodeStateCorruption,
				fmt.Sprintf("order id %s already allocated on a previous day", order.OrderID))
			s.logg.Error(dayCtx, "order id collision", dayResult.Err)
			return dayResult
		}
		seenIDs[order.OrderID] = struct{}{}
	}

	rows := make([][]string, 0, len(dirty))
	for _, o := range dirty {
		rows = append(rows, o.Record())
	}
	ds := dataset.Dataset{
		Name:   "orders_" + day.Format(model.DateLayout),
		Header: model.OrderHeader(),
		Rows:   rows,
	}
	path, err := ds.WriteCSV(s.cfg.Backfill.DataDir)
	if err != nil {
		dayResult.State = DayFailed
		dayResult.Err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order dataset")
		s.logg.Error(dayCtx, "order dataset persistence failed", err)
		return dayResult
	}
	dayResult.State = DayPersisted
	dayResult.Orders = len(dirty)

	result.OrdersGenerated += len(dirty)
	result.DefectsInjected += report.Touched()
	s.metrics.IncDayProcessed()
	s.metrics.AddOrdersGenerated(len(dirty))
	for category, count := range report.ByCategory {
		for i := 0; i < count; i++ {
			s.metrics.IncDefectInjected(category.String())
		}
	}
	s.metrics.ObserveDayDuration(time.Since(started))

	dayResult.Uploaded = s.upload(dayCtx, path, "orders", ds.Filename(), result)
	return dayResult
}

// upload lands a dataset file, retrying once. Failures degrade to warnings:
// the day stays persisted and the run continues.
func (s *Service) upload(ctx context.Context, localPath, entity, filename string, result *Result) bool {
	if s.sink == nil {
		return false
	}
	key := s.sink.LandingKey(entity, filename)

	backoff := retry.WithMaxRetries(1, retry.NewConstant(uploadRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.sink.Upload(ctx, localPath, key); err != nil {
			if typed := pkgerrors.As(err); typed != nil && pkgerrors.MetadataFor(typed.Code()).Retryable {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		result.SinkFailures++
		s.metrics.IncSinkFailure()
		s.logg.Warn(s.logg.WithDataset(ctx, key), "upload failed after retry, continuing local-only")
		return false
	}
	return true
}
