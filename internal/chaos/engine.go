// Package chaos rewrites a controlled fraction of clean order rows with
// semantically invalid but structurally parseable values, so the downstream
// data-quality layer has a known ground truth to detect against.
package chaos

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/edqm-seeder/pkg/enums"
	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

var validate = validator.New()

// CategoryWeight pairs a defect category with its selection weight.
type CategoryWeight struct {
	Category enums.DefectCategory
	Weight   int
}

// DefaultWeights is the documented category selection policy. The downstream
// dashboard reports counts per category, so these stay stable across runs:
// orphan 20, math_error 20, negative_amount 15, future_order 15,
// bad_status 15, duplicate 15.
func DefaultWeights() []CategoryWeight {
	return []CategoryWeight{
		{enums.DefectOrphan, 20},
		{enums.DefectNegativeAmount, 15},
		{enums.DefectMathError, 20},
		{enums.DefectFutureOrder, 15},
		{enums.DefectBadStatus, 15},
		{enums.DefectDuplicate, 15},
	}
}

// Ghost id ranges sit far above anything the generators allocate, so an
// orphan rewrite is plausible in shape but guaranteed absent from the
// dimension sets (generators allocate sequentially from 1).
const (
	ghostCustomerBase = 90000
	ghostProductBase  = 9000
)

// invalidStatuses are plausible-looking values outside the valid enum set.
var invalidStatuses = []string{"unknown", "in_transit_lost", "SHIPED", "processing_error"}

// EngineParams configure a chaos engine.
type EngineParams struct {
	// Rand drives row selection, category selection, and mutation values.
	Rand *rand.Rand
	// Now anchors future_order mutations.
	Now time.Time
	// Weights overrides the category policy; nil uses DefaultWeights.
	Weights []CategoryWeight
}

// Engine applies defect injection passes over order batches.
type Engine struct {
	rng     *rand.Rand
	now     time.Time
	weights []CategoryWeight
	total   int
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Rand == nil {
		return nil, errors.New(errors.CodeValidation, "random source is required")
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	weights := params.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	total := 0
	for _, cw := range weights {
		if !cw.Category.IsValid() {
			return nil, errors.New(errors.CodeValidation, "unknown defect category in weight table")
		}
		if cw.Weight <= 0 {
			return nil, errors.New(errors.CodeValidation, "category weights must be positive")
		}
		total += cw.Weight
	}
	if total == 0 {
		return nil, errors.New(errors.CodeValidation, "weight table is empty")
	}
	return &Engine{rng: params.Rand, now: now, weights: weights, total: total}, nil
}

// Report is the auditable ground truth of one injection pass. Tags maps an
// output row index to the defect applied to it; rows absent from Tags are
// untouched. For the duplicate category the tagged index is the appended
// copy, never the original row.
type Report struct {
	ErrorRate  float64
	Tags       map[int]enums.DefectCategory
	ByCategory map[enums.DefectCategory]int
}

// Touched returns how many rows carry a defect, duplicates counted as rows.
func (r *Report) Touched() int {
	if r == nil {
		return 0
	}
	return len(r.Tags)
}

type applyParams struct {
	ErrorRate float64 `validate:"gte=0,lte=1"`
}

// Apply selects each row independently with probability errorRate, rewrites
// every selected row under exactly one defect category, and returns the new
// batch with a report. The input slice is never mutated. Row order is
// preserved; duplicate rows are appended after the base batch.
func (e *Engine) Apply(orders []model.Order, errorRate float64) ([]model.Order, *Report, error) {
	if err := validate.Struct(applyParams{ErrorRate: errorRate}); err != nil {
		return nil, nil, errors.Wrap(errors.CodeValidation, err,
			"error rate must be within [0, 1]").WithDetails(map[string]any{"error_rate": errorRate})
	}

	out := make([]model.Order, len(orders))
	copy(out, orders)

	report := &Report{
		ErrorRate:  errorRate,
		Tags:       make(map[int]enums.DefectCategory),
		ByCategory: make(map[enums.DefectCategory]int),
	}

	// Duplicates append rows, so they are collected during the pass and
	// emitted after every in-place rewrite is done. A row is selected at
	// most once, and appended copies are never selected at all.
	var duplicates []model.Order
	for i := range out {
		if e.rng.Float64() >= errorRate {
			continue
		}
		category := e.pickCategory()
		if category == enums.DefectDuplicate {
			duplicates = append(duplicates, out[i])
			continue
		}
		e.mutate(&out[i], category)
		report.Tags[i] = category
		report.ByCategory[category]++
	}

	for _, dup := range duplicates {
		out = append(out, dup)
		report.Tags[len(out)-1] = enums.DefectDuplicate
		report.ByCategory[enums.DefectDuplicate]++
	}

	return out, report, nil
}

func (e *Engine) pickCategory() enums.DefectCategory {
	roll := e.rng.Intn(e.total)
	for _, cw := range e.weights {
		if roll < cw.Weight {
			return cw.Category
		}
		roll -= cw.Weight
	}
	return e.weights[len(e.weights)-1].Category
}

func (e *Engine) mutate(order *model.Order, category enums.DefectCategory) {
	switch category {
	case enums.DefectOrphan:
		// Substitute a plausible-but-absent reference. Never a null or
		// empty id: the defect is a semantic mismatch, not missing data.
		if e.rng.Intn(2) == 0 {
			order.CustomerID = ghostCustomerID(e.rng)
		} else {
			order.ProductID = ghostProductID(e.rng)
		}
	case enums.DefectNegativeAmount:
		order.TotalAmount = order.TotalAmount.Abs().Neg()
	case enums.DefectMathError:
		// A perturbation of at least 5.00 keeps the total well away from
		// quantity*unit_price regardless of rounding.
		delta := decimal.NewFromFloat(5 + e.rng.Float64()*45).Round(2)
		order.TotalAmount = order.TotalAmount.Add(delta)
	case enums.DefectFutureOrder:
		order.OrderDate = e.now.AddDate(0, 0, 1+e.rng.Intn(30))
	case enums.DefectBadStatus:
		order.Status = enums.OrderStatus(invalidStatuses[e.rng.Intn(len(invalidStatuses))])
	}
}

func ghostCustomerID(rng *rand.Rand) string {
	return fmt.Sprintf("CUST-%05d", ghostCustomerBase+rng.Intn(9999))
}

func ghostProductID(rng *rand.Rand) string {
	return fmt.Sprintf("PROD-%04d", ghostProductBase+rng.Intn(999))
}
