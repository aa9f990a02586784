package generator

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/edqm-seeder/pkg/enums"
	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

const maxQuantity = 10

// statusWeights skew order status toward completed states, with a minority
// of exceptional ones. Weights are percentages.
var statusWeights = []struct {
	status enums.OrderStatus
	weight int
}{
	{enums.OrderStatusDelivered, 45},
	{enums.OrderStatusShipped, 30},
	{enums.OrderStatusPending, 15},
	{enums.OrderStatusCancelled, 7},
	{enums.OrderStatusRefunded, 3},
}

// OrderGenerator produces one day's batch of clean order facts referencing
// the shared dimension sets. Order ids come from the allocator, so batches
// built for different days never collide.
type OrderGenerator struct {
	customers []model.Customer
	products  []model.Product
	alloc     *IDAllocator
	rng       *rand.Rand
	now       time.Time
}

// OrderGeneratorParams configure a generator shared across the run.
type OrderGeneratorParams struct {
	Customers []model.Customer
	Products  []model.Product
	Allocator *IDAllocator
	Rand      *rand.Rand
	// Now is the run's reference time; freshly generated orders are never
	// stamped after it.
	Now time.Time
}

func NewOrderGenerator(params OrderGeneratorParams) (*OrderGenerator, error) {
	if len(params.Customers) == 0 {
		return nil, errors.New(errors.CodePrecondition, "customer dimension set is empty")
	}
	if len(params.Products) == 0 {
		return nil, errors.New(errors.CodePrecondition, "product dimension set is empty")
	}
	if params.Allocator == nil {
		return nil, errors.New(errors.CodeValidation, "id allocator is required")
	}
	if params.Rand == nil {
		return nil, errors.New(errors.CodeValidation, "random source is required")
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &OrderGenerator{
		customers: params.Customers,
		products:  params.Products,
		alloc:     params.Allocator,
		rng:       params.Rand,
		now:       now,
	}, nil
}

// Generate returns numOrders clean rows stamped with the given date. Every
// row satisfies the fact invariants: valid references, consistent totals,
// valid status, no future date.
func (g *OrderGenerator) Generate(numOrders int, date time.Time) ([]model.Order, error) {
	if numOrders <= 0 {
		return nil, errors.New(errors.CodeValidation, "order count must be positive")
	}
	if date.After(g.now) {
		return nil, errors.New(errors.CodeValidation, "order date is in the future")
	}

	orders := make([]model.Order, 0, numOrders)
	for i := 0; i < numOrders; i++ {
		customer := g.customers[g.rng.Intn(len(g.customers))]
		product := g.products[g.rng.Intn(len(g.products))]
		quantity := 1 + g.rng.Intn(maxQuantity)

		orders = append(orders, model.Order{
			OrderID:     g.alloc.Next(),
			OrderDate:   date,
			CustomerID:  customer.CustomerID,
			ProductID:   product.ProductID,
			Quantity:    quantity,
			UnitPrice:   product.UnitPrice,
			TotalAmount: product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			Status:      g.pickStatus(),
		})
	}
	return orders, nil
}

func (g *OrderGenerator) pickStatus() enums.OrderStatus {
	total := 0
	for _, sw := range statusWeights {
		total += sw.weight
	}
	roll := g.rng.Intn(total)
	for _, sw := range statusWeights {
		if roll < sw.weight {
			return sw.status
		}
		roll -= sw.weight
	}
	return statusWeights[0].status
}
