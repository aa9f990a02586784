package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/edqm-seeder/pkg/enums"
)

// DateLayout is the ISO calendar date format used across every output file.
const DateLayout = "2006-01-02"

// Order is a fact row referencing the customer and product dimensions.
// A freshly generated order satisfies every invariant; the chaos engine may
// later rewrite any field except the column layout.
type Order struct {
	OrderID     string
	OrderDate   time.Time
	CustomerID  string
	ProductID   string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Status      enums.OrderStatus
}

// OrderHeader names the order CSV columns in order.
func OrderHeader() []string {
	return []string{
		"order_id", "order_date", "customer_id", "product_id",
		"quantity", "unit_price", "total_amount", "status",
	}
}

// Record renders the order as one CSV row. Corrupted rows stay parseable:
// defects are semantic, never structural.
func (o Order) Record() []string {
	return []string{
		o.OrderID,
		o.OrderDate.Format(DateLayout),
		o.CustomerID,
		o.ProductID,
		strconv.Itoa(o.Quantity),
		o.UnitPrice.StringFixed(2),
		o.TotalAmount.StringFixed(2),
		o.Status.String(),
	}
}

// ArithmeticConsistent reports whether total_amount equals quantity*unit_price.
func (o Order) ArithmeticConsistent() bool {
	expected := o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
	return o.TotalAmount.Equal(expected)
}
