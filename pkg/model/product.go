package model

import "github.com/shopspring/decimal"

// Product is a dimension row. Immutable once generated.
type Product struct {
	ProductID string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
}

// ProductHeader names the product CSV columns in order.
func ProductHeader() []string {
	return []string{"product_id", "name", "category", "unit_price"}
}

// Record renders the product as one CSV row.
func (p Product) Record() []string {
	return []string{
		p.ProductID,
		p.Name,
		p.Category,
		p.UnitPrice.StringFixed(2),
	}
}
