package generator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductGeneratorCountUniquenessAndPositivePrices(t *testing.T) {
	gen, err := NewProductGenerator(ProductParams{Count: 200, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	products := gen.Generate()
	if len(products) != 200 {
		t.Fatalf("expected 200 products, got %d", len(products))
	}

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ProductID]; dup {
			t.Fatalf("duplicate product id %s", p.ProductID)
		}
		seen[p.ProductID] = struct{}{}

		if !p.UnitPrice.GreaterThan(decimal.Zero) {
			t.Fatalf("product %s has non-positive price %s", p.ProductID, p.UnitPrice)
		}
		if p.Name == "" || p.Category == "" {
			t.Fatalf("product %s missing attributes", p.ProductID)
		}
	}
}

func TestProductGeneratorDeterministicWithSeed(t *testing.T) {
	first, _ := NewProductGenerator(ProductParams{Count: 30, Seed: 7})
	second, _ := NewProductGenerator(ProductParams{Count: 30, Seed: 7})

	a, b := first.Generate(), second.Generate()
	for i := range a {
		if a[i].ProductID != b[i].ProductID || a[i].Name != b[i].Name ||
			a[i].Category != b[i].Category || !a[i].UnitPrice.Equal(b[i].UnitPrice) {
			t.Fatalf("row %d differs between seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestProductGeneratorRejectsNegativeCount(t *testing.T) {
	if _, err := NewProductGenerator(ProductParams{Count: -1, Seed: 1}); err == nil {
		t.Fatal("expected error for negative count")
	}
}
