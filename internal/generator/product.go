package generator

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

// ProductParams configure a product dimension build.
type ProductParams struct {
	Count int `validate:"gt=0"`
	Seed  int64
}

// ProductGenerator produces a fixed-size product dimension set with unique
// ids and strictly positive unit prices.
type ProductGenerator struct {
	params ProductParams
	faker  *gofakeit.Faker
	rng    *rand.Rand
}

func NewProductGenerator(params ProductParams) (*ProductGenerator, error) {
	if err := validate.Struct(params); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid product generator params")
	}
	return &ProductGenerator{
		params: params,
		faker:  gofakeit.New(uint64(params.Seed)),
		rng:    rand.New(rand.NewSource(params.Seed)),
	}, nil
}

// Generate returns exactly Count products.
func (g *ProductGenerator) Generate() []model.Product {
	products := make([]model.Product, 0, g.params.Count)
	for i := 1; i <= g.params.Count; i++ {
		products = append(products, model.Product{
			ProductID: fmt.Sprintf("PROD-%04d", i),
			Name:      g.faker.ProductName(),
			Category:  g.faker.ProductCategory(),
			UnitPrice: decimal.NewFromFloat(g.faker.Price(5, 500)).Round(2),
		})
	}
	return products
}
