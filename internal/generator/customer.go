// Package generator produces the synthetic dimension and fact datasets the
// seeder backfills: customers, products, and referentially-valid order
// batches. All randomness flows through seedable sources so test runs can be
// reproduced exactly.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

var validate = validator.New()

var regions = []string{"north_america", "emea", "apac", "latam"}

var segments = []string{"consumer", "smb", "enterprise"}

// CustomerParams configure a customer dimension build.
type CustomerParams struct {
	Count int `validate:"gt=0"`
	Seed  int64
	// RunStart anchors signup dates: every customer signed up before the
	// backfill window opens.
	RunStart time.Time
}

// CustomerGenerator produces a fixed-size customer dimension set.
type CustomerGenerator struct {
	params CustomerParams
	faker  *gofakeit.Faker
	rng    *rand.Rand
}

func NewCustomerGenerator(params CustomerParams) (*CustomerGenerator, error) {
	if err := validate.Struct(params); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid customer generator params")
	}
	if params.RunStart.IsZero() {
		params.RunStart = time.Now()
	}
	return &CustomerGenerator{
		params: params,
		faker:  gofakeit.New(uint64(params.Seed)),
		rng:    rand.New(rand.NewSource(params.Seed)),
	}, nil
}

// Generate returns exactly Count customers with unique sequential ids.
func (g *CustomerGenerator) Generate() []model.Customer {
	customers := make([]model.Customer, 0, g.params.Count)
	for i := 1; i <= g.params.Count; i++ {
		signupDaysAgo := 1 + g.rng.Intn(5*365)
		customers = append(customers, model.Customer{
			CustomerID: fmt.Sprintf("CUST-%05d", i),
			Name:       g.faker.Name(),
			Email:      g.faker.Email(),
			SignupDate: g.params.RunStart.AddDate(0, 0, -signupDaysAgo),
			Region:     regions[g.rng.Intn(len(regions))],
			Segment:    segments[g.rng.Intn(len(segments))],
		})
	}
	return customers
}
