package model

import "time"

// Customer is a dimension row. Immutable once generated; reused for every
// day of the backfill.
type Customer struct {
	CustomerID string
	Name       string
	Email      string
	SignupDate time.Time
	Region     string
	Segment    string
}

// CustomerHeader names the customer CSV columns in order.
func CustomerHeader() []string {
	return []string{"customer_id", "name", "email", "signup_date", "region", "segment"}
}

// Record renders the customer as one CSV row.
func (c Customer) Record() []string {
	return []string{
		c.CustomerID,
		c.Name,
		c.Email,
		c.SignupDate.Format(DateLayout),
		c.Region,
		c.Segment,
	}
}
