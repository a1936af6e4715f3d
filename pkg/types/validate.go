package types

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// attributionSet holds the enumeration as []interface{} for the In rule.
var attributionSet = func() []interface{} {
	out := make([]interface{}, len(attributionValues))
	for i, v := range attributionValues {
		out[i] = v
	}
	return out
}()

// Validate checks field presence, numeric ranges, and categorical values.
// Rules mirror the bounds the models were trained under.
func (c CustomerInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RecencyDays, validation.Min(0)),
		validation.Field(&c.Frequency, validation.Required, validation.Min(1)),
		validation.Field(&c.Monetary, validation.Min(0.0)),
		validation.Field(&c.AvgOrderValue, validation.Min(0.0)),
		validation.Field(&c.TotalItemsSold, validation.Min(0)),
		validation.Field(&c.Attribution, validation.Required, validation.In(attributionSet...)),
		validation.Field(&c.CustomerType, validation.Required, validation.In(CustomerTypeNew, CustomerTypeReturning)),
	)
}
