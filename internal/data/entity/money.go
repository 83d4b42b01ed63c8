package entity

import "github.com/shopspring/decimal"

// MaxMoney is the smallest amount a NUMERIC(12,2) column cannot store.
var MaxMoney = decimal.New(1, 10)

// CheckMoneyLimit records a field error when d does not fit the money columns.
// An existing error for the field is kept.
func CheckMoneyLimit(errs map[string]string, field string, d decimal.Decimal) {
	if _, taken := errs[field]; taken {
		return
	}
	if d.Abs().GreaterThanOrEqual(MaxMoney) {
		errs[field] = "Must be less than " + MaxMoney.String()
	}
}
