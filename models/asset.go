package models

import "fmt"

// Asset is a currency-denominated amount: a signed fixed-point integer
// scaled by the currency's declared decimal precision. An asset with
// value 30000, currency "BET" and precision 4 reads as 3.0000 BET.
type Asset struct {
	Value     int64
	Currency  string
	Precision int
}

// NewAsset builds an asset from a raw scaled value.
func NewAsset(value int64, currency string, precision int) Asset {
	return Asset{Value: value, Currency: currency, Precision: precision}
}

func (a Asset) String() string {
	v := a.Value
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	scale := int64(1)
	for i := 0; i < a.Precision; i++ {
		scale *= 10
	}
	if a.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, v, a.Currency)
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, v/scale, a.Precision, v%scale, a.Currency)
}

// IsPositive reports whether the asset carries a strictly positive value.
func (a Asset) IsPositive() bool {
	return a.Value > 0
}
