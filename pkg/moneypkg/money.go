// Package moneypkg provides common money amount related functionality for apps.
package moneypkg

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// MaxScale is the largest number of decimal places an amount may carry.
	MaxScale = 8
	// MaxIntegerDigits is the largest number of digits before the decimal point.
	MaxIntegerDigits = 15

	maxInputLen = 64
)

var (
	// ErrNotANumber indicates that the text does not hold a decimal number.
	ErrNotANumber = errors.New("not a number")
	// ErrOutOfRange indicates a number too large or too precise to be an amount.
	ErrOutOfRange = errors.New("amount out of range")
)

// Parse reads a decimal amount, ignoring surrounding whitespace.
// Amounts with more than MaxScale decimals or MaxIntegerDigits integer digits are rejected
// before any arithmetic is done on them.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrNotANumber
	}

	if len(s) > maxInputLen {
		return decimal.Zero, ErrOutOfRange
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}

	exp := d.Exponent()
	if exp < -MaxScale || exp > MaxIntegerDigits {
		return decimal.Zero, ErrOutOfRange
	}

	if d.NumDigits()+int(exp) > MaxIntegerDigits {
		return decimal.Zero, ErrOutOfRange
	}

	return d, nil
}

// Format renders an amount with two decimals and the given currency symbol.
func Format(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

// Amount is an amount in a JSON request body. It accepts both "12.50" and 12.50.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*a = Amount(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*a = Amount(n.String())

	return nil
}

// ValidAmount validates whether the field holds a decimal number.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	_, err := Parse(field.String())

	return err == nil
}
