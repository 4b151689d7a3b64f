package core

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// DivisionPrecision is the number of significant digits kept by DIV and SQRT.
const DivisionPrecision = 128

var (
	// Precision 0 disables rounding, so ADD, SUB and MUL stay exact.
	exactContext = apd.Context{
		Precision:   0,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfEven,
	}

	divContext = apd.Context{
		Precision:   DivisionPrecision,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfEven,
	}

	decimalZero = apd.New(0, 0)
	decimalOne  = apd.New(1, 0)
)

func add(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exactContext.Add(d, x, y); err != nil {
		return nil, err
	}
	return d, nil
}

func sub(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exactContext.Sub(d, x, y); err != nil {
		return nil, err
	}
	return d, nil
}

func mul(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exactContext.Mul(d, x, y); err != nil {
		return nil, err
	}
	return d, nil
}

// quo divides under the 128-digit half-even context. Exact quotients are
// trimmed toward the ideal exponent, so 10/2 is 5 rather than 5.000….
func quo(dividend, divisor *apd.Decimal) (*apd.Decimal, error) {
	if divisor.IsZero() {
		return nil, ErrDivisionByZero
	}

	d := new(apd.Decimal)
	if _, err := divContext.Quo(d, dividend, divisor); err != nil {
		return nil, err
	}

	check, err := mul(d, divisor)
	if err == nil && check.Cmp(dividend) == 0 {
		trimToIdeal(d, dividend.Exponent-divisor.Exponent)
	}

	return d, nil
}

// sqrt returns the principal square root under the 128-digit context.
func sqrt(x *apd.Decimal) (*apd.Decimal, error) {
	if x.Sign() < 0 {
		return nil, ErrNegativeSqrt
	}

	d := new(apd.Decimal)
	if _, err := divContext.Sqrt(d, x); err != nil {
		return nil, err
	}

	check, err := mul(d, d)
	if err == nil && check.Cmp(x) == 0 {
		trimToIdeal(d, x.Exponent/2)
	}

	return d, nil
}

func trimToIdeal(d *apd.Decimal, ideal int32) {
	d.Reduce(d)
	if d.Exponent <= ideal {
		return
	}

	q := new(apd.Decimal)
	if _, err := divContext.Quantize(q, d, ideal); err == nil {
		d.Set(q)
	}
}

// rem returns dividend mod divisor for integral operands, truncating toward
// zero, so the result has the sign of the dividend.
func rem(dividend, divisor *apd.Decimal) (*apd.Decimal, error) {
	a, ok := toBigInt(dividend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInteger, dividend)
	}
	b, ok := toBigInt(divisor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInteger, divisor)
	}
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}

	r := new(big.Int).Rem(a, b)
	d, _, err := apd.NewFromString(r.String())
	if err != nil {
		return nil, err
	}
	return d, nil
}

func toBigInt(d *apd.Decimal) (*big.Int, bool) {
	if d.IsZero() {
		return new(big.Int), true
	}

	var r apd.Decimal
	r.Reduce(d)
	if r.Exponent < 0 {
		return nil, false
	}

	return new(big.Int).SetString(r.Text('f'), 10)
}
