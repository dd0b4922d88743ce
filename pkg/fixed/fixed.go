// Package fixed implements unsigned 18-decimal fixed-point arithmetic with
// explicit rounding direction. Amounts paid out round down, amounts charged
// round up, so rounding error never leaks value out of the pool.
package fixed

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// one is the scaling factor: values are integers scaled by 10^18.
var one = uint256.NewInt(1_000_000_000_000_000_000)

// Value is an unsigned fixed-point number scaled by 10^18.
// The zero Value is 0 and ready to use.
type Value struct {
	n uint256.Int
}

// Zero returns the zero value.
func Zero() Value { return Value{} }

// One returns 1.0 (10^18 raw).
func One() Value {
	var v Value
	v.n.Set(one)
	return v
}

// FromUnits returns x as a fixed-point value (x * 10^18).
func FromUnits(x uint64) Value {
	var v Value
	v.n.SetUint64(x)
	v.n.Mul(&v.n, one)
	return v
}

// FromRaw wraps an already-scaled integer.
func FromRaw(raw *uint256.Int) Value {
	var v Value
	v.n.Set(raw)
	return v
}

// FromBig converts an already-scaled big.Int (e.g. an ABI-decoded uint256).
// Returns an error for negative values or values above 2^256-1.
func FromBig(b *big.Int) (Value, error) {
	u, overflow := uint256.FromBig(b)
	if overflow || b.Sign() < 0 {
		return Value{}, fmt.Errorf("fixed: value out of range: %s", b)
	}
	return FromRaw(u), nil
}

// Parse parses a decimal string like "1.5" or "30" into a Value.
// At most 18 fractional digits are allowed.
func Parse(s string) (Value, error) {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 18 {
		return Value{}, fmt.Errorf("fixed: more than 18 fractional digits: %q", s)
	}
	whole, err := uint256.FromDecimal(intPart)
	if err != nil {
		return Value{}, fmt.Errorf("fixed: bad integer part %q: %w", s, err)
	}
	// Right-pad the fraction to 18 digits.
	frac := uint256.NewInt(0)
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", 18-len(fracPart))
		frac, err = uint256.FromDecimal(padded)
		if err != nil {
			return Value{}, fmt.Errorf("fixed: bad fractional part %q: %w", s, err)
		}
	}
	var v Value
	if _, overflow := v.n.MulOverflow(whole, one); overflow {
		return Value{}, fmt.Errorf("fixed: overflow: %q", s)
	}
	if _, overflow := v.n.AddOverflow(&v.n, frac); overflow {
		return Value{}, fmt.Errorf("fixed: overflow: %q", s)
	}
	return v, nil
}

// MustParse is Parse that panics. For constants and tests.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Raw returns a copy of the underlying scaled integer.
func (v Value) Raw() *uint256.Int {
	out := new(uint256.Int)
	out.Set(&v.n)
	return out
}

// Big returns the scaled integer as a big.Int (for ABI encoding).
func (v Value) Big() *big.Int { return v.n.ToBig() }

func (v Value) IsZero() bool     { return v.n.IsZero() }
func (v Value) Cmp(o Value) int  { return v.n.Cmp(&o.n) }
func (v Value) Lt(o Value) bool  { return v.n.Lt(&o.n) }
func (v Value) Gt(o Value) bool  { return v.n.Gt(&o.n) }
func (v Value) Lte(o Value) bool { return !v.n.Gt(&o.n) }
func (v Value) Gte(o Value) bool { return !v.n.Lt(&o.n) }
func (v Value) Eq(o Value) bool  { return v.n.Eq(&o.n) }

// Add returns v + o, panicking on overflow.
func (v Value) Add(o Value) Value {
	var out Value
	if _, overflow := out.n.AddOverflow(&v.n, &o.n); overflow {
		panic("fixed: add overflow")
	}
	return out
}

// Sub returns v - o, panicking on underflow. Callers compare first.
func (v Value) Sub(o Value) Value {
	var out Value
	if _, underflow := out.n.SubOverflow(&v.n, &o.n); underflow {
		panic("fixed: sub underflow")
	}
	return out
}

// Min returns the smaller of v and o.
func (v Value) Min(o Value) Value {
	if v.n.Lt(&o.n) {
		return v
	}
	return o
}

// MulDown returns v*o rounded toward zero.
func (v Value) MulDown(o Value) Value {
	var out Value
	if _, overflow := out.n.MulOverflow(&v.n, &o.n); overflow {
		panic("fixed: mul overflow")
	}
	out.n.Div(&out.n, one)
	return out
}

// MulUp returns v*o rounded away from zero.
func (v Value) MulUp(o Value) Value {
	var out Value
	if _, overflow := out.n.MulOverflow(&v.n, &o.n); overflow {
		panic("fixed: mul overflow")
	}
	if out.n.IsZero() {
		return out
	}
	// ceil(p / one) = (p - 1) / one + 1 for p > 0
	out.n.Sub(&out.n, uint256.NewInt(1))
	out.n.Div(&out.n, one)
	out.n.Add(&out.n, uint256.NewInt(1))
	return out
}

// DivDown returns v/o rounded toward zero. Panics if o is zero; callers
// guarantee a non-zero execution price before dividing.
func (v Value) DivDown(o Value) Value {
	if o.n.IsZero() {
		panic("fixed: division by zero")
	}
	var out Value
	if _, overflow := out.n.MulOverflow(&v.n, one); overflow {
		panic("fixed: div overflow")
	}
	out.n.Div(&out.n, &o.n)
	return out
}

// DivUp returns v/o rounded away from zero. Panics if o is zero.
func (v Value) DivUp(o Value) Value {
	if o.n.IsZero() {
		panic("fixed: division by zero")
	}
	if v.n.IsZero() {
		return Value{}
	}
	var out Value
	if _, overflow := out.n.MulOverflow(&v.n, one); overflow {
		panic("fixed: div overflow")
	}
	out.n.Sub(&out.n, uint256.NewInt(1))
	out.n.Div(&out.n, &o.n)
	out.n.Add(&out.n, uint256.NewInt(1))
	return out
}

// String renders the value as a decimal, trimming trailing fractional zeros.
func (v Value) String() string {
	var whole, frac uint256.Int
	whole.Div(&v.n, one)
	frac.Mod(&v.n, one)
	if frac.IsZero() {
		return whole.Dec()
	}
	fracStr := frac.Dec()
	// Left-pad to 18 digits, then trim trailing zeros.
	fracStr = strings.Repeat("0", 18-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return whole.Dec() + "." + fracStr
}

// MarshalJSON encodes the value as a quoted decimal string.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted decimal string.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
