package number

import (
	"database/sql/driver"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Big is an 18-decimal fixed-point amount backed by a big integer. It is the
// storage and transport form of every collateral, debt and USD value in the
// system; arithmetic happens on *big.Int.
type Big struct {
	i big.Int
}

// FromInt wraps a big integer. A nil input is treated as zero.
func FromInt(v *big.Int) Big {
	var b Big
	if v != nil {
		b.i.Set(v)
	}
	return b
}

// FromDecimal converts a human-readable decimal into 18-decimal fixed point,
// truncating anything beyond 18 places.
func FromDecimal(d decimal.Decimal) Big {
	return FromInt(d.Shift(18).BigInt())
}

// Int returns a copy of the underlying integer.
func (b Big) Int() *big.Int {
	return new(big.Int).Set(&b.i)
}

// Decimal renders the amount as a human-readable decimal.
func (b Big) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(b.Int(), -18)
}

func (b Big) Sign() int {
	return b.i.Sign()
}

func (b Big) String() string {
	return b.i.String()
}

// Scan implements sql.Scanner. Amounts are stored as base-10 strings.
func (b *Big) Scan(value interface{}) error {
	if value == nil {
		b.i.SetInt64(0)
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		b.i.SetInt64(v)
		return nil
	default:
		return fmt.Errorf("number: cannot scan %T into Big", value)
	}

	if s == "" {
		b.i.SetInt64(0)
		return nil
	}

	if _, ok := b.i.SetString(s, 10); !ok {
		return fmt.Errorf("number: invalid integer string %q", s)
	}

	return nil
}

// Value implements driver.Valuer.
func (b Big) Value() (driver.Value, error) {
	return b.i.String(), nil
}

// MarshalJSON renders the raw fixed-point integer as a quoted string to keep
// javascript consumers away from float truncation.
func (b Big) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.i.String() + `"`), nil
}

func (b *Big) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		b.i.SetInt64(0)
		return nil
	}
	if _, ok := b.i.SetString(s, 10); !ok {
		return fmt.Errorf("number: invalid integer string %q", s)
	}
	return nil
}

// MustBig parses a base-10 integer constant and panics on malformed input.
func MustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("number: invalid big integer constant " + s)
	}
	return v
}

// DecimalToFixed scales a decimal by 10^shift and truncates to an integer.
// Used to turn 8-decimal oracle quotes into fixed-point price integers.
func DecimalToFixed(d decimal.Decimal, shift int32) *big.Int {
	return d.Shift(shift).BigInt()
}
