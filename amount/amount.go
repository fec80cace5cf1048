// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package amount

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrArithmetic is returned when an amount operation overflows, underflows
// or a negative value is converted to an unsigned amount.
var ErrArithmetic = errors.New("amount arithmetic error")

var (
	_ rlp.Encoder = (*Amount)(nil)
	_ rlp.Decoder = (*Amount)(nil)
)

// Amount is a non-negative number of atoms, bounded to 128 bits.
// The zero value is a valid zero amount.
type Amount struct {
	v uint256.Int
}

// Zero is the zero amount.
var Zero = Amount{}

// MaxAmount is the largest representable amount, 2^128-1.
var MaxAmount = Amount{v: uint256.Int{^uint64(0), ^uint64(0), 0, 0}}

// fits128 reports whether x uses at most the two low limbs.
func fits128(x *uint256.Int) bool {
	return x[2] == 0 && x[3] == 0
}

// FromAtoms creates an amount from a uint64.
func FromAtoms(atoms uint64) Amount {
	var a Amount
	a.v.SetUint64(atoms)
	return a
}

// FromBig converts a big integer into an amount.
func FromBig(b *big.Int) (Amount, error) {
	if b == nil || b.Sign() < 0 {
		return Amount{}, errors.Wrap(ErrArithmetic, "negative or nil amount")
	}
	v, overflow := uint256.FromBig(b)
	if overflow || !fits128(v) {
		return Amount{}, errors.Wrapf(ErrArithmetic, "amount %v out of range", b)
	}
	return Amount{v: *v}, nil
}

// Parse parses a decimal string into an amount.
func Parse(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, errors.Wrapf(err, "parse amount %q", s)
	}
	if !fits128(v) {
		return Amount{}, errors.Wrapf(ErrArithmetic, "amount %s out of range", s)
	}
	return Amount{v: *v}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, failing on overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	r.v.Add(&a.v, &b.v)
	if !fits128(&r.v) {
		return Amount{}, errors.Wrapf(ErrArithmetic, "%v + %v overflows", a, b)
	}
	return r, nil
}

// Sub returns a-b, failing when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, errors.Wrapf(ErrArithmetic, "%v - %v underflows", a, b)
	}
	return r, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero returns whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint64 returns the amount as uint64 and whether it fitted.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// ToBig returns the amount as a new big integer.
func (a Amount) ToBig() *big.Int {
	return a.v.ToBig()
}

// ToSigned converts the amount into a signed amount. It never fails.
func (a Amount) ToSigned() SignedAmount {
	return SignedAmount{abs: a.v}
}

// String returns the decimal representation.
func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (a Amount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, a.v.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (a *Amount) DecodeRLP(s *rlp.Stream) error {
	b, err := s.BigInt()
	if err != nil {
		return err
	}
	parsed, err := FromBig(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddSigned applies a signed change to an absolute amount.
func AddSigned(a Amount, d SignedAmount) (Amount, error) {
	r, err := a.ToSigned().Add(d)
	if err != nil {
		return Amount{}, err
	}
	return r.ToAmount()
}

// Diff returns the signed difference a-b. It never fails since both
// operands are bounded to 128 bits.
func Diff(a, b Amount) SignedAmount {
	d, _ := a.ToSigned().Sub(b.ToSigned())
	return d
}
