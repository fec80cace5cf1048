// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package amount

import (
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	_ rlp.Encoder = (*SignedAmount)(nil)
	_ rlp.Decoder = (*SignedAmount)(nil)
)

// SignedAmount is a signed change of an amount, used for differential
// accounting. Its magnitude is bounded by MaxAmount, so every Amount converts
// to a SignedAmount and negation never fails.
// Zero is always non-negative, which keeps the type comparable with ==.
type SignedAmount struct {
	neg bool
	abs uint256.Int
}

// SignedFromAtoms creates a signed amount from an int64.
func SignedFromAtoms(atoms int64) SignedAmount {
	var s SignedAmount
	if atoms < 0 {
		s.neg = true
		// two's complement negation also covers math.MinInt64
		s.abs.SetUint64(uint64(^atoms) + 1)
	} else {
		s.abs.SetUint64(uint64(atoms))
	}
	return s
}

// SignedFromBig converts a big integer into a signed amount.
func SignedFromBig(b *big.Int) (SignedAmount, error) {
	if b == nil {
		return SignedAmount{}, errors.Wrap(ErrArithmetic, "nil signed amount")
	}
	abs, overflow := uint256.FromBig(new(big.Int).Abs(b))
	if overflow || !fits128(abs) {
		return SignedAmount{}, errors.Wrapf(ErrArithmetic, "signed amount %v out of range", b)
	}
	return newSigned(b.Sign() < 0, abs), nil
}

// ParseSigned parses a decimal string with an optional sign.
func ParseSigned(s string) (SignedAmount, error) {
	neg := false
	digits := s
	switch {
	case strings.HasPrefix(s, "-"):
		neg, digits = true, s[1:]
	case strings.HasPrefix(s, "+"):
		digits = s[1:]
	}
	a, err := Parse(digits)
	if err != nil {
		return SignedAmount{}, errors.Wrapf(err, "parse signed amount %q", s)
	}
	return newSigned(neg, &a.v), nil
}

// MustParseSigned is like ParseSigned but panics on error.
func MustParseSigned(s string) SignedAmount {
	a, err := ParseSigned(s)
	if err != nil {
		panic(err)
	}
	return a
}

func newSigned(neg bool, abs *uint256.Int) SignedAmount {
	return SignedAmount{neg: neg && !abs.IsZero(), abs: *abs}
}

// Add returns s+o, failing if the magnitude exceeds MaxAmount.
func (s SignedAmount) Add(o SignedAmount) (SignedAmount, error) {
	if s.neg == o.neg {
		var abs uint256.Int
		abs.Add(&s.abs, &o.abs)
		if !fits128(&abs) {
			return SignedAmount{}, errors.Wrapf(ErrArithmetic, "%v + %v overflows", s, o)
		}
		return newSigned(s.neg, &abs), nil
	}
	// opposite signs: the larger magnitude decides the sign
	var abs uint256.Int
	if s.abs.Cmp(&o.abs) >= 0 {
		abs.Sub(&s.abs, &o.abs)
		return newSigned(s.neg, &abs), nil
	}
	abs.Sub(&o.abs, &s.abs)
	return newSigned(o.neg, &abs), nil
}

// Sub returns s-o.
func (s SignedAmount) Sub(o SignedAmount) (SignedAmount, error) {
	return s.Add(o.Neg())
}

// Neg returns -s.
func (s SignedAmount) Neg() SignedAmount {
	return newSigned(!s.neg, &s.abs)
}

// ToAmount converts to an unsigned amount, failing if negative.
func (s SignedAmount) ToAmount() (Amount, error) {
	if s.neg {
		return Amount{}, errors.Wrapf(ErrArithmetic, "negative amount %v", s)
	}
	return Amount{v: s.abs}, nil
}

// Abs returns the magnitude.
func (s SignedAmount) Abs() Amount {
	return Amount{v: s.abs}
}

// Sign returns -1, 0 or +1.
func (s SignedAmount) Sign() int {
	switch {
	case s.abs.IsZero():
		return 0
	case s.neg:
		return -1
	default:
		return 1
	}
}

// IsZero returns whether the signed amount is zero.
func (s SignedAmount) IsZero() bool {
	return s.abs.IsZero()
}

// IsNegative returns whether the signed amount is below zero.
func (s SignedAmount) IsNegative() bool {
	return s.neg
}

// ToBig returns the value as a new big integer.
func (s SignedAmount) ToBig() *big.Int {
	b := s.abs.ToBig()
	if s.neg {
		b.Neg(b)
	}
	return b
}

// String returns the signed decimal representation.
func (s SignedAmount) String() string {
	if s.neg {
		return "-" + s.abs.Dec()
	}
	return s.abs.Dec()
}

// MarshalText implements encoding.TextMarshaler.
func (s SignedAmount) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SignedAmount) UnmarshalText(text []byte) error {
	parsed, err := ParseSigned(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
// The value is encoded as the list [negative, magnitude].
func (s SignedAmount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []interface{}{s.neg, s.abs.ToBig()})
}

// DecodeRLP implements rlp.Decoder.
func (s *SignedAmount) DecodeRLP(stream *rlp.Stream) error {
	if _, err := stream.List(); err != nil {
		return err
	}
	neg, err := stream.Bool()
	if err != nil {
		return err
	}
	b, err := stream.BigInt()
	if err != nil {
		return err
	}
	if err := stream.ListEnd(); err != nil {
		return err
	}
	abs, err := FromBig(b)
	if err != nil {
		return err
	}
	if neg && abs.IsZero() {
		return errors.New("rlp: non-canonical negative zero")
	}
	*s = newSigned(neg, &abs.v)
	return nil
}
