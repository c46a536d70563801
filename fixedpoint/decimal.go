/*
 * RTM - The transaction manifest language and resource engine
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fixedpoint

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ledgerworks/rtm/errors"
)

// Decimal is a signed fixed-point number with 18 fractional digits.
// Its raw representation is a signed 256-bit integer scaled by 10^18.
//
// Decimals are immutable. The zero value is zero.
type Decimal struct {
	raw *big.Int
}

var zeroBig = new(big.Int)

var Zero = Decimal{}

// NewDecimalFromInt returns the decimal for the given whole number.
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{
		raw: new(big.Int).Mul(big.NewInt(i), decimalFactorBig),
	}
}

// MustDecimal parses the given decimal literal, panicking if it is invalid.
// Intended for constants and tests.
func MustDecimal(literal string) Decimal {
	d, err := ParseDecimal(literal)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimalFromRaw returns the decimal with the given raw, scaled representation.
func NewDecimalFromRaw(raw *big.Int) (Decimal, error) {
	if !CheckRange(raw) {
		return Decimal{}, OverflowError{}
	}
	return Decimal{raw: new(big.Int).Set(raw)}, nil
}

// ParseDecimal parses a decimal literal of the form [-]digits[.digits].
func ParseDecimal(literal string) (Decimal, error) {
	s := literal

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	integerPart, fractionalPart, hasPoint := strings.Cut(s, ".")
	if integerPart == "" || (hasPoint && fractionalPart == "") {
		return Decimal{}, MalformedDecimalError{Literal: literal}
	}
	if !isDigits(integerPart) || !isDigits(fractionalPart) {
		return Decimal{}, MalformedDecimalError{Literal: literal}
	}

	unsignedInteger, _ := new(big.Int).SetString(integerPart, 10)

	fractional := new(big.Int)
	if fractionalPart != "" {
		fractional.SetString(fractionalPart, 10)
	}

	raw, ok := ConvertToFixedPointBigInt(
		negative,
		unsignedInteger,
		fractional,
		uint(len(fractionalPart)),
		DecimalScale,
	)
	if !ok {
		return Decimal{}, MalformedDecimalError{
			Literal: literal,
			Reason:  fmt.Sprintf("more than %d fractional digits", DecimalScale),
		}
	}

	if !CheckRange(raw) {
		return Decimal{}, OverflowError{}
	}

	return Decimal{raw: raw}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (d Decimal) bigInt() *big.Int {
	if d.raw == nil {
		return zeroBig
	}
	return d.raw
}

// Raw returns a copy of the raw, scaled representation.
func (d Decimal) Raw() *big.Int {
	return new(big.Int).Set(d.bigInt())
}

func (d Decimal) Sign() int {
	return d.bigInt().Sign()
}

func (d Decimal) IsZero() bool {
	return d.Sign() == 0
}

func (d Decimal) IsNegative() bool {
	return d.Sign() < 0
}

func (d Decimal) Cmp(other Decimal) int {
	return d.bigInt().Cmp(other.bigInt())
}

func (d Decimal) Equal(other Decimal) bool {
	return d.Cmp(other) == 0
}

func (d Decimal) Add(other Decimal) (Decimal, error) {
	return NewDecimalFromRaw(new(big.Int).Add(d.bigInt(), other.bigInt()))
}

func (d Decimal) Sub(other Decimal) (Decimal, error) {
	return NewDecimalFromRaw(new(big.Int).Sub(d.bigInt(), other.bigInt()))
}

func (d Decimal) Neg() (Decimal, error) {
	return NewDecimalFromRaw(new(big.Int).Neg(d.bigInt()))
}

// HasDivisibility returns true if the decimal has at most
// the given number of fractional digits.
func (d Decimal) HasDivisibility(divisibility uint8) bool {
	return CheckDivisibility(d.bigInt(), divisibility)
}

// Truncate returns the whole part of the decimal, rounded towards zero.
func (d Decimal) Truncate() *big.Int {
	return new(big.Int).Quo(d.bigInt(), decimalFactorBig)
}

// String returns the canonical literal form:
// no trailing fractional zeros and no decimal point for whole numbers.
func (d Decimal) String() string {
	raw := d.bigInt()

	abs := new(big.Int).Abs(raw)
	integer, fractional := new(big.Int).QuoRem(abs, decimalFactorBig, new(big.Int))

	var builder strings.Builder
	if raw.Sign() < 0 {
		builder.WriteByte('-')
	}
	builder.WriteString(integer.String())

	if fractional.Sign() != 0 {
		digits := fractional.String()
		digits = strings.Repeat("0", DecimalScale-len(digits)) + digits
		builder.WriteByte('.')
		builder.WriteString(strings.TrimRight(digits, "0"))
	}

	return builder.String()
}

// OverflowError is reported when a result leaves the Decimal range.
type OverflowError struct{}

var _ errors.UserError = OverflowError{}

func (OverflowError) IsUserError() {}

func (OverflowError) ErrorKind() errors.Kind {
	return errors.KindOverflow
}

func (OverflowError) Error() string {
	return "decimal overflow"
}

// MalformedDecimalError is reported for invalid decimal literals.
type MalformedDecimalError struct {
	Literal string
	Reason  string
}

var _ errors.UserError = MalformedDecimalError{}

func (MalformedDecimalError) IsUserError() {}

func (MalformedDecimalError) ErrorKind() errors.Kind {
	return errors.KindMalformedLiteral
}

func (e MalformedDecimalError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed decimal %q", e.Literal)
	}
	return fmt.Sprintf("malformed decimal %q: %s", e.Literal, e.Reason)
}
