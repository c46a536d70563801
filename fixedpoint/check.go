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
	"math/big"
)

const DecimalScale = 18

// DecimalBits is the width of the raw (scaled) representation of a Decimal.
const DecimalBits = 256

var decimalFactorBig = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalScale), nil)

// DecimalMinRawBig and DecimalMaxRawBig bound the raw, scaled representation,
// i.e. the range of a signed 256-bit integer.
var DecimalMinRawBig = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), DecimalBits-1))
var DecimalMaxRawBig = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), DecimalBits-1), big.NewInt(1))

// CheckRange returns true if the raw, scaled value fits the Decimal range.
func CheckRange(raw *big.Int) bool {
	return raw.Cmp(DecimalMinRawBig) >= 0 &&
		raw.Cmp(DecimalMaxRawBig) <= 0
}

// CheckDivisibility returns true if the raw, scaled value
// has no more than the given number of fractional digits.
func CheckDivisibility(raw *big.Int, divisibility uint8) bool {
	if divisibility >= DecimalScale {
		return true
	}
	unit := new(big.Int).Exp(
		big.NewInt(10),
		big.NewInt(int64(DecimalScale-divisibility)),
		nil,
	)
	return new(big.Int).Rem(raw, unit).Sign() == 0
}
