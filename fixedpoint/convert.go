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

// ConvertToFixedPointBigInt combines an unsigned integer part and a fractional part
// given with `scale` digits into a single integer scaled by 10^targetScale.
//
// Fractional digits beyond the target scale cannot be represented,
// so ok is false if the fractional part would lose precision.
func ConvertToFixedPointBigInt(
	negative bool,
	unsignedInteger *big.Int,
	fractional *big.Int,
	scale uint,
	targetScale uint,
) (result *big.Int, ok bool) {
	ten := big.NewInt(10)

	// integer = unsignedInteger * 10 ^ targetScale

	integer := new(big.Int).Mul(
		unsignedInteger,
		new(big.Int).Exp(ten, new(big.Int).SetUint64(uint64(targetScale)), nil),
	)

	// fractional = fractional * 10 ^ (targetScale - scale)

	fractional = new(big.Int).Set(fractional)

	if scale < targetScale {
		scaleDiff := new(big.Int).SetUint64(uint64(targetScale - scale))
		fractional.Mul(
			fractional,
			new(big.Int).Exp(ten, scaleDiff, nil),
		)
	} else if scale > targetScale {
		scaleDiff := new(big.Int).SetUint64(uint64(scale - targetScale))
		var remainder big.Int
		fractional.QuoRem(
			fractional,
			new(big.Int).Exp(ten, scaleDiff, nil),
			&remainder,
		)
		if remainder.Sign() != 0 {
			return nil, false
		}
	}

	// value = integer + fractional

	integer.Add(integer, fractional)
	if negative {
		integer.Neg(integer)
	}

	return integer, true
}
