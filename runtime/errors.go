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

package runtime

import (
	"fmt"

	"github.com/ledgerworks/rtm/errors"
)

// UnknownDrainAccountError is reported when the drain account
// is not one of the genesis accounts.
type UnknownDrainAccountError struct {
	Index    int
	Accounts int
}

var _ errors.UserError = UnknownDrainAccountError{}

func (UnknownDrainAccountError) IsUserError() {}

func (e UnknownDrainAccountError) Error() string {
	return fmt.Sprintf(
		"drain account %d is not a genesis account: there are %d genesis accounts",
		e.Index,
		e.Accounts,
	)
}
