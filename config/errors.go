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

package config

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/ledgerworks/rtm/errors"
)

// InvalidConfigError is reported when the configuration file cannot be read or parsed.
type InvalidConfigError struct {
	Path string
	Err  error
}

var _ errors.UserError = InvalidConfigError{}

func (InvalidConfigError) IsUserError() {}

func (e InvalidConfigError) Unwrap() error {
	return e.Err
}

func (e InvalidConfigError) Error() string {
	message := yaml.FormatError(e.Err, false, true)
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %s", message)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Path, message)
}

// InvalidFieldError is reported when a field has an invalid value.
type InvalidFieldError struct {
	Field string
	Err   error
}

var _ errors.UserError = InvalidFieldError{}

func (InvalidFieldError) IsUserError() {}

func (e InvalidFieldError) Unwrap() error {
	return e.Err
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Err)
}

// UnknownOwnerError is reported for owners other than allow-all and deny-all.
type UnknownOwnerError struct {
	Owner string
}

var _ errors.UserError = UnknownOwnerError{}

func (UnknownOwnerError) IsUserError() {}

func (e UnknownOwnerError) Error() string {
	return fmt.Sprintf(
		"unknown owner %q, expected %q, %q or an owner badge",
		e.Owner,
		OwnerAllowAll,
		OwnerDenyAll,
	)
}

// UnexpectedOwnerError is reported when an account has both an owner and an owner badge.
type UnexpectedOwnerError struct {
	Owner string
	Badge string
}

var _ errors.UserError = UnexpectedOwnerError{}

func (UnexpectedOwnerError) IsUserError() {}

func (e UnexpectedOwnerError) Error() string {
	return fmt.Sprintf(
		"account has both owner %q and owner badge %q",
		e.Owner,
		e.Badge,
	)
}

func fieldPath(list string, index int, field string) string {
	return list + "[" + strconv.Itoa(index) + "]." + field
}
