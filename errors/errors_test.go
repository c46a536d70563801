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

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKindError struct{}

func (testKindError) Error() string { return "test" }

func (testKindError) ErrorKind() Kind { return KindAuthDenied }

func (testKindError) IsUserError() {}

func TestKindOf(t *testing.T) {

	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, KindUnknown, KindOf(nil))
	})

	t.Run("direct", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, KindAuthDenied, KindOf(testKindError{}))
	})

	t.Run("wrapped", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("outer: %w", testKindError{})
		assert.Equal(t, KindAuthDenied, KindOf(err))
		assert.True(t, IsUserError(err))
		assert.False(t, IsInternalError(err))
	})

	t.Run("unknown error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		err := NewUnreachableError()
		assert.Equal(t, KindInternal, KindOf(err))
		assert.True(t, IsInternalError(err))
	})
}

func TestKindString(t *testing.T) {

	t.Parallel()

	for kind := KindUnknown; kind <= KindInternal; kind++ {
		assert.NotEmpty(t, kind.String())
	}

	assert.Equal(t, "InsufficientBalance", KindInsufficientBalance.String())
}

func TestGetExternalError(t *testing.T) {

	t.Parallel()

	cause := fmt.Errorf("boom")
	err := fmt.Errorf("call failed: %w", NewExternalError(cause))

	external, ok := GetExternalError(err)
	assert.True(t, ok)
	assert.Equal(t, cause, external.Recovered)
	assert.ErrorIs(t, err, cause)
}

func TestWrapPanic(t *testing.T) {

	t.Parallel()

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()

		called := false
		err := WrapPanic(func() {
			called = true
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()

		err := WrapPanic(func() {
			panic("boom")
		})

		external, ok := GetExternalError(err)
		require.True(t, ok)
		assert.Equal(t, "boom", external.Recovered)
		assert.EqualError(t, err, "boom")
	})
}
