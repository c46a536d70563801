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

package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/rtm/errors"
)

func TestAllocator_Buckets(t *testing.T) {

	t.Parallel()

	allocator := NewAllocator()
	address := testResource(1)

	first := allocator.NewBucket(fungibleContainer(t, address, 1))
	second := allocator.NewBucket(fungibleContainer(t, address, 2))
	assert.Equal(t, uint32(1), first)
	assert.Equal(t, uint32(2), second)
	assert.Equal(t, []uint32{1, 2}, allocator.Buckets())

	container, err := allocator.ConsumeBucket(first)
	require.NoError(t, err)
	assert.Equal(t, decimal(1), container.Amount())
	assert.True(t, allocator.IsConsumed(first))
	assert.False(t, allocator.IsConsumed(second))

	_, err = allocator.ConsumeBucket(first)
	var consumedErr BucketAlreadyConsumedError
	require.ErrorAs(t, err, &consumedErr)
	assert.Equal(t, first, consumedErr.Bucket)

	// ids are never reused
	third := allocator.NewBucket(fungibleContainer(t, address, 3))
	assert.Equal(t, uint32(3), third)
	assert.Equal(t, []uint32{2, 3}, allocator.Buckets())
}

func TestAllocator_Locks(t *testing.T) {

	t.Parallel()

	allocator := NewAllocator()
	address := testResource(1)

	bucket := allocator.NewBucket(fungibleContainer(t, address, 5))
	container, err := allocator.Bucket(bucket)
	require.NoError(t, err)

	proof, err := newBucketProof(bucket, container)
	require.NoError(t, err)

	first := allocator.NewProof(proof)
	second := allocator.NewProof(proof.Clone())

	_, err = allocator.ConsumeBucket(bucket)
	var lockedErr BucketLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 2, lockedErr.Proofs)
	assert.Equal(t, errors.KindBucketLocked, errors.KindOf(err))

	require.NoError(t, allocator.DropProof(first))
	// dropping twice has no effect
	require.NoError(t, allocator.DropProof(first))

	_, err = allocator.ConsumeBucket(bucket)
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 1, lockedErr.Proofs)

	// a taken proof keeps its locks until released
	taken, err := allocator.TakeProof(second)
	require.NoError(t, err)

	_, err = allocator.Proof(second)
	require.Error(t, err)
	assert.Equal(t, errors.KindProofNotFound, errors.KindOf(err))

	_, err = allocator.ConsumeBucket(bucket)
	require.Error(t, err)

	// a taken proof can not be dropped by its old id
	err = allocator.DropProof(second)
	require.Error(t, err)
	assert.Equal(t, errors.KindProofNotFound, errors.KindOf(err))

	allocator.Release(taken)

	_, err = allocator.ConsumeBucket(bucket)
	require.NoError(t, err)
}

func TestAllocator_DropAllProofs(t *testing.T) {

	t.Parallel()

	allocator := NewAllocator()
	address := testResource(1)

	bucket := allocator.NewBucket(fungibleContainer(t, address, 5))
	container, err := allocator.Bucket(bucket)
	require.NoError(t, err)

	proof, err := newBucketProof(bucket, container)
	require.NoError(t, err)

	allocator.NewProof(proof)
	allocator.NewProof(proof.Clone())
	assert.Equal(t, []uint32{1, 2}, allocator.Proofs())

	allocator.DropAllProofs()
	assert.Empty(t, allocator.Proofs())

	_, err = allocator.ConsumeBucket(bucket)
	require.NoError(t, err)

	err = allocator.DropProof(3)
	require.Error(t, err)
}
