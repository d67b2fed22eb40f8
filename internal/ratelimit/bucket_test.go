/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZeroTotalDisables(t *testing.T) {
	b := New(0, time.Second, 0)
	for i := 0; i < 1000; i++ {
		assert.True(t, b.Check())
	}
}

func TestExhaustionDeniesThenRecovers(t *testing.T) {
	b := New(2, time.Minute, 0)

	assert.True(t, b.Check())
	b.Add(1)
	assert.True(t, b.Check())
	b.Add(1)
	assert.False(t, b.Check(), "bucket of 2 should be empty after consuming 2")
}

func TestLeftClampedNonNegative(t *testing.T) {
	b := New(5, time.Minute, 0)
	b.Add(5)
	assert.GreaterOrEqual(t, b.Left(), 0)
}
