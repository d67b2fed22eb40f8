/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyListPermitsEverything(t *testing.T) {
	l := New(nil)
	assert.True(t, l.Permits("203.0.113.1"))
}

func TestDenyRuleWins(t *testing.T) {
	l := New([]string{"!10.0.0.0/8", "0.0.0.0/0"})
	assert.False(t, l.Permits("10.1.2.3"))
	assert.True(t, l.Permits("203.0.113.1"))
}

func TestBareIPEntry(t *testing.T) {
	l := New([]string{"!203.0.113.5"})
	assert.False(t, l.Permits("203.0.113.5"))
	assert.True(t, l.Permits("203.0.113.6"))
}
