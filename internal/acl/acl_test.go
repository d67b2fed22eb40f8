/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWildcardSubject(t *testing.T) {
	e := New([]Rule{{Action: "bind", Subject: "*"}})
	assert.True(t, e.Permits("bind", "anyone"))
	assert.False(t, e.Permits("default-route", "anyone"))
}

func TestExactSubject(t *testing.T) {
	e := New([]Rule{{Action: "log", Subject: "muc.example"}})
	assert.True(t, e.Permits("log", "muc.example"))
	assert.False(t, e.Permits("log", "other.example"))
}
