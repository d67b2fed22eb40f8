/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package jid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomainOnly(t *testing.T) {
	j, err := Parse("chat.example")
	require.NoError(t, err)
	assert.Equal(t, "chat.example", j.Domain())
	assert.Equal(t, "", j.Node())
	assert.Equal(t, "", j.Resource())
}

func TestParseFullJID(t *testing.T) {
	j, err := Parse("user@chat.example/resource")
	require.NoError(t, err)
	assert.Equal(t, "user", j.Node())
	assert.Equal(t, "chat.example", j.Domain())
	assert.Equal(t, "resource", j.Resource())
}

func TestParseEmptyDomainFails(t *testing.T) {
	_, err := Parse("user@")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}
