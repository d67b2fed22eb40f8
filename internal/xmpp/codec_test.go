/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOpenThenDecodeChildren(t *testing.T) {
	const wire = `<stream:stream xmlns="jabber:component:accept" xmlns:stream="http://etherx.jabber.org/streams" to="chat.example">` +
		`<handshake>deadbeef</handshake>` +
		`<bind xmlns="jabber:component:router" name="chat.example"/>` +
		`</stream:stream>`

	c := NewStdlibCodec(strings.NewReader(wire), io.Discard)

	name, ns, attrs, err := c.DecodeOpen()
	require.NoError(t, err)
	assert.Equal(t, "stream", name)
	assert.Equal(t, "jabber:component:accept", ns)
	assert.Equal(t, "chat.example", attrs["to"])

	first, err := c.Decode()
	require.NoError(t, err)
	assert.Equal(t, "handshake", first.Name())
	assert.Equal(t, "deadbeef", first.Text())

	second, err := c.Decode()
	require.NoError(t, err)
	assert.Equal(t, "bind", second.Name())
	assert.Equal(t, "chat.example", second.Attribute("name"))

	_, err = c.Decode()
	assert.Equal(t, io.EOF, err, "closing the still-open stream root must surface as EOF")
}

func TestEncodeOpenThenClose(t *testing.T) {
	var buf bytes.Buffer
	c := NewStdlibCodec(strings.NewReader(""), &buf)

	require.NoError(t, c.EncodeOpen("stream:stream", "jabber:component:accept", map[string]string{"to": "chat.example"}))
	require.NoError(t, c.Close())

	out := buf.String()
	assert.Contains(t, out, `<stream:stream xmlns="jabber:component:accept"`)
	assert.Contains(t, out, `to="chat.example"`)
	assert.Contains(t, out, `</stream:stream>`)
}
