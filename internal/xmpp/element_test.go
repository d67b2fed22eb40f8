/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementAttributes(t *testing.T) {
	e := NewElementNamespace("bind", "jabber:component:router")
	e.SetAttribute("name", "chat.example")
	assert.Equal(t, "chat.example", e.Attribute("name"))
	assert.True(t, e.HasAttribute("name"))

	e.SetAttribute("name", "")
	assert.Equal(t, "", e.Attribute("name"))
	assert.True(t, e.HasAttribute("name"), "clearing a value must not remove the attribute")

	e.RemoveAttribute("name")
	assert.False(t, e.HasAttribute("name"))
}

func TestElementCopyIsIndependent(t *testing.T) {
	root := NewElementName("route")
	root.SetAttribute("to", "a.example")
	child := NewElementName("message")
	child.SetText("hi")
	root.AppendElement(child)

	clone := root.Copy()
	clone.SetAttribute("to", "b.example")
	clone.Elements()[0].SetText("bye")

	assert.Equal(t, "a.example", root.Attribute("to"))
	assert.Equal(t, "hi", root.Elements()[0].Text())
	assert.Equal(t, "b.example", clone.Attribute("to"))
	assert.Equal(t, "bye", clone.Elements()[0].Text())
}

func TestElementStringEscapesText(t *testing.T) {
	e := NewElementName("text")
	e.SetText(`<b>&"quoted"</b>`)
	require.Contains(t, e.String(), "&lt;b&gt;&amp;&quot;quoted&quot;&lt;/b&gt;")
}

func TestChildLookup(t *testing.T) {
	root := NewElementName("bind")
	root.AppendElement(NewElementName("default"))
	root.AppendElement(NewElementNamespace("log", "jabber:component:router"))

	assert.NotNil(t, root.Child("default"))
	assert.Nil(t, root.Child("missing"))
	assert.NotNil(t, root.ChildNamespace("log", "jabber:component:router"))
	assert.Nil(t, root.ChildNamespace("log", "other:ns"))
}
