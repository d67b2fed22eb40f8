/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package xmpp provides the in-memory stanza tree the router operates on:
// attribute/namespace/CDATA accessors, deep copies for fan-out, and the
// handful of constructors the protocol handler and dispatcher need. It plays
// the role jackal's own xml.Element (and, one level further back, jabberd2's
// nad_t) plays for the stream layer — this package is the router's complete
// stanza representation, not a full XMPP client stack.
package xmpp

import (
	"fmt"
	"strings"
)

// Attribute is a single name/value pair on an Element.
type Attribute struct {
	Name  string
	Value string
}

// Element is a single XML element: a name, an optional namespace, zero or
// more attributes, CDATA text, and child elements. Trees are built bottom up
// and are safe to Copy() before handing to a second recipient — callers own
// whatever tree they hold.
type Element struct {
	name     string
	namespace string
	attrs    []Attribute
	text     string
	children []*Element
}

// NewElementName creates an element with no namespace.
func NewElementName(name string) *Element {
	return &Element{name: name}
}

// NewElementNamespace creates an element scoped to ns.
func NewElementNamespace(name, ns string) *Element {
	return &Element{name: name, namespace: ns}
}

// Name returns the element's local name.
func (e *Element) Name() string { return e.name }

// Namespace returns the element's namespace, or "" if unscoped.
func (e *Element) Namespace() string { return e.namespace }

// SetNamespace scopes the element to ns.
func (e *Element) SetNamespace(ns string) { e.namespace = ns }

// Attribute returns the value of attribute name, or "" if absent.
func (e *Element) Attribute(name string) string {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttribute reports whether attribute name is present (even with an empty
// value) — used to distinguish "bound, cleared on ack" from "never set".
func (e *Element) HasAttribute(name string) bool {
	for _, a := range e.attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// SetAttribute sets (or replaces) an attribute. An empty value still records
// presence, matching the wire behavior of clearing 'name' on a bind/unbind
// acknowledgement (spec: "reply echoes... with name cleared").
func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attribute{Name: name, Value: value})
}

// RemoveAttribute drops attribute name entirely.
func (e *Element) RemoveAttribute(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a defensive copy of the element's attribute list.
func (e *Element) Attributes() []Attribute {
	out := make([]Attribute, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Text returns the element's CDATA.
func (e *Element) Text() string { return e.text }

// SetText sets the element's CDATA.
func (e *Element) SetText(text string) { e.text = text }

// Elements returns the element's direct children.
func (e *Element) Elements() []*Element { return e.children }

// Child returns the first direct child named name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildNamespace returns the first direct child named name scoped to ns.
func (e *Element) ChildNamespace(name, ns string) *Element {
	for _, c := range e.children {
		if c.name == name && c.namespace == ns {
			return c
		}
	}
	return nil
}

// AppendElement adds a single child.
func (e *Element) AppendElement(child *Element) { e.children = append(e.children, child) }

// AppendElements adds multiple children.
func (e *Element) AppendElements(children []*Element) { e.children = append(e.children, children...) }

// Copy returns a deep, independently-owned clone of the element tree. Every
// fan-out point (broadcast, log-sink mirror, advertisement) must Copy before
// handing a tree to a second recipient — see internal/router/dispatch.go.
func (e *Element) Copy() *Element {
	if e == nil {
		return nil
	}
	clone := &Element{
		name:      e.name,
		namespace: e.namespace,
		text:      e.text,
		attrs:     make([]Attribute, len(e.attrs)),
		children:  make([]*Element, len(e.children)),
	}
	copy(clone.attrs, e.attrs)
	for i, c := range e.children {
		clone.children[i] = c.Copy()
	}
	return clone
}

// String renders the element as XML text, primarily for logging.
func (e *Element) String() string {
	var sb strings.Builder
	e.writeTo(&sb)
	return sb.String()
}

func (e *Element) writeTo(sb *strings.Builder) {
	sb.WriteString("<")
	sb.WriteString(e.name)
	if e.namespace != "" {
		fmt.Fprintf(sb, ` xmlns="%s"`, e.namespace)
	}
	for _, a := range e.attrs {
		fmt.Fprintf(sb, ` %s="%s"`, a.Name, escape(a.Value))
	}
	if len(e.children) == 0 && e.text == "" {
		sb.WriteString("/>")
		return
	}
	sb.WriteString(">")
	sb.WriteString(escape(e.text))
	for _, c := range e.children {
		c.writeTo(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.name)
	sb.WriteString(">")
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
