/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package streamerror models the fatal, connection-ending XMPP stream
// errors the router can emit, mirroring the *streamerror.Error /
// Error.Element() shape jackal's c2s.go calls against
// (streamerror.ErrNotAuthorized.Element(), etc.), scaled down to the
// handful of kinds this router actually raises.
package streamerror

import "github.com/ortuman/jxrouter/internal/xmpp"

const streamNS = "urn:ietf:params:xml:ns:xmpp-streams"

// Error is a named, fatal stream-level error. The connection is closed
// immediately after it is written.
type Error struct {
	name string
	text string
}

func (e *Error) Error() string { return e.name }

// Element renders the <stream:error> payload.
func (e *Error) Element() *xmpp.Element {
	root := xmpp.NewElementName("stream:error")
	kind := xmpp.NewElementNamespace(e.name, streamNS)
	root.AppendElement(kind)
	if e.text != "" {
		text := xmpp.NewElementNamespace("text", streamNS)
		text.SetText(e.text)
		root.AppendElement(text)
	}
	return root
}

func newError(name, text string) *Error { return &Error{name: name, text: text} }

var (
	// ErrNotAuthorized is raised on a failed legacy handshake.
	ErrNotAuthorized = newError("not-authorized", "")

	// ErrHostUnknown is raised when a legacy stream is missing its 'to'
	// attribute, or when its requested name is already bound.
	ErrHostUnknown = newError("host-unknown", "")

	// ErrInvalidNamespace is raised when legacy support is disabled
	// (local_secret unset) and a legacy stream opens anyway (original
	// source router.c: "support for legacy components not available").
	ErrInvalidNamespace = newError("invalid-namespace", "support for legacy components not available")
)

// WithText returns a copy of err carrying a human-readable reason, matching
// jabberd2's sx_error(s, kind, "reason") call shape.
func WithText(err *Error, text string) *Error {
	return &Error{name: err.name, text: text}
}
