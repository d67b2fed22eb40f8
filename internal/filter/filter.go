/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package filter implements the router's optional stanza filter: applied
// to a successfully-routed unicast stanza before delivery, it either
// passes the stanza through or names a bounce code.
package filter

import "github.com/ortuman/jxrouter/internal/xmpp"

// Filter inspects a routed stanza. pass reports whether the stanza goes
// through; when pass is false, code is the bounce code (e.g. "406").
type Filter interface {
	Apply(e *xmpp.Element) (pass bool, code string)
}

// Nop is the default Filter: filtering is optional, and no filter rule
// language appears anywhere in the retrieved pack, so the default adapter
// always passes (see DESIGN.md).
type Nop struct{}

// Apply always passes.
func (Nop) Apply(*xmpp.Element) (bool, string) { return true, "" }
