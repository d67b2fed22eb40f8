/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import "github.com/ortuman/jxrouter/internal/xmpp"

// advertise sends a presence announcing domain's (un)availability to every
// peer except src and except legacy components.
func (r *Router) advertise(domain string, src *Component, unavailable bool) {
	pres := presenceElement(domain, unavailable)
	for _, comp := range r.components {
		if comp == src || comp.legacy {
			continue
		}
		r.write(comp, pres.Copy())
	}
}

// reverseAdvertise sends one presence per currently bound domain, excluding
// the component's own routes, to a newly bound non-legacy component.
// Legacy components receive no reverse advertisements.
func (r *Router) reverseAdvertise(c *Component) {
	if c.legacy {
		return
	}
	for domain, owner := range r.routes {
		if owner == c {
			continue
		}
		r.write(c, presenceElement(domain, false).Copy())
	}
}

func presenceElement(domain string, unavailable bool) *xmpp.Element {
	e := xmpp.NewElementNamespace(elemPresence, componentNS)
	e.SetAttribute("from", domain)
	if unavailable {
		e.SetAttribute("type", "unavailable")
	}
	return e
}
