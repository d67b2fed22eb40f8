/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"github.com/ortuman/jxrouter/internal/jid"
	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/streamerror"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

// write is the single outbound path for every stanza addressed to a
// component: the throttle queue is consulted first.
func (r *Router) write(c *Component, stanza *xmpp.Element) {
	if c.throttleQueue != nil {
		c.throttleQueue = append(c.throttleQueue, stanza)
		return
	}
	r.send(c, stanza)
}

// send bypasses the throttle queue entirely; used for the throttle ack
// itself and for draining the queue, both of which must not re-enqueue.
func (r *Router) send(c *Component, stanza *xmpp.Element) {
	out := stanza
	if c.legacy {
		out = legacyTranslate(stanza)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.codec.Encode(out)
	})
	if err != nil {
		log.Debugf("[%s, port=%s] write failed: %v", c.ip, c.port, err)
		r.submit(func() { r.teardown(c) })
	}
}

// legacyTranslate handles outbound translation for legacy peers, mirroring
// router.c's _router_comp_write: a `route` wrapper is unwrapped down to its
// inner client stanza (sx_nad_write_elem(s, nad, 1)), and an `error`
// attribute found on the wrapper becomes a stanza-level <error> child on
// that unwrapped stanza before it's moved into the client namespace.
// Non-route control stanzas (e.g. a throttle ack) have no wrapper to strip;
// they are re-namespaced, with an `error` attribute likewise replaced by a
// stanza-level <error> child.
func legacyTranslate(stanza *xmpp.Element) *xmpp.Element {
	if stanza.Name() == elemRoute {
		if children := stanza.Elements(); len(children) > 0 {
			inner := children[0].Copy()
			if code := stanza.Attribute("error"); code != "" {
				inner.AppendElement(stanzaError(code))
			}
			inner.SetNamespace(clientNS)
			return inner
		}
	}

	out := stanza.Copy()
	if code := out.Attribute("error"); code != "" {
		out.RemoveAttribute("error")
		out.AppendElement(stanzaError(code))
	}
	out.SetNamespace(clientNS)
	return out
}

// stanzaError builds the <error> child a bounce code translates to on the
// wire for a legacy peer.
func stanzaError(code string) *xmpp.Element {
	kind := "service-unavailable"
	if code == codeBadRequest {
		kind = "bad-request"
	}
	errEl := xmpp.NewElementName("error")
	errEl.SetAttribute("type", "cancel")
	errEl.AppendElement(xmpp.NewElementNamespace(kind, "urn:ietf:params:xml:ns:xmpp-stanzas"))
	return errEl
}

// legacyWrapInbound rewrites a raw client stanza received from an
// authenticated legacy component into a `route` element in the component
// namespace, copying `to`/`from` (domain-only) from the inner stanza onto
// the wrapper — the mirror of legacyTranslate, grounded on router.c's
// event_PACKET legacy branch (nad_wrap_elem(nad, ns, "route")).
func legacyWrapInbound(elem *xmpp.Element) (*xmpp.Element, error) {
	to, err := jid.Parse(elem.Attribute("to"))
	if err != nil {
		return nil, err
	}
	from, err := jid.Parse(elem.Attribute("from"))
	if err != nil {
		return nil, err
	}

	inner := elem.Copy()
	inner.SetNamespace(clientNS)

	route := xmpp.NewElementNamespace(elemRoute, componentNS)
	route.SetAttribute("to", to.Domain())
	route.SetAttribute("from", from.Domain())
	route.AppendElement(inner)
	return route, nil
}

// closeWithStreamError emits a stream-level error and tears the connection
// down.
func (r *Router) closeWithStreamError(c *Component, serr *streamerror.Error) {
	_ = c.codec.Encode(serr.Element())
	r.teardown(c)
}
