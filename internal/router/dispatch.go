/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"github.com/ortuman/jxrouter/internal/jid"
	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/metrics"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

// processRoute is the dispatcher: unicast, broadcast, or drop, with
// log-sink fan-out and filter application on the unicast path.
func (r *Router) processRoute(c *Component, elem *xmpp.Element) {
	if elem.Attribute("error") != "" {
		return // a route already carrying an error is a bounce; drop it (loop prevention)
	}

	switch elem.Attribute("type") {
	case "":
		r.processUnicast(c, elem)
	case "broadcast":
		r.processBroadcast(c, elem)
	default:
		log.Debugf("[%s, port=%s] unknown route type, dropping", c.ip, c.port)
	}
}

func (r *Router) processUnicast(c *Component, elem *xmpp.Element) {
	to, err := jid.Parse(elem.Attribute("to"))
	if err != nil {
		r.bounce(c, elem, codeBadRequest)
		return
	}
	from, err := jid.Parse(elem.Attribute("from"))
	if err != nil {
		r.bounce(c, elem, codeBadRequest)
		return
	}
	if _, owned := c.routes[from.Domain()]; !owned {
		r.bounce(c, elem, codeUnauthorized)
		return
	}

	target, ok := r.routes[to.Domain()]
	if !ok {
		if from.Domain() == r.defaultRoute {
			// the default route itself has no route for `to`; don't bounce
			// back to it through itself.
			r.bounce(c, elem, codeNotFound)
			return
		}
		target, ok = r.routes[r.defaultRoute]
		if !ok {
			r.bounce(c, elem, codeNotFound)
			return
		}
	}

	for _, sink := range r.logSinks {
		logCopy := elem.Copy()
		logCopy.SetAttribute("type", "log")
		r.write(sink, logCopy)
	}

	if pass, code := r.filter.Apply(elem); !pass {
		r.bounce(c, elem, code)
		return
	}

	metrics.DispatchTotal.WithLabelValues("unicast").Inc()
	r.write(target, elem)
}

func (r *Router) processBroadcast(c *Component, elem *xmpp.Element) {
	from, err := jid.Parse(elem.Attribute("from"))
	if err != nil {
		r.bounce(c, elem, codeBadRequest)
		return
	}
	if _, owned := c.routes[from.Domain()]; !owned {
		r.bounce(c, elem, codeUnauthorized)
		return
	}

	metrics.DispatchTotal.WithLabelValues("broadcast").Inc()
	for _, comp := range r.components {
		if comp == c {
			continue
		}
		r.write(comp, elem.Copy())
	}
}

// bounce returns stanza to sender with error set, through the ordinary
// write path.
func (r *Router) bounce(c *Component, elem *xmpp.Element, code string) {
	elem.SetAttribute("error", code)
	metrics.BounceTotal.WithLabelValues(code).Inc()
	r.write(c, elem)
}
