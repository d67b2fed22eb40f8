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

// processBind handles a `bind` control stanza. Rules run in order; the
// first failure replies with `error` set and returns.
func (r *Router) processBind(c *Component, elem *xmpp.Element) {
	requested := elem.Attribute("name")

	d, err := jid.Parse(requested)
	if err != nil {
		r.replyControlError(c, elem, codeBadRequest)
		return
	}
	name := d.Domain()
	user := jid.User(c.authID)

	if name != user && !r.aclEval.Permits("bind", user) {
		r.replyControlError(c, elem, codeForbidden)
		return
	}
	if _, exists := r.routes[name]; exists {
		r.replyControlError(c, elem, codeConflict)
		return
	}
	for _, a := range r.aliases {
		if a.Name == name {
			r.replyControlError(c, elem, codeConflict)
			return
		}
	}

	wantDefault := elem.Child("default") != nil
	wantLog := elem.Child("log") != nil

	if wantDefault {
		if !r.aclEval.Permits("default-route", user) {
			r.replyControlError(c, elem, codeForbidden)
			return
		}
		if r.defaultRoute != "" {
			r.replyControlError(c, elem, codeConflict)
			return
		}
	}
	if wantLog && !r.aclEval.Permits("log", user) {
		r.replyControlError(c, elem, codeForbidden)
		return
	}

	r.bindRoute(name, c)
	if wantDefault {
		r.defaultRoute = name
	}
	if wantLog {
		r.logSinks[name] = c
	}

	ack := xmpp.NewElementNamespace(elemBind, componentNS)
	ack.SetAttribute("name", "")
	r.write(c, ack)

	log.Infof("[%s] bound (%s, port %s)", name, c.ip, c.port)

	r.advertise(name, c, false)
	r.reverseAdvertise(c)
	r.bindAliasesOf(name, c)

	metrics.BoundRoutes.Set(float64(len(r.routes)))
}

// processUnbind handles an `unbind` control stanza.
func (r *Router) processUnbind(c *Component, elem *xmpp.Element) {
	requested := elem.Attribute("name")

	d, err := jid.Parse(requested)
	if err != nil {
		r.replyControlError(c, elem, codeBadRequest)
		return
	}
	name := d.Domain()

	if _, owned := c.routes[name]; !owned {
		r.replyControlError(c, elem, codeNotFound)
		return
	}

	delete(r.logSinks, name)
	delete(r.routes, name)
	delete(c.routes, name)
	if r.defaultRoute == name {
		r.defaultRoute = ""
	}

	reply := xmpp.NewElementNamespace(elemUnbind, componentNS)
	reply.SetAttribute("name", "")
	r.write(c, reply)

	log.Infof("[%s] unbound (%s, port %s)", name, c.ip, c.port)
	r.advertise(name, c, true)

	metrics.BoundRoutes.Set(float64(len(r.routes)))
}

// replyControlError echoes a bind/unbind element with its name cleared and
// error set.
func (r *Router) replyControlError(c *Component, elem *xmpp.Element, code string) {
	reply := xmpp.NewElementNamespace(elem.Name(), componentNS)
	reply.SetAttribute("name", "")
	reply.SetAttribute("error", code)
	r.write(c, reply)
}

// bindRoute inserts name → c into both the router-wide and component-owned
// route sets; the only place routes are added (processUnbind and teardown
// remove them).
func (r *Router) bindRoute(name string, c *Component) {
	r.routes[name] = c
	c.routes[name] = struct{}{}
}

// bindAliasesOf binds and advertises every alias whose target is the
// domain just bound.
func (r *Router) bindAliasesOf(target string, c *Component) {
	for _, a := range r.aliases {
		if a.Target != target {
			continue
		}
		r.bindRoute(a.Name, c)
		r.advertise(a.Name, c, false)
	}
}
