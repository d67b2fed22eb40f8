/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/metrics"
)

// teardown runs on connection close: every domain the component owned is
// released from the route table and its peers notified, the throttle
// queue is discarded without draining or bouncing its contents (matching
// the original source's behavior), and the connection is queued for
// deferred close.
func (r *Router) teardown(c *Component) {
	if c.closed {
		return
	}
	c.closed = true

	for name := range c.routes {
		delete(r.routes, name)
		delete(r.logSinks, name)
		if r.defaultRoute == name {
			r.defaultRoute = ""
		}
		r.advertise(name, c, true)
	}
	c.routes = nil
	c.throttleQueue = nil

	delete(r.components, c.ipport)
	metrics.ActiveComponents.Set(float64(len(r.components)))
	metrics.BoundRoutes.Set(float64(len(r.routes)))
	r.updateThrottleMetric()

	select {
	case r.dead <- c.conn:
	default:
		_ = c.conn.Close()
	}

	log.Infof("[%s, port=%s] disconnect", c.ip, c.port)
}
