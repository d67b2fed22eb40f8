/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"github.com/ortuman/jxrouter/internal/metrics"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

// processThrottle toggles a component's throttle queue. The throttle
// stanza itself always goes out via send, bypassing the queue check, so it
// precedes whatever the queue holds on both transitions.
func (r *Router) processThrottle(c *Component, elem *xmpp.Element) {
	if c.throttleQueue == nil {
		c.throttleQueue = make([]*xmpp.Element, 0)
		r.send(c, elem)
		r.updateThrottleMetric()
		return
	}

	queue := c.throttleQueue
	c.throttleQueue = nil
	r.send(c, elem)
	for _, queued := range queue {
		r.send(c, queued)
	}
	r.updateThrottleMetric()
}

func (r *Router) updateThrottleMetric() {
	n := 0
	for _, comp := range r.components {
		if comp.throttleQueue != nil {
			n++
		}
	}
	metrics.ThrottledComponents.Set(float64(n))
}
