/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"io"
	"net"
	"time"

	"github.com/ortuman/jxrouter/internal/log"
)

// rateLimitedConn wraps a component's net.Conn so every Read() first
// updates last_activity and then clamps the requested length to what the
// byte-rate bucket currently permits, returning (0, nil) on exhaustion
// rather than an error (backpressure without tearing down the connection).
// A brief sleep avoids busy-spinning the reader goroutine while throttled;
// jabberd2's reactor instead gets re-armed by the next READ event, which a
// blocking goroutine has no equivalent of.
type rateLimitedConn struct {
	net.Conn
	comp *Component
}

func (c *rateLimitedConn) Read(p []byte) (int, error) {
	c.comp.lastActivity = time.Now()

	if c.comp.rate != nil {
		if !c.comp.rate.Check() {
			if !c.comp.rateLog {
				log.Infof("[%s, port=%s] is being byte rate limited", c.comp.ip, c.comp.port)
				c.comp.rateLog = true
			}
			time.Sleep(5 * time.Millisecond)
			return 0, nil
		}
		if left := c.comp.rate.Left(); left < len(p) {
			p = p[:left]
		}
	}

	n, err := c.Conn.Read(p)
	if n > 0 && c.comp.rate != nil {
		c.comp.rateLog = false
		c.comp.rate.Add(n)
	}
	return n, err
}

// readLoop decodes one element at a time off the component's connection and
// hands each to the actor goroutine for processing — the per-connection
// goroutine half of the reactor substitute, mirroring jackal's
// `go s.doRead()` in c2s.go.
func (c *Component) readLoop() {
	r := c.r

	name, namespace, attrs, err := c.codec.DecodeOpen()
	if err != nil {
		log.Debugf("[%s, port=%s] stream open failed: %v", c.ip, c.port, err)
		r.submit(func() { r.teardown(c) })
		return
	}
	r.submit(func() { r.handleStreamOpen(c, name, namespace, attrs) })

	for {
		elem, err := c.codec.Decode()
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.Debugf("[%s, port=%s] read failed: %v", c.ip, c.port, err)
			}
			r.submit(func() { r.teardown(c) })
			return
		}
		e := elem
		r.submit(func() { r.handleElement(c, e) })
	}
}
