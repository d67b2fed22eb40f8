/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/metrics"
	"github.com/ortuman/jxrouter/internal/ratelimit"
)

// Serve runs the accept loop against ln until stop is closed. Each accepted
// connection's admission control and registration run on the actor
// goroutine (via submit); only the blocking Accept() call itself runs here,
// matching jabberd2's router_mio_callback(action_ACCEPT) moved from a
// manual reactor callback to a dedicated goroutine — the idiomatic Go
// substitute for the out-of-scope reactor.
func (r *Router) Serve(ln net.Listener, stop <-chan struct{}) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
				return err
			}
		}
		r.submit(func() { r.accept(conn) })
	}
}

func (r *Router) accept(conn net.Conn) {
	host, portStr, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		_ = conn.Close()
		return
	}
	port, _ := strconv.Atoi(portStr)

	log.Infof("[%s, port=%d] connect", host, port)

	if !r.acceptCheck(host) {
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		_ = conn.Close()
		return
	}
	metrics.ConnectionsTotal.WithLabelValues("accepted").Inc()

	ipport := host + ":" + portStr
	comp := &Component{
		r:            r,
		conn:         conn,
		id:           uuid.NewString(),
		ip:           host,
		port:         portStr,
		ipport:       ipport,
		routes:       make(map[string]struct{}),
		lastActivity: time.Now(),
		breaker:      newBreaker(ipport),
	}
	if r.byteRateTotal != 0 {
		comp.rate = ratelimit.New(r.byteRateTotal, r.byteRateWindow, r.byteRateWait)
	}
	comp.codec = r.newCodec(&rateLimitedConn{Conn: conn, comp: comp})

	r.components[ipport] = comp
	metrics.ActiveComponents.Set(float64(len(r.components)))

	go comp.readLoop()
}

// acceptCheck runs the IP allow-list then the per-IP connection-rate
// check. conn_rate_total == 0 disables the rate check entirely.
func (r *Router) acceptCheck(ip string) bool {
	if !r.access.Permits(ip) {
		log.Infof("[%s] access denied by configuration", ip)
		return false
	}
	if r.connRateTotal == 0 {
		return true
	}
	bucket, ok := r.connRates.Get(ip)
	if !ok {
		bucket = ratelimit.New(r.connRateTotal, r.connRateWindow, r.connRateWait)
		r.connRates.Add(ip, bucket)
	}
	if !bucket.Check() {
		log.Infof("[%s] is being rate limited", ip)
		return false
	}
	bucket.Add(1)
	return true
}
