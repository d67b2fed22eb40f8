/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package router is the routing engine and component lifecycle manager:
// authentication handshake, name-binding table, route dispatch
// (unicast/broadcast/log-sink/filter/bounce), per-component throttling, and
// teardown. It is grounded on original_source/router/router.c (jabberd2's C
// router, 947 lines) for semantics and on jackal's c2s.go
// (github.com/ortuman/jackal) for Go idiom: a per-connection actor loop
// draining a channel of closures, lifted here to router scope so every
// router-owned map is touched by exactly one goroutine and needs no
// locking.
package router

import (
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"

	"github.com/ortuman/jxrouter/internal/access"
	"github.com/ortuman/jxrouter/internal/acl"
	"github.com/ortuman/jxrouter/internal/config"
	"github.com/ortuman/jxrouter/internal/filter"
	"github.com/ortuman/jxrouter/internal/ratelimit"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

// Wire namespaces.
const (
	legacyStreamNS = "jabber:component:accept"
	componentNS    = "jabber:component:router"
	clientNS       = "jabber:client"
)

// Control element names.
const (
	elemHandshake = "handshake"
	elemBind      = "bind"
	elemUnbind    = "unbind"
	elemRoute     = "route"
	elemThrottle  = "throttle"
	elemPresence  = "presence"
)

// Bounce / reply error codes.
const (
	codeBadRequest  = "400"
	codeUnauthorized = "401"
	codeForbidden   = "403"
	codeNotFound    = "404"
	codeConflict    = "409"
)

// Alias is a {name, target} pair: binding target also binds name to the
// same component.
type Alias struct {
	Name   string
	Target string
}

// CodecFactory builds the stream codec for a newly accepted connection. The
// default is xmpp.NewStdlibCodec; tests substitute an in-memory codec.
type CodecFactory func(net.Conn) xmpp.StreamCodec

// Router owns all routing state. Every field below is mutated only by the
// single goroutine running Run — see submit().
type Router struct {
	cfg *config.Config

	routes     map[string]*Component
	logSinks   map[string]*Component
	components map[string]*Component // keyed by ip:port

	aliases      []Alias
	defaultRoute string
	localSecret  string

	access  *access.List
	aclEval acl.Evaluator
	filter  filter.Filter

	connRates      *lru.Cache[string, *ratelimit.Bucket]
	connRateTotal  int
	connRateWindow time.Duration
	connRateWait   time.Duration

	byteRateTotal  int
	byteRateWindow time.Duration
	byteRateWait   time.Duration

	newCodec CodecFactory

	eventCh chan func()
	dead    chan net.Conn // deferred destruction queue
}

// New builds a Router from cfg. Call Run in its own goroutine before
// accepting connections.
func New(cfg *config.Config) *Router {
	cache, _ := lru.New[string, *ratelimit.Bucket](cfg.ConnRateCacheSize)
	r := &Router{
		cfg:            cfg,
		routes:         make(map[string]*Component),
		logSinks:       make(map[string]*Component),
		components:     make(map[string]*Component),
		localSecret:    cfg.LocalSecret,
		access:         access.New(cfg.Access),
		aclEval:        acl.New(cfg.ACI),
		filter:         filter.Nop{},
		connRates:      cache,
		connRateTotal:  cfg.ConnRate.Total,
		connRateWindow: secondsOrDefault(cfg.ConnRate.Seconds),
		connRateWait:   time.Duration(cfg.ConnRate.Wait) * time.Second,
		byteRateTotal:  cfg.ByteRate.Total,
		byteRateWindow: secondsOrDefault(cfg.ByteRate.Seconds),
		byteRateWait:   time.Duration(cfg.ByteRate.Wait) * time.Second,
		newCodec:       func(c net.Conn) xmpp.StreamCodec { return xmpp.NewStdlibCodec(c, c) },
		eventCh:        make(chan func(), 256),
		dead:           make(chan net.Conn, 64),
	}
	for _, a := range cfg.Aliases {
		r.aliases = append(r.aliases, Alias{Name: a.Name, Target: a.Target})
	}
	return r
}

func secondsOrDefault(s int) time.Duration {
	if s <= 0 {
		s = 1
	}
	return time.Duration(s) * time.Second
}

// SetFilter installs a non-default stanza filter.
func (r *Router) SetFilter(f filter.Filter) { r.filter = f }

// now returns the current wall time; handleElement stamps lastActivity with it.
func (r *Router) now() time.Time { return time.Now() }

// submit enqueues f to run on the single actor goroutine. Every handler that
// touches routes/logSinks/components/defaultRoute/connRates must go through
// submit (or already be running on the actor goroutine).
func (r *Router) submit(f func()) { r.eventCh <- f }

// Run drains the event channel until stop is closed. It is the single
// goroutine that owns all router state, mirroring jackal's
// stream.actorLoop lifted to router scope.
func (r *Router) Run(stop <-chan struct{}) {
	for {
		select {
		case f := <-r.eventCh:
			f()
		case conn := <-r.dead:
			_ = conn.Close()
		case <-stop:
			return
		}
	}
}

// Component is a single accepted connection: identity, owned routes,
// throttle state, and rate limiter.
type Component struct {
	r     *Router
	conn  net.Conn
	codec xmpp.StreamCodec

	id               string
	ip, port, ipport string

	legacy          bool
	pendingLegacyTo string // 'to' requested on stream-open, bound after handshake succeeds
	authenticated   bool
	authID          string // "handshake" for legacy, SASL username for modern

	routes map[string]struct{}

	throttleQueue []*xmpp.Element // nil means "not throttled"
	rate          *ratelimit.Bucket
	rateLog       bool
	lastActivity  time.Time

	breaker *gobreaker.CircuitBreaker
	closed  bool
}

func newBreaker(ipport string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "component-write:" + ipport,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}
