/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"crypto/sha1"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortuman/jxrouter/internal/config"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

func newTestRouter(t *testing.T, localSecret string) *Router {
	t.Helper()
	return New(&config.Config{LocalSecret: localSecret, ConnRateCacheSize: 16})
}

func newTestComponent(t *testing.T, r *Router, id string) (*Component, *fakeCodec) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { _ = clientConn.Close(); _ = serverConn.Close() })

	fc := &fakeCodec{}
	c := &Component{
		r:            r,
		conn:         serverConn,
		codec:        fc,
		id:           id,
		ip:           "127.0.0.1",
		port:         "0",
		ipport:       "127.0.0.1:0",
		routes:       make(map[string]struct{}),
		lastActivity: time.Now(),
		breaker:      newBreaker("test:" + id),
	}
	r.components[c.ipport+"-"+id] = c
	return c, fc
}

func handshakeDigestFor(streamID, secret string) string {
	sum := sha1.Sum([]byte(streamID + secret))
	return fmt.Sprintf("%x", sum)
}

// scenario 1: handshake success.
func TestHandshakeSuccess(t *testing.T) {
	r := newTestRouter(t, "s3cret")
	c, fc := newTestComponent(t, r, "abc")
	c.legacy = true
	c.pendingLegacyTo = "chat.example"

	elem := xmpp.NewElementName(elemHandshake)
	elem.SetText(handshakeDigestFor("abc", "s3cret"))

	r.processHandshake(c, elem)

	require.True(t, c.authenticated)
	require.Len(t, fc.sent, 1)
	assert.Equal(t, elemHandshake, fc.sent[0].Name())
	assert.Equal(t, "", fc.sent[0].Text())
	assert.Same(t, c, r.routes["chat.example"])
}

// scenario 2: handshake wrong length.
func TestHandshakeWrongLength(t *testing.T) {
	r := newTestRouter(t, "s3cret")
	c, fc := newTestComponent(t, r, "abc")
	c.legacy = true
	c.pendingLegacyTo = "chat.example"

	elem := xmpp.NewElementName(elemHandshake)
	elem.SetText("tooshort")

	r.processHandshake(c, elem)

	assert.False(t, c.authenticated)
	require.Len(t, fc.sent, 1)
	assert.Equal(t, "stream:error", fc.sent[0].Name())
	assert.True(t, c.closed)
}

// scenario 3: bind conflict.
func TestBindConflict(t *testing.T) {
	r := newTestRouter(t, "")
	a, _ := newTestComponent(t, r, "a")
	a.authenticated = true
	a.authID = "chat.example"
	b, fcB := newTestComponent(t, r, "b")
	b.authenticated = true
	b.authID = "chat.example"

	bindA := xmpp.NewElementNamespace(elemBind, componentNS)
	bindA.SetAttribute("name", "chat.example")
	r.processBind(a, bindA)

	bindB := xmpp.NewElementNamespace(elemBind, componentNS)
	bindB.SetAttribute("name", "chat.example")
	r.processBind(b, bindB)

	// a's successful bind advertises to b first; b's own conflict reply is
	// always the last thing written to it.
	last := fcB.sent[len(fcB.sent)-1]
	assert.Equal(t, codeConflict, last.Attribute("error"))
}

// scenario 4: unicast via default route, and the no-self-bounce rule.
func TestUnicastViaDefault(t *testing.T) {
	r := newTestRouter(t, "")
	compA, fcA := newTestComponent(t, r, "a")
	compA.authenticated = true
	r.bindRoute("msg.example", compA)
	r.defaultRoute = "msg.example"

	compB, _ := newTestComponent(t, r, "b")
	compB.authenticated = true
	r.bindRoute("svc.example", compB)

	route := xmpp.NewElementNamespace(elemRoute, componentNS)
	route.SetAttribute("to", "unknown.example")
	route.SetAttribute("from", "svc.example")
	r.processRoute(compB, route)

	require.Len(t, fcA.sent, 1)
	assert.Equal(t, "unknown.example", fcA.sent[0].Attribute("to"))

	bounceRoute := xmpp.NewElementNamespace(elemRoute, componentNS)
	bounceRoute.SetAttribute("to", "unknown.example")
	bounceRoute.SetAttribute("from", "msg.example")
	r.processRoute(compA, bounceRoute)

	require.Len(t, fcA.sent, 2)
	assert.Equal(t, codeNotFound, fcA.sent[1].Attribute("error"))
}

// scenario 5: broadcast.
func TestBroadcast(t *testing.T) {
	r := newTestRouter(t, "")
	a, fcA := newTestComponent(t, r, "a")
	a.authenticated = true
	r.bindRoute("a.example", a)
	b, fcB := newTestComponent(t, r, "b")
	b.authenticated = true
	c, fcC := newTestComponent(t, r, "c")
	c.authenticated = true

	bc := xmpp.NewElementNamespace(elemRoute, componentNS)
	bc.SetAttribute("type", "broadcast")
	bc.SetAttribute("from", "a.example")
	r.processRoute(a, bc)

	assert.Empty(t, fcA.sent)
	require.Len(t, fcB.sent, 1)
	require.Len(t, fcC.sent, 1)
	assert.Equal(t, "broadcast", fcB.sent[0].Attribute("type"))
}

// scenario 6: throttle drain order.
func TestThrottleDrainOrder(t *testing.T) {
	r := newTestRouter(t, "")
	a, fcA := newTestComponent(t, r, "a")
	a.authenticated = true

	r.processThrottle(a, xmpp.NewElementNamespace(elemThrottle, componentNS))
	require.Len(t, fcA.sent, 1)
	require.NotNil(t, a.throttleQueue)

	r1 := xmpp.NewElementNamespace(elemRoute, componentNS)
	r1.SetAttribute("to", "r1")
	r2 := xmpp.NewElementNamespace(elemRoute, componentNS)
	r2.SetAttribute("to", "r2")
	r3 := xmpp.NewElementNamespace(elemRoute, componentNS)
	r3.SetAttribute("to", "r3")
	r.write(a, r1)
	r.write(a, r2)
	r.write(a, r3)

	require.Len(t, fcA.sent, 1, "queued stanzas must not reach the wire yet")

	r.processThrottle(a, xmpp.NewElementNamespace(elemThrottle, componentNS))

	require.Len(t, fcA.sent, 5)
	assert.Equal(t, elemThrottle, fcA.sent[1].Name())
	assert.Equal(t, "r1", fcA.sent[2].Attribute("to"))
	assert.Equal(t, "r2", fcA.sent[3].Attribute("to"))
	assert.Equal(t, "r3", fcA.sent[4].Attribute("to"))
}

// A legacy component's raw client stanza is wrapped into a `route` element
// for dispatch, and the legacy recipient gets back the unwrapped client
// stanza rather than the `route` envelope.
func TestLegacyInboundOutboundTranslation(t *testing.T) {
	r := newTestRouter(t, "")
	sender, _ := newTestComponent(t, r, "sender")
	sender.legacy = true
	sender.authenticated = true
	r.bindRoute("send.example", sender)

	recipient, fcRecipient := newTestComponent(t, r, "recipient")
	recipient.legacy = true
	recipient.authenticated = true
	r.bindRoute("recv.example", recipient)

	msg := xmpp.NewElementNamespace("message", legacyStreamNS)
	msg.SetAttribute("to", "recv.example")
	msg.SetAttribute("from", "send.example")
	msg.SetAttribute("type", "chat")
	msg.SetText("hi")

	r.handleElement(sender, msg)

	require.Len(t, fcRecipient.sent, 1)
	got := fcRecipient.sent[0]
	assert.Equal(t, "message", got.Name())
	assert.Equal(t, clientNS, got.Namespace())
	assert.Equal(t, "recv.example", got.Attribute("to"))
	assert.Equal(t, "send.example", got.Attribute("from"))
	assert.Equal(t, "hi", got.Text())
}

// A component authenticated as "svc@host" may bind "svc" without an ACL
// grant, per the local-part self-bind exemption; it still needs an ACL
// grant to bind anything else.
func TestBindSelfExemptionUsesLocalPart(t *testing.T) {
	r := newTestRouter(t, "")
	c, fc := newTestComponent(t, r, "a")
	c.authenticated = true
	c.authID = "svc@host.example"

	self := xmpp.NewElementNamespace(elemBind, componentNS)
	self.SetAttribute("name", "svc")
	r.processBind(c, self)

	require.Len(t, fc.sent, 1)
	assert.Equal(t, "", fc.sent[0].Attribute("error"))
	assert.Same(t, c, r.routes["svc"])

	other := xmpp.NewElementNamespace(elemBind, componentNS)
	other.SetAttribute("name", "other.example")
	r.processBind(c, other)

	require.Len(t, fc.sent, 2)
	assert.Equal(t, codeForbidden, fc.sent[1].Attribute("error"))
}

// Teardown purges every map the component touched.
func TestTeardownPurgesRoutes(t *testing.T) {
	r := newTestRouter(t, "")
	a, _ := newTestComponent(t, r, "a")
	a.authenticated = true
	r.bindRoute("chat.example", a)
	r.defaultRoute = "chat.example"
	r.logSinks["chat.example"] = a

	r.teardown(a)

	_, inRoutes := r.routes["chat.example"]
	assert.False(t, inRoutes)
	_, inSinks := r.logSinks["chat.example"]
	assert.False(t, inSinks)
	assert.Equal(t, "", r.defaultRoute)
	assert.Nil(t, a.routes)
}
