/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"crypto/sha1" //nolint:gosec // protocol-mandated raw SHA-1, legacy-only
	"fmt"

	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/metrics"
	"github.com/ortuman/jxrouter/internal/streamerror"
	"github.com/ortuman/jxrouter/internal/xmpp"
)

// handleStreamOpen processes the opening stream header: the namespace
// selects legacy vs modern authentication.
func (r *Router) handleStreamOpen(c *Component, name, namespace string, attrs map[string]string) {
	if namespace != legacyStreamNS {
		// Modern stream: authentication is handled by the external SASL
		// layer, out of scope here; the router just waits for Authenticate
		// to be called.
		c.legacy = false
		return
	}

	c.legacy = true

	if r.localSecret == "" {
		r.closeWithStreamError(c, streamerror.ErrInvalidNamespace)
		return
	}
	to := attrs["to"]
	if to == "" {
		r.closeWithStreamError(c, streamerror.ErrHostUnknown)
		return
	}
	c.pendingLegacyTo = to
}

// handleElement is the single entry point for every decoded stanza,
// mirroring router.c's event_PACKET switch.
func (r *Router) handleElement(c *Component, elem *xmpp.Element) {
	c.lastActivity = r.now()

	if !c.authenticated {
		if !c.legacy {
			log.Debugf("[%s, port=%s] stream is preauth, dropping packet", c.ip, c.port)
			return
		}
		if elem.Name() != elemHandshake {
			log.Debugf("[%s, port=%s] unknown preauth packet %s, dropping", c.ip, c.port, elem.Name())
			return
		}
		r.processHandshake(c, elem)
		return
	}

	if c.legacy {
		// Legacy components speak raw client stanzas, not the control
		// vocabulary (bind/unbind/route/throttle); every post-auth packet
		// gets wrapped into a `route` element before it enters the normal
		// dispatch below, mirroring router.c's event_PACKET legacy branch.
		wrapped, err := legacyWrapInbound(elem)
		if err != nil {
			log.Debugf("[%s, port=%s] invalid or missing to/from on legacy packet, dropping", c.ip, c.port)
			return
		}
		elem = wrapped
	}

	switch elem.Name() {
	case elemBind:
		r.processBind(c, elem)
	case elemUnbind:
		r.processUnbind(c, elem)
	case elemRoute:
		r.processRoute(c, elem)
	case elemThrottle:
		r.processThrottle(c, elem)
	default:
		log.Debugf("[%s, port=%s] unknown packet %s, dropping", c.ip, c.port, elem.Name())
	}
}

// Authenticate marks a modern (non-legacy) component authenticated once the
// external SASL layer has completed negotiation. Legacy components
// authenticate only via processHandshake.
func (c *Component) Authenticate(identity string) {
	c.authenticated = true
	c.authID = identity
}

// processHandshake verifies the legacy SHA-1 digest and, on success,
// performs the auto-bind router.c runs at event_OPEN.
func (r *Router) processHandshake(c *Component, elem *xmpp.Element) {
	digest := elem.Text()
	if len(digest) != 40 {
		log.Debugf("[%s, port=%s] handshake isn't long enough to be a sha1 hash", c.ip, c.port)
		r.closeWithStreamError(c, streamerror.ErrNotAuthorized)
		return
	}

	expect := handshakeDigest(c.id, r.localSecret)
	if digest != expect {
		log.Debugf("[%s, port=%s] handshake failed", c.ip, c.port)
		r.closeWithStreamError(c, streamerror.ErrNotAuthorized)
		return
	}

	elem.SetText("")
	r.write(c, elem)

	c.authenticated = true
	c.authID = "handshake"

	log.Infof("[%s, port=%s] authenticated as handshake", c.ip, c.port)

	r.legacyAutoBind(c)
}

// handshakeDigest computes the lowercase hex SHA-1 of streamID ∥ secret,
// exactly 40 characters.
func handshakeDigest(streamID, secret string) string {
	sum := sha1.Sum([]byte(streamID + secret)) //nolint:gosec
	return fmt.Sprintf("%x", sum)
}

// legacyAutoBind binds the stream's requested 'to' domain (and matching
// aliases) once a legacy component authenticates. A conflicting rebind
// emits host-unknown and closes the stream.
func (r *Router) legacyAutoBind(c *Component) {
	to := c.pendingLegacyTo
	if _, exists := r.routes[to]; exists {
		r.closeWithStreamError(c, streamerror.ErrHostUnknown)
		return
	}
	for _, a := range r.aliases {
		if a.Name == to {
			r.closeWithStreamError(c, streamerror.ErrHostUnknown)
			return
		}
	}

	r.bindRoute(to, c)
	log.Infof("[%s] online (bound to %s, port %s)", to, c.ip, c.port)
	r.advertise(to, c, false)

	// Legacy components don't get reverse-advertised.
	r.bindAliasesOf(to, c)

	metrics.BoundRoutes.Set(float64(len(r.routes)))
}
