/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package jid validates and extracts the domain part of a JID-shaped
// address found in a stream's 'to' attribute or a route's 'to'/'from'
// attributes. Node and resource parts are accepted for compatibility with
// full JIDs but the router only ever acts on Domain().
package jid

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/secure/precis"
)

// JID is a parsed node@domain/resource address. Any part but domain may be
// empty.
type JID struct {
	node     string
	domain   string
	resource string
}

// Parse splits s as a JID-shaped string and extracts its parts. The domain
// is normalized with golang.org/x/net/idna when idna accepts it and kept as
// given otherwise; only an empty input or an empty domain is rejected.
func Parse(s string) (*JID, error) {
	if s == "" {
		return nil, errEmpty
	}
	node, rest := "", s
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		node, rest = rest[:at], rest[at+1:]
	}
	domain, resource := rest, ""
	if sl := strings.IndexByte(rest, '/'); sl >= 0 {
		domain, resource = rest[:sl], rest[sl+1:]
	}
	if domain == "" {
		return nil, errEmpty
	}
	normDomain, err := idna.Lookup.ToUnicode(domain)
	if err != nil {
		// Not every internal component domain is a registrable DNS name
		// (e.g. "chat.example" in tests, or single-label service names);
		// fall back to the raw label rather than rejecting it outright.
		normDomain = domain
	}
	var normNode string
	if node != "" {
		normNode, err = precis.UsernameCaseMapped.String(node)
		if err != nil {
			normNode = node
		}
	}
	return &JID{node: normNode, domain: normDomain, resource: resource}, nil
}

// Domain returns the JID's domain part.
func (j *JID) Domain() string { return j.domain }

// Node returns the JID's local part, or "" if absent.
func (j *JID) Node() string { return j.node }

// Resource returns the JID's resource part, or "" if absent.
func (j *JID) Resource() string { return j.resource }

// User extracts and precis-normalizes the local part of an authenticated
// identity string (e.g. "svc@host" -> "svc"), mirroring router.c's bind
// handling: `user = strdup(auth_id); c = strchr(user, '@'); if(c) *c =
// '\0';`. authID values with no '@' (e.g. the legacy "handshake" identity)
// are returned as-is after normalization.
func User(authID string) string {
	local := authID
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	normalized, err := precis.UsernameCaseMapped.String(local)
	if err != nil {
		return local
	}
	return normalized
}

var errEmpty = parseError("empty or malformed domain")

type parseError string

func (e parseError) Error() string { return string(e) }
