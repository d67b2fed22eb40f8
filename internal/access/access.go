/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package access implements the router's IP allow/deny predicate. Rules
// are evaluated in order; a rule prefixed with '!' denies, otherwise it
// allows; the first CIDR match wins. No match defaults to allow (an empty
// list permits everyone).
package access

import "net"

// List is an ordered sequence of allow/deny CIDR rules.
type List struct {
	rules []rule
}

type rule struct {
	deny bool
	net  *net.IPNet
}

// New compiles rules (each a CIDR, optionally prefixed with '!' to deny)
// into a List. Malformed entries are skipped.
func New(rules []string) *List {
	l := &List{}
	for _, r := range rules {
		deny := false
		cidr := r
		if len(cidr) > 0 && cidr[0] == '!' {
			deny = true
			cidr = cidr[1:]
		}
		if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
			l.rules = append(l.rules, rule{deny: deny, net: ipnet})
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil {
			mask := 32
			if ip.To4() == nil {
				mask = 128
			}
			_, ipnet, _ := net.ParseCIDR(ip.String() + "/" + itoa(mask))
			l.rules = append(l.rules, rule{deny: deny, net: ipnet})
		}
	}
	return l
}

// Permits reports whether ip is allowed to connect.
func (l *List) Permits(ip string) bool {
	if l == nil {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	for _, r := range l.rules {
		if r.net.Contains(parsed) {
			return !r.deny
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [3]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}
