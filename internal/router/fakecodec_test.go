/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import "github.com/ortuman/jxrouter/internal/xmpp"

// fakeCodec is an in-memory xmpp.StreamCodec double: Encode appends to sent
// instead of touching a real connection, so handler tests can assert on
// exactly what would have gone out on the wire.
type fakeCodec struct {
	sent   []*xmpp.Element
	closed bool
}

func (f *fakeCodec) DecodeOpen() (string, string, map[string]string, error) {
	return "stream:stream", componentNS, nil, nil
}

func (f *fakeCodec) Decode() (*xmpp.Element, error) { return nil, nil }

func (f *fakeCodec) EncodeOpen(string, string, map[string]string) error { return nil }

func (f *fakeCodec) Encode(e *xmpp.Element) error {
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeCodec) Close() error {
	f.closed = true
	return nil
}
