/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"encoding/xml"
	"fmt"
	"io"
)

// StreamCodec decodes/encodes Element trees against a raw byte stream. This
// is the router's adapter for the "XML stream parser/serializer" external
// collaborator the spec calls out of scope — the router only ever calls
// these methods, never touches encoding/xml directly outside this file.
//
// XMPP streams open with a <stream:stream> (or jabber:component:accept
// equivalent) root that is never closed until the connection ends, so
// "decode one stanza" and "decode the stream header" are necessarily two
// different operations: DecodeOpen reads just that root's name/namespace/
// attributes, and Decode then reads one complete child element at a time.
type StreamCodec interface {
	DecodeOpen() (name, namespace string, attrs map[string]string, err error)
	Decode() (*Element, error)
	EncodeOpen(name, namespace string, attrs map[string]string) error
	Encode(e *Element) error
	Close() error
}

// stdlibCodec is the default StreamCodec, built on stdlib encoding/xml.
// No third-party streaming-XML library appears anywhere in the retrieved
// pack (see DESIGN.md); this adapter exists only so the binary can run
// end to end — the router's tested behavior never depends on its internals.
type stdlibCodec struct {
	dec *xml.Decoder
	w   io.Writer
}

// NewStdlibCodec builds the default StreamCodec reading from r and writing
// to w.
func NewStdlibCodec(r io.Reader, w io.Writer) StreamCodec {
	return &stdlibCodec{dec: xml.NewDecoder(r), w: w}
}

func (c *stdlibCodec) DecodeOpen() (string, string, map[string]string, error) {
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return "", "", nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			var defaultNS string
			attrs := make(map[string]string, len(start.Attr))
			for _, a := range start.Attr {
				switch {
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					// the stream's default namespace is the legacy/modern
					// discriminant ("jabber:component:accept" vs
					// "jabber:client"), distinct from whatever namespace the
					// "stream:" prefix itself resolves to.
					defaultNS = a.Value
				case a.Name.Space == "xmlns":
					continue
				default:
					attrs[a.Name.Local] = a.Value
				}
			}
			return start.Name.Local, defaultNS, attrs, nil
		}
	}
}

func (c *stdlibCodec) Decode() (*Element, error) {
	var root *Element
	var stack []*Element
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElementName(t.Name.Local)
			el.SetNamespace(t.Name.Space)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.SetAttribute(a.Name.Local, a.Value)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.AppendElement(el)
			} else {
				root = el
			}
			stack = append(stack, el)

		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.SetText(cur.Text() + string(t))
			}

		case xml.EndElement:
			if len(stack) == 0 {
				// closes the still-open stream root.
				return nil, io.EOF
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, nil
			}
		}
	}
}

func (c *stdlibCodec) EncodeOpen(name, namespace string, attrs map[string]string) error {
	fmt.Fprintf(c.w, `<%s xmlns="%s"`, name, namespace)
	for k, v := range attrs {
		fmt.Fprintf(c.w, ` %s="%s"`, k, escape(v))
	}
	_, err := io.WriteString(c.w, ">")
	return err
}

func (c *stdlibCodec) Encode(e *Element) error {
	_, err := io.WriteString(c.w, e.String())
	return err
}

func (c *stdlibCodec) Close() error {
	_, err := io.WriteString(c.w, "</stream:stream>")
	return err
}
