package parser

import (
	"encoding/xml"
	"io"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// Drive reads XML from r and feeds the resulting structural events to
// sink. It is the bridge between a raw message stream and the
// event-driven builder layer.
func Drive(r io.Reader, sink func(Event) error) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "bad XML: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := sink(Event{Kind: StartElement, Name: t.Name.Local, Space: t.Name.Space}); err != nil {
				return err
			}
		case xml.EndElement:
			if err := sink(Event{Kind: EndElement, Name: t.Name.Local, Space: t.Name.Space}); err != nil {
				return err
			}
		case xml.CharData:
			if err := sink(Event{Kind: CharData, Text: string(t)}); err != nil {
				return err
			}
		}
		// Comments, directives and processing instructions carry no
		// structure; they are skipped.
	}
}

// ParseCall reads one complete methodCall message from r.
func ParseCall(r io.Reader) (*Call, error) {
	p := NewCallParser()
	if err := Drive(r, p.Feed); err != nil {
		return nil, err
	}
	return p.Call()
}

// ParseValue reads one standalone <value> element from r. Useful for
// tests and for consumers that store encoded values outside a call
// envelope.
func ParseValue(r io.Reader) (any, error) {
	b := NewValueBuilder()
	if err := Drive(r, b.Feed); err != nil {
		return nil, err
	}
	return b.Result()
}
