// Package parser builds value trees and complete calls from a stream of
// structural events.
//
// Processing pipeline:
//
//	io.Reader → xml driver (encoding/xml tokens → Event)
//	  → CallParser (methodName + positional arguments)
//	    → ValueBuilder (stack of builder frames, one per open <value>)
//
// The builder layer is driven purely by events, so the construction
// algorithm is testable against synthetic streams without any XML.
package parser

// ExtensionsNamespace is the XML namespace of the i8 (64-bit integer)
// protocol extension.
const ExtensionsNamespace = "http://ws.apache.org/xmlrpc/namespaces/extensions"

// EventKind distinguishes the three structural events the builder
// understands.
type EventKind int

const (
	StartElement EventKind = iota
	EndElement
	CharData
)

// Event is one structural event from the message stream. Name and Space
// are set for element events, Text for character data.
type Event struct {
	Kind  EventKind
	Name  string
	Space string
	Text  string
}

// Start returns an element-start event.
func Start(name string) Event {
	return Event{Kind: StartElement, Name: name}
}

// End returns an element-end event.
func End(name string) Event {
	return Event{Kind: EndElement, Name: name}
}

// Text returns a character-data event.
func Text(text string) Event {
	return Event{Kind: CharData, Text: text}
}
