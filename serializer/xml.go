package serializer

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
	"xmlrpc/value"
)

// XMLSerializer encodes responses in the XML-RPC wire format.
type XMLSerializer struct {
	registry *Registry
	encoding string
}

// NewXMLSerializer creates an XML serializer with the core custom
// serializers registered (which is almost always what you want). With
// extensions enabled, 64-bit integers go out as namespaced <i8>
// elements; otherwise they truncate to <i4>, matching legacy clients.
func NewXMLSerializer(extensions bool) *XMLSerializer {
	s := &XMLSerializer{registry: NewRegistry(), encoding: "UTF-8"}
	s.registry.Register(&Int64Serializer{UseApacheExtension: extensions})
	s.registry.Register(&Int64SliceSerializer{UseApacheExtension: extensions})
	s.registry.Register(&MapSerializer{})
	s.registry.Register(&ArraySerializer{})
	s.registry.Register(&StructSerializer{})
	s.registry.Register(&SliceSerializer{})
	s.registry.Register(&IntrospectingSerializer{})
	return s
}

// NewBareXMLSerializer creates an XML serializer with an empty custom
// registry, for callers that want full control over registration.
func NewBareXMLSerializer() *XMLSerializer {
	return &XMLSerializer{registry: NewRegistry(), encoding: "UTF-8"}
}

// Registry exposes the custom serializer registry for registration and
// removal. Changes apply to subsequent serializations.
func (s *XMLSerializer) Registry() *Registry {
	return s.registry
}

// SetEncoding overrides the charset named in the XML declaration.
// The default is UTF-8.
func (s *XMLSerializer) SetEncoding(encoding string) {
	s.encoding = encoding
}

// WriteEnvelopeHeader emits the XML declaration and opens the
// methodResponse/params/param envelope.
func (s *XMLSerializer) WriteEnvelopeHeader(v any, w io.Writer) error {
	_, err := fmt.Fprintf(w, "<?xml version=\"1.0\" encoding=\"%s\"?><methodResponse><params><param>", s.encoding)
	return err
}

// WriteEnvelopeFooter closes the envelope, substituting the void marker
// when the call produced no value.
func (s *XMLSerializer) WriteEnvelopeFooter(v any, w io.Writer) error {
	var err error
	if value.IsNoValue(v) {
		_, err = io.WriteString(w, "<value><string>void</string></value></param></params></methodResponse>")
	} else {
		_, err = io.WriteString(w, "</param></params></methodResponse>")
	}
	return err
}

// WriteError emits a complete fault response wrapping code and message
// in the faultCode/faultString struct.
func (s *XMLSerializer) WriteError(code int, message string, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "<?xml version=\"1.0\" encoding=\"%s\"?>", s.encoding); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<methodResponse><fault><value><struct>"+
		"<member><name>faultCode</name><value><int>%d</int></value></member>"+
		"<member><name>faultString</name>", code); err != nil {
		return err
	}
	if err := s.Serialize(message, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</member></struct></value></fault></methodResponse>")
	return err
}

// Serialize emits <value>...</value> with a type tag appropriate to the
// runtime type. Scalars are checked first by exact runtime type; any
// other type is passed through the custom registry in its current
// order, first match wins.
func (s *XMLSerializer) Serialize(v any, w io.Writer) error {
	if _, err := io.WriteString(w, "<value>"); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		if _, err := io.WriteString(w, "<string>"); err != nil {
			return err
		}
		if err := writeEscaped(w, t); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</string>"); err != nil {
			return err
		}

	case int:
		if _, err := fmt.Fprintf(w, "<i4>%d</i4>", t); err != nil {
			return err
		}
	case int8:
		if _, err := fmt.Fprintf(w, "<i4>%d</i4>", t); err != nil {
			return err
		}
	case int16:
		if _, err := fmt.Fprintf(w, "<i4>%d</i4>", t); err != nil {
			return err
		}
	case int32:
		if _, err := fmt.Fprintf(w, "<i4>%d</i4>", t); err != nil {
			return err
		}

	case float32:
		if _, err := fmt.Fprintf(w, "<double>%s</double>", strconv.FormatFloat(float64(t), 'g', -1, 32)); err != nil {
			return err
		}
	case float64:
		if _, err := fmt.Fprintf(w, "<double>%s</double>", strconv.FormatFloat(t, 'g', -1, 64)); err != nil {
			return err
		}

	case bool:
		flag := "0"
		if t {
			flag = "1"
		}
		if _, err := fmt.Fprintf(w, "<boolean>%s</boolean>", flag); err != nil {
			return err
		}

	case time.Time:
		if _, err := fmt.Fprintf(w, "<dateTime.iso8601>%s</dateTime.iso8601>", t.Format(value.DateFormat)); err != nil {
			return err
		}

	case []byte:
		if _, err := fmt.Fprintf(w, "<base64>%s</base64>", base64.StdEncoding.EncodeToString(t)); err != nil {
			return err
		}

	default:
		if v == nil {
			return errors.Wrap(faults.ErrUnsupportedType, "nil")
		}
		cs := s.registry.Find(v)
		if cs == nil {
			return errors.Wrapf(faults.ErrUnsupportedType, "%T", v)
		}
		if err := cs.Serialize(v, w, s); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</value>")
	return err
}

// writeEscaped writes s with the two characters the XML-RPC grammar
// requires entity-escaped in string content.
func writeEscaped(w io.Writer, s string) error {
	start := 0
	for i := 0; i < len(s); i++ {
		var ent string
		switch s[i] {
		case '<':
			ent = "&lt;"
		case '&':
			ent = "&amp;"
		default:
			continue
		}
		if _, err := io.WriteString(w, s[start:i]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ent); err != nil {
			return err
		}
		start = i + 1
	}
	_, err := io.WriteString(w, s[start:])
	return err
}
