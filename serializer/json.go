package serializer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// jsonDateFormat is the date-constructor layout of the JSON flavor.
// The field order differs from the XML wire format; it is preserved
// as-is for compatibility with clients built against the original
// output.
const jsonDateFormat = "2006-02-01 15:04:05"

// JSONSerializer encodes responses as a JavaScript expression: the
// payload is wrapped in parentheses and meant for eval() by a trusting
// client, not for a strict JSON parser. Strings are single-quoted and
// NOT escaped: a literal quote in the payload breaks the output. Use
// the XML flavor when the data is untrusted.
type JSONSerializer struct {
	registry *Registry
}

// NewJSONSerializer creates a JSON serializer with the core container
// serializers registered.
func NewJSONSerializer() *JSONSerializer {
	s := &JSONSerializer{registry: NewRegistry()}
	s.registry.Register(&JSONMapSerializer{})
	s.registry.Register(&JSONArraySerializer{})
	s.registry.Register(&JSONStructSerializer{})
	s.registry.Register(&JSONSliceSerializer{})
	s.registry.Register(&JSONIntrospectingSerializer{})
	return s
}

// Registry exposes the custom serializer registry.
func (s *JSONSerializer) Registry() *Registry {
	return s.registry
}

// WriteEnvelopeHeader opens the script-expression envelope.
func (s *JSONSerializer) WriteEnvelopeHeader(v any, w io.Writer) error {
	_, err := io.WriteString(w, "(")
	return err
}

// WriteEnvelopeFooter closes the script-expression envelope. There is
// no void marker in this flavor.
func (s *JSONSerializer) WriteEnvelopeFooter(v any, w io.Writer) error {
	_, err := io.WriteString(w, ")")
	return err
}

// WriteError emits the error as a quoted message. The code has no
// representation in this flavor.
func (s *JSONSerializer) WriteError(code int, message string, w io.Writer) error {
	_, err := fmt.Fprintf(w, "'%s'", message)
	return err
}

// Serialize emits the value as a JavaScript literal. Numbers and
// booleans are their literal text; dates become a Date constructor
// expression.
func (s *JSONSerializer) Serialize(v any, w io.Writer) error {
	switch t := v.(type) {
	case string:
		_, err := fmt.Fprintf(w, "'%s'", t)
		return err

	case int:
		_, err := io.WriteString(w, strconv.Itoa(t))
		return err
	case int8:
		_, err := fmt.Fprintf(w, "%d", t)
		return err
	case int16:
		_, err := fmt.Fprintf(w, "%d", t)
		return err
	case int32:
		_, err := fmt.Fprintf(w, "%d", t)
		return err
	case int64:
		_, err := io.WriteString(w, strconv.FormatInt(t, 10))
		return err

	case float32:
		_, err := io.WriteString(w, strconv.FormatFloat(float64(t), 'g', -1, 32))
		return err
	case float64:
		_, err := io.WriteString(w, strconv.FormatFloat(t, 'g', -1, 64))
		return err

	case bool:
		_, err := io.WriteString(w, strconv.FormatBool(t))
		return err

	case time.Time:
		_, err := fmt.Fprintf(w, "new Date('%s')", t.Format(jsonDateFormat))
		return err

	default:
		if v == nil {
			return errors.Wrap(faults.ErrUnsupportedType, "nil")
		}
		cs := s.registry.Find(v)
		if cs == nil {
			return errors.Wrapf(faults.ErrUnsupportedType, "%T", v)
		}
		return cs.Serialize(v, w, s)
	}
}
