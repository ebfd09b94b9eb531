package parser

import (
	"strings"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// Call is a fully parsed inbound request: the method name and the
// positional arguments in encounter order.
type Call struct {
	MethodName string
	Arguments  []any
}

// CallParser consumes the event stream of one methodCall message. The
// methodName element is captured as plain text; every terminal value at
// param level becomes one positional argument. Nested value events are
// forwarded to a ValueBuilder.
type CallParser struct {
	call    Call
	builder *ValueBuilder
	depth   int // open <value> elements inside the current argument
	buf     strings.Builder
}

// NewCallParser returns a parser ready for a methodCall event stream.
func NewCallParser() *CallParser {
	return &CallParser{}
}

// Call returns the parsed call. Valid once the stream has been fully
// fed without error.
func (p *CallParser) Call() (*Call, error) {
	if p.depth != 0 || p.builder != nil {
		return nil, errors.Wrap(faults.ErrMalformed, "message ended inside a value")
	}
	if p.call.MethodName == "" {
		return nil, errors.Wrap(faults.ErrMalformed, "missing methodName")
	}
	return &p.call, nil
}

// Feed advances the parser by one event.
func (p *CallParser) Feed(ev Event) error {
	switch ev.Kind {
	case StartElement:
		if ev.Name == "value" {
			if p.builder == nil {
				p.builder = NewValueBuilder()
			}
			p.depth++
			return p.builder.Feed(ev)
		}
		if p.builder != nil {
			return p.builder.Feed(ev)
		}
		switch ev.Name {
		case "methodCall", "methodName", "params", "param":
			p.buf.Reset()
		default:
			return errors.Wrapf(faults.ErrMalformed, "unrecognized element <%s>", ev.Name)
		}

	case CharData:
		if p.builder != nil {
			return p.builder.Feed(ev)
		}
		p.buf.WriteString(ev.Text)

	case EndElement:
		if p.builder != nil {
			if err := p.builder.Feed(ev); err != nil {
				return err
			}
			if ev.Name == "value" {
				p.depth--
				if p.depth == 0 {
					arg, err := p.builder.Result()
					if err != nil {
						return err
					}
					p.call.Arguments = append(p.call.Arguments, arg)
					p.builder = nil
				}
			}
			return nil
		}
		if ev.Name == "methodName" {
			p.call.MethodName = p.buf.String()
		}
		p.buf.Reset()
	}
	return nil
}
