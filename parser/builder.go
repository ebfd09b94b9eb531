package parser

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
	"xmlrpc/value"
)

// frame kinds. A frame starts as kindString (the default when no type
// tag is seen) and is retyped by the first type-tag element inside its
// <value>.
const (
	kindString = iota
	kindI4
	kindI8
	kindDouble
	kindBoolean
	kindDate
	kindBase64
	kindArray
	kindStruct
)

var kindByTag = map[string]int{
	"string":           kindString,
	"i4":               kindI4,
	"int":              kindI4,
	"i8":               kindI8,
	"double":           kindDouble,
	"boolean":          kindBoolean,
	"dateTime.iso8601": kindDate,
	"base64":           kindBase64,
	"array":            kindArray,
	"struct":           kindStruct,
}

// frame is one in-progress value on the builder stack.
type frame struct {
	kind       int
	typed      bool // a type tag was seen; char data at </value> is discarded
	scalar     any
	arr        *value.Array
	st         *value.Struct
	memberName string
}

// result returns the finished value for the frame.
func (f *frame) result() any {
	switch f.kind {
	case kindArray:
		return f.arr
	case kindStruct:
		return f.st
	default:
		return f.scalar
	}
}

// setType retypes the frame; composite kinds allocate their container
// immediately so nested values have something to attach to.
func (f *frame) setType(kind int) {
	f.kind = kind
	f.typed = true
	switch kind {
	case kindArray:
		f.arr = value.NewArray()
	case kindStruct:
		f.st = value.NewStruct()
	}
}

// setCharData interprets raw character data according to the frame's
// current type. Literal parse failures are malformed-message errors
// naming the offending tag and text.
func (f *frame) setCharData(tag, text string) error {
	switch f.kind {
	case kindString:
		f.scalar = text

	case kindI4:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid integer %q in <%s>", text, tag)
		}
		f.scalar = int(n)

	case kindI8:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid long integer %q in <%s>", text, tag)
		}
		f.scalar = n

	case kindDouble:
		d, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid double %q in <%s>", text, tag)
		}
		f.scalar = d

	case kindBoolean:
		n, err := strconv.Atoi(text)
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid boolean %q in <%s>", text, tag)
		}
		f.scalar = n == 1

	case kindDate:
		t, err := time.Parse(value.DateFormat, text)
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid date %q in <%s>", text, tag)
		}
		f.scalar = t

	case kindBase64:
		b, err := base64.StdEncoding.DecodeString(stripSpace(text))
		if err != nil {
			return errors.Wrapf(faults.ErrMalformed, "invalid base64 data in <%s>", tag)
		}
		f.scalar = b

	case kindStruct:
		// Inside a struct the only character data of interest is the
		// member name, captured before its value opens.
		f.memberName = text
	}
	return nil
}

// attach binds a finished child value into this composite frame.
func (f *frame) attach(child any) error {
	switch f.kind {
	case kindArray:
		f.arr.Add(child)
	case kindStruct:
		f.st.Put(f.memberName, child)
	default:
		return errors.Wrap(faults.ErrMalformed, "unexpected nested value")
	}
	return nil
}

// ValueBuilder constructs a single value tree from structural events.
// Each open <value> pushes a frame; closing it pops the frame and
// attaches the finished value to its parent (append for arrays, bind to
// the captured member name for structs). Character data accumulates in a
// buffer that is flushed into the current frame when the owning element
// closes.
type ValueBuilder struct {
	stack []*frame
	buf   strings.Builder
	out   any
	done  bool
}

// NewValueBuilder returns a builder ready to receive the events of one
// <value> element (including the start event itself).
func NewValueBuilder() *ValueBuilder {
	return &ValueBuilder{}
}

// Done reports whether the outermost value has been closed.
func (b *ValueBuilder) Done() bool {
	return b.done
}

// Result returns the finished value tree. Valid only after Done.
func (b *ValueBuilder) Result() (any, error) {
	if !b.done {
		return nil, errors.Wrap(faults.ErrMalformed, "value not completely parsed")
	}
	return b.out, nil
}

func (b *ValueBuilder) top() *frame {
	return b.stack[len(b.stack)-1]
}

// consume returns and clears the accumulated character data.
func (b *ValueBuilder) consume() string {
	s := b.buf.String()
	b.buf.Reset()
	return s
}

// Feed advances the builder by one event.
func (b *ValueBuilder) Feed(ev Event) error {
	if b.done {
		return errors.Wrap(faults.ErrMalformed, "event after value completed")
	}

	switch ev.Kind {
	case CharData:
		b.buf.WriteString(ev.Text)

	case StartElement:
		switch ev.Name {
		case "value":
			b.stack = append(b.stack, &frame{kind: kindString})
			b.buf.Reset()
		case "data", "member":
			// Structural containers, nothing to build.
			b.buf.Reset()
		case "name":
			b.buf.Reset()
		default:
			if kind, ok := kindByTag[ev.Name]; ok {
				if len(b.stack) == 0 {
					return errors.Wrapf(faults.ErrMalformed, "type tag <%s> outside value", ev.Name)
				}
				b.top().setType(kind)
				b.buf.Reset()
			} else {
				return errors.Wrapf(faults.ErrMalformed, "unrecognized element <%s>", ev.Name)
			}
		}

	case EndElement:
		switch ev.Name {
		case "value":
			if len(b.stack) == 0 {
				return errors.Wrap(faults.ErrMalformed, "unbalanced </value>")
			}
			top := b.top()
			text := b.consume()
			if !top.typed {
				// No type tag before the value closed: default string.
				if err := top.setCharData("value", text); err != nil {
					return err
				}
			}
			b.stack = b.stack[:len(b.stack)-1]
			child := top.result()
			if len(b.stack) == 0 {
				b.out = child
				b.done = true
				return nil
			}
			return b.top().attach(child)

		case "name":
			if len(b.stack) == 0 || b.top().kind != kindStruct {
				return errors.Wrap(faults.ErrMalformed, "<name> outside struct")
			}
			return b.top().setCharData("name", b.consume())

		case "data", "member", "array", "struct":
			b.buf.Reset()

		default:
			if _, ok := kindByTag[ev.Name]; ok {
				if len(b.stack) == 0 {
					return errors.Wrapf(faults.ErrMalformed, "type tag </%s> outside value", ev.Name)
				}
				return b.top().setCharData(ev.Name, b.consume())
			}
			return errors.Wrapf(faults.ErrMalformed, "unrecognized element </%s>", ev.Name)
		}
	}
	return nil
}

// stripSpace removes all whitespace so line-wrapped base64 payloads
// decode with the strict stdlib decoder.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
