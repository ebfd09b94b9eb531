// Package value defines the in-memory data model for XML-RPC messages.
//
// A parsed value is one of the plain Go types below; composites are
// *Array and *Struct. Values are built bottom-up by the parser and are
// not mutated after the message is fully parsed.
//
//	XML-RPC type        Go type
//	string              string
//	i4 / int            int
//	i8 (extension)      int64
//	double              float64
//	boolean             bool
//	dateTime.iso8601    time.Time
//	base64              []byte
//	array               *Array
//	struct              *Struct
package value

import (
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// DateFormat is the fixed wire format for dateTime.iso8601 values
// (yyyyMMdd'T'HH:mm:ss).
const DateFormat = "20060102T15:04:05"

// Void is the type of the NoValue sentinel.
type Void struct{}

// NoValue is the explicit "no return value" marker. A handler returning
// NoValue (or nil) produces a response whose single param is the
// <string>void</string> marker instead of an encoded value.
var NoValue = Void{}

// IsNoValue reports whether v is the no-value sentinel (or nil, which a
// Go handler without a meaningful return naturally produces).
func IsNoValue(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Void)
	return ok
}

func typeMismatch(want string, got any) error {
	return errors.Wrapf(faults.ErrTypeMismatch, "expected %s, got %T", want, got)
}

// asDate also accepts an int64 holding unix seconds, mirroring the
// original library's timestamp accessor.
func asTimestamp(v any) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Unix(), nil
	case int64:
		return t, nil
	default:
		return 0, typeMismatch("dateTime.iso8601", v)
	}
}
