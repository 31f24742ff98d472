// Package validate provides field-level request validation.
// Validators return at most one error per field; callers aggregate
// across fields so every failure is reported together.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxURLLength is the maximum accepted length for URL fields.
const MaxURLLength = 2048

// Value is an optional JSON field that remembers whether it was
// supplied and whether it was a string. A JSON null counts as absent.
type Value struct {
	set bool
	str bool
	val string
}

// NewString builds a supplied string value. Used by tests and callers
// constructing requests programmatically.
func NewString(s string) Value {
	return Value{set: true, str: true, val: s}
}

// UnmarshalJSON records presence and type alongside the value.
// It never fails: a non-string value is kept as "supplied but not a
// string" so the validators can report it per field instead of the
// whole body failing to decode.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		v.set = true
		return nil
	}
	v.set = true
	v.str = true
	v.val = s
	return nil
}

// Provided reports whether the request supplied a string for this
// field, including an explicit empty string.
func (v Value) Provided() bool {
	return v.set && v.str
}

// String returns the supplied string, or "" when absent.
func (v Value) String() string {
	return v.val
}

// String validates an optional or required string field.
// maxLength of 0 disables the length check.
func String(v Value, field string, maxLength int, required bool) error {
	if !v.set || (v.str && v.val == "") {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if !v.str {
		return fmt.Errorf("%s must be a string", field)
	}
	if maxLength > 0 && utf8.RuneCountInString(v.val) > maxLength {
		return fmt.Errorf("%s must not exceed %d characters", field, maxLength)
	}
	return nil
}

// URL validates an optional or required URL field. The value must use
// an http or https scheme and stay within MaxURLLength.
func URL(v Value, field string, required bool) error {
	if !v.set || (v.str && v.val == "") {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if !v.str {
		return fmt.Errorf("%s must be a string", field)
	}
	if !strings.HasPrefix(v.val, "http://") && !strings.HasPrefix(v.val, "https://") {
		return fmt.Errorf("%s must be a valid URL starting with http:// or https://", field)
	}
	if utf8.RuneCountInString(v.val) > MaxURLLength {
		return fmt.Errorf("%s URL is too long", field)
	}
	return nil
}

// Errors aggregates validation failures across fields.
type Errors []string

// Add appends the error's message when err is non-nil.
func (e *Errors) Add(err error) {
	if err != nil {
		*e = append(*e, err.Error())
	}
}

// OK reports whether no failures were collected.
func (e Errors) OK() bool {
	return len(e) == 0
}
