package post

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a single schema violation.
type Kind int

const (
	MissingRequiredField Kind = iota + 1
	TypeMismatch
	ArityMismatch
	MalformedURL
	ConstraintViolation
	DateParseFailure
)

// Sentinel errors, one per Kind. A FieldError unwraps to the sentinel of its kind
// so callers can use errors.Is on either a FieldError or a whole ValidationFailure.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrArityMismatch        = errors.New("arity mismatch")
	ErrMalformedURL         = errors.New("malformed url")
	ErrConstraintViolation  = errors.New("constraint violation")
	ErrDateParseFailure     = errors.New("date parse failure")
)

func (k Kind) String() string {
	switch k {
	case MissingRequiredField:
		return "MissingRequiredField"
	case TypeMismatch:
		return "TypeMismatch"
	case ArityMismatch:
		return "ArityMismatch"
	case MalformedURL:
		return "MalformedURL"
	case ConstraintViolation:
		return "ConstraintViolation"
	case DateParseFailure:
		return "DateParseFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for c := MissingRequiredField; c <= DateParseFailure; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", b)
}

func (k Kind) sentinel() error {
	switch k {
	case MissingRequiredField:
		return ErrMissingRequiredField
	case TypeMismatch:
		return ErrTypeMismatch
	case ArityMismatch:
		return ErrArityMismatch
	case MalformedURL:
		return ErrMalformedURL
	case ConstraintViolation:
		return ErrConstraintViolation
	case DateParseFailure:
		return ErrDateParseFailure
	default:
		return nil
	}
}

// FieldError describes one violated constraint.
// Field is the frontmatter key, with an element index for tuple members
// (e.g. "heroImage[1]").
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Kind.sentinel() }

// ValidationFailure is every violation found in one content file.
type ValidationFailure struct {
	ContentID string        `json:"content_id"`
	Errors    []*FieldError `json:"errors"`
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%s: invalid frontmatter (%d errors): %s",
		f.ContentID, len(f.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the individual field errors to errors.Is / errors.As.
func (f *ValidationFailure) Unwrap() []error {
	errs := make([]error, len(f.Errors))
	for i, e := range f.Errors {
		errs[i] = e
	}
	return errs
}

// Has reports whether field failed with the given kind.
func (f *ValidationFailure) Has(field string, kind Kind) bool {
	for _, e := range f.Errors {
		if e.Field == field && e.Kind == kind {
			return true
		}
	}
	return false
}

// Fields returns the distinct failing field paths in report order.
func (f *ValidationFailure) Fields() []string {
	seen := make(map[string]bool, len(f.Errors))
	fields := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// report accumulates field errors for a single validate call.
type report struct {
	errs []*FieldError
}

func (r *report) add(field string, kind Kind, format string, args ...any) {
	r.errs = append(r.errs, &FieldError{
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *report) failure(contentID string) *ValidationFailure {
	if len(r.errs) == 0 {
		return nil
	}
	return &ValidationFailure{ContentID: contentID, Errors: r.errs}
}
