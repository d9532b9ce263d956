package forms

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldError is one message shown next to the form.
type FieldError struct {
	Field string
	Msg   string
}

// ValidationErrors is returned when submitted form fields violate their rules.
// Entries keep the order in which the form declares its fields.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// fromOzzo flattens ozzo field errors in the given field order. Internal
// validator errors are returned unchanged.
func fromOzzo(err error, order ...string) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, field := range order {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			out = append(out, FieldError{Field: field, Msg: fe.Error()})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
