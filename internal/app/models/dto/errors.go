package dto

import "sort"

// FieldErrors maps a form field name to its validation messages. The empty
// key "__all__" holds errors that belong to the form as a whole.
type FieldErrors map[string][]string

// NonFieldKey is where form-wide errors go.
const NonFieldKey = "__all__"

// NewFieldErrors returns an empty error set.
func NewFieldErrors() FieldErrors {
	return FieldErrors{}
}

// Add appends a message to field.
func (e FieldErrors) Add(field, message string) FieldErrors {
	e[field] = append(e[field], message)
	return e
}

// Get returns the messages for field.
func (e FieldErrors) Get(field string) []string {
	return e[field]
}

// Has reports whether field has any messages.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// HasErrors reports whether any field failed.
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// NonField returns form-wide messages.
func (e FieldErrors) NonField() []string {
	return e[NonFieldKey]
}

// Fields lists failing field names in a stable order.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
