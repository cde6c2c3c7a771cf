package predict

import (
	"strings"
)

// Error types reported in FieldError.Type.
const (
	ErrMissing      = "missing"
	ErrIntParsing   = "int_parsing"
	ErrIntFromFloat = "int_from_float"
	ErrIntType      = "int_type"
	ErrFloatParsing = "float_parsing"
	ErrFloatType    = "float_type"
	ErrStringType   = "string_type"
	ErrJSONInvalid  = "json_invalid"
	ErrBodyTooLarge = "body_too_large"
)

// FieldError describes why one input was refused. Loc is the location of the
// input, e.g. ["query", "grade"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned for malformed requests and rendered as the
// response body.
type ValidationError struct {
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Detail))
	for i, d := range e.Detail {
		parts[i] = strings.Join(d.Loc, ".") + ": " + d.Msg
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending inputs.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		out = append(out, d.Loc[len(d.Loc)-1])
	}
	return out
}
