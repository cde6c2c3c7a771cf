package predict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/studytime/core/model"
)

const maxBodyBytes = 1 << 20

const (
	fieldGrade     = "grade"
	fieldSubject   = "subject"
	fieldLastScore = "last_score"

	locQuery = "query"
	locBody  = "body"
)

var fieldOrder = []string{fieldGrade, fieldSubject, fieldLastScore}

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindOther
)

// rawValue is an input before coercion.
type rawValue struct {
	text string
	kind valueKind
	loc  string
}

// Decoder turns an HTTP request into a PredictionRequest.
type Decoder struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewDecoder builds a Decoder with English validation messages.
func NewDecoder() (*Decoder, error) {
	v, trans, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &Decoder{validate: v, trans: trans}, nil
}

// Decode reads grade, subject and last_score from the query string and, for
// JSON requests, from the body for inputs the query string does not carry.
// Every offending input is reported in the returned ValidationError.
func (d *Decoder) Decode(c *gin.Context) (model.PredictionRequest, *ValidationError) {
	raw := make(map[string]rawValue, len(fieldOrder))
	query := c.Request.URL.Query()
	for _, name := range fieldOrder {
		if vs, ok := query[name]; ok && len(vs) > 0 {
			raw[name] = rawValue{text: vs[len(vs)-1], kind: kindString, loc: locQuery}
		}
	}
	failures := map[string]FieldError{}
	var bodyErr *FieldError
	if len(raw) < len(fieldOrder) && c.ContentType() == binding.MIMEJSON {
		body, ferr := readJSONBody(c.Writer, c.Request)
		bodyErr = ferr
		for name, v := range body {
			if _, ok := raw[name]; !ok {
				raw[name] = v
			}
		}
	}

	var p params
	for name, v := range raw {
		if ferr := coerce(&p, name, v); ferr != nil {
			failures[name] = *ferr
		}
	}
	if err := d.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.PredictionRequest{}, &ValidationError{Detail: []FieldError{{Loc: []string{locQuery}, Msg: err.Error(), Type: ErrMissing}}}
		}
		for _, fe := range verrs {
			if _, seen := failures[fe.Field()]; seen {
				continue
			}
			failures[fe.Field()] = FieldError{Loc: []string{locQuery, fe.Field()}, Msg: fe.Translate(d.trans), Type: ErrMissing}
		}
	}
	if bodyErr != nil || len(failures) > 0 {
		verr := &ValidationError{}
		if bodyErr != nil {
			verr.Detail = append(verr.Detail, *bodyErr)
		}
		for _, name := range fieldOrder {
			if fe, ok := failures[name]; ok {
				verr.Detail = append(verr.Detail, fe)
			}
		}
		return model.PredictionRequest{}, verr
	}
	return model.PredictionRequest{Grade: *p.Grade, Subject: *p.Subject, LastScore: *p.LastScore}, nil
}

func readJSONBody(w http.ResponseWriter, r *http.Request) (map[string]rawValue, *FieldError) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg := fmt.Sprintf("Request body too large, limit is %d bytes", tooLarge.Limit)
			return nil, &FieldError{Loc: []string{locBody}, Msg: msg, Type: ErrBodyTooLarge}
		}
		return nil, &FieldError{Loc: []string{locBody}, Msg: "could not read request body", Type: ErrJSONInvalid}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, &FieldError{Loc: []string{locBody}, Msg: "JSON decode error: " + err.Error(), Type: ErrJSONInvalid}
	}
	out := make(map[string]rawValue, len(fieldOrder))
	for _, name := range fieldOrder {
		msg, ok := members[name]
		if !ok {
			continue
		}
		msg = bytes.TrimSpace(msg)
		switch {
		case bytes.Equal(msg, []byte("null")):
			// treated as absent
		case len(msg) > 0 && msg[0] == '"':
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				out[name] = rawValue{text: string(msg), kind: kindOther, loc: locBody}
				continue
			}
			out[name] = rawValue{text: s, kind: kindString, loc: locBody}
		case len(msg) > 0 && (msg[0] == '-' || (msg[0] >= '0' && msg[0] <= '9')):
			out[name] = rawValue{text: string(msg), kind: kindNumber, loc: locBody}
		default:
			out[name] = rawValue{text: string(msg), kind: kindOther, loc: locBody}
		}
	}
	return out, nil
}

func coerce(p *params, name string, v rawValue) *FieldError {
	fail := func(typ, msg string) *FieldError {
		return &FieldError{Loc: []string{v.loc, name}, Msg: msg, Type: typ}
	}
	switch name {
	case fieldGrade:
		if v.kind == kindOther {
			return fail(ErrIntType, "Input should be a valid integer")
		}
		g, typ := parseGrade(v)
		switch typ {
		case ErrIntFromFloat:
			return fail(typ, "Input should be a valid integer, got a number with a fractional part")
		case ErrIntParsing:
			return fail(typ, "Input should be a valid integer, unable to parse string as an integer")
		}
		p.Grade = &g
	case fieldSubject:
		if v.kind != kindString {
			return fail(ErrStringType, "Input should be a valid string")
		}
		s := v.text
		p.Subject = &s
	case fieldLastScore:
		if v.kind == kindOther {
			return fail(ErrFloatType, "Input should be a valid number")
		}
		text := strings.TrimSpace(v.text)
		f, err := strconv.ParseFloat(text, 64)
		if hasHexPrefix(text) || (err != nil && !isRangeErr(err)) {
			return fail(ErrFloatParsing, "Input should be a valid number, unable to parse string as a number")
		}
		p.LastScore = &f
	}
	return nil
}

// parseGrade accepts decimal integers. Strings may carry a zero fractional
// part ("10.0", "10."), and JSON numbers may be any integral value (10.0,
// 1e1). The second result is empty on success and holds the error type
// otherwise.
func parseGrade(v rawValue) (int64, string) {
	text := strings.TrimSpace(v.text)
	if v.kind == kindString {
		text = trimZeroFraction(text)
	}
	if g, err := strconv.ParseInt(text, 10, 64); err == nil {
		return g, ""
	}
	if v.kind == kindNumber {
		f, err := strconv.ParseFloat(text, 64)
		if err == nil && f != math.Trunc(f) {
			return 0, ErrIntFromFloat
		}
		if err == nil && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), ""
		}
	}
	return 0, ErrIntParsing
}

// trimZeroFraction turns "10.0" or "10." into "10". Anything else is
// returned unchanged.
func trimZeroFraction(s string) string {
	i := strings.IndexByte(s, '.')
	if i <= 0 || strings.Trim(s[i+1:], "0") != "" {
		return s
	}
	return s[:i]
}

// hasHexPrefix reports a 0x mantissa, which ParseFloat accepts but plain
// decimal notation does not.
func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// isRangeErr reports overflow to ±Inf or underflow to zero. ParseFloat still
// returns the rounded value in that case, which is what the score needs.
func isRangeErr(err error) bool {
	var ne *strconv.NumError
	return errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange)
}
