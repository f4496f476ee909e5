package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationResponse mirrors the field-level error shape form components render.
type ValidationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Validation writes a 422 for binding/validator failures and a 400 for malformed bodies.
func Validation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code": "invalid_request",
			"message":    "The request body could not be parsed.",
			"details":    err.Error(),
		})
		return
	}

	fields := map[string][]string{}
	for _, fe := range verrs {
		key, msg := describe(fe)
		fields[key] = append(fields[key], msg)
	}

	Invalid(c, fields)
}

// Invalid writes a 422 for errors detected after binding (e.g. a taken email).
func Invalid(c *gin.Context, fields map[string][]string) {
	first := "The given data was invalid."
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			first = fields[k][0]
			break
		}
	}
	if n := countMessages(fields); n > 1 {
		first = fmt.Sprintf("%s (and %d more %s)", first, n-1, plural(n-1))
	}

	c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
		Message: first,
		Errors:  fields,
	})
}

func Field(field, message string) map[string][]string {
	return map[string][]string{field: {message}}
}

func describe(fe validator.FieldError) (string, string) {
	key := fieldKey(fe)
	label := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return key, fmt.Sprintf("The %s field is required.", label)
	case "email":
		return key, fmt.Sprintf("The %s field must be a valid email address.", label)
	case "lowercase":
		return key, fmt.Sprintf("The %s field must be lowercase.", label)
	case "slug":
		return key, fmt.Sprintf("The %s field may only contain lowercase letters, numbers and dashes.", label)
	case "max":
		return key, fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		if isNumeric(fe) {
			return key, fmt.Sprintf("The %s field must be at least %s.", label, fe.Param())
		}
		return key, fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "gt", "gte":
		return key, fmt.Sprintf("The %s field must be greater than %s.", label, fe.Param())
	case "oneof":
		return key, fmt.Sprintf("The selected %s is invalid.", label)
	case "eqfield":
		// password_confirmation -> password
		target := strings.TrimSuffix(key, "_confirmation")
		return target, fmt.Sprintf("The %s field confirmation does not match.", strings.ReplaceAll(target, "_", " "))
	case "dive":
		return key, fmt.Sprintf("The %s field is invalid.", label)
	default:
		return key, fmt.Sprintf("The %s field is invalid.", label)
	}
}

// fieldKey drops the root struct name from the namespace: items[0].quantity.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func isNumeric(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64":
		return true
	}
	return false
}

func countMessages(fields map[string][]string) int {
	n := 0
	for _, msgs := range fields {
		n += len(msgs)
	}
	return n
}

func plural(n int) string {
	if n == 1 {
		return "error"
	}
	return "errors"
}
